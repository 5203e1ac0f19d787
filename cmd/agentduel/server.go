package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agentduel/agentduel/agent"
	"github.com/agentduel/agentduel/api/handlers"
	"github.com/agentduel/agentduel/config"
	"github.com/agentduel/agentduel/conversation"
	"github.com/agentduel/agentduel/internal/metrics"
	"github.com/agentduel/agentduel/internal/server"
	"github.com/agentduel/agentduel/llm"
	llmfactory "github.com/agentduel/agentduel/llm/factory"
	"github.com/agentduel/agentduel/persistence"
)

// Server wires the registries, the conversation engine, the provider,
// and the HTTP surface together.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	registry *agent.Registry
	store    *conversation.Store
	engine   *conversation.Engine
	analyzer *conversation.Analyzer

	metricsCollector *metrics.Collector
	snapshots        *persistence.Store

	rateLimiterCancel context.CancelFunc
}

// NewServer creates an unstarted server.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// Start initializes all components and begins serving.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("agentduel", s.logger)

	if err := s.initCore(); err != nil {
		return fmt.Errorf("failed to init core: %w", err)
	}
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("all servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("persistence_enabled", s.snapshots != nil),
	)
	return nil
}

// initCore builds the registries, tree store, provider, and engine.
func (s *Server) initCore() error {
	s.registry = agent.NewRegistry(s.logger)
	s.store = conversation.NewStore(s.registry, s.logger)

	provider, err := llmfactory.New(s.cfg.LLM, s.logger)
	if err != nil {
		return err
	}
	instrumented := llm.Instrument(provider, s.logger, s.metricsCollector.RecordModelCall)

	s.engine = conversation.NewEngine(s.store, instrumented, s.logger)
	s.analyzer = conversation.NewAnalyzer(s.store, instrumented, s.logger)

	if s.cfg.Store.Enabled {
		snapshots, err := persistence.Open(s.cfg.Store.Path, s.logger)
		if err != nil {
			// Degrade to memory-only rather than refuse to start.
			s.logger.Warn("snapshot store unavailable, running in memory only",
				zap.String("path", s.cfg.Store.Path),
				zap.Error(err))
		} else {
			s.snapshots = snapshots
			if err := s.snapshots.Load(s.registry, s.store); err != nil {
				s.logger.Warn("failed to load persisted state", zap.Error(err))
			}
		}
	}

	s.logger.Info("core initialized", zap.String("provider", provider.Name()))
	return nil
}

// startHTTPServer mounts the API routes behind the middleware chain.
func (s *Server) startHTTPServer() error {
	healthHandler := handlers.NewHealthHandler(s.logger)
	if s.snapshots != nil {
		healthHandler.RegisterCheck(handlers.NewPingHealthCheck("snapshot_store", s.snapshots.Ping))
	}

	mux := handlers.Routes(
		handlers.NewAgentHandler(s.registry, s.logger),
		handlers.NewConversationHandler(s.registry, s.store, s.engine, s.analyzer, s.metricsCollector, s.logger),
		handlers.NewVisualizationHandler(s.store, s.logger),
		healthHandler,
		Version, BuildTime, GitCommit,
	)

	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel
	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
	)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// startMetricsServer exposes /metrics on its own port.
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// WaitForShutdown blocks until a termination signal, then shuts down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown stops serving and persists the final state.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	if s.snapshots != nil {
		if err := s.snapshots.Save(s.registry.List(), s.store.SnapshotAll()); err != nil {
			s.logger.Error("failed to persist final state", zap.Error(err))
		}
		if err := s.snapshots.Close(); err != nil {
			s.logger.Error("snapshot store close error", zap.Error(err))
		}
	}

	s.logger.Info("graceful shutdown completed")
}
