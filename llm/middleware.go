package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/types"
)

// Observer receives the outcome of every provider call. The metrics
// collector plugs in here.
type Observer func(provider, operation string, duration time.Duration, err error)

// InstrumentedProvider wraps a Provider with structured logging and an
// optional observer callback per call.
type InstrumentedProvider struct {
	inner    Provider
	logger   *zap.Logger
	observer Observer
}

// Instrument wraps p. A nil observer disables the callback.
func Instrument(p Provider, logger *zap.Logger, observer Observer) *InstrumentedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProvider{
		inner:    p,
		logger:   logger.With(zap.String("component", "llm"), zap.String("provider", p.Name())),
		observer: observer,
	}
}

func (p *InstrumentedProvider) Name() string { return p.inner.Name() }

func (p *InstrumentedProvider) GenerateTurn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	start := time.Now()
	resp, err := p.inner.GenerateTurn(ctx, req)
	p.report("generate_turn", start, err)
	return resp, err
}

func (p *InstrumentedProvider) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResponse, error) {
	start := time.Now()
	resp, err := p.inner.Analyze(ctx, req)
	p.report("analyze", start, err)
	return resp, err
}

func (p *InstrumentedProvider) report(operation string, start time.Time, err error) {
	duration := time.Since(start)
	if err != nil {
		p.logger.Warn("model call failed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.String("code", string(types.GetErrorCode(err))),
			zap.Error(err))
	} else {
		p.logger.Debug("model call completed",
			zap.String("operation", operation),
			zap.Duration("duration", duration))
	}
	if p.observer != nil {
		p.observer(p.inner.Name(), operation, duration, err)
	}
}
