package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/llm/providers"
)

const defaultBaseURL = "https://api.openai.com"

// Provider implements llm.Provider against the OpenAI Chat Completions
// API. Responses are requested with response_format json_object so the
// model replies with the structured turn payload.
type Provider struct {
	name    string
	cfg     providers.BaseConfig
	client  *http.Client
	logger  *zap.Logger
	headers func(*http.Request, string)
}

// New creates an OpenAI provider.
func New(cfg providers.BaseConfig, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		name:    "openai",
		cfg:     cfg,
		client:  providers.NewHTTPClient(cfg.Timeout),
		logger:  logger.With(zap.String("component", "llm.openai")),
		headers: providers.BearerTokenHeaders,
	}
}

// NewCompatible creates a provider speaking the same wire protocol
// against a different endpoint. Used by the mistral provider.
func NewCompatible(name string, cfg providers.BaseConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := New(cfg, logger)
	p.name = name
	p.logger = logger.With(zap.String("component", "llm."+name))
	return p
}

func (p *Provider) Name() string { return p.name }

// GenerateTurn asks the model for the next in-character message.
func (p *Provider) GenerateTurn(ctx context.Context, req *llm.TurnRequest) (*llm.TurnResponse, error) {
	content, err := p.complete(ctx, llm.BuildChatMessages(req))
	if err != nil {
		return nil, err
	}
	return llm.ParseTurnPayload([]byte(content), p.name)
}

// Analyze asks the model for an observer analysis of the conversation.
func (p *Provider) Analyze(ctx context.Context, req *llm.AnalysisRequest) (*llm.AnalysisResponse, error) {
	content, err := p.complete(ctx, llm.BuildAnalysisMessages(req))
	if err != nil {
		return nil, err
	}
	return llm.ParseAnalysisPayload([]byte(content), p.name)
}

// complete performs one chat completion round trip and returns the
// assistant text of the first choice.
func (p *Provider) complete(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	body := providers.ChatCompletionRequest{
		Model:          p.cfg.Model,
		Messages:       providers.ConvertMessages(messages),
		ResponseFormat: &providers.ResponseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	p.headers(httpReq, p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("chat completion round trip failed", zap.Error(err))
		return "", providers.MapTransportError(err, p.name)
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		p.logger.Warn("chat completion rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return "", providers.MapHTTPError(resp.StatusCode, msg, p.name)
	}

	var chatResp providers.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", providers.MapTransportError(err, p.name)
	}

	return providers.FirstChoiceContent(&chatResp, p.name)
}
