package gemini

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
	"github.com/agentduel/agentduel/types"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Provider implements llm.Provider against the Google Gemini
// generateContent API. Gemini differs from the OpenAI-compatible
// providers in three ways: x-goog-api-key auth, a separate
// systemInstruction field, and user/model role names.
type Provider struct {
	cfg    providers.BaseConfig
	client *http.Client
	logger *zap.Logger
}

// New creates a Gemini provider.
func New(cfg providers.BaseConfig, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: providers.NewHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "llm.gemini")),
	}
}

func (p *Provider) Name() string { return "gemini" }

// GenerateTurn asks the model for the next in-character message.
func (p *Provider) GenerateTurn(ctx context.Context, req *llm.TurnRequest) (*llm.TurnResponse, error) {
	content, err := p.generate(ctx, llm.BuildChatMessages(req))
	if err != nil {
		return nil, err
	}
	return llm.ParseTurnPayload([]byte(content), p.Name())
}

// Analyze asks the model for an observer analysis of the conversation.
func (p *Provider) Analyze(ctx context.Context, req *llm.AnalysisRequest) (*llm.AnalysisResponse, error) {
	content, err := p.generate(ctx, llm.BuildAnalysisMessages(req))
	if err != nil {
		return nil, err
	}
	return llm.ParseAnalysisPayload([]byte(content), p.Name())
}

// Gemini wire types.

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user, model
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// toGeminiRequest splits system prompts into systemInstruction and maps
// the assistant role to Gemini's model role.
func toGeminiRequest(messages []llm.ChatMessage) geminiRequest {
	req := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{ResponseMimeType: "application/json"},
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			req.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: m.Content}},
			}
		case llm.RoleAssistant:
			req.Contents = append(req.Contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: m.Content}},
			})
		default:
			req.Contents = append(req.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: m.Content}},
			})
		}
	}
	return req
}

func (p *Provider) generate(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	payload, err := json.Marshal(toGeminiRequest(messages))
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("generate round trip failed", zap.Error(err))
		return "", providers.MapTransportError(err, p.Name())
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		p.logger.Warn("generate rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return "", providers.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var genResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", providers.MapTransportError(err, p.Name())
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", &types.Error{
			Code:       types.ErrUpstreamError,
			Message:    "response contains no candidates",
			HTTPStatus: http.StatusBadGateway,
			Provider:   p.Name(),
		}
	}

	var text strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
