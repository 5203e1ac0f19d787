package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/llm/providers"
	"github.com/agentduel/agentduel/types"
)

func turnRequest() *llm.TurnRequest {
	return &llm.TurnRequest{
		GeneralSetting:   "office",
		SpecificScenario: "budget dispute",
		Speaker:          &types.AgentConfig{ID: "a-1", Name: "Alice", PersonalityTraits: "direct"},
		Other:            &types.AgentConfig{ID: "a-2", Name: "Bob", PersonalityTraits: "cautious"},
		IsAgentA:         true,
	}
}

func TestProvider_Name(t *testing.T) {
	p := New(providers.BaseConfig{}, zap.NewNop())
	assert.Equal(t, "openai", p.Name())
}

func TestNewCompatible_NilLogger(t *testing.T) {
	require.NotPanics(t, func() {
		p := NewCompatible("custom", providers.BaseConfig{APIKey: "k", Model: "m"}, nil)
		assert.Equal(t, "custom", p.Name())
	})
}

func TestProvider_GenerateTurn(t *testing.T) {
	var gotReq providers.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := providers.ChatCompletionResponse{
			Choices: []providers.ChatCompletionChoice{
				{Message: providers.ChatCompletionMessage{
					Role:    "assistant",
					Content: `{"msg":"That budget is non-negotiable.","mood":"frustrated"}`,
				}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := New(providers.BaseConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o",
		Timeout: 5 * time.Second,
	}, zap.NewNop())

	resp, err := p.GenerateTurn(context.Background(), turnRequest())
	require.NoError(t, err)
	assert.Equal(t, "That budget is non-negotiable.", resp.Text)
	assert.Equal(t, types.MoodFrustrated, resp.Mood)

	assert.Equal(t, "gpt-4o", gotReq.Model)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	require.NotEmpty(t, gotReq.Messages)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
}

func TestProvider_GenerateTurn_UpstreamOutage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := New(providers.BaseConfig{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"}, zap.NewNop())

	_, err := p.GenerateTurn(context.Background(), turnRequest())
	require.Error(t, err)
	assert.Equal(t, types.ErrModelUnavailable, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestProvider_GenerateTurn_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	p := New(providers.BaseConfig{APIKey: "bad", BaseURL: server.URL, Model: "gpt-4o"}, zap.NewNop())

	_, err := p.GenerateTurn(context.Background(), turnRequest())
	require.Error(t, err)
	assert.Equal(t, types.ErrUnauthorized, types.GetErrorCode(err))
	assert.False(t, types.IsRetryable(err))
}

func TestProvider_GenerateTurn_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The request body must be drained before the server starts the
		// background read that detects client disconnects; without this
		// r.Context() is never canceled and Close hangs forever.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	p := New(providers.BaseConfig{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.GenerateTurn(ctx, turnRequest())
	require.Error(t, err)
}

func TestProvider_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := providers.ChatCompletionResponse{
			Choices: []providers.ChatCompletionChoice{
				{Message: providers.ChatCompletionMessage{
					Role:    "assistant",
					Content: `{"summary":"escalating","suggestions":["take a break"],"markdown":"# Analysis"}`,
				}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := New(providers.BaseConfig{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"}, zap.NewNop())

	resp, err := p.Analyze(context.Background(), &llm.AnalysisRequest{
		GeneralSetting:   "office",
		SpecificScenario: "budget dispute",
		AgentA:           &types.AgentConfig{ID: "a-1", Name: "Alice"},
		AgentB:           &types.AgentConfig{ID: "a-2", Name: "Bob"},
		Transcript:       []*types.Message{{AgentID: "a-1", Text: "hello", Mood: types.MoodNeutral}},
	})
	require.NoError(t, err)
	assert.Equal(t, "escalating", resp.Summary)
	assert.Equal(t, []string{"take a break"}, resp.Suggestions)
}
