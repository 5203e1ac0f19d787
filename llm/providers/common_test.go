package providers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentduel/agentduel/types"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		msg       string
		wantCode  types.ErrorCode
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, "bad key", types.ErrUnauthorized, false},
		{"forbidden", http.StatusForbidden, "denied", types.ErrUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, "slow down", types.ErrRateLimited, true},
		{"quota keyword", http.StatusBadRequest, "monthly quota exceeded", types.ErrQuotaExceeded, false},
		{"credit keyword", http.StatusBadRequest, "insufficient credit", types.ErrQuotaExceeded, false},
		{"plain bad request", http.StatusBadRequest, "missing field", types.ErrInvalidRequest, false},
		{"service unavailable", http.StatusServiceUnavailable, "down", types.ErrModelUnavailable, true},
		{"bad gateway", http.StatusBadGateway, "down", types.ErrModelUnavailable, true},
		{"gateway timeout", http.StatusGatewayTimeout, "slow", types.ErrModelUnavailable, true},
		{"overloaded", 529, "overloaded", types.ErrModelUnavailable, true},
		{"other 5xx", http.StatusInternalServerError, "boom", types.ErrUpstreamError, true},
		{"other 4xx", http.StatusTeapot, "teapot", types.ErrUpstreamError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(tt.status, tt.msg, "openai")
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.status, err.HTTPStatus)
			assert.Equal(t, "openai", err.Provider)
		})
	}
}

func TestReadErrorMessage(t *testing.T) {
	t.Run("json envelope", func(t *testing.T) {
		body := strings.NewReader(`{"error":{"message":"invalid model","type":"invalid_request_error"}}`)
		assert.Equal(t, "invalid model (type: invalid_request_error)", ReadErrorMessage(body))
	})

	t.Run("message only", func(t *testing.T) {
		body := strings.NewReader(`{"error":{"message":"nope"}}`)
		assert.Equal(t, "nope", ReadErrorMessage(body))
	})

	t.Run("raw text fallback", func(t *testing.T) {
		assert.Equal(t, "gateway exploded", ReadErrorMessage(strings.NewReader("gateway exploded")))
	})
}

func TestFirstChoiceContent(t *testing.T) {
	resp := &ChatCompletionResponse{
		Choices: []ChatCompletionChoice{
			{Message: ChatCompletionMessage{Role: "assistant", Content: "hi"}},
		},
	}
	content, err := FirstChoiceContent(resp, "openai")
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	_, err = FirstChoiceContent(&ChatCompletionResponse{}, "openai")
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
}
