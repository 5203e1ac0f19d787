package metrics

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.modelCallsTotal)
	assert.NotNil(t, collector.turnsTotal)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("POST", "/api/conversations/", 200, 25*time.Millisecond)
	collector.RecordHTTPRequest("POST", "/api/conversations/", 404, 5*time.Millisecond)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/api/conversations/", "2xx")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/api/conversations/", "4xx")))
}

func TestCollector_RecordModelCall(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordModelCall("openai", "generate_turn", time.Second, nil)
	collector.RecordModelCall("openai", "generate_turn", time.Second, errors.New("down"))

	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.modelCallsTotal.WithLabelValues("openai", "generate_turn", "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.modelCallsTotal.WithLabelValues("openai", "generate_turn", "error")))
}

func TestCollector_RecordTurn(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordTurn("ai")
	collector.RecordTurn("ai")
	collector.RecordTurn("user")

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.turnsTotal.WithLabelValues("ai")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.turnsTotal.WithLabelValues("user")))
}

func TestCollector_Counters(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordBranchSwitch()
	collector.RecordConversationCreated()
	collector.RecordConversationCreated()

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.branchesTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.conversationsTotal))
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.code), "code %d", tt.code)
	}
}
