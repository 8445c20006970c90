package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRPC("sendMessage", "success", 20*time.Millisecond)
	m.ObserveRPC("sendMessage", "success", 10*time.Millisecond)
	m.ObserveRPC("sendMessage", "error", time.Millisecond)
	m.ObserveHTTP(http.StatusTooManyRequests)
	m.WSConnected()
	m.WSConnected()
	m.WSDisconnected()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("sendMessage", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("sendMessage", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpStatus.WithLabelValues("429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsClients))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lax_rpc_requests_total")
	assert.Contains(t, rec.Body.String(), "lax_ws_clients 1")
}
