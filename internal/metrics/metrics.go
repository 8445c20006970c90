// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	httpStatus  *prometheus.CounterVec
	wsClients   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lax_rpc_requests_total",
				Help: "RPC requests by action and envelope status.",
			},
			[]string{"action", "status"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lax_rpc_request_duration_seconds",
				Help:    "RPC handling latency by action.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		httpStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lax_http_requests_total",
				Help: "HTTP responses by status code.",
			},
			[]string{"code"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lax_ws_clients",
				Help: "Connected websocket clients.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.rpcRequests,
		m.rpcDuration,
		m.httpStatus,
		m.wsClients,
	)
	return m
}

func (m *Metrics) ObserveRPC(action, status string, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(action, status).Inc()
	m.rpcDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(code int) {
	m.httpStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) WSConnected()    { m.wsClients.Inc() }
func (m *Metrics) WSDisconnected() { m.wsClients.Dec() }

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
