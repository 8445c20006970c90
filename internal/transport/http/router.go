// Package httptransport assembles the HTTP surface of the server.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/metrics"
	"github.com/vedran77/lax/internal/transport/http/handlers"
	"github.com/vedran77/lax/internal/transport/http/middleware"
)

type RouterConfig struct {
	Backend backend.Backend
	Metrics *metrics.Metrics
	Log     *zap.Logger
	// Verifier enables bearer auth on /rpc when set.
	Verifier  middleware.TokenVerifier
	RateRPS   float64
	RateBurst int
	// WS serves /ws when set.
	WS http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	var (
		statusObs middleware.StatusObserver
		rpcObs    handlers.RPCObserver
	)
	if cfg.Metrics != nil {
		statusObs, rpcObs = cfg.Metrics, cfg.Metrics
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(cfg.Log, statusObs))
	r.Use(middleware.RateLimit(cfg.RateRPS, cfg.RateBurst, cfg.Log))

	r.Get("/health", handlers.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	rpcHandler := handlers.NewRPCHandler(cfg.Backend, rpcObs, cfg.Log)
	r.Group(func(r chi.Router) {
		if cfg.Verifier != nil {
			r.Use(middleware.Auth(cfg.Verifier))
		}
		r.Method(http.MethodPost, "/rpc", rpcHandler)
	})

	if cfg.WS != nil {
		r.Method(http.MethodGet, "/ws", cfg.WS)
	}

	return r
}
