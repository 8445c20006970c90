package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/metrics"
	"github.com/vedran77/lax/internal/service"
	httptransport "github.com/vedran77/lax/internal/transport/http"
	"github.com/vedran77/lax/internal/transport/http/middleware"
	"github.com/vedran77/lax/internal/transport/ws"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat backend over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New()
	hub := ws.NewHub(m, logger)

	local := backend.NewLocalFromRepos(st.users, st.channels, st.messages, ws.NewHubNotifier(hub))

	var (
		verifier   middleware.TokenVerifier
		wsVerifier ws.TokenVerifier
	)
	if cfg.Server.AuthSecret != "" {
		auth := service.NewAuthService(cfg.Server.AuthSecret)
		verifier, wsVerifier = auth, auth
	} else {
		logger.Warn("auth_disabled", zap.String("hint", "set LAX_AUTH_SECRET to require bearer tokens"))
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Backend:   local,
		Metrics:   m,
		Log:       logger,
		Verifier:  verifier,
		RateRPS:   cfg.Server.RateRPS,
		RateBurst: cfg.Server.RateBurst,
		WS:        ws.ServeWS(hub, wsVerifier),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := seed(gctx, local); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("server_listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server_shutting_down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server_error", zap.Error(err))
		return err
	}
	return nil
}
