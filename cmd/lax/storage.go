package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/backend/remote"
	"github.com/vedran77/lax/internal/config"
	"github.com/vedran77/lax/internal/database"
	"github.com/vedran77/lax/internal/repository"
	"github.com/vedran77/lax/internal/repository/kv"
	postgresrepo "github.com/vedran77/lax/internal/repository/postgres"
	"github.com/vedran77/lax/internal/service"
)

type storage struct {
	users    repository.UserRepository
	channels repository.ChannelRepository
	messages repository.MessageRepository
	close    func()
}

func openStorage(ctx context.Context, sc config.Storage) (*storage, error) {
	switch sc.Driver {
	case config.StorageMemory:
		logger.Info("storage_opened", zap.String("driver", sc.Driver))
		return kvStorage(kv.NewDB(kv.NewMemoryStore())), nil

	case config.StoragePebble:
		store, err := kv.OpenPebble(sc.PebblePath, logger)
		if err != nil {
			return nil, err
		}
		return kvStorage(kv.NewDB(store)), nil

	case config.StoragePostgres:
		pool, err := database.Connect(ctx, sc.Postgres)
		if err != nil {
			return nil, err
		}
		logger.Info("storage_opened", zap.String("driver", sc.Driver), zap.String("host", sc.Postgres.Host))
		return &storage{
			users:    postgresrepo.NewUserRepo(pool),
			channels: postgresrepo.NewChannelRepo(pool),
			messages: postgresrepo.NewMessageRepo(pool),
			close:    pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

func kvStorage(db *kv.DB) *storage {
	return &storage{
		users:    kv.NewUserRepo(db),
		channels: kv.NewChannelRepo(db),
		messages: kv.NewMessageRepo(db),
		close: func() {
			if err := db.Close(); err != nil {
				logger.Warn("storage_close_failed", zap.Error(err))
			}
		},
	}
}

// openBackend returns the remote backend when a remote URL is configured
// and an in-process one over the configured storage otherwise. n receives
// service events of the in-process backend and may be nil.
func openBackend(ctx context.Context, n service.Notifier) (backend.Backend, func(), error) {
	if cfg.Client.RemoteURL != "" {
		c := remote.New(cfg.Client.RemoteURL,
			remote.WithToken(cfg.Client.Token),
			remote.WithRetry(cfg.Client.RetryBase, cfg.Client.MaxAttempts),
			remote.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
			remote.WithLogger(logger),
		)
		return c, func() {}, nil
	}

	st, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	local := backend.NewLocalFromRepos(st.users, st.channels, st.messages, n)
	if err := seed(ctx, local); err != nil {
		st.close()
		return nil, nil, fmt.Errorf("seed: %w", err)
	}
	return local, st.close, nil
}

func seed(ctx context.Context, local *backend.Local) error {
	if cfg.Storage.SeedDemo {
		return local.SeedDemo(ctx)
	}
	return local.Seed(ctx)
}
