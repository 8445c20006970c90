package kv

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// PebbleStore persists blobs in a pebble database on disk.
type PebbleStore struct {
	db  *pebble.DB
	log *zap.Logger
}

func OpenPebble(path string, log *zap.Logger) (*PebbleStore, error) {
	log.Info("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		log.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	log.Info("pebble_opened", zap.String("path", path))
	return &PebbleStore{db: db, log: log}, nil
}

func (s *PebbleStore) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *PebbleStore) Set(_ context.Context, key string, value []byte) error {
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		s.log.Error("pebble_set_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *PebbleStore) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	s.log.Info("pebble_closed")
	return nil
}
