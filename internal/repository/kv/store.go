// Package kv stores every collection as one JSON array under a single key
// of a BlobStore, the same shape the hosted mock backend keeps in its
// script properties.
package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by BlobStore.Get for a key that was never set.
var ErrNotFound = errors.New("kv: key not found")

const (
	UsersKey       = "lax_users"
	ChannelsKey    = "lax_channels"
	MembershipsKey = "lax_memberships"
	MessagesKey    = "lax_messages"
)

type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
