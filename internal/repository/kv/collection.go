package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vedran77/lax/internal/domain"
)

// DB groups the four collections over one BlobStore. Repositories built
// from the same DB share its locks.
type DB struct {
	store       BlobStore
	users       *collection[domain.User]
	channels    *collection[domain.Channel]
	memberships *collection[domain.ChannelMember]
	messages    *collection[domain.Message]
}

func NewDB(store BlobStore) *DB {
	return &DB{
		store:       store,
		users:       newCollection[domain.User](store, UsersKey),
		channels:    newCollection[domain.Channel](store, ChannelsKey),
		memberships: newCollection[domain.ChannelMember](store, MembershipsKey),
		messages:    newCollection[domain.Message](store, MessagesKey),
	}
}

func (db *DB) Close() error {
	return db.store.Close()
}

// collection is a JSON array of T stored under one key. Mutations are a
// read-modify-write of the whole array under the collection's lock.
type collection[T any] struct {
	mu    sync.Mutex
	store BlobStore
	key   string
}

func newCollection[T any](store BlobStore, key string) *collection[T] {
	return &collection[T]{store: store, key: key}
}

func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return items, nil
}

func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// find returns a copy of the first item matching pred, or nil.
func (c *collection[T]) find(ctx context.Context, pred func(T) bool) (*T, error) {
	items, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if pred(it) {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

// update applies fn to the current items and persists the result.
func (c *collection[T]) update(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}

func removeWhere[T any](items []T, pred func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if !pred(it) {
			out = append(out, it)
		}
	}
	return out
}
