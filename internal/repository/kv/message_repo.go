package kv

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.messages.update(ctx, func(messages []domain.Message) ([]domain.Message, error) {
		return append(messages, *msg), nil
	})
}

func (r *MessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	return r.db.messages.find(ctx, func(m domain.Message) bool { return m.ID == id })
}

func (r *MessageRepo) ListByChannel(ctx context.Context, channelID string, after *time.Time, limit int) ([]domain.Message, error) {
	messages, err := r.db.messages.all(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Message
	for _, m := range messages {
		if m.ChannelID != channelID {
			continue
		}
		if after != nil && !m.CreatedAt.After(*after) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	return r.db.messages.update(ctx, func(messages []domain.Message) ([]domain.Message, error) {
		for i := range messages {
			if messages[i].ID == msg.ID {
				messages[i] = *msg
				return messages, nil
			}
		}
		return nil, fmt.Errorf("message %s not found", msg.ID)
	})
}

func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	return r.db.messages.update(ctx, func(messages []domain.Message) ([]domain.Message, error) {
		return removeWhere(messages, func(m domain.Message) bool { return m.ID == id }), nil
	})
}

func (r *MessageRepo) DeleteByChannel(ctx context.Context, channelID string) error {
	return r.db.messages.update(ctx, func(messages []domain.Message) ([]domain.Message, error) {
		return removeWhere(messages, func(m domain.Message) bool { return m.ChannelID == channelID }), nil
	})
}
