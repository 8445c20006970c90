package repository

import (
	"context"
	"time"

	"github.com/vedran77/lax/internal/domain"
)

// Lookups that find nothing return (nil, nil).

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel) error
	GetByID(ctx context.Context, id string) (*domain.Channel, error)
	GetByName(ctx context.Context, name string) (*domain.Channel, error)
	List(ctx context.Context) ([]domain.Channel, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Channel, error)
	Update(ctx context.Context, channel *domain.Channel) error
	// Delete removes the channel together with its memberships.
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, member *domain.ChannelMember) error
	GetMember(ctx context.Context, channelID, userID string) (*domain.ChannelMember, error)
	ListMembers(ctx context.Context, channelID string) ([]domain.ChannelMember, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	// ListByChannel returns at most limit messages newer than after, oldest
	// first. When more match, the most recent ones are kept.
	ListByChannel(ctx context.Context, channelID string, after *time.Time, limit int) ([]domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id string) error
	DeleteByChannel(ctx context.Context, channelID string) error
}
