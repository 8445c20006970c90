// Package backend defines the operations a chat client needs from the
// server side, independent of where they run.
package backend

import (
	"context"
	"time"

	"github.com/vedran77/lax/internal/domain"
)

//go:generate mockgen -destination=../chat/mock_backend_test.go -package=chat -source=backend.go
//go:generate mockgen -destination=../transport/http/handlers/mock_backend_test.go -package=handlers -source=backend.go

type Backend interface {
	GetChannels(ctx context.Context, userID string) ([]domain.Channel, error)
	GetBrowsableChannels(ctx context.Context, userID string) ([]domain.Channel, error)
	CreateChannel(ctx context.Context, name string, isPrivate bool, creatorID string) (*domain.Channel, error)
	UpdateChannel(ctx context.Context, channelID, name string, isPrivate bool) (*domain.Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	CreateDM(ctx context.Context, name, creatorID, targetID string) (*domain.Channel, error)
	JoinChannel(ctx context.Context, channelID, userID string) error

	GetMessages(ctx context.Context, channelID string, afterTS *time.Time, limit int) ([]domain.Message, error)
	SendMessage(ctx context.Context, channelID, userID, body string) (*domain.Message, error)
	EditMessage(ctx context.Context, messageID, body string) error
	DeleteMessage(ctx context.Context, messageID string) error

	GetUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, email, displayName string) (*domain.User, error)
}

// DMName returns the canonical name of the direct-message channel between
// two users, identical for either argument order.
func DMName(userA, userB string) string {
	return domain.DMName(userA, userB)
}
