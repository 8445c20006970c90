package backend

import (
	"context"
	"time"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
	"github.com/vedran77/lax/internal/service"
)

var _ Backend = (*Local)(nil)

// Local serves the backend contract in process, straight from the services.
type Local struct {
	channels *service.ChannelService
	dms      *service.DMService
	messages *service.MessageService
	users    *service.UserService
}

func NewLocal(channels *service.ChannelService, dms *service.DMService, messages *service.MessageService, users *service.UserService) *Local {
	return &Local{
		channels: channels,
		dms:      dms,
		messages: messages,
		users:    users,
	}
}

// NewLocalFromRepos builds the services over the given repositories and
// wires n into every one of them. n may be nil.
func NewLocalFromRepos(users repository.UserRepository, channels repository.ChannelRepository, messages repository.MessageRepository, n service.Notifier) *Local {
	channelSvc := service.NewChannelService(channels, messages)
	dmSvc := service.NewDMService(channels)
	messageSvc := service.NewMessageService(messages, channels)
	userSvc := service.NewUserService(users, channelSvc)
	if n != nil {
		channelSvc.SetNotifier(n)
		dmSvc.SetNotifier(n)
		messageSvc.SetNotifier(n)
	}
	return NewLocal(channelSvc, dmSvc, messageSvc, userSvc)
}

// Seed creates the default channels.
func (l *Local) Seed(ctx context.Context) error {
	_, err := l.channels.EnsureDefaults(ctx)
	return err
}

// SeedDemo creates the default channels and the demo users.
func (l *Local) SeedDemo(ctx context.Context) error {
	if err := l.Seed(ctx); err != nil {
		return err
	}
	return l.users.SeedDemo(ctx)
}

func (l *Local) GetChannels(ctx context.Context, userID string) ([]domain.Channel, error) {
	return nonNil(l.channels.ListForUser(ctx, userID))
}

func (l *Local) GetBrowsableChannels(ctx context.Context, userID string) ([]domain.Channel, error) {
	return nonNil(l.channels.ListBrowsable(ctx, userID))
}

func (l *Local) CreateChannel(ctx context.Context, name string, isPrivate bool, creatorID string) (*domain.Channel, error) {
	return l.channels.Create(ctx, name, isPrivate, creatorID)
}

func (l *Local) UpdateChannel(ctx context.Context, channelID, name string, isPrivate bool) (*domain.Channel, error) {
	return l.channels.Update(ctx, channelID, name, isPrivate)
}

func (l *Local) DeleteChannel(ctx context.Context, channelID string) error {
	return l.channels.Delete(ctx, channelID)
}

func (l *Local) CreateDM(ctx context.Context, name, creatorID, targetID string) (*domain.Channel, error) {
	return l.dms.GetOrCreate(ctx, name, creatorID, targetID)
}

func (l *Local) JoinChannel(ctx context.Context, channelID, userID string) error {
	return l.channels.Join(ctx, channelID, userID)
}

func (l *Local) GetMessages(ctx context.Context, channelID string, afterTS *time.Time, limit int) ([]domain.Message, error) {
	return l.messages.List(ctx, channelID, afterTS, limit)
}

func (l *Local) SendMessage(ctx context.Context, channelID, userID, body string) (*domain.Message, error) {
	return l.messages.Send(ctx, channelID, userID, body)
}

func (l *Local) EditMessage(ctx context.Context, messageID, body string) error {
	_, err := l.messages.Edit(ctx, messageID, body)
	return err
}

func (l *Local) DeleteMessage(ctx context.Context, messageID string) error {
	return l.messages.Delete(ctx, messageID)
}

func (l *Local) GetUsers(ctx context.Context) ([]domain.User, error) {
	return l.users.List(ctx)
}

func (l *Local) CreateUser(ctx context.Context, email, displayName string) (*domain.User, error) {
	return l.users.Create(ctx, email, displayName)
}

func nonNil(channels []domain.Channel, err error) ([]domain.Channel, error) {
	if err != nil {
		return nil, err
	}
	if channels == nil {
		channels = []domain.Channel{}
	}
	return channels, nil
}
