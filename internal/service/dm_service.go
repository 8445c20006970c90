package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
)

var (
	ErrCannotDMSelf  = errors.New("cannot start a conversation with yourself")
	ErrInvalidDMName = errors.New("direct message name does not match its participants")
)

type DMService struct {
	channelRepo repository.ChannelRepository
	notifier    Notifier
	now         func() time.Time
}

func NewDMService(channelRepo repository.ChannelRepository) *DMService {
	return &DMService{
		channelRepo: channelRepo,
		notifier:    nopNotifier{},
		now:         time.Now,
	}
}

func (s *DMService) SetNotifier(n Notifier) {
	s.notifier = n
}

// GetOrCreate resolves the DM channel between two users. name must be the
// canonical name of the pair. The channel id is derived from that name, so
// both participants always land on the same channel.
func (s *DMService) GetOrCreate(ctx context.Context, name, creatorID, targetID string) (*domain.Channel, error) {
	if creatorID == targetID {
		return nil, ErrCannotDMSelf
	}
	if name != domain.DMName(creatorID, targetID) {
		return nil, ErrInvalidDMName
	}

	id := domain.DMChannelID(name)
	existing, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.now()
	ch := &domain.Channel{
		ID:        id,
		Name:      name,
		IsPrivate: true,
		Kind:      domain.ChannelKindDM,
		OwnerID:   creatorID,
		CreatedAt: now,
	}
	if err := s.channelRepo.Create(ctx, ch); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("creating dm: %w", err)
		}
		// lost a race with the other participant
		return s.channelRepo.GetByID(ctx, id)
	}

	for _, uid := range []string{creatorID, targetID} {
		member := &domain.ChannelMember{
			ChannelID: id,
			UserID:    uid,
			Role:      domain.MemberRoleMember,
			JoinedAt:  now,
		}
		if err := s.channelRepo.AddMember(ctx, member); err != nil {
			return nil, fmt.Errorf("adding dm member: %w", err)
		}
	}

	s.notifier.NotifyChannel(domain.ChannelCreated{Channel: *ch})
	return ch, nil
}
