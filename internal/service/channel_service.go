package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
	"github.com/vedran77/lax/pkg/validator"
)

var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrChannelNameTaken   = errors.New("channel name already exists")
	ErrInvalidChannelName = errors.New("invalid channel name")
	ErrNotChannelMember   = errors.New("user is not a member of this channel")
	ErrDMImmutable        = errors.New("direct message channels cannot be changed")
	ErrNotJoinable        = errors.New("direct message channels cannot be joined")
)

type DefaultChannel struct {
	Name    string
	Private bool
}

// DefaultChannels are created on first start, owned by the system user.
var DefaultChannels = []DefaultChannel{
	{Name: domain.DefaultChannelName},
	{Name: "random"},
	{Name: "operations", Private: true},
}

type ChannelService struct {
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository
	notifier    Notifier
	now         func() time.Time
}

func NewChannelService(channelRepo repository.ChannelRepository, messageRepo repository.MessageRepository) *ChannelService {
	return &ChannelService{
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		notifier:    nopNotifier{},
		now:         time.Now,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ChannelService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ListForUser returns the channels the user belongs to, oldest first.
func (s *ChannelService) ListForUser(ctx context.Context, userID string) ([]domain.Channel, error) {
	return s.channelRepo.ListByUser(ctx, userID)
}

// ListBrowsable returns the public group channels the user has not joined.
func (s *ChannelService) ListBrowsable(ctx context.Context, userID string) ([]domain.Channel, error) {
	all, err := s.channelRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	joined, err := s.channelRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	member := make(map[string]struct{}, len(joined))
	for _, c := range joined {
		member[c.ID] = struct{}{}
	}

	out := make([]domain.Channel, 0, len(all))
	for _, c := range all {
		if c.IsPrivate || c.IsDM() {
			continue
		}
		if _, ok := member[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *ChannelService) GetByID(ctx context.Context, channelID string) (*domain.Channel, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

func (s *ChannelService) Create(ctx context.Context, name string, isPrivate bool, creatorID string) (*domain.Channel, error) {
	slug, err := channelSlug(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.channelRepo.GetByName(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrChannelNameTaken
	}

	now := s.now()
	ch := &domain.Channel{
		ID:        domain.NewID(),
		Name:      slug,
		IsPrivate: isPrivate,
		Kind:      domain.ChannelKindGroup,
		OwnerID:   creatorID,
		CreatedAt: now,
	}
	if err := s.channelRepo.Create(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrChannelNameTaken
		}
		return nil, fmt.Errorf("creating channel: %w", err)
	}

	cm := &domain.ChannelMember{
		ChannelID: ch.ID,
		UserID:    creatorID,
		Role:      domain.MemberRoleOwner,
		JoinedAt:  now,
	}
	if err := s.channelRepo.AddMember(ctx, cm); err != nil {
		return nil, fmt.Errorf("adding creator as member: %w", err)
	}

	s.notifier.NotifyChannel(domain.ChannelCreated{Channel: *ch})
	return ch, nil
}

func (s *ChannelService) Update(ctx context.Context, channelID, name string, isPrivate bool) (*domain.Channel, error) {
	ch, err := s.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch.IsDM() {
		return nil, ErrDMImmutable
	}

	slug, err := channelSlug(name)
	if err != nil {
		return nil, err
	}

	ch.Name = slug
	ch.IsPrivate = isPrivate
	if err := s.channelRepo.Update(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrChannelNameTaken
		}
		return nil, fmt.Errorf("updating channel: %w", err)
	}

	s.notifier.NotifyChannel(domain.ChannelUpdated{Channel: *ch})
	return ch, nil
}

// Delete removes the channel with its memberships and messages.
func (s *ChannelService) Delete(ctx context.Context, channelID string) error {
	if _, err := s.GetByID(ctx, channelID); err != nil {
		return err
	}

	if err := s.messageRepo.DeleteByChannel(ctx, channelID); err != nil {
		return fmt.Errorf("deleting channel messages: %w", err)
	}
	if err := s.channelRepo.Delete(ctx, channelID); err != nil {
		return fmt.Errorf("deleting channel: %w", err)
	}

	s.notifier.NotifyChannel(domain.ChannelDeleted{ID: channelID})
	return nil
}

// Join adds the user to a group channel. Knowing the id of a private
// channel is enough to join it. Joining twice is a no-op.
func (s *ChannelService) Join(ctx context.Context, channelID, userID string) error {
	ch, err := s.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.IsDM() {
		return ErrNotJoinable
	}

	existing, err := s.channelRepo.GetMember(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	member := &domain.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		Role:      domain.MemberRoleMember,
		JoinedAt:  s.now(),
	}
	if err := s.channelRepo.AddMember(ctx, member); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}

	s.notifier.NotifyChannel(domain.ChannelNeedsRefresh{ID: channelID})
	return nil
}

func (s *ChannelService) IsMember(ctx context.Context, channelID, userID string) (bool, error) {
	m, err := s.channelRepo.GetMember(ctx, channelID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// EnsureDefaults creates the default channels that do not exist yet
// and returns the default channel.
func (s *ChannelService) EnsureDefaults(ctx context.Context) (*domain.Channel, error) {
	var general *domain.Channel
	for _, dc := range DefaultChannels {
		name := dc.Name
		ch, err := s.channelRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			ch, err = s.Create(ctx, name, dc.Private, domain.SystemUserID)
			if errors.Is(err, ErrChannelNameTaken) {
				ch, err = s.channelRepo.GetByName(ctx, name)
			}
			if err != nil {
				return nil, fmt.Errorf("seeding #%s: %w", name, err)
			}
		}
		if name == domain.DefaultChannelName {
			general = ch
		}
	}
	return general, nil
}

func channelSlug(name string) (string, error) {
	slug := validator.Slugify(name)
	if errs := validator.ValidateChannelName(slug); errs.HasErrors() {
		return "", fmt.Errorf("%w: %s", ErrInvalidChannelName, errs.First("name"))
	}
	return slug, nil
}
