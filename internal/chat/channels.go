package chat

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/domain"
)

// ChannelList keeps the channels a user belongs to in sync with channel
// events.
type ChannelList struct {
	backend backend.Backend
	userID  string
	log     *zap.Logger

	mu       sync.Mutex
	channels []domain.Channel
	onChange func([]domain.Channel)
}

func NewChannelList(b backend.Backend, userID string, log *zap.Logger) *ChannelList {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChannelList{backend: b, userID: userID, log: log}
}

func (l *ChannelList) OnChange(fn func([]domain.Channel)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// Channels returns a copy of the current list.
func (l *ChannelList) Channels() []domain.Channel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.channels)
}

// Load replaces the list with the backend's.
func (l *ChannelList) Load(ctx context.Context) error {
	channels, err := l.backend.GetChannels(ctx, l.userID)
	if err != nil {
		l.log.Warn("channels_load_failed", zap.String("user_id", l.userID), zap.Error(err))
		return err
	}
	l.mu.Lock()
	l.channels = channels
	l.unlockAndNotify()
	return nil
}

// Apply folds one event into the list. NeedsRefresh reloads the whole
// list from the backend.
func (l *ChannelList) Apply(ctx context.Context, evt domain.ChannelEvent) error {
	switch e := evt.(type) {
	case domain.ChannelNeedsRefresh:
		return l.Load(ctx)

	case domain.ChannelCreated:
		l.mu.Lock()
		if l.index(e.Channel.ID) >= 0 {
			l.mu.Unlock()
			return nil
		}
		l.channels = append(slices.Clone(l.channels), e.Channel)

	case domain.ChannelUpdated:
		l.mu.Lock()
		i := l.index(e.Channel.ID)
		if i < 0 {
			l.mu.Unlock()
			return nil
		}
		l.channels = slices.Clone(l.channels)
		l.channels[i] = e.Channel

	case domain.ChannelDeleted:
		l.mu.Lock()
		i := l.index(e.ID)
		if i < 0 {
			l.mu.Unlock()
			return nil
		}
		l.channels = slices.Delete(slices.Clone(l.channels), i, i+1)

	default:
		return nil
	}
	l.unlockAndNotify()
	return nil
}

func (l *ChannelList) index(id string) int {
	return slices.IndexFunc(l.channels, func(c domain.Channel) bool { return c.ID == id })
}

func (l *ChannelList) unlockAndNotify() {
	fn := l.onChange
	snapshot := slices.Clone(l.channels)
	l.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// ChannelTitle is the name shown for ch to user me. A DM is titled with
// the other participant's display name when it is known.
func ChannelTitle(ch domain.Channel, me string, users []domain.User) string {
	if !ch.IsDM() {
		return "#" + ch.Name
	}
	a, b, ok := domain.DMParticipants(ch.Name)
	if !ok {
		return ch.Name
	}
	other := a
	if a == me {
		other = b
	}
	for _, u := range users {
		if u.ID == other {
			return u.DisplayName
		}
	}
	return ch.Name
}
