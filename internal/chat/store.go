// Package chat keeps the client-side view of a channel: messages the
// backend has confirmed plus messages still being sent.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/format"
)

// GroupWindow is the largest gap between two messages of one author that
// still renders them as a single group.
const GroupWindow = 5 * time.Minute

var (
	ErrEmptyBody      = errors.New("message body is empty")
	ErrSendInFlight   = errors.New("a send is already in flight")
	ErrNoChannel      = errors.New("no channel selected")
	ErrPollInFlight   = errors.New("a poll is already in flight")
	ErrUnknownMessage = errors.New("message is not in the current view")
)

// Notifier surfaces errors to the user.
type Notifier interface {
	Notify(op string, err error)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, error) {}

// Entry is one row of the display list.
type Entry struct {
	Message    domain.Message
	Pending    bool
	Sequential bool
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithHistoryLimit sets how many messages each poll fetches.
func WithHistoryLimit(limit int) Option {
	return func(s *Store) { s.limit = limit }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds the messages of the active channel for one user.
//
// confirmed is replaced wholesale by polls; pending only changes through
// Send. Every response is tagged with the generation it was issued in and
// dropped if the channel was switched meanwhile.
type Store struct {
	backend  backend.Backend
	userID   string
	limit    int
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	channelID  string
	gen        uint64
	pollingGen uint64
	sending    bool
	// sendBase holds the confirmed ids present when the in-flight send
	// started.
	sendBase  map[string]struct{}
	confirmed []domain.Message
	pending   []domain.Message
	onChange  func([]Entry)
}

func NewStore(b backend.Backend, userID string, opts ...Option) *Store {
	s := &Store{
		backend:  b,
		userID:   userID,
		limit:    100,
		notifier: nopNotifier{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive the display list after every change.
func (s *Store) OnChange(fn func([]Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Store) ChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

// Switch makes channelID the active channel and fetches its history.
func (s *Store) Switch(ctx context.Context, channelID string) error {
	s.mu.Lock()
	s.gen++
	s.channelID = channelID
	s.confirmed = nil
	s.pending = nil
	s.sending = false
	s.sendBase = nil
	s.unlockAndNotify()

	return s.Poll(ctx)
}

// Poll replaces the confirmed messages with the backend's current list.
// It returns ErrPollInFlight without fetching when a poll for the same
// channel has not finished yet.
func (s *Store) Poll(ctx context.Context) error {
	s.mu.Lock()
	if s.channelID == "" {
		s.mu.Unlock()
		return ErrNoChannel
	}
	if s.pollingGen == s.gen {
		s.mu.Unlock()
		return ErrPollInFlight
	}
	gen, channelID := s.gen, s.channelID
	s.pollingGen = gen
	s.mu.Unlock()

	msgs, err := s.backend.GetMessages(ctx, channelID, nil, s.limit)

	s.mu.Lock()
	if s.pollingGen == gen {
		s.pollingGen = 0
	}
	if gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("poll_failed", zap.String("channel_id", channelID), zap.Error(err))
		return err
	}
	if equalMessages(s.confirmed, msgs) {
		s.mu.Unlock()
		return nil
	}
	s.confirmed = msgs
	s.unlockAndNotify()
	return nil
}

// Send posts body to the active channel. The message shows up as pending
// until the backend confirms it, and disappears if the send fails.
func (s *Store) Send(ctx context.Context, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	body = format.ExpandSlash(body)

	s.mu.Lock()
	if s.channelID == "" {
		s.mu.Unlock()
		return nil, ErrNoChannel
	}
	if s.sending {
		s.mu.Unlock()
		return nil, ErrSendInFlight
	}
	provisional := domain.Message{
		ID:        domain.NewProvisionalID(),
		ChannelID: s.channelID,
		AuthorID:  s.userID,
		Body:      body,
		CreatedAt: s.now(),
	}
	gen := s.gen
	s.sending = true
	s.sendBase = make(map[string]struct{}, len(s.confirmed))
	for _, m := range s.confirmed {
		s.sendBase[m.ID] = struct{}{}
	}
	s.pending = append(s.pending, provisional)
	s.unlockAndNotify()

	msg, err := s.backend.SendMessage(ctx, provisional.ChannelID, s.userID, body)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		if err != nil {
			s.fail("send", provisional.ChannelID, err)
		}
		return msg, err
	}
	s.sending = false
	s.sendBase = nil
	s.pending = removeID(s.pending, provisional.ID)
	if err == nil && indexOf(s.confirmed, msg.ID) < 0 {
		s.confirmed = append(s.confirmed, *msg)
	}
	s.unlockAndNotify()

	if err != nil {
		s.fail("send", provisional.ChannelID, err)
		return nil, err
	}
	return msg, nil
}

// Edit rewrites a confirmed message locally, then on the backend. A
// failed backend update is reported but not rolled back.
func (s *Store) Edit(ctx context.Context, messageID, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}

	s.mu.Lock()
	i := indexOf(s.confirmed, messageID)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownMessage
	}
	channelID := s.channelID
	edited := s.now()
	// the slice may still be shared with the backend
	s.confirmed = append([]domain.Message(nil), s.confirmed...)
	s.confirmed[i].Body = body
	s.confirmed[i].EditedAt = &edited
	s.unlockAndNotify()

	if err := s.backend.EditMessage(ctx, messageID, body); err != nil {
		s.fail("edit", channelID, err)
		return err
	}
	return nil
}

// Delete removes a confirmed message locally, then on the backend. A
// failed backend delete is reported but not rolled back.
func (s *Store) Delete(ctx context.Context, messageID string) error {
	s.mu.Lock()
	if indexOf(s.confirmed, messageID) < 0 {
		s.mu.Unlock()
		return ErrUnknownMessage
	}
	channelID := s.channelID
	s.confirmed = removeID(s.confirmed, messageID)
	s.unlockAndNotify()

	if err := s.backend.DeleteMessage(ctx, messageID); err != nil {
		s.fail("delete", channelID, err)
		return err
	}
	return nil
}

// View returns confirmed messages followed by pending ones.
func (s *Store) View() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Store) viewLocked() []Entry {
	entries := make([]Entry, 0, len(s.confirmed)+len(s.pending))
	for _, m := range s.confirmed {
		entries = append(entries, Entry{Message: m})
	}
	for _, m := range s.pending {
		if s.delivered(m) {
			continue
		}
		entries = append(entries, Entry{Message: m, Pending: true})
	}
	for i := 1; i < len(entries); i++ {
		entries[i].Sequential = IsSequential(entries[i-1].Message, entries[i].Message)
	}
	return entries
}

// delivered reports whether a poll already brought back the confirmed
// copy of a pending message: a message from the same author with the same
// body that was not confirmed when the send started.
func (s *Store) delivered(p domain.Message) bool {
	if s.sendBase == nil {
		return false
	}
	for _, m := range s.confirmed {
		if _, seen := s.sendBase[m.ID]; seen {
			continue
		}
		if m.AuthorID == p.AuthorID && m.Body == p.Body {
			return true
		}
	}
	return false
}

// unlockAndNotify releases s.mu and then hands the new view to the
// change hook. The caller must hold s.mu.
func (s *Store) unlockAndNotify() {
	fn := s.onChange
	var view []Entry
	if fn != nil {
		view = s.viewLocked()
	}
	s.mu.Unlock()
	if fn != nil {
		fn(view)
	}
}

func (s *Store) fail(op, channelID string, err error) {
	s.log.Error(op+"_failed",
		zap.String("channel_id", channelID),
		zap.Bool("transport", backend.IsTransport(err)),
		zap.Error(err),
	)
	s.notifier.Notify(op, err)
}

// IsSequential reports whether cur continues the group started by prev.
func IsSequential(prev, cur domain.Message) bool {
	if prev.AuthorID != cur.AuthorID {
		return false
	}
	gap := cur.CreatedAt.Sub(prev.CreatedAt)
	return gap >= 0 && gap < GroupWindow
}

func equalMessages(a, b []domain.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func indexOf(msgs []domain.Message, id string) int {
	for i, m := range msgs {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func removeID(msgs []domain.Message, id string) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}
