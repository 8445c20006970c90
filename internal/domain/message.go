package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProvisionalPrefix marks ids of messages that exist only on the client
// while their send request is in flight.
const ProvisionalPrefix = "temp-"

type Message struct {
	ID        string     `json:"message_id"`
	ChannelID string     `json:"channel_id"`
	AuthorID  string     `json:"user_id"`
	Body      string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

// NewID returns a fresh backend-issued id.
func NewID() string {
	return uuid.NewString()
}

// NewProvisionalID returns a placeholder id that never collides with NewID.
func NewProvisionalID() string {
	return ProvisionalPrefix + uuid.NewString()
}

func IsProvisionalID(id string) bool {
	return strings.HasPrefix(id, ProvisionalPrefix)
}

// Equal reports whether two messages carry the same content and metadata.
func (m Message) Equal(o Message) bool {
	if m.ID != o.ID || m.ChannelID != o.ChannelID || m.AuthorID != o.AuthorID || m.Body != o.Body {
		return false
	}
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	switch {
	case m.EditedAt == nil && o.EditedAt == nil:
		return true
	case m.EditedAt == nil || o.EditedAt == nil:
		return false
	default:
		return m.EditedAt.Equal(*o.EditedAt)
	}
}
