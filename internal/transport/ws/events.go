package ws

import (
	"encoding/json"
	"time"

	"github.com/vedran77/lax/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeChannelSubscribe   = "channel.subscribe"
	EventTypeChannelUnsubscribe = "channel.unsubscribe"
	EventTypePing               = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew     = "message.new"
	EventTypeMessageEdited  = "message.edited"
	EventTypeMessageDeleted = "message.deleted"
	EventTypeChannelCreated = "channel.created"
	EventTypeChannelUpdated = "channel.updated"
	EventTypeChannelDeleted = "channel.deleted"
	EventTypeChannelRefresh = "channel.refresh"
	EventTypePresence       = "presence"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	ChannelID string          `json:"channel_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type SubscribePayload struct {
	ChannelID string `json:"channel_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type MessageDeletedPayload struct {
	ID string `json:"message_id"`
}

type ChannelPayload struct {
	domain.Channel
}

type ChannelRefPayload struct {
	ID string `json:"channel_id"`
}

type PresencePayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType, channelID string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ChannelID: channelID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
