package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	log    *zap.Logger

	// subscribedChannels tracks which channels this client listens to.
	subscribedChannels map[string]struct{}
	mu                 sync.RWMutex

	// send is owned by the hub, which closes it on disconnect.
	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:                hub,
		conn:               conn,
		userID:             userID,
		log:                hub.log.With(zap.String("user_id", userID)),
		subscribedChannels: make(map[string]struct{}),
		send:               make(chan []byte, sendBufSize),
		done:               make(chan struct{}),
	}
}

// IsSubscribed checks if this client is subscribed to a channel.
func (c *Client) IsSubscribed(channelID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscribedChannels[channelID]
	return ok
}

func (c *Client) Subscribe(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribedChannels[channelID] = struct{}{}
}

func (c *Client) Unsubscribe(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribedChannels, channelID)
}

// ReadPump reads events from the WebSocket until the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.Debug("ws_client_closed")
			} else {
				c.log.Warn("ws_read_failed", zap.Error(err))
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Warn("ws_write_failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.log.Warn("ws_ping_failed", zap.Error(err))
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeChannelSubscribe, EventTypeChannelUnsubscribe:
		var p SubscribePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ChannelID == "" {
			c.reply(EventTypeError, ErrorPayload{Code: "INVALID_PAYLOAD", Message: "channel_id required"})
			return
		}
		if event.Type == EventTypeChannelSubscribe {
			c.Subscribe(p.ChannelID)
		} else {
			c.Unsubscribe(p.ChannelID)
		}
		c.log.Debug("ws_subscription", zap.String("type", event.Type), zap.String("channel_id", p.ChannelID))

	case EventTypePing:
		c.reply(EventTypePong, nil)

	default:
		c.reply(EventTypeError, ErrorPayload{Code: "UNKNOWN_EVENT", Message: "unknown event type: " + event.Type})
	}
}

// reply writes straight to the connection; the hub may already have
// closed send.
func (c *Client) reply(eventType string, payload any) {
	evt := &Event{Type: eventType}
	if payload != nil {
		e, err := NewEvent(eventType, "", payload)
		if err != nil {
			return
		}
		evt = e
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, evt); err != nil {
		c.log.Debug("ws_reply_failed", zap.Error(err))
	}
}
