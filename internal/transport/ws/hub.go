package ws

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// ConnObserver is told about every connection the hub gains or loses.
type ConnObserver interface {
	WSConnected()
	WSDisconnected()
}

// Hub manages all active WebSocket clients and routes messages.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
	done       chan struct{}

	obs ConnObserver
	log *zap.Logger
}

type broadcastMsg struct {
	// channelID is empty for events every client receives.
	channelID string
	data      []byte
}

// NewHub creates a hub. obs may be nil.
func NewHub(obs ConnObserver, log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		done:       make(chan struct{}),
		obs:        obs,
		log:        log,
	}
}

// Run starts the Hub's main event loop and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			h.drop(client)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			if h.obs != nil {
				h.obs.WSConnected()
			}
			h.log.Info("ws_connected", zap.String("user_id", client.userID), zap.Int("clients", len(h.clients)))
			if client.userID != "" {
				h.broadcastPresence(client, "online")
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Info("ws_disconnected", zap.String("user_id", client.userID), zap.Int("clients", len(h.clients)))
				if client.userID != "" {
					h.broadcastPresence(client, "offline")
				}
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if msg.channelID != "" && !client.IsSubscribed(msg.channelID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					h.log.Warn("ws_client_slow", zap.String("user_id", client.userID))
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	close(client.done)
	if h.obs != nil {
		h.obs.WSDisconnected()
	}
}

// Register adds a client to the hub. It reports false when the hub has
// stopped or ctx ends first.
func (h *Hub) Register(ctx context.Context, client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToChannel sends an event to all subscribers of a channel.
func (h *Hub) BroadcastToChannel(channelID string, event *Event) {
	h.enqueue(channelID, event)
}

// BroadcastToAll sends an event to every connected client.
func (h *Hub) BroadcastToAll(event *Event) {
	h.enqueue("", event)
}

func (h *Hub) enqueue(channelID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws_marshal_failed", zap.String("type", event.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &broadcastMsg{channelID: channelID, data: data}:
	case <-h.done:
	}
}

// broadcastPresence sends online/offline to all other connected clients.
func (h *Hub) broadcastPresence(from *Client, status string) {
	evt, err := NewEvent(EventTypePresence, "", PresencePayload{
		UserID: from.userID,
		Status: status,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for client := range h.clients {
		if client == from {
			continue
		}
		select {
		case client.send <- data:
		default:
		}
	}
}
