package ws

import (
	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/service"
)

var _ service.Notifier = (*HubNotifier)(nil)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
	log *zap.Logger
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, log: hub.log}
}

// NotifyChannel sends channel list changes to every client.
func (n *HubNotifier) NotifyChannel(evt domain.ChannelEvent) {
	var (
		typ     string
		payload any
	)
	switch e := evt.(type) {
	case domain.ChannelCreated:
		typ, payload = EventTypeChannelCreated, ChannelPayload{Channel: e.Channel}
	case domain.ChannelUpdated:
		typ, payload = EventTypeChannelUpdated, ChannelPayload{Channel: e.Channel}
	case domain.ChannelDeleted:
		typ, payload = EventTypeChannelDeleted, ChannelRefPayload{ID: e.ID}
	case domain.ChannelNeedsRefresh:
		typ, payload = EventTypeChannelRefresh, ChannelRefPayload{ID: e.ID}
	default:
		return
	}
	n.send(typ, evt.ChannelID(), payload, true)
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	n.send(EventTypeMessageNew, msg.ChannelID, MessagePayload{Message: *msg}, false)
}

func (n *HubNotifier) NotifyEditedMessage(msg *domain.Message) {
	n.send(EventTypeMessageEdited, msg.ChannelID, MessagePayload{Message: *msg}, false)
}

func (n *HubNotifier) NotifyDeletedMessage(channelID, messageID string) {
	n.send(EventTypeMessageDeleted, channelID, MessageDeletedPayload{ID: messageID}, false)
}

func (n *HubNotifier) send(typ, channelID string, payload any, all bool) {
	evt, err := NewEvent(typ, channelID, payload)
	if err != nil {
		n.log.Error("ws_marshal_failed", zap.String("type", typ), zap.Error(err))
		return
	}
	if all {
		n.hub.BroadcastToAll(evt)
		return
	}
	n.hub.BroadcastToChannel(channelID, evt)
}
