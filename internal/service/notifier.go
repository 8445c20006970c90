package service

import "github.com/vedran77/lax/internal/domain"

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyChannel(evt domain.ChannelEvent)
	NotifyNewMessage(msg *domain.Message)
	NotifyEditedMessage(msg *domain.Message)
	NotifyDeletedMessage(channelID, messageID string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyChannel(domain.ChannelEvent)   {}
func (nopNotifier) NotifyNewMessage(*domain.Message)    {}
func (nopNotifier) NotifyEditedMessage(*domain.Message) {}
func (nopNotifier) NotifyDeletedMessage(string, string) {}
