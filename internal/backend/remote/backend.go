package remote

import (
	"context"
	"time"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/rpc"
)

var _ backend.Backend = (*Client)(nil)

func (c *Client) GetChannels(ctx context.Context, userID string) ([]domain.Channel, error) {
	var out []domain.Channel
	err := c.call(ctx, rpc.ActionGetChannels, rpc.Payload{UserID: userID}, &out)
	return out, err
}

func (c *Client) GetBrowsableChannels(ctx context.Context, userID string) ([]domain.Channel, error) {
	var out []domain.Channel
	err := c.call(ctx, rpc.ActionGetBrowsableChannels, rpc.Payload{UserID: userID}, &out)
	return out, err
}

func (c *Client) CreateChannel(ctx context.Context, name string, isPrivate bool, creatorID string) (*domain.Channel, error) {
	var out domain.Channel
	if err := c.call(ctx, rpc.ActionCreateChannel, rpc.Payload{Name: name, IsPrivate: isPrivate, CreatorID: creatorID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateChannel(ctx context.Context, channelID, name string, isPrivate bool) (*domain.Channel, error) {
	var out domain.Channel
	if err := c.call(ctx, rpc.ActionUpdateChannel, rpc.Payload{ChannelID: channelID, Name: name, IsPrivate: isPrivate}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	return c.call(ctx, rpc.ActionDeleteChannel, rpc.Payload{ChannelID: channelID}, nil)
}

func (c *Client) CreateDM(ctx context.Context, name, creatorID, targetID string) (*domain.Channel, error) {
	var out domain.Channel
	if err := c.call(ctx, rpc.ActionCreateDM, rpc.Payload{Name: name, CreatorID: creatorID, TargetID: targetID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JoinChannel(ctx context.Context, channelID, userID string) error {
	return c.call(ctx, rpc.ActionJoinChannel, rpc.Payload{ChannelID: channelID, UserID: userID}, nil)
}

func (c *Client) GetMessages(ctx context.Context, channelID string, afterTS *time.Time, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := c.call(ctx, rpc.ActionGetMessages, rpc.Payload{ChannelID: channelID, AfterTS: afterTS, Limit: limit}, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, channelID, userID, body string) (*domain.Message, error) {
	var out domain.Message
	if err := c.call(ctx, rpc.ActionSendMessage, rpc.Payload{ChannelID: channelID, UserID: userID, Message: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EditMessage(ctx context.Context, messageID, body string) error {
	return c.call(ctx, rpc.ActionEditMessage, rpc.Payload{MessageID: messageID, Message: body}, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.call(ctx, rpc.ActionDeleteMessage, rpc.Payload{MessageID: messageID}, nil)
}

func (c *Client) GetUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := c.call(ctx, rpc.ActionGetUsers, rpc.Payload{}, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, email, displayName string) (*domain.User, error) {
	var out domain.User
	if err := c.call(ctx, rpc.ActionCreateUser, rpc.Payload{Email: email, DisplayName: displayName}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
