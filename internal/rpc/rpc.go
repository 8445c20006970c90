// Package rpc defines the JSON envelope exchanged between a remote client
// and the server. Every call is a single POST carrying an action name and
// a payload object.
package rpc

import (
	"encoding/json"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// ContentType avoids a CORS preflight from browsers.
	ContentType = "text/plain;charset=utf-8"
)

const (
	ActionGetChannels          = "getChannels"
	ActionGetBrowsableChannels = "getBrowsableChannels"
	ActionCreateChannel        = "createChannel"
	ActionUpdateChannel        = "updateChannel"
	ActionDeleteChannel        = "deleteChannel"
	ActionCreateDM             = "createDM"
	ActionJoinChannel          = "joinChannel"
	ActionGetMessages          = "getMessages"
	ActionSendMessage          = "sendMessage"
	ActionEditMessage          = "editMessage"
	ActionDeleteMessage        = "deleteMessage"
	ActionGetUsers             = "getUsers"
	ActionCreateUser           = "createUser"
)

type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Payload carries the arguments of every action; each action reads only
// the fields it needs.
type Payload struct {
	ChannelID   string     `json:"channelId,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	Message     string     `json:"message,omitempty"`
	Name        string     `json:"name,omitempty"`
	IsPrivate   bool       `json:"isPrivate,omitempty"`
	CreatorID   string     `json:"creatorId,omitempty"`
	TargetID    string     `json:"targetId,omitempty"`
	AfterTS     *time.Time `json:"afterTs,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	MessageID   string     `json:"messageId,omitempty"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

func NewRequest(action string, p Payload) (*Request, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return &Request{Action: action, Payload: raw}, nil
}

// DecodePayload reads the request payload. A missing payload decodes to
// the zero Payload.
func (r *Request) DecodePayload() (Payload, error) {
	var p Payload
	if len(r.Payload) == 0 || string(r.Payload) == "null" {
		return p, nil
	}
	err := json.Unmarshal(r.Payload, &p)
	return p, err
}

func Success(data any) (*Response, error) {
	if data == nil {
		return &Response{Status: StatusSuccess}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Response{Status: StatusSuccess, Data: raw}, nil
}

func Failure(message string) *Response {
	return &Response{Status: StatusError, Message: message}
}
