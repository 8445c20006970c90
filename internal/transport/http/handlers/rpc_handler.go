package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/rpc"
	"github.com/vedran77/lax/internal/service"
)

const maxRequestSize = 1 << 20

// RPCObserver records one handled call.
type RPCObserver interface {
	ObserveRPC(action, status string, elapsed time.Duration)
}

type actionFunc func(ctx context.Context, p rpc.Payload) (any, error)

// RPCHandler serves the envelope protocol: one POST per call, answered
// with HTTP 200 and a success or error envelope.
type RPCHandler struct {
	backend  backend.Backend
	observer RPCObserver
	log      *zap.Logger
	actions  map[string]actionFunc
}

func NewRPCHandler(b backend.Backend, observer RPCObserver, log *zap.Logger) *RPCHandler {
	h := &RPCHandler{backend: b, observer: observer, log: log}
	h.actions = map[string]actionFunc{
		rpc.ActionGetChannels: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.GetChannels(ctx, p.UserID)
		},
		rpc.ActionGetBrowsableChannels: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.GetBrowsableChannels(ctx, p.UserID)
		},
		rpc.ActionCreateChannel: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.CreateChannel(ctx, p.Name, p.IsPrivate, p.CreatorID)
		},
		rpc.ActionUpdateChannel: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.UpdateChannel(ctx, p.ChannelID, p.Name, p.IsPrivate)
		},
		rpc.ActionDeleteChannel: func(ctx context.Context, p rpc.Payload) (any, error) {
			return nil, b.DeleteChannel(ctx, p.ChannelID)
		},
		rpc.ActionCreateDM: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.CreateDM(ctx, p.Name, p.CreatorID, p.TargetID)
		},
		rpc.ActionJoinChannel: func(ctx context.Context, p rpc.Payload) (any, error) {
			return nil, b.JoinChannel(ctx, p.ChannelID, p.UserID)
		},
		rpc.ActionGetMessages: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.GetMessages(ctx, p.ChannelID, p.AfterTS, p.Limit)
		},
		rpc.ActionSendMessage: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.SendMessage(ctx, p.ChannelID, p.UserID, p.Message)
		},
		rpc.ActionEditMessage: func(ctx context.Context, p rpc.Payload) (any, error) {
			return nil, b.EditMessage(ctx, p.MessageID, p.Message)
		},
		rpc.ActionDeleteMessage: func(ctx context.Context, p rpc.Payload) (any, error) {
			return nil, b.DeleteMessage(ctx, p.MessageID)
		},
		rpc.ActionGetUsers: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.GetUsers(ctx)
		},
		rpc.ActionCreateUser: func(ctx context.Context, p rpc.Payload) (any, error) {
			return b.CreateUser(ctx, p.Email, p.DisplayName)
		},
	}
	return h
}

func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpc.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize)).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := req.DecodePayload()
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	start := time.Now()
	resp := h.dispatch(r.Context(), req.Action, p)
	if h.observer != nil {
		h.observer.ObserveRPC(metricAction(req.Action, h.actions), resp.Status, time.Since(start))
	}
	writeEnvelope(w, http.StatusOK, resp)
}

func (h *RPCHandler) dispatch(ctx context.Context, action string, p rpc.Payload) *rpc.Response {
	fn, ok := h.actions[action]
	if !ok {
		return rpc.Failure("unknown action: " + action)
	}

	data, err := fn(ctx, p)
	if err != nil {
		msg, internal := errorMessage(err)
		if internal {
			h.log.Error("rpc_failed", zap.String("action", action), zap.Error(err))
		} else {
			h.log.Debug("rpc_rejected", zap.String("action", action), zap.Error(err))
		}
		return rpc.Failure(msg)
	}

	resp, err := rpc.Success(data)
	if err != nil {
		h.log.Error("rpc_encode_failed", zap.String("action", action), zap.Error(err))
		return rpc.Failure("Something went wrong")
	}
	return resp
}

// errorMessage maps service errors to the message carried by the error
// envelope. internal is set for errors the caller cannot act on.
func errorMessage(err error) (msg string, internal bool) {
	switch {
	case errors.Is(err, service.ErrChannelNotFound):
		return "Channel not found", false
	case errors.Is(err, service.ErrChannelNameTaken):
		return "Channel name is already taken", false
	case errors.Is(err, service.ErrInvalidChannelName),
		errors.Is(err, service.ErrInvalidUser):
		return validationMessage(err), false
	case errors.Is(err, service.ErrNotChannelMember):
		return "You are not a member of this channel", false
	case errors.Is(err, service.ErrDMImmutable):
		return "Direct messages cannot be changed", false
	case errors.Is(err, service.ErrNotJoinable):
		return "Direct messages cannot be joined", false
	case errors.Is(err, service.ErrCannotDMSelf):
		return "Cannot start a conversation with yourself", false
	case errors.Is(err, service.ErrInvalidDMName):
		return "Invalid direct message name", false
	case errors.Is(err, service.ErrMessageNotFound):
		return "Message not found", false
	case errors.Is(err, service.ErrEmptyMessage):
		return "Message cannot be empty", false
	case errors.Is(err, service.ErrMessageTooLong):
		return "Message is too long", false
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found", false
	default:
		return "Something went wrong", true
	}
}

// validationMessage strips the sentinel prefix from "<sentinel>: <detail>".
func validationMessage(err error) string {
	if _, detail, ok := strings.Cut(err.Error(), ": "); ok {
		return detail
	}
	return err.Error()
}

// metricAction keeps label cardinality bounded.
func metricAction(action string, known map[string]actionFunc) string {
	if _, ok := known[action]; ok {
		return action
	}
	return "unknown"
}
