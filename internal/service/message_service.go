package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/repository"
	"github.com/vedran77/lax/pkg/validator"
)

// DefaultHistoryLimit applies when a caller asks for limit <= 0.
const DefaultHistoryLimit = 100

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrMessageTooLong  = errors.New("message is too long")
)

type MessageService struct {
	messageRepo repository.MessageRepository
	channelRepo repository.ChannelRepository
	notifier    Notifier
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepository, channelRepo repository.ChannelRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		notifier:    nopNotifier{},
		now:         time.Now,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// List returns up to limit messages of the channel created after afterTS,
// oldest first. When more match, the most recent are kept.
func (s *MessageService) List(ctx context.Context, channelID string, afterTS *time.Time, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	messages, err := s.messageRepo.ListByChannel(ctx, channelID, afterTS, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

func (s *MessageService) Send(ctx context.Context, channelID, userID, body string) (*domain.Message, error) {
	if err := checkBody(body); err != nil {
		return nil, err
	}

	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	member, err := s.channelRepo.GetMember(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotChannelMember
	}

	msg := &domain.Message{
		ID:        domain.NewID(),
		ChannelID: channelID,
		AuthorID:  userID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	s.notifier.NotifyNewMessage(msg)
	return msg, nil
}

func (s *MessageService) Edit(ctx context.Context, messageID, body string) (*domain.Message, error) {
	if err := checkBody(body); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	now := s.now()
	msg.Body = body
	msg.EditedAt = &now
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	s.notifier.NotifyEditedMessage(msg)
	return msg, nil
}

func (s *MessageService) Delete(ctx context.Context, messageID string) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}

	s.notifier.NotifyDeletedMessage(msg.ChannelID, msg.ID)
	return nil
}

func checkBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyMessage
	}
	if errs := validator.ValidateMessage(body); errs.HasErrors() {
		return ErrMessageTooLong
	}
	return nil
}
