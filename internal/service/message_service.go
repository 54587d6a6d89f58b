package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/repository"
)

var (
	ErrBlankContent      = errors.New("message content cannot be blank")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
	ErrUserNotFound      = errors.New("user not found")
	ErrSenderMismatch    = errors.New("sender must be the authenticated caller")
)

// MessagePusher delivers a persisted message to the live sessions of both
// participants. Best-effort: disconnected recipients are simply skipped and
// catch up on their next history fetch.
type MessagePusher interface {
	PushMessage(msg *domain.Message)
}

// MessageService owns the message lifecycle: validate, persist, push.
type MessageService struct {
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	pusher   MessagePusher
}

func NewMessageService(msgRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		msgRepo:  msgRepo,
		userRepo: userRepo,
	}
}

// SetPusher wires the live-session push after construction; the hub and
// this service reference each other.
func (s *MessageService) SetPusher(p MessagePusher) {
	s.pusher = p
}

// Send validates, persists with a server-assigned timestamp, then pushes to
// whichever participants are connected. acting is the resolved session
// identity and must match senderID.
func (s *MessageService) Send(ctx context.Context, acting, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrBlankContent
	}
	if senderID == receiverID {
		return nil, ErrCannotMessageSelf
	}
	if acting != senderID {
		return nil, ErrSenderMismatch
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("looking up sender: %w", err)
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("looking up receiver: %w", err)
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	msg := &domain.Message{
		ID:           uuid.New(),
		SenderID:     senderID,
		ReceiverID:   receiverID,
		SenderName:   sender.FullName,
		ReceiverName: receiver.FullName,
		Content:      content,
		Timestamp:    time.Now(),
		IsRead:       false,
		Type:         domain.MessageTypeText,
	}

	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persisting message: %w", err)
	}

	if s.pusher != nil {
		s.pusher.PushMessage(msg)
	}

	return msg, nil
}

// FetchHistory returns the full conversation with partnerID in timestamp
// order (insertion order on ties) and, as a side effect, marks everything
// addressed to the caller from that partner as read.
func (s *MessageService) FetchHistory(ctx context.Context, callerID, partnerID uuid.UUID) ([]domain.Message, error) {
	if _, err := s.msgRepo.MarkRead(ctx, callerID, partnerID); err != nil {
		return nil, fmt.Errorf("marking messages read: %w", err)
	}

	messages, err := s.msgRepo.ListBetween(ctx, callerID, partnerID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkRead flips unread messages from partnerID to the caller. Idempotent:
// repeated calls change nothing further.
func (s *MessageService) MarkRead(ctx context.Context, callerID, partnerID uuid.UUID) error {
	_, err := s.msgRepo.MarkRead(ctx, callerID, partnerID)
	return err
}
