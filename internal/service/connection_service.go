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
	ErrCannotConnectSelf      = errors.New("cannot send a connection request to yourself")
	ErrUserNotFoundForRequest = errors.New("user not found")
	ErrConnectionPending      = errors.New("connection request already pending")
	ErrAlreadyConnected       = errors.New("already connected")
	ErrConnectionNotFound     = errors.New("connection request not found")
	ErrNotRequestReceiver     = errors.New("only the request receiver can respond")
	ErrAlreadyResponded       = errors.New("request already responded to")
	ErrInvalidAction          = errors.New("action must be ACCEPT or REJECT")
)

// Dispatcher fans a domain event out to the offline channel. Best-effort:
// implementations never fail the triggering operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID uuid.UUID, actorName, title, body string, kind domain.NotificationKind)
}

// ConnectionService owns the pairwise relationship lifecycle.
type ConnectionService struct {
	connRepo   repository.ConnectionRepository
	userRepo   repository.UserRepository
	dispatcher Dispatcher
}

func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, dispatcher Dispatcher) *ConnectionService {
	return &ConnectionService{
		connRepo:   connRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
	}
}

// Request creates a PENDING edge from sender to receiver and notifies the
// receiver. The pair-uniqueness check runs twice: once here for a precise
// error, and once inside the repository insert to close the race between
// two simultaneous first requests.
func (s *ConnectionService) Request(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.ConnectionRequest, error) {
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("looking up sender: %w", err)
	}
	if sender == nil {
		return nil, ErrUserNotFoundForRequest
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("looking up receiver: %w", err)
	}
	if receiver == nil {
		return nil, ErrUserNotFoundForRequest
	}

	if senderID == receiverID {
		return nil, ErrCannotConnectSelf
	}

	existing, err := s.connRepo.GetByPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case domain.ConnectionPending:
			return nil, ErrConnectionPending
		case domain.ConnectionAccepted:
			return nil, ErrAlreadyConnected
		}
		// REJECTED: the insert below replaces the edge.
	}

	req := &domain.ConnectionRequest{
		ID:           uuid.New(),
		SenderID:     senderID,
		ReceiverID:   receiverID,
		SenderName:   sender.FullName,
		ReceiverName: receiver.FullName,
		Status:       domain.ConnectionPending,
		SentAt:       time.Now(),
	}

	created, err := s.connRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating connection request: %w", err)
	}
	if !created {
		return nil, ErrConnectionPending
	}

	s.dispatcher.Dispatch(ctx, receiverID, sender.FullName,
		"New Connection Request",
		sender.FullName+" wants to connect with you.",
		domain.NotificationConnection)

	return req, nil
}

// Respond moves a PENDING edge to ACCEPTED or REJECTED. The transition is a
// conditional update; of two concurrent responders exactly one wins and the
// loser surfaces a conflict.
func (s *ConnectionService) Respond(ctx context.Context, requestID, responderID uuid.UUID, action string) (*domain.ConnectionRequest, error) {
	var status domain.ConnectionStatus
	switch strings.ToUpper(action) {
	case "ACCEPT":
		status = domain.ConnectionAccepted
	case "REJECT":
		status = domain.ConnectionRejected
	default:
		return nil, ErrInvalidAction
	}

	req, err := s.connRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrConnectionNotFound
	}
	if req.ReceiverID != responderID {
		return nil, ErrNotRequestReceiver
	}
	if req.Status != domain.ConnectionPending {
		return nil, ErrAlreadyResponded
	}

	respondedAt := time.Now()
	won, err := s.connRepo.UpdateStatusIfPending(ctx, requestID, status, respondedAt)
	if err != nil {
		return nil, fmt.Errorf("updating connection status: %w", err)
	}
	if !won {
		return nil, ErrAlreadyResponded
	}

	req.Status = status
	req.RespondedAt = &respondedAt

	if status == domain.ConnectionAccepted {
		s.dispatcher.Dispatch(ctx, req.SenderID, req.ReceiverName,
			"Connection Accepted",
			req.ReceiverName+" accepted your connection request!",
			domain.NotificationConnection)
	} else {
		s.dispatcher.Dispatch(ctx, req.SenderID, req.ReceiverName,
			"Connection Rejected",
			req.ReceiverName+" rejected your connection request.",
			domain.NotificationConnection)
	}

	return req, nil
}

// GetStatus returns the edge between the caller and another user, or nil
// when no edge exists.
func (s *ConnectionService) GetStatus(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.ConnectionRequest, error) {
	if userID == otherUserID {
		return nil, ErrCannotConnectSelf
	}
	return s.connRepo.GetByPair(ctx, userID, otherUserID)
}

// ListPending returns PENDING requests addressed to the user.
func (s *ConnectionService) ListPending(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	reqs, err := s.connRepo.ListPendingByReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.ConnectionRequest{}
	}
	return reqs, nil
}

// ListSent returns every request the user has sent, regardless of status.
func (s *ConnectionService) ListSent(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	reqs, err := s.connRepo.ListBySender(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.ConnectionRequest{}
	}
	return reqs, nil
}

// ListAccepted returns ACCEPTED edges where the user is either party.
func (s *ConnectionService) ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	reqs, err := s.connRepo.ListAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.ConnectionRequest{}
	}
	return reqs, nil
}
