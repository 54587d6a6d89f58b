package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ConnectionRepository interface {
	// Create inserts a PENDING edge for the pair. It returns false when a
	// live (PENDING or ACCEPTED) edge already occupies the pair; a REJECTED
	// edge is replaced atomically by the fresh request.
	Create(ctx context.Context, req *domain.ConnectionRequest) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ConnectionRequest, error)
	GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.ConnectionRequest, error)
	ListPendingByReceiver(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error)
	ListBySender(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error)
	ListAcceptedByUser(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error)
	// UpdateStatusIfPending performs the conditional transition
	// PENDING -> status in a single statement. False means the edge was no
	// longer PENDING and nothing changed.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status domain.ConnectionStatus, respondedAt time.Time) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListBetween returns every message exchanged by the pair ordered by
	// timestamp ascending, insertion order breaking ties.
	ListBetween(ctx context.Context, userA, userB uuid.UUID) ([]domain.Message, error)
	// MarkRead flips is_read on all unread messages from senderID to
	// receiverID and reports how many rows changed. Idempotent.
	MarkRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
	LatestBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.Message, error)
	// ListPartnerIDs returns the distinct counterpart ids appearing with
	// userID on either side of a message.
	ListPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
