package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionRejected ConnectionStatus = "REJECTED"
)

// Terminal reports whether no further transition may leave this status.
func (s ConnectionStatus) Terminal() bool {
	return s == ConnectionAccepted || s == ConnectionRejected
}

// ConnectionRequest is the single edge between an unordered pair of users.
// Created PENDING by the sender; the receiver moves it exactly once to
// ACCEPTED or REJECTED. Names are snapshots taken at creation time.
type ConnectionRequest struct {
	ID           uuid.UUID        `json:"id"`
	SenderID     uuid.UUID        `json:"sender_id"`
	ReceiverID   uuid.UUID        `json:"receiver_id"`
	SenderName   string           `json:"sender_name"`
	ReceiverName string           `json:"receiver_name"`
	Status       ConnectionStatus `json:"status"`
	SentAt       time.Time        `json:"sent_at"`
	RespondedAt  *time.Time       `json:"responded_at,omitempty"`
}
