package domain

import (
	"time"

	"github.com/google/uuid"
)

const MessageTypeText = "TEXT"

// Message is immutable once persisted except IsRead, which only the
// receiver's read path may flip to true (never back).
type Message struct {
	ID           uuid.UUID `json:"id"`
	SenderID     uuid.UUID `json:"sender_id"`
	ReceiverID   uuid.UUID `json:"receiver_id"`
	SenderName   string    `json:"sender_name"`
	ReceiverName string    `json:"receiver_name"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	IsRead       bool      `json:"is_read"`
	Type         string    `json:"type"`
	// Seq is the insertion-order tiebreaker for identical timestamps.
	Seq int64 `json:"-"`
}
