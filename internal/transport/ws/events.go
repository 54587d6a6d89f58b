package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeMessageSend = "message.send"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew = "message.new"
	EventTypePong       = "pong"
	EventTypeError      = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

// SendMessagePayload carries one outgoing chat message. SenderID is
// optional; when present it is checked against the session identity, it is
// never trusted on its own.
type SendMessagePayload struct {
	SenderID   *uuid.UUID `json:"sender_id,omitempty"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Content    string     `json:"content"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
