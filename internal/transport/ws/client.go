package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/service"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// MessageSender is the slice of the message service a session needs.
type MessageSender interface {
	Send(ctx context.Context, acting, senderID, receiverID uuid.UUID, content string) (*domain.Message, error)
}

// Client represents a single live session.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	messages MessageSender

	// userID is uuid.Nil for a tolerated anonymous session.
	userID        uuid.UUID
	authenticated bool

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, messages MessageSender, userID uuid.UUID, authenticated bool) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		messages:      messages,
		userID:        userID,
		authenticated: authenticated,
		send:          make(chan []byte, sendBufSize),
		done:          make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and handles them.
func (c *Client) ReadPump() {
	defer func() {
		if c.authenticated {
			c.hub.unregister <- c
		} else {
			close(c.done)
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeMessageSend:
		c.handleSend(event)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// handleSend runs the validate→persist→push pipeline for one message.
// The session identity is the acting identity; a sender_id in the payload
// is verified against it, never substituted for it.
func (c *Client) handleSend(event *Event) {
	if !c.authenticated {
		c.sendError("UNAUTHENTICATED", "authenticate to send messages")
		return
	}

	var p SendMessagePayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		c.sendError("INVALID_PAYLOAD", "invalid message.send payload")
		return
	}

	senderID := c.userID
	if p.SenderID != nil {
		senderID = *p.SenderID
	}

	_, err := c.messages.Send(context.Background(), c.userID, senderID, p.ReceiverID, p.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlankContent):
			c.sendError("BLANK_CONTENT", "message content cannot be blank")
		case errors.Is(err, service.ErrCannotMessageSelf):
			c.sendError("SELF_MESSAGE", "cannot send a message to yourself")
		case errors.Is(err, service.ErrSenderMismatch):
			c.sendError("FORBIDDEN", "sender must be the authenticated user")
		case errors.Is(err, service.ErrUserNotFound):
			c.sendError("NOT_FOUND", "user not found")
		default:
			log.Printf("ERROR ws send from %s: %v", c.userID, err)
			c.sendError("INTERNAL", "could not send message")
		}
	}
	// On success the hub pushes message.new to both participants,
	// this session included; no extra acknowledgment is sent.
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
