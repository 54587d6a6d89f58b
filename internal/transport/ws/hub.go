package ws

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// Hub tracks the live session of every connected user and routes direct
// pushes to them. Delivery is fire-and-forget: no session, no delivery.
type Hub struct {
	// clients maps userID → live session.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	direct     chan *directMsg
}

type directMsg struct {
	userID uuid.UUID
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *directMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// A fresh session replaces any lingering one for the same user.
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
				close(old.done)
			}
			h.clients[client.userID] = client
			log.Printf("ws hub: user %s connected (%d total)", client.userID, len(h.clients))

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
				close(client.done)
				log.Printf("ws hub: user %s disconnected (%d total)", client.userID, len(h.clients))
			}

		case msg := <-h.direct:
			client, ok := h.clients[msg.userID]
			if !ok {
				// Not connected: skipped, not queued. The recipient catches
				// up through a history fetch.
				continue
			}
			select {
			case client.send <- msg.data:
			default:
				// Client buffer full - disconnect
				delete(h.clients, client.userID)
				close(client.send)
				close(client.done)
			}
		}
	}
}

// SendToUser pushes an event to the user's live session if one exists.
func (h *Hub) SendToUser(userID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.direct <- &directMsg{userID: userID, data: data}
}
