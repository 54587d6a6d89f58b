package ws

import (
	"log"

	"github.com/alumniconnect/backend/internal/domain"
)

// HubPusher implements service.MessagePusher using the WebSocket Hub.
// A persisted message is pushed to both participants' live sessions;
// whoever is not connected simply misses the push.
type HubPusher struct {
	hub *Hub
}

func NewHubPusher(hub *Hub) *HubPusher {
	return &HubPusher{hub: hub}
}

func (p *HubPusher) PushMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws pusher: marshal error: %v", err)
		return
	}
	p.hub.SendToUser(msg.ReceiverID, evt)
	p.hub.SendToUser(msg.SenderID, evt)
}
