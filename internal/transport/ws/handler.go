package ws

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/alumniconnect/backend/internal/identity"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// The credential travels as ?token=xxx (browsers cannot attach headers to
// an upgrade). The handshake outcome is explicit: Rejected credentials are
// always refused; Anonymous sessions are refused too unless allowAnonymous
// is set, in which case they are accepted but muted — never registered in
// the hub and unable to send.
func ServeWS(hub *Hub, resolver *identity.Resolver, messages MessageSender, allowAnonymous bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hs := resolver.ResolveHandshake(r)

		switch hs.Outcome {
		case identity.Rejected:
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		case identity.Anonymous:
			if !allowAnonymous {
				http.Error(w, "missing token", http.StatusUnauthorized)
				return
			}
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			log.Printf("ws: accept error: %v", err)
			return
		}

		authenticated := hs.Outcome == identity.Authenticated
		userID := uuid.Nil
		if authenticated {
			userID = hs.Identity.UserID
		}

		client := NewClient(hub, conn, messages, userID, authenticated)
		if authenticated {
			hub.register <- client
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
