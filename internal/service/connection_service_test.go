package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/repository/memory"
)

func newConnectionEnv(t *testing.T) (*ConnectionService, *memory.UserRepo, *memory.ConnectionRepo, *recordingDispatcher) {
	t.Helper()
	userRepo := memory.NewUserRepo()
	connRepo := memory.NewConnectionRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewConnectionService(connRepo, userRepo, dispatcher)
	return svc, userRepo, connRepo, dispatcher
}

func TestConnectionService_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending edge and notifies the receiver", func(t *testing.T) {
		req := require.New(t)
		svc, userRepo, _, dispatcher := newConnectionEnv(t)
		sender := seedUser(t, userRepo, "Sara Novak", "sara@example.com")
		receiver := seedUser(t, userRepo, "Ivan Horvat", "ivan@example.com")

		edge, err := svc.Request(ctx, sender.ID, receiver.ID)

		req.NoError(err)
		req.Equal(domain.ConnectionPending, edge.Status)
		req.Equal(sender.ID, edge.SenderID)
		req.Equal(receiver.ID, edge.ReceiverID)
		req.Equal("Sara Novak", edge.SenderName)
		req.Nil(edge.RespondedAt)

		calls := dispatcher.Calls()
		req.Len(calls, 1)
		req.Equal(receiver.ID, calls[0].UserID)
		req.Equal("New Connection Request", calls[0].Title)
		req.Equal(domain.NotificationConnection, calls[0].Kind)
	})

	t.Run("rejects self requests before any side effect", func(t *testing.T) {
		req := require.New(t)
		svc, userRepo, connRepo, dispatcher := newConnectionEnv(t)
		user := seedUser(t, userRepo, "Sara Novak", "sara@example.com")

		_, err := svc.Request(ctx, user.ID, user.ID)

		req.ErrorIs(err, ErrCannotConnectSelf)
		edge, _ := connRepo.GetByPair(ctx, user.ID, user.ID)
		req.Nil(edge)
		req.Empty(dispatcher.Calls())
	})

	t.Run("fails when either user is unknown", func(t *testing.T) {
		req := require.New(t)
		svc, userRepo, _, _ := newConnectionEnv(t)
		sender := seedUser(t, userRepo, "Sara Novak", "sara@example.com")

		_, err := svc.Request(ctx, sender.ID, uuid.New())
		req.ErrorIs(err, ErrUserNotFoundForRequest)

		_, err = svc.Request(ctx, uuid.New(), sender.ID)
		req.ErrorIs(err, ErrUserNotFoundForRequest)
	})

	t.Run("conflicts on an existing pending edge in either direction", func(t *testing.T) {
		req := require.New(t)
		svc, userRepo, _, _ := newConnectionEnv(t)
		a := seedUser(t, userRepo, "A", "a@example.com")
		b := seedUser(t, userRepo, "B", "b@example.com")

		_, err := svc.Request(ctx, a.ID, b.ID)
		req.NoError(err)

		_, err = svc.Request(ctx, a.ID, b.ID)
		req.ErrorIs(err, ErrConnectionPending)

		_, err = svc.Request(ctx, b.ID, a.ID)
		req.ErrorIs(err, ErrConnectionPending)
	})

	t.Run("conflicts when already connected", func(t *testing.T) {
		req := require.New(t)
		svc, userRepo, _, _ := newConnectionEnv(t)
		a := seedUser(t, userRepo, "A", "a@example.com")
		b := seedUser(t, userRepo, "B", "b@example.com")

		edge, err := svc.Request(ctx, a.ID, b.ID)
		req.NoError(err)
		_, err = svc.Respond(ctx, edge.ID, b.ID, "ACCEPT")
		req.NoError(err)

		_, err = svc.Request(ctx, b.ID, a.ID)
		req.ErrorIs(err, ErrAlreadyConnected)
	})

	t.Run("allows a fresh request after rejection", func(t *testing.T) {
		req := require.New(t)
		svc, userRepo, connRepo, _ := newConnectionEnv(t)
		a := seedUser(t, userRepo, "A", "a@example.com")
		b := seedUser(t, userRepo, "B", "b@example.com")

		edge, err := svc.Request(ctx, a.ID, b.ID)
		req.NoError(err)
		_, err = svc.Respond(ctx, edge.ID, b.ID, "REJECT")
		req.NoError(err)

		fresh, err := svc.Request(ctx, a.ID, b.ID)
		req.NoError(err)
		req.Equal(domain.ConnectionPending, fresh.Status)
		req.NotEqual(edge.ID, fresh.ID)

		// Still exactly one edge for the pair.
		current, err := connRepo.GetByPair(ctx, a.ID, b.ID)
		req.NoError(err)
		req.Equal(fresh.ID, current.ID)
	})

	t.Run("at most one edge survives concurrent first requests", func(t *testing.T) {
		req := require.New(t)
		svc, userRepo, connRepo, _ := newConnectionEnv(t)
		a := seedUser(t, userRepo, "A", "a@example.com")
		b := seedUser(t, userRepo, "B", "b@example.com")

		const attempts = 16
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if i%2 == 0 {
					_, errs[i] = svc.Request(ctx, a.ID, b.ID)
				} else {
					_, errs[i] = svc.Request(ctx, b.ID, a.ID)
				}
			}()
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				req.ErrorIs(err, ErrConnectionPending)
			}
		}
		req.Equal(1, succeeded)

		edge, err := connRepo.GetByPair(ctx, a.ID, b.ID)
		req.NoError(err)
		req.NotNil(edge)
		req.Equal(domain.ConnectionPending, edge.Status)
	})
}

func TestConnectionService_Respond(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ConnectionService, *recordingDispatcher, *domain.ConnectionRequest, *domain.User, *domain.User) {
		svc, userRepo, _, dispatcher := newConnectionEnv(t)
		sender := seedUser(t, userRepo, "Sara Novak", "sara@example.com")
		receiver := seedUser(t, userRepo, "Ivan Horvat", "ivan@example.com")
		edge, err := svc.Request(ctx, sender.ID, receiver.ID)
		require.NoError(t, err)
		return svc, dispatcher, edge, sender, receiver
	}

	t.Run("accept transitions the edge and notifies the sender", func(t *testing.T) {
		req := require.New(t)
		svc, dispatcher, edge, sender, receiver := setup(t)

		updated, err := svc.Respond(ctx, edge.ID, receiver.ID, "ACCEPT")

		req.NoError(err)
		req.Equal(domain.ConnectionAccepted, updated.Status)
		req.NotNil(updated.RespondedAt)

		calls := dispatcher.Calls()
		req.Len(calls, 2) // request + accept
		req.Equal(sender.ID, calls[1].UserID)
		req.Contains(calls[1].Title, "Accepted")
		req.Contains(calls[1].Body, "Ivan Horvat")
	})

	t.Run("reject notifies with a Rejected title", func(t *testing.T) {
		req := require.New(t)
		svc, dispatcher, edge, _, receiver := setup(t)

		updated, err := svc.Respond(ctx, edge.ID, receiver.ID, "reject")

		req.NoError(err)
		req.Equal(domain.ConnectionRejected, updated.Status)
		req.Contains(dispatcher.Calls()[1].Title, "Rejected")
	})

	t.Run("unknown edge is not found", func(t *testing.T) {
		svc, _, _, _, receiver := setup(t)
		_, err := svc.Respond(ctx, uuid.New(), receiver.ID, "ACCEPT")
		require.ErrorIs(t, err, ErrConnectionNotFound)
	})

	t.Run("only the receiver may respond", func(t *testing.T) {
		svc, _, edge, sender, _ := setup(t)
		_, err := svc.Respond(ctx, edge.ID, sender.ID, "ACCEPT")
		require.ErrorIs(t, err, ErrNotRequestReceiver)
	})

	t.Run("responding to a terminal edge conflicts", func(t *testing.T) {
		req := require.New(t)
		svc, _, edge, _, receiver := setup(t)

		_, err := svc.Respond(ctx, edge.ID, receiver.ID, "ACCEPT")
		req.NoError(err)

		_, err = svc.Respond(ctx, edge.ID, receiver.ID, "REJECT")
		req.ErrorIs(err, ErrAlreadyResponded)
	})

	t.Run("invalid action fails before any lookup", func(t *testing.T) {
		svc, _, edge, _, receiver := setup(t)
		_, err := svc.Respond(ctx, edge.ID, receiver.ID, "MAYBE")
		require.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("exactly one concurrent responder wins", func(t *testing.T) {
		req := require.New(t)
		svc, _, edge, _, receiver := setup(t)

		const attempts = 8
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				action := "ACCEPT"
				if i%2 == 1 {
					action = "REJECT"
				}
				_, errs[i] = svc.Respond(ctx, edge.ID, receiver.ID, action)
			}()
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				req.ErrorIs(err, ErrAlreadyResponded)
			}
		}
		req.Equal(1, succeeded)

		final, err := svc.GetStatus(ctx, edge.SenderID, edge.ReceiverID)
		req.NoError(err)
		req.True(final.Status.Terminal())
	})
}

func TestConnectionService_Reads(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)

	svc, userRepo, _, _ := newConnectionEnv(t)
	a := seedUser(t, userRepo, "A", "a@example.com")
	b := seedUser(t, userRepo, "B", "b@example.com")
	c := seedUser(t, userRepo, "C", "c@example.com")

	abEdge, err := svc.Request(ctx, a.ID, b.ID)
	req.NoError(err)
	caEdge, err := svc.Request(ctx, c.ID, a.ID)
	req.NoError(err)
	_, err = svc.Respond(ctx, caEdge.ID, a.ID, "ACCEPT")
	req.NoError(err)

	t.Run("listPending shows only pending edges addressed to the user", func(t *testing.T) {
		pending, err := svc.ListPending(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, abEdge.ID, pending[0].ID)

		pending, err = svc.ListPending(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("listSent shows all edges the user initiated", func(t *testing.T) {
		sent, err := svc.ListSent(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, abEdge.ID, sent[0].ID)
	})

	t.Run("listAccepted includes edges from either side", func(t *testing.T) {
		accepted, err := svc.ListAccepted(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, caEdge.ID, accepted[0].ID)

		accepted, err = svc.ListAccepted(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, accepted, 1)
	})

	t.Run("getStatus is symmetric and nil when no edge exists", func(t *testing.T) {
		status, err := svc.GetStatus(ctx, b.ID, a.ID)
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.Equal(t, abEdge.ID, status.ID)

		status, err = svc.GetStatus(ctx, b.ID, c.ID)
		require.NoError(t, err)
		assert.Nil(t, status)

		_, err = svc.GetStatus(ctx, a.ID, a.ID)
		assert.ErrorIs(t, err, ErrCannotConnectSelf)
	})
}

// The email channel must stay silent for the initial request and fire for
// the response; wired through the real dispatcher to cover the filter
// end to end.
func TestConnectionService_EmailFanout(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)

	userRepo := memory.NewUserRepo()
	connRepo := memory.NewConnectionRepo()
	sender := &recordingEmailSender{}
	dispatcher := NewNotificationService(userRepo, sender)
	svc := NewConnectionService(connRepo, userRepo, dispatcher)

	s := seedUser(t, userRepo, "Sara Novak", "sara@example.com")
	r := seedUser(t, userRepo, "Ivan Horvat", "ivan@example.com")

	edge, err := svc.Request(ctx, s.ID, r.ID)
	req.NoError(err)
	req.Empty(sender.Sent(), "initial connection request must not be emailed")

	_, err = svc.Respond(ctx, edge.ID, r.ID, "ACCEPT")
	req.NoError(err)

	sent := sender.Sent()
	req.Len(sent, 1)
	req.Equal("sara@example.com", sent[0].To)
	req.Contains(sent[0].Subject, "Connection Accepted")
	req.Contains(sent[0].Body, "Ivan Horvat accepted your connection request!")
}
