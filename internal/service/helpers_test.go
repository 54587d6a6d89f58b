package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/repository/memory"
)

type dispatchCall struct {
	UserID uuid.UUID
	Actor  string
	Title  string
	Body   string
	Kind   domain.NotificationKind
}

// recordingDispatcher captures every fan-out without sending anything.
type recordingDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
}

func (d *recordingDispatcher) Dispatch(_ context.Context, userID uuid.UUID, actorName, title, body string, kind domain.NotificationKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{UserID: userID, Actor: actorName, Title: title, Body: body, Kind: kind})
}

func (d *recordingDispatcher) Calls() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dispatchCall, len(d.calls))
	copy(out, d.calls)
	return out
}

// recordingPusher captures live pushes.
type recordingPusher struct {
	mu     sync.Mutex
	pushed []domain.Message
}

func (p *recordingPusher) PushMessage(msg *domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, *msg)
}

func (p *recordingPusher) Pushed() []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Message, len(p.pushed))
	copy(out, p.pushed)
	return out
}

// recordingEmailSender captures offline-channel sends; Fail makes every
// send error.
type recordingEmailSender struct {
	mu   sync.Mutex
	Fail error
	sent []sentEmail
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (s *recordingEmailSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (s *recordingEmailSender) Sent() []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentEmail, len(s.sent))
	copy(out, s.sent)
	return out
}

func seedUser(t *testing.T, repo *memory.UserRepo, name, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:         uuid.New(),
		Email:      email,
		FullName:   name,
		Role:       domain.RoleStudent,
		IsApproved: true,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}
