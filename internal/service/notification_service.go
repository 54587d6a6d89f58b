package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/repository"
)

// EmailSender is the offline notification channel.
type EmailSender interface {
	Send(to, subject, body string) error
}

// NotificationService fans qualifying domain events out by email. Every
// failure is logged and swallowed here; the operations that trigger a
// notification must succeed even when the channel is down.
type NotificationService struct {
	userRepo repository.UserRepository
	sender   EmailSender
}

func NewNotificationService(userRepo repository.UserRepository, sender EmailSender) *NotificationService {
	return &NotificationService{
		userRepo: userRepo,
		sender:   sender,
	}
}

// Dispatch looks up the recipient and sends the event through the filter.
// No reachable address, a filtered kind, or a send failure all end quietly.
func (s *NotificationService) Dispatch(ctx context.Context, userID uuid.UUID, actorName, title, body string, kind domain.NotificationKind) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("notify: recipient lookup failed for %s: %v", userID, err)
		return
	}
	if user == nil || user.Email == "" {
		return
	}

	if !domain.ShouldDispatch(kind, title) {
		return
	}

	subject := "Alumni Connect Notification: " + title
	emailBody := "Dear " + user.FullName + ",\n\n" + body + "\n\nRegards,\nAlumni Connect Team"

	if err := s.sender.Send(user.Email, subject, emailBody); err != nil {
		log.Printf("notify: sending email to %s failed: %v", user.Email, err)
	}
}
