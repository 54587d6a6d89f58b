package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/repository"
)

// ConversationService derives per-user inbox views from message rows.
// It never mutates anything.
type ConversationService struct {
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
}

func NewConversationService(msgRepo repository.MessageRepository, userRepo repository.UserRepository) *ConversationService {
	return &ConversationService{
		msgRepo:  msgRepo,
		userRepo: userRepo,
	}
}

// ListConversations assembles one summary per distinct chat partner.
// Summaries are built concurrently but keep the partner order from the
// distinct-partner query, then sort by latest-message timestamp descending
// with no-message partners last, their relative order preserved. Partners
// whose user row has vanished are skipped.
func (s *ConversationService) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error) {
	partnerIDs, err := s.msgRepo.ListPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.ConversationSummary, len(partnerIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, partnerID := range partnerIDs {
		g.Go(func() error {
			partner, err := s.userRepo.GetByID(gctx, partnerID)
			if err != nil {
				return err
			}
			if partner == nil {
				return nil
			}

			latest, err := s.msgRepo.LatestBetween(gctx, userID, partnerID)
			if err != nil {
				return err
			}
			unread, err := s.msgRepo.CountUnread(gctx, userID, partnerID)
			if err != nil {
				return err
			}

			summary := domain.ConversationSummary{
				PartnerID:           partner.ID,
				PartnerName:         partner.FullName,
				PartnerProfileImage: partner.ProfileImage,
				LatestContent:       "No messages yet.",
				UnreadCount:         unread,
			}
			if latest != nil {
				summary.LatestContent = latest.Content
				ts := latest.Timestamp
				summary.LatestTimestamp = &ts
			}
			results[i] = &summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := lo.FilterMap(results, func(s *domain.ConversationSummary, _ int) (domain.ConversationSummary, bool) {
		if s == nil {
			return domain.ConversationSummary{}, false
		}
		return *s, true
	})

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LatestTimestamp, summaries[j].LatestTimestamp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return summaries, nil
}
