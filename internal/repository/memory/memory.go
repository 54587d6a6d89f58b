// Package memory provides mutex-guarded implementations of the repository
// interfaces. They enforce the same atomicity discipline as the postgres
// implementations (pair uniqueness on insert, conditional status update)
// and back the service test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/domain"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.users[id]; ok {
		u := user
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

type ConnectionRepo struct {
	mu    sync.Mutex
	edges map[uuid.UUID]domain.ConnectionRequest
}

func NewConnectionRepo() *ConnectionRepo {
	return &ConnectionRepo{edges: make(map[uuid.UUID]domain.ConnectionRequest)}
}

func (r *ConnectionRepo) Create(_ context.Context, req *domain.ConnectionRequest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, edge := range r.edges {
		if !samePair(edge, req.SenderID, req.ReceiverID) {
			continue
		}
		if edge.Status == domain.ConnectionRejected {
			// Fresh request replaces the rejected edge.
			delete(r.edges, id)
			break
		}
		return false, nil
	}
	r.edges[req.ID] = *req
	return true, nil
}

func (r *ConnectionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ConnectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if edge, ok := r.edges[id]; ok {
		e := edge
		return &e, nil
	}
	return nil, nil
}

func (r *ConnectionRepo) GetByPair(_ context.Context, userA, userB uuid.UUID) (*domain.ConnectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, edge := range r.edges {
		if samePair(edge, userA, userB) {
			e := edge
			return &e, nil
		}
	}
	return nil, nil
}

func (r *ConnectionRepo) ListPendingByReceiver(_ context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	return r.collect(func(e domain.ConnectionRequest) bool {
		return e.ReceiverID == userID && e.Status == domain.ConnectionPending
	})
}

func (r *ConnectionRepo) ListBySender(_ context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	return r.collect(func(e domain.ConnectionRequest) bool {
		return e.SenderID == userID
	})
}

func (r *ConnectionRepo) ListAcceptedByUser(_ context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	return r.collect(func(e domain.ConnectionRequest) bool {
		return (e.SenderID == userID || e.ReceiverID == userID) && e.Status == domain.ConnectionAccepted
	})
}

func (r *ConnectionRepo) UpdateStatusIfPending(_ context.Context, id uuid.UUID, status domain.ConnectionStatus, respondedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	edge, ok := r.edges[id]
	if !ok || edge.Status != domain.ConnectionPending {
		return false, nil
	}
	edge.Status = status
	t := respondedAt
	edge.RespondedAt = &t
	r.edges[id] = edge
	return true, nil
}

func (r *ConnectionRepo) collect(keep func(domain.ConnectionRequest) bool) ([]domain.ConnectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ConnectionRequest
	for _, edge := range r.edges {
		if keep(edge) {
			out = append(out, edge)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

func samePair(e domain.ConnectionRequest, a, b uuid.UUID) bool {
	return (e.SenderID == a && e.ReceiverID == b) || (e.SenderID == b && e.ReceiverID == a)
}

type MessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	nextSeq  int64
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{}
}

func (r *MessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	msg.Seq = r.nextSeq
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MessageRepo) ListBetween(_ context.Context, userA, userB uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, msg := range r.messages {
		if betweenPair(msg, userA, userB) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (r *MessageRepo) MarkRead(_ context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			m.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *MessageRepo) CountUnread(_ context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, msg := range r.messages {
		if msg.ReceiverID == receiverID && msg.SenderID == senderID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *MessageRepo) LatestBetween(_ context.Context, userA, userB uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Message
	for i := range r.messages {
		msg := r.messages[i]
		if !betweenPair(msg, userA, userB) {
			continue
		}
		if latest == nil || msg.Timestamp.After(latest.Timestamp) ||
			(msg.Timestamp.Equal(latest.Timestamp) && msg.Seq > latest.Seq) {
			m := msg
			latest = &m
		}
	}
	return latest, nil
}

func (r *MessageRepo) ListPartnerIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{})
	var partners []uuid.UUID
	for _, msg := range r.messages {
		var partner uuid.UUID
		switch userID {
		case msg.SenderID:
			partner = msg.ReceiverID
		case msg.ReceiverID:
			partner = msg.SenderID
		default:
			continue
		}
		if _, ok := seen[partner]; !ok {
			seen[partner] = struct{}{}
			partners = append(partners, partner)
		}
	}
	return partners, nil
}

func betweenPair(m domain.Message, a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}
