package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alumniconnect/backend/internal/domain"
)

type ConnectionRepo struct {
	pool *pgxpool.Pool
}

func NewConnectionRepo(pool *pgxpool.Pool) *ConnectionRepo {
	return &ConnectionRepo{pool: pool}
}

const connectionColumns = `id, sender_id, receiver_id, sender_name, receiver_name, status, sent_at, responded_at`

// Create relies on the unique index over the unordered pair to close the
// race between two simultaneous first requests. A REJECTED row is replaced
// in place by the fresh PENDING request; PENDING and ACCEPTED rows make the
// statement a no-op, reported as false.
func (r *ConnectionRepo) Create(ctx context.Context, req *domain.ConnectionRequest) (bool, error) {
	query := `
		INSERT INTO connection_requests (id, sender_id, receiver_id, sender_name, receiver_name, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ((least(sender_id, receiver_id)), (greatest(sender_id, receiver_id)))
		DO UPDATE SET
			id = EXCLUDED.id,
			sender_id = EXCLUDED.sender_id,
			receiver_id = EXCLUDED.receiver_id,
			sender_name = EXCLUDED.sender_name,
			receiver_name = EXCLUDED.receiver_name,
			status = EXCLUDED.status,
			sent_at = EXCLUDED.sent_at,
			responded_at = NULL
		WHERE connection_requests.status = 'REJECTED'`
	tag, err := r.pool.Exec(ctx, query,
		req.ID, req.SenderID, req.ReceiverID,
		req.SenderName, req.ReceiverName, req.Status, req.SentAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ConnectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConnectionRequest, error) {
	query := `SELECT ` + connectionColumns + ` FROM connection_requests WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ConnectionRepo) GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.ConnectionRequest, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connection_requests
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`
	return r.scanOne(r.pool.QueryRow(ctx, query, userA, userB))
}

func (r *ConnectionRepo) ListPendingByReceiver(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connection_requests
		WHERE receiver_id = $1 AND status = 'PENDING'
		ORDER BY sent_at DESC`
	return r.list(ctx, query, userID)
}

func (r *ConnectionRepo) ListBySender(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connection_requests
		WHERE sender_id = $1
		ORDER BY sent_at DESC`
	return r.list(ctx, query, userID)
}

func (r *ConnectionRepo) ListAcceptedByUser(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connection_requests
		WHERE (sender_id = $1 OR receiver_id = $1) AND status = 'ACCEPTED'
		ORDER BY responded_at DESC`
	return r.list(ctx, query, userID)
}

func (r *ConnectionRepo) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status domain.ConnectionStatus, respondedAt time.Time) (bool, error) {
	query := `
		UPDATE connection_requests
		SET status = $1, responded_at = $2
		WHERE id = $3 AND status = 'PENDING'`
	tag, err := r.pool.Exec(ctx, query, status, respondedAt, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ConnectionRepo) scanOne(row pgx.Row) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	err := row.Scan(
		&req.ID, &req.SenderID, &req.ReceiverID,
		&req.SenderName, &req.ReceiverName,
		&req.Status, &req.SentAt, &req.RespondedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ConnectionRepo) list(ctx context.Context, query string, args ...any) ([]domain.ConnectionRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.ConnectionRequest
	for rows.Next() {
		var req domain.ConnectionRequest
		if err := rows.Scan(
			&req.ID, &req.SenderID, &req.ReceiverID,
			&req.SenderName, &req.ReceiverName,
			&req.Status, &req.SentAt, &req.RespondedAt,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
