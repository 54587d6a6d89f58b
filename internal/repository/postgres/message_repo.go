package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alumniconnect/backend/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `id, sender_id, receiver_id, sender_name, receiver_name, content, ts, is_read, type, seq`

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, sender_name, receiver_name, content, ts, is_read, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	return r.pool.QueryRow(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID,
		msg.SenderName, msg.ReceiverName,
		msg.Content, msg.Timestamp, msg.IsRead, msg.Type,
	).Scan(&msg.Seq)
}

func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY ts ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := scanMessage(rows, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) MarkRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`
	tag, err := r.pool.Exec(ctx, query, receiverID, senderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *MessageRepo) CountUnread(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`
	var count int64
	err := r.pool.QueryRow(ctx, query, receiverID, senderID).Scan(&count)
	return count, err
}

func (r *MessageRepo) LatestBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY ts DESC, seq DESC
		LIMIT 1`
	var msg domain.Message
	err := scanMessage(r.pool.QueryRow(ctx, query, userA, userB), &msg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepo) ListPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		partners = append(partners, id)
	}
	return partners, rows.Err()
}

func scanMessage(row pgx.Row, msg *domain.Message) error {
	return row.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID,
		&msg.SenderName, &msg.ReceiverName,
		&msg.Content, &msg.Timestamp, &msg.IsRead, &msg.Type, &msg.Seq,
	)
}
