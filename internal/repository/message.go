package repository

import (
	"context"
	"errors"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, sender, receiver, content, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		message.ID, message.Sender, message.Receiver, message.Content, message.Read, message.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.Persistence, "failed to create message", err)
	}
	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, sender, receiver, content, read, created_at
		FROM messages
		WHERE id = $1
	`
	var message models.Message
	err := r.db.QueryRow(ctx, query, id).Scan(
		&message.ID, &message.Sender, &message.Receiver, &message.Content, &message.Read, &message.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.NotFound, "message not found", err)
		}
		return nil, apperrors.Wrap(apperrors.Persistence, "failed to get message", err)
	}
	return &message, nil
}

// GetAll retrieves every message
func (r *MessageRepository) GetAll(ctx context.Context) ([]*models.Message, error) {
	query := `
		SELECT id, sender, receiver, content, read, created_at
		FROM messages
		ORDER BY created_at
	`
	return r.queryMessages(ctx, query)
}

// ListBySender retrieves all messages sent by a user
func (r *MessageRepository) ListBySender(ctx context.Context, senderID string) ([]*models.Message, error) {
	query := `
		SELECT id, sender, receiver, content, read, created_at
		FROM messages
		WHERE sender = $1
		ORDER BY created_at
	`
	return r.queryMessages(ctx, query, senderID)
}

// MarkRead sets the read flag on a message
func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	query := `UPDATE messages SET read = TRUE WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(apperrors.Persistence, "failed to mark message read", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "message not found")
	}
	return nil
}

// Delete removes a message
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM messages WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(apperrors.Persistence, "failed to delete message", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "message not found")
	}
	return nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, "failed to query messages", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID, &message.Sender, &message.Receiver, &message.Content, &message.Read, &message.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Persistence, "failed to scan message", err)
		}
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, "error iterating messages", err)
	}
	return messages, nil
}
