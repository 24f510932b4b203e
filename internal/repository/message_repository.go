package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
)

// MessageRepository provides append-only access to directed notes.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message. There is no update or delete.
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}

	const query = `INSERT INTO messages (id, sender_id, sender_name, receiver_id, body, sent_at)
		VALUES (:id, :sender_id, :sender_name, :receiver_id, :body, :sent_at)`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListForPrincipal returns messages sent or received by the principal,
// newest first.
func (r *MessageRepository) ListForPrincipal(ctx context.Context, principalID string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, sender_id, sender_name, receiver_id, body, sent_at FROM messages
		WHERE sender_id = $1 OR receiver_id = $1 ORDER BY sent_at DESC LIMIT %d`, limit)

	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, principalID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
