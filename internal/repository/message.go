package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *model.ChatMessage) error {
	defer logger.DeferLogDuration("message.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, room_id, sender_id, receiver_id, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		m.ID, m.RoomID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("messageRepo.Create: %w", err)
	}
	return nil
}

// History returns the most recent messages of a room, newest first.
// Callers reverse the slice before display.
func (r *MessageRepository) History(ctx context.Context, roomID string, limit int) ([]model.ChatMessage, error) {
	defer logger.DeferLogDuration("message.History", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, room_id, sender_id, receiver_id, body, created_at
		 FROM messages
		 WHERE room_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("messageRepo.History: %w", err)
	}
	defer rows.Close()
	messages := make([]model.ChatMessage, 0, limit)
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("messageRepo.History scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messageRepo.History rows: %w", err)
	}
	return messages, nil
}
