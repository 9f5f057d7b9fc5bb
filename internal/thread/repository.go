package thread

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	Append(ctx context.Context, msg *Message) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]Message, error)
	// MarkRead flips every unread message authored by the party opposite to
	// the reader. When the reader is the admin it also clears the order's
	// is_new flag: opening the thread counts as the admin acting on the order.
	MarkRead(ctx context.Context, orderID uuid.UUID, readerIsAdmin bool) error
	UnreadCount(ctx context.Context, orderID uuid.UUID, authoredByAdmin bool) (int, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Append(ctx context.Context, msg *Message) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate message ID: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO order_messages (id, order_id, content, is_admin, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`
	_, err = r.db.Exec(ctx, query, id, msg.OrderID, msg.Content, msg.IsAdmin, now)
	if err != nil {
		return fmt.Errorf("repository: failed to insert message for order %s: %w", msg.OrderID, err)
	}

	msg.ID = id
	msg.IsRead = false
	msg.CreatedAt = now

	return nil
}

func (r *postgresRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]Message, error) {
	query := `
		SELECT id, order_id, content, is_admin, is_read, created_at
		FROM order_messages
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query messages for order %s: %w", orderID, err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var msg Message
		err := rows.Scan(&msg.ID, &msg.OrderID, &msg.Content, &msg.IsAdmin, &msg.IsRead, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan message for order %s: %w", orderID, err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating messages for order %s: %w", orderID, err)
	}

	return messages, nil
}

func (r *postgresRepository) MarkRead(ctx context.Context, orderID uuid.UUID, readerIsAdmin bool) error {
	query := `
		UPDATE order_messages
		SET is_read = TRUE
		WHERE order_id = $1 AND is_admin = $2 AND NOT is_read
	`

	// The other party's messages become read, never the reader's own.
	cmdTag, err := r.db.Exec(ctx, query, orderID, !readerIsAdmin)
	if err != nil {
		return fmt.Errorf("repository: failed to mark messages read for order %s: %w", orderID, err)
	}

	if cmdTag.RowsAffected() > 0 {
		log.Debug().Stringer("order_id", orderID).Int64("messages", cmdTag.RowsAffected()).Msg("repository: messages marked read")
	}

	if readerIsAdmin {
		_, err = r.db.Exec(ctx, `UPDATE orders SET is_new = FALSE WHERE id = $1 AND is_new`, orderID)
		if err != nil {
			return fmt.Errorf("repository: failed to clear is_new for order %s: %w", orderID, err)
		}
	}

	return nil
}

func (r *postgresRepository) UnreadCount(ctx context.Context, orderID uuid.UUID, authoredByAdmin bool) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM order_messages
		WHERE order_id = $1 AND is_admin = $2 AND NOT is_read
	`

	var count int
	err := r.db.QueryRow(ctx, query, orderID, authoredByAdmin).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count unread messages for order %s: %w", orderID, err)
	}

	return count, nil
}
