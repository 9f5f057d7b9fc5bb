package stats

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	AdminStats(ctx context.Context) (AdminStats, error)
	CustomerStats(ctx context.Context, userID uuid.UUID) (CustomerStats, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) AdminStats(ctx context.Context) (AdminStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE is_new),
			(SELECT COUNT(*) FROM order_messages WHERE NOT is_admin AND NOT is_read),
			(SELECT COUNT(*) FROM product_questions WHERE answer IS NULL)
	`

	var s AdminStats
	err := r.db.QueryRow(ctx, query).Scan(&s.NewOrdersCount, &s.UnreadMessagesCount, &s.UnreadQuestionsCount)
	if err != nil {
		return AdminStats{}, fmt.Errorf("repository: failed to compute admin stats: %w", err)
	}

	return s, nil
}

func (r *postgresRepository) CustomerStats(ctx context.Context, userID uuid.UUID) (CustomerStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*)
			 FROM order_messages m
			 JOIN orders o ON o.id = m.order_id
			 WHERE o.user_id = $1 AND m.is_admin AND NOT m.is_read),
			(SELECT COUNT(*)
			 FROM product_questions
			 WHERE user_id = $1 AND answer IS NOT NULL AND NOT is_answer_read)
	`

	s := CustomerStats{UserID: userID}
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UnreadMessageCount, &s.UnreadAnsweredQuestionCount)
	if err != nil {
		return CustomerStats{}, fmt.Errorf("repository: failed to compute customer stats for user %s: %w", userID, err)
	}

	return s, nil
}
