package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrProductNotFound  = errors.New("product not found")
)

type Repository interface {
	Create(ctx context.Context, q *Question) (uuid.UUID, error)
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]Question, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Question, error)
	SetAnswer(ctx context.Context, id uuid.UUID, answer *string, answeredAt *time.Time) error
	MarkAnswersRead(ctx context.Context, userID uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, q *Question) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate question ID: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO product_questions (id, product_id, user_id, question, is_answer_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`
	_, err = r.db.Exec(ctx, query, id, q.ProductID, q.UserID, q.Question, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return uuid.Nil, ErrProductNotFound
		}

		return uuid.Nil, fmt.Errorf("repository: failed to insert question: %w", err)
	}

	q.ID = id
	q.CreatedAt = now

	return id, nil
}

const questionColumns = `id, product_id, user_id, question, answer, answered_at, is_answer_read, created_at`

func (r *postgresRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]Question, error) {
	query := `SELECT ` + questionColumns + ` FROM product_questions WHERE product_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, productID)
}

func (r *postgresRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Question, error) {
	query := `SELECT ` + questionColumns + ` FROM product_questions WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Question, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := make([]Question, 0)
	for rows.Next() {
		var q Question
		err := rows.Scan(&q.ID, &q.ProductID, &q.UserID, &q.Question, &q.Answer, &q.AnsweredAt, &q.IsAnswerRead, &q.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating questions: %w", err)
	}

	return questions, nil
}

// SetAnswer writes or clears the answer. Clearing also resets
// is_answer_read so a future answer shows up as fresh for the asker.
func (r *postgresRepository) SetAnswer(ctx context.Context, id uuid.UUID, answer *string, answeredAt *time.Time) error {
	query := `
		UPDATE product_questions
		SET answer = $1, answered_at = $2, is_answer_read = FALSE
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, answer, answeredAt, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update answer for question %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrQuestionNotFound
	}

	return nil
}

func (r *postgresRepository) MarkAnswersRead(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE product_questions
		SET is_answer_read = TRUE
		WHERE user_id = $1 AND answer IS NOT NULL AND NOT is_answer_read
	`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to mark answers read for user %s: %w", userID, err)
	}

	return nil
}
