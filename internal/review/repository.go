package review

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

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, rv *Review) (uuid.UUID, error)
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]Review, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, rv *Review) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate review ID: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query, id, rv.ProductID, rv.UserID, rv.Rating, rv.Comment, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return uuid.Nil, ErrProductNotFound
		}

		return uuid.Nil, fmt.Errorf("repository: failed to insert review: %w", err)
	}

	rv.ID = id
	rv.CreatedAt = now

	return id, nil
}

func (r *postgresRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	query := `
		SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reviews for product %s: %w", productID, err)
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		var rv Review
		err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating reviews: %w", err)
	}

	return reviews, nil
}
