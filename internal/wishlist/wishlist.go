// Package wishlist stores per-user saved products. Adding a product that is
// already on the list is a no-op, not an error.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrProductNotFound = errors.New("product not found")

type Entry struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Entry, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	query := `
		INSERT INTO wishlist_items (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, productID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrProductNotFound
		}

		return fmt.Errorf("repository: failed to add wishlist item: %w", err)
	}

	return nil
}

func (r *postgresRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to remove wishlist item: %w", err)
	}

	return nil
}

func (r *postgresRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	query := `
		SELECT user_id, product_id, created_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query wishlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.ProductID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan wishlist item: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating wishlist items: %w", err)
	}

	return entries, nil
}

type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]Entry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	err := s.repo.Add(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}

		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to add wishlist item")
		return fmt.Errorf("service: failed to add wishlist item: %w", err)
	}

	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to remove wishlist item")
		return fmt.Errorf("service: failed to remove wishlist item: %w", err)
	}

	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	entries, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch wishlist")
		return nil, fmt.Errorf("service: failed to fetch wishlist: %w", err)
	}

	return entries, nil
}
