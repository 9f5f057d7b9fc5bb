package cart

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
	ItemsForUser(ctx context.Context, userID uuid.UUID) ([]Item, error)
	Upsert(ctx context.Context, item *Item) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Merge(ctx context.Context, userID uuid.UUID, items []Item) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ItemsForUser(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	query := `
		SELECT user_id, product_id, quantity, selected_color, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.SelectedColor, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, item *Item) error {
	now := time.Now().UTC()

	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, selected_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, selected_color = EXCLUDED.selected_color, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query, item.UserID, item.ProductID, item.Quantity, item.SelectedColor, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrProductNotFound
		}

		return fmt.Errorf("repository: failed to upsert cart item: %w", err)
	}

	return nil
}

func (r *postgresRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to remove cart item: %w", err)
	}

	return nil
}

// Merge folds a client-side cart into the persisted one on login. Quantities
// are added per item; re-running a partially failed merge adds exactly what a
// retry of the same request would add.
func (r *postgresRepository) Merge(ctx context.Context, userID uuid.UUID, items []Item) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, selected_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`

	for _, item := range items {
		now := time.Now().UTC()
		_, err := r.db.Exec(ctx, query, userID, item.ProductID, item.Quantity, item.SelectedColor, now)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				// A product deleted since the client cached it; skip the line.
				continue
			}

			return fmt.Errorf("repository: failed to merge cart item for product %s: %w", item.ProductID, err)
		}
	}

	return nil
}
