package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/thread"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	// CreateOrder writes the order, its items and the optional receipt in one
	// transaction; when clearCart is set the user's cart rows go in the same
	// transaction, so a failure leaves no partial order and no lost cart.
	CreateOrder(ctx context.Context, o *Order, receiptURL string, clearCart bool) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, clearNew bool) error
	OwnerOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, bool, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateOrder(ctx context.Context, o *Order, receiptURL string, clearCart bool) (orderID uuid.UUID, err error) {
	finalOrderID, genErr := uuid.NewV4()
	if genErr != nil {
		log.Error().Err(genErr).Msg("repository: failed to generate order ID")
		return uuid.Nil, fmt.Errorf("repository: failed to generate order ID: %w", genErr)
	}
	o.ID = finalOrderID

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id_attempted", finalOrderID).Msg("Panic recovered during CreateOrder, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", finalOrderID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Stringer("order_id_attempted", finalOrderID).Msg("Transaction for CreateOrder failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", finalOrderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", finalOrderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()

	queryOrder := `
		INSERT INTO orders (id, user_id, status, payment_method, total_cents, is_new, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
	`
	_, err = tx.Exec(ctx, queryOrder,
		finalOrderID,
		o.UserID,
		string(o.Status),
		string(o.PaymentMethod),
		o.TotalCents,
		now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}
	o.IsNew = true
	o.CreatedAt = now
	o.UpdatedAt = now

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price_cents, selected_color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range o.Items {
		item := &o.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return uuid.Nil, err
		}
		item.ID = itemID
		item.OrderID = finalOrderID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			finalOrderID,
			item.ProductID,
			item.Quantity,
			item.PriceCents,
			item.SelectedColor,
			now,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to insert order item for order %s: %w", finalOrderID, err)
		}
	}

	if receiptURL != "" {
		receiptID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate receipt ID: %w", genErr)
			return uuid.Nil, err
		}

		queryReceipt := `
			INSERT INTO payment_receipts (id, order_id, url, created_at)
			VALUES ($1, $2, $3, $4)
		`
		_, err = tx.Exec(ctx, queryReceipt, receiptID, finalOrderID, receiptURL, now)
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to insert payment receipt for order %s: %w", finalOrderID, err)
		}

		o.Receipt = &PaymentReceipt{ID: receiptID, OrderID: finalOrderID, URL: receiptURL, CreatedAt: now}
	}

	if clearCart {
		_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.UserID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to clear cart for user %s: %w", o.UserID, err)
		}
	}

	return finalOrderID, nil
}

const orderColumns = `id, user_id, status, payment_method, total_cents, is_new, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status, paymentMethod string
	err := row.Scan(&o.ID, &o.UserID, &status, &paymentMethod, &o.TotalCents, &o.IsNew, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	o.PaymentMethod = PaymentMethod(paymentMethod)
	o.Items = make([]Item, 0)
	o.Messages = make([]thread.Message, 0)

	return &o, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	ordersMap := map[uuid.UUID]*Order{o.ID: o}
	if err := r.loadChildren(ctx, ordersMap, []uuid.UUID{o.ID}); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *postgresRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	orderRows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		o, err := scanOrder(orderRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		ordersMap[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
	}

	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	if err := r.loadChildren(ctx, ordersMap, orderIDs); err != nil {
		return nil, err
	}

	resultOrders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		resultOrders = append(resultOrders, *ordersMap[id])
	}

	return resultOrders, nil
}

// loadChildren attaches items, receipts and the message thread to every order
// in ordersMap. Items join products softly: a deleted product degrades to the
// UnknownProductName placeholder instead of failing the read.
func (r *postgresRepository) loadChildren(ctx context.Context, ordersMap map[uuid.UUID]*Order, orderIDs []uuid.UUID) error {
	itemsQuery := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price_cents, oi.selected_color, oi.created_at
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.created_at
	`

	itemRows, err := r.db.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item Item
		var productName *string
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &productName, &item.Quantity, &item.PriceCents, &item.SelectedColor, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to scan order item: %w", err)
		}

		if productName != nil {
			item.ProductName = *productName
		} else {
			item.ProductName = UnknownProductName
		}

		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating order items: %w", err)
	}

	receiptsQuery := `
		SELECT id, order_id, url, created_at
		FROM payment_receipts
		WHERE order_id = ANY($1)
	`

	receiptRows, err := r.db.Query(ctx, receiptsQuery, orderIDs)
	if err != nil {
		return fmt.Errorf("repository: failed to query payment receipts: %w", err)
	}
	defer receiptRows.Close()

	for receiptRows.Next() {
		var receipt PaymentReceipt
		err := receiptRows.Scan(&receipt.ID, &receipt.OrderID, &receipt.URL, &receipt.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to scan payment receipt: %w", err)
		}

		if o, ok := ordersMap[receipt.OrderID]; ok {
			rcpt := receipt
			o.Receipt = &rcpt
		}
	}
	if err := receiptRows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating payment receipts: %w", err)
	}

	messagesQuery := `
		SELECT id, order_id, content, is_admin, is_read, created_at
		FROM order_messages
		WHERE order_id = ANY($1)
		ORDER BY created_at
	`

	messageRows, err := r.db.Query(ctx, messagesQuery, orderIDs)
	if err != nil {
		return fmt.Errorf("repository: failed to query order messages: %w", err)
	}
	defer messageRows.Close()

	for messageRows.Next() {
		var msg thread.Message
		err := messageRows.Scan(&msg.ID, &msg.OrderID, &msg.Content, &msg.IsAdmin, &msg.IsRead, &msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to scan order message: %w", err)
		}

		if o, ok := ordersMap[msg.OrderID]; ok {
			o.Messages = append(o.Messages, msg)
		}
	}
	if err := messageRows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating order messages: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, clearNew bool) error {
	// Last-write-wins on purpose: concurrent status updates and read-state
	// flips on the same order are tolerated, a badge count may lag by one
	// polling interval at most.
	query := `
		UPDATE orders
		SET status = $1, is_new = (is_new AND NOT $2), updated_at = $3
		WHERE id = $4
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), clearNew, time.Now().UTC(), orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("repository: order not found for status update")
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) OwnerOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, bool, error) {
	var ownerID uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT user_id FROM orders WHERE id = $1`, orderID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}

		return uuid.Nil, false, fmt.Errorf("repository: failed to select order owner %s: %w", orderID, err)
	}

	return ownerID, true, nil
}
