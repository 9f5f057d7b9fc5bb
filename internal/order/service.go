package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/cart"
	"github.com/viktor-nazarov/bloomcart/internal/product"
)

var (
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidItem          = errors.New("invalid order item")
	ErrInvalidStatus        = errors.New("unknown order status")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrForbidden            = errors.New("operation not permitted for this actor")
)

// ProductSource provides the live products an order snapshots its prices from.
type ProductSource interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]product.Product, error)
}

// CartSource provides the customer's persisted cart at checkout time.
type CartSource interface {
	ItemsForUser(ctx context.Context, userID uuid.UUID) ([]cart.Item, error)
}

// CheckoutItem is a client-supplied order line. Prices never come from the
// client; only the product reference, quantity and variant do.
type CheckoutItem struct {
	ProductID     uuid.UUID
	Quantity      int
	SelectedColor string
}

type CheckoutInput struct {
	PaymentMethod PaymentMethod
	// ReceiptURL is the opaque reference produced by the external receipt
	// upload; empty means no receipt was attached yet.
	ReceiptURL string
	// Items is the fallback when the customer has no persisted cart.
	Items []CheckoutItem
}

type Service interface {
	Checkout(ctx context.Context, actor auth.Actor, input CheckoutInput) (*Order, error)
	OrdersForUser(ctx context.Context, actor auth.Actor) ([]Order, error)
	AllOrders(ctx context.Context, actor auth.Actor) ([]Order, error)
	GetByID(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, newStatus Status) error
}

type service struct {
	orderRepo Repository
	products  ProductSource
	carts     CartSource
	policy    TransitionPolicy
}

func NewService(orderRepo Repository, products ProductSource, carts CartSource, policy TransitionPolicy) Service {
	return &service{
		orderRepo: orderRepo,
		products:  products,
		carts:     carts,
		policy:    policy,
	}
}

func (s *service) Checkout(ctx context.Context, actor auth.Actor, input CheckoutInput) (*Order, error) {
	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	lines, fromCart, err := s.resolveLines(ctx, actor.ID, input.Items)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %s must be greater than zero", ErrInvalidItem, line.ProductID)
		}
		productIDs = append(productIDs, line.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to resolve products for checkout")
		return nil, fmt.Errorf("service: failed to resolve products: %w", err)
	}

	var totalCents int64
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			// Name the missing product so the storefront can tell the
			// customer which cart line went stale.
			return nil, fmt.Errorf("%w: product %s is no longer available", ErrInvalidItem, line.ProductID)
		}

		item := Item{
			ProductID:  p.ID,
			Quantity:   line.Quantity,
			PriceCents: p.PriceCents,
		}
		if line.SelectedColor != "" {
			color := line.SelectedColor
			item.SelectedColor = &color
		}

		totalCents += int64(line.Quantity) * p.PriceCents
		items = append(items, item)
	}

	o := &Order{
		UserID:        actor.ID,
		Status:        StatusAwaitingPayment,
		PaymentMethod: input.PaymentMethod,
		TotalCents:    totalCents,
		Items:         items,
	}

	if _, err := s.orderRepo.CreateOrder(ctx, o, input.ReceiptURL, fromCart); err != nil {
		log.Error().Err(err).Stringer("user_id", actor.ID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", o.UserID).
		Int64("total_cents", o.TotalCents).
		Bool("from_cart", fromCart).
		Msg("service: order created")

	return o, nil
}

// resolveLines prefers the persisted cart; the client-supplied list is only a
// fallback for sessions that never synced their cart.
func (s *service) resolveLines(ctx context.Context, userID uuid.UUID, fallback []CheckoutItem) ([]CheckoutItem, bool, error) {
	cartItems, err := s.carts.ItemsForUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to load cart for checkout")
		return nil, false, fmt.Errorf("service: failed to load cart: %w", err)
	}

	if len(cartItems) > 0 {
		lines := make([]CheckoutItem, 0, len(cartItems))
		for _, item := range cartItems {
			lines = append(lines, CheckoutItem{
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				SelectedColor: item.SelectedColor,
			})
		}
		return lines, true, nil
	}

	if len(fallback) == 0 {
		return nil, false, ErrEmptyOrder
	}

	return fallback, false, nil
}

func (s *service) OrdersForUser(ctx context.Context, actor auth.Actor) ([]Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, actor.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", actor.ID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) AllOrders(ctx context.Context, actor auth.Actor) ([]Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch all orders")
		return nil, fmt.Errorf("service: failed to fetch all orders: %w", err)
	}

	return orders, nil
}

func (s *service) GetByID(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}

	if !actor.IsAdmin() && o.UserID != actor.ID {
		return nil, ErrForbidden
	}

	return o, nil
}

// UpdateStatus moves an order through its lifecycle. Admins may set any
// status the policy allows and always clear the NEW badge as a side effect,
// even when the flag is already down. Customers get exactly one transition:
// canceling their own order while it still awaits payment.
func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, newStatus Status) error {
	if !newStatus.Valid() {
		return ErrInvalidStatus
	}

	currentOrder, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return ErrOrderNotFound
		}

		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	clearNew := false

	if actor.IsAdmin() {
		if !s.policy.CanTransition(currentOrder.Status, newStatus) {
			log.Warn().
				Stringer("order_id", orderID).
				Stringer("current_status", currentOrder.Status).
				Stringer("new_status", newStatus).
				Msg("service: status transition rejected by policy")
			return fmt.Errorf("service: %w: cannot go from %s to %s", ErrInvalidStatus, currentOrder.Status, newStatus)
		}
		clearNew = true
	} else {
		if currentOrder.UserID != actor.ID {
			return ErrForbidden
		}
		if newStatus != StatusCanceled || currentOrder.Status != StatusAwaitingPayment {
			return ErrForbidden
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus, clearNew); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}

		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().
		Stringer("order_id", orderID).
		Stringer("old_status", currentOrder.Status).
		Stringer("new_status", newStatus).
		Bool("actor_is_admin", actor.IsAdmin()).
		Msg("service: order status updated")

	return nil
}
