package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/viktor-nazarov/bloomcart/internal/thread"
)

type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusPreparing       Status = "PREPARING"
	StatusDelivered       Status = "DELIVERED"
	StatusRejected        Status = "REJECTED"
	StatusCanceled        Status = "CANCELED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusAwaitingPayment, StatusPaid, StatusPreparing, StatusDelivered, StatusRejected, StatusCanceled:
		return true
	}

	return false
}

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentWesternUnion PaymentMethod = "WESTERN_UNION"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Valid() bool {
	return m == PaymentBankTransfer || m == PaymentWesternUnion
}

// UnknownProductName is shown for items whose product has been deleted since
// the order was placed.
const UnknownProductName = "Unknown product"

type Item struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID uuid.UUID `json:"order_id" db:"order_id"`
	// ProductID is a soft reference: the product row may no longer exist.
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"-"`
	Quantity    int       `json:"quantity" db:"quantity"`
	// PriceCents is the unit price snapshotted at purchase time.
	PriceCents    int64     `json:"price_cents" db:"price_cents"`
	SelectedColor *string   `json:"selected_color,omitempty" db:"selected_color"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type PaymentReceipt struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Order struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	Status        Status           `json:"status" db:"status"`
	PaymentMethod PaymentMethod    `json:"payment_method" db:"payment_method"`
	TotalCents    int64            `json:"total_cents" db:"total_cents"`
	IsNew         bool             `json:"is_new" db:"is_new"`
	Items         []Item           `json:"items" db:"-"`
	Receipt       *PaymentReceipt  `json:"receipt,omitempty" db:"-"`
	Messages      []thread.Message `json:"messages" db:"-"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}
