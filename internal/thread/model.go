// Package thread implements the per-order message log between one customer
// and the admin role. The log is append-only; read state is a single flag per
// message, scoped by author: an admin-authored message is unread from the
// customer's side and vice versa. That works only because every thread has
// exactly two parties; multi-party support would need per-reader receipts.
package thread

import (
	"time"

	"github.com/gofrs/uuid"
)

type Message struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID uuid.UUID `json:"order_id" db:"order_id"`
	Content string    `json:"content" db:"content"`
	// IsAdmin identifies the authoring party.
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
