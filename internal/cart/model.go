package cart

import (
	"time"

	"github.com/gofrs/uuid"
)

// Item is one cart line, keyed by (user, product).
type Item struct {
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	ProductID     uuid.UUID `json:"product_id" db:"product_id"`
	Quantity      int       `json:"quantity" db:"quantity"`
	SelectedColor string    `json:"selected_color" db:"selected_color"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
