package product

import (
	"time"

	"github.com/gofrs/uuid"
)

type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Colors      []string  `json:"colors" db:"colors"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
