package question

import (
	"time"

	"github.com/gofrs/uuid"
)

// Question is a customer question on a product. Answer state is asymmetric:
// the admin side counts questions that are still unanswered, the customer
// side tracks whether an answer has been seen (IsAnswerRead).
type Question struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ProductID    uuid.UUID  `json:"product_id" db:"product_id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	Question     string     `json:"question" db:"question"`
	Answer       *string    `json:"answer,omitempty" db:"answer"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty" db:"answered_at"`
	IsAnswerRead bool       `json:"is_answer_read" db:"is_answer_read"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
