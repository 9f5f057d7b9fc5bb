// Package stats derives the small badge counts the storefront polls for. It
// owns no state: every call is a fresh read over orders, messages and
// questions, cheap enough for one request per client every 15-30 seconds.
package stats

import (
	"github.com/gofrs/uuid"
)

type AdminStats struct {
	// NewOrdersCount is the number of orders no admin has acted on yet.
	NewOrdersCount int `json:"new_orders_count"`
	// UnreadMessagesCount counts customer-authored messages not yet read by
	// the admin, across all orders.
	UnreadMessagesCount int `json:"unread_messages_count"`
	// UnreadQuestionsCount counts UNANSWERED questions. This is a different
	// semantic from the two counts above: a question stops counting when it
	// gets an answer, not when somebody views it.
	UnreadQuestionsCount int `json:"unread_questions_count"`
}

type CustomerStats struct {
	UserID uuid.UUID `json:"user_id"`
	// UnreadMessageCount counts admin replies across the customer's orders
	// that the customer has not opened yet.
	UnreadMessageCount int `json:"unread_message_count"`
	// UnreadAnsweredQuestionCount counts the customer's questions that have
	// an answer the customer has not marked read.
	UnreadAnsweredQuestionCount int `json:"unread_answered_question_count"`
}
