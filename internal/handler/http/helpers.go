package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/cart"
	"github.com/viktor-nazarov/bloomcart/internal/order"
	"github.com/viktor-nazarov/bloomcart/internal/product"
	"github.com/viktor-nazarov/bloomcart/internal/question"
	"github.com/viktor-nazarov/bloomcart/internal/review"
	"github.com/viktor-nazarov/bloomcart/internal/stats"
	"github.com/viktor-nazarov/bloomcart/internal/thread"
	"github.com/viktor-nazarov/bloomcart/internal/user"
	"github.com/viktor-nazarov/bloomcart/internal/wishlist"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithValidationErrors(w http.ResponseWriter, err error) bool {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		log.Error().Err(err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return false
	}

	respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "Validation failed",
		Details: formatValidationErrors(validationErrors),
	})
	return true
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		details[fieldError.Field()] = "failed on rule '" + fieldError.Tag() + "'"
	}

	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, thread.ErrOrderNotFound),
		errors.Is(err, question.ErrQuestionNotFound),
		errors.Is(err, question.ErrProductNotFound),
		errors.Is(err, review.ErrProductNotFound),
		errors.Is(err, wishlist.ErrProductNotFound),
		errors.Is(err, cart.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, thread.ErrForbidden),
		errors.Is(err, question.ErrForbidden),
		errors.Is(err, stats.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidItem),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, thread.ErrEmptyMessage),
		errors.Is(err, question.ErrEmptyQuestion),
		errors.Is(err, review.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrSessionInvalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
