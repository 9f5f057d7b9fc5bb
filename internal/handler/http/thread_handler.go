package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/thread"
)

type PostMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type ThreadHandler struct {
	service  thread.Service
	validate *validator.Validate
}

func NewThreadHandler(service thread.Service) *ThreadHandler {
	return &ThreadHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ThreadHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/orders/{id}/messages", h.handleList)
		r.Post("/orders/{id}/messages", h.handlePost)
		// Mark-read is its own endpoint with no body: fetching a thread must
		// never flip read state, only the explicit open action does.
		r.Post("/orders/{id}/messages/read", h.handleMarkRead)
		r.Get("/orders/{id}/messages/unread", h.handleUnreadCount)
	})
}

func (h *ThreadHandler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	messages, err := h.service.Messages(r.Context(), actor, orderID)
	if err != nil {
		respondThreadError(w, err, "Failed to fetch messages")
		return
	}

	respondWithJSON(w, http.StatusOK, messages)
}

func (h *ThreadHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload PostMessageRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	msg, err := h.service.Post(r.Context(), actor, orderID, requestPayload.Content)
	if err != nil {
		respondThreadError(w, err, "Failed to post message")
		return
	}

	respondWithJSON(w, http.StatusCreated, msg)
}

func (h *ThreadHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), actor, orderID); err != nil {
		respondThreadError(w, err, "Failed to mark thread read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ThreadHandler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), actor, orderID)
	if err != nil {
		respondThreadError(w, err, "Failed to count unread messages")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

func respondThreadError(w http.ResponseWriter, err error, fallback string) {
	clientMessage := fallback
	switch {
	case errors.Is(err, thread.ErrOrderNotFound):
		clientMessage = "Order not found"
	case errors.Is(err, thread.ErrForbidden):
		clientMessage = "Not allowed to access this thread"
	case errors.Is(err, thread.ErrEmptyMessage):
		clientMessage = "Message content cannot be empty"
	default:
		log.Error().Err(err).Msg("Thread operation failed")
	}

	respondWithError(w, mapErrorToStatusCode(err), clientMessage)
}
