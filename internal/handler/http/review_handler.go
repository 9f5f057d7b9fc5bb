package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/review"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

type ReviewHandler struct {
	service  review.Service
	validate *validator.Validate
}

func NewReviewHandler(service review.Service) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ReviewHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products/{id}/reviews", h.handleList)
	router.With(RequireUser).Post("/products/{id}/reviews", h.handleCreate)
}

func (h *ReviewHandler) handleList(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.service.ForProduct(r.Context(), productID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch reviews via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload CreateReviewRequest

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

	rv, err := h.service.Create(r.Context(), actor, productID, requestPayload.Rating, requestPayload.Comment)
	if err != nil {
		clientMessage := "Failed to create review"
		switch {
		case errors.Is(err, review.ErrProductNotFound):
			clientMessage = "Product not found"
		case errors.Is(err, review.ErrInvalidRating):
			clientMessage = "Rating must be between 1 and 5"
		default:
			log.Error().Err(err).Msg("Failed to create review via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, rv)
}
