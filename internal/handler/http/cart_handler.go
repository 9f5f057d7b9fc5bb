package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/cart"
)

type CartItemRequest struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gt=0"`
	SelectedColor string    `json:"selected_color"`
}

type CartMergeRequest struct {
	Items []CartItemRequest `json:"items" validate:"required,dive"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/cart", h.handleList)
		r.Put("/cart", h.handlePut)
		r.Delete("/cart/{productID}", h.handleRemove)
		r.Post("/cart/merge", h.handleMerge)
	})
}

func (h *CartHandler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	items, err := h.service.Items(r.Context(), actor.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch cart via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

func (h *CartHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	var requestPayload CartItemRequest

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

	item := &cart.Item{
		UserID:        actor.ID,
		ProductID:     requestPayload.ProductID,
		Quantity:      requestPayload.Quantity,
		SelectedColor: requestPayload.SelectedColor,
	}

	if err := h.service.Put(r.Context(), item); err != nil {
		clientMessage := "Failed to update cart"
		if errors.Is(err, cart.ErrProductNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Msg("Failed to update cart via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, item)
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	productID, ok := parseIDParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), actor.ID, productID); err != nil {
		log.Error().Err(err).Msg("Failed to remove cart item via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to remove cart item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) handleMerge(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	var requestPayload CartMergeRequest

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

	items := make([]cart.Item, 0, len(requestPayload.Items))
	for _, reqItem := range requestPayload.Items {
		items = append(items, cart.Item{
			UserID:        actor.ID,
			ProductID:     reqItem.ProductID,
			Quantity:      reqItem.Quantity,
			SelectedColor: reqItem.SelectedColor,
		})
	}

	if err := h.service.Merge(r.Context(), actor.ID, items); err != nil {
		log.Error().Err(err).Msg("Failed to merge cart via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to merge cart")
		return
	}

	merged, err := h.service.Items(r.Context(), actor.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch cart after merge")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respondWithJSON(w, http.StatusOK, merged)
}
