package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/product"
)

type ProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	// No "required" here: zero is a valid price (free item), required would
	// reject the zero value.
	PriceCents  int64    `json:"price_cents" validate:"gte=0"`
	ImageURL    string   `json:"image_url"`
	Colors      []string `json:"colors"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleList)
	router.Get("/products/{id}", h.handleGet)

	router.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/products", h.handleCreate)
		r.Put("/products/{id}", h.handleUpdate)
		r.Delete("/products/{id}", h.handleDelete)
	})
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.service.List(r.Context(), category)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		clientMessage := "Failed to get product"
		if errors.Is(err, product.ErrNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Msg("Failed to get product via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestPayload, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	p := &product.Product{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Category:    requestPayload.Category,
		PriceCents:  requestPayload.PriceCents,
		ImageURL:    requestPayload.ImageURL,
		Colors:      requestPayload.Colors,
	}

	created, err := h.service.Create(r.Context(), p)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	requestPayload, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	p := &product.Product{
		ID:          id,
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Category:    requestPayload.Category,
		PriceCents:  requestPayload.PriceCents,
		ImageURL:    requestPayload.ImageURL,
		Colors:      requestPayload.Colors,
	}

	if err := h.service.Update(r.Context(), p); err != nil {
		clientMessage := "Failed to update product"
		if errors.Is(err, product.ErrNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Msg("Failed to update product via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		clientMessage := "Failed to delete product"
		if errors.Is(err, product.ErrNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Msg("Failed to delete product via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var requestPayload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return ProductRequest{}, false
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return ProductRequest{}, false
	}

	return requestPayload, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, name)
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("param", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}
