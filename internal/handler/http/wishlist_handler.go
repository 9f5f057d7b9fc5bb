package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/wishlist"
)

type WishlistHandler struct {
	service wishlist.Service
}

func NewWishlistHandler(service wishlist.Service) *WishlistHandler {
	return &WishlistHandler{service: service}
}

func (h *WishlistHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/wishlist", h.handleList)
		r.Put("/wishlist/{productID}", h.handleAdd)
		r.Delete("/wishlist/{productID}", h.handleRemove)
	})
}

func (h *WishlistHandler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	entries, err := h.service.List(r.Context(), actor.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch wishlist via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch wishlist")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *WishlistHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	productID, ok := parseIDParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.Add(r.Context(), actor.ID, productID); err != nil {
		clientMessage := "Failed to add wishlist item"
		if errors.Is(err, wishlist.ErrProductNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Msg("Failed to add wishlist item via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WishlistHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	productID, ok := parseIDParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), actor.ID, productID); err != nil {
		log.Error().Err(err).Msg("Failed to remove wishlist item via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to remove wishlist item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
