package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/stats"
)

// StatsHandler serves the badge counts the storefront polls: the admin
// sidebar every 30 seconds, the customer profile every 15, plus an immediate
// re-fetch after any local mutation. Responses must stay cheap.
type StatsHandler struct {
	service stats.Service
}

func NewStatsHandler(service stats.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) RegisterRoutes(router chi.Router) {
	router.With(RequireAdmin).Get("/admin/stats", h.handleAdminStats)
	router.With(RequireUser).Get("/me/stats", h.handleCustomerStats)
}

func (h *StatsHandler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	adminStats, err := h.service.AdminStats(r.Context(), actor)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute admin stats via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to compute stats")
		return
	}

	respondWithJSON(w, http.StatusOK, adminStats)
}

func (h *StatsHandler) handleCustomerStats(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	customerStats, err := h.service.CustomerStats(r.Context(), actor)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute customer stats via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to compute stats")
		return
	}

	respondWithJSON(w, http.StatusOK, customerStats)
}
