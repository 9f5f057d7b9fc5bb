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
	"github.com/viktor-nazarov/bloomcart/internal/order"
)

type CheckoutItemRequest struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gt=0"`
	SelectedColor string    `json:"selected_color"`
}

type CheckoutRequest struct {
	PaymentMethod string                `json:"payment_method" validate:"required"`
	ReceiptURL    string                `json:"receipt_url"`
	Items         []CheckoutItemRequest `json:"items" validate:"dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/orders", h.handleCheckout)
		r.Get("/orders", h.handleListOwn)
		r.Get("/orders/{id}", h.handleGet)
		r.Patch("/orders/{id}/status", h.handleUpdateStatus)
	})

	router.With(RequireAdmin).Get("/admin/orders", h.handleListAll)
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	var requestPayload CheckoutRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode checkout request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	input := order.CheckoutInput{
		PaymentMethod: order.PaymentMethod(requestPayload.PaymentMethod),
		ReceiptURL:    requestPayload.ReceiptURL,
	}
	for _, item := range requestPayload.Items {
		input.Items = append(input.Items, order.CheckoutItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SelectedColor: item.SelectedColor,
		})
	}

	createdOrder, err := h.service.Checkout(r.Context(), actor, input)
	if err != nil {
		// Validation errors carry the offending product in their message;
		// pass that through so the storefront can point at the stale line.
		switch {
		case errors.Is(err, order.ErrEmptyOrder),
			errors.Is(err, order.ErrInvalidItem),
			errors.Is(err, order.ErrInvalidPaymentMethod):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Msg("Failed to create order via service")
			respondWithError(w, http.StatusInternalServerError, "Failed to create order")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, createdOrder)
}

func (h *OrderHandler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	orders, err := h.service.OrdersForUser(r.Context(), actor)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch orders via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	orders, err := h.service.AllOrders(r.Context(), actor)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch all orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.GetByID(r.Context(), actor, id)
	if err != nil {
		clientMessage := "Failed to get order"
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			clientMessage = "Order not found"
		case errors.Is(err, order.ErrForbidden):
			clientMessage = "Not allowed to view this order"
		default:
			log.Error().Err(err).Msg("Failed to get order via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload UpdateStatusRequest

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

	err := h.service.UpdateStatus(r.Context(), actor, id, order.Status(requestPayload.Status))
	if err != nil {
		clientMessage := "Failed to update order status"
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			clientMessage = "Order not found"
		case errors.Is(err, order.ErrForbidden):
			clientMessage = "Status change not permitted"
		case errors.Is(err, order.ErrInvalidStatus):
			clientMessage = err.Error()
		default:
			log.Error().Err(err).Msg("Failed to update order status via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
