package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/user"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token uuid.UUID    `json:"token"`
	User  UserResponse `json:"user"`
}

type AuthHandler struct {
	service  user.Service
	validate *validator.Validate
}

func NewAuthHandler(service user.Service) *AuthHandler {
	return &AuthHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.With(RequireUser).Post("/auth/logout", h.handleLogout)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	createdUser, err := h.service.Register(r.Context(), requestPayload.Email, requestPayload.Password, requestPayload.Name)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user via service")

		clientMessage := "Failed to register user"
		if errors.Is(err, user.ErrEmailExists) {
			clientMessage = "Email already exists"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, toUserResponse(createdUser))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest

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

	session, loggedInUser, err := h.service.Login(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		clientMessage := "Failed to log in"
		if errors.Is(err, user.ErrInvalidCredentials) {
			clientMessage = "Invalid email or password"
		} else {
			log.Error().Err(err).Msg("Failed to log in via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{
		Token: session.Token,
		User:  toUserResponse(loggedInUser),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		log.Error().Err(err).Msg("Failed to log out via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
