package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/question"
)

type AskQuestionRequest struct {
	Question string `json:"question" validate:"required"`
}

// AnswerRequest deliberately allows an empty answer: posting an empty string
// clears the existing answer instead of storing empty text.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

type QuestionHandler struct {
	service  question.Service
	validate *validator.Validate
}

func NewQuestionHandler(service question.Service) *QuestionHandler {
	return &QuestionHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *QuestionHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products/{id}/questions", h.handleListForProduct)

	router.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/products/{id}/questions", h.handleAsk)
		r.Get("/me/questions", h.handleListOwn)
		r.Post("/me/questions/read", h.handleMarkAnswersRead)
	})

	router.With(RequireAdmin).Put("/questions/{id}/answer", h.handleAnswer)
}

func (h *QuestionHandler) handleListForProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	questions, err := h.service.ForProduct(r.Context(), productID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch product questions via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch questions")
		return
	}

	respondWithJSON(w, http.StatusOK, questions)
}

func (h *QuestionHandler) handleAsk(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload AskQuestionRequest

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

	q, err := h.service.Ask(r.Context(), actor, productID, requestPayload.Question)
	if err != nil {
		clientMessage := "Failed to ask question"
		switch {
		case errors.Is(err, question.ErrProductNotFound):
			clientMessage = "Product not found"
		case errors.Is(err, question.ErrEmptyQuestion):
			clientMessage = "Question cannot be empty"
		default:
			log.Error().Err(err).Msg("Failed to ask question via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, q)
}

func (h *QuestionHandler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	questions, err := h.service.ForUser(r.Context(), actor)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch user questions via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch questions")
		return
	}

	respondWithJSON(w, http.StatusOK, questions)
}

func (h *QuestionHandler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	questionID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload AnswerRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.Answer(r.Context(), actor, questionID, requestPayload.Answer); err != nil {
		clientMessage := "Failed to answer question"
		switch {
		case errors.Is(err, question.ErrQuestionNotFound):
			clientMessage = "Question not found"
		case errors.Is(err, question.ErrForbidden):
			clientMessage = "Admin access required"
		default:
			log.Error().Err(err).Msg("Failed to answer question via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) handleMarkAnswersRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())

	if err := h.service.MarkAnswersRead(r.Context(), actor); err != nil {
		log.Error().Err(err).Msg("Failed to mark answers read via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to mark answers read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
