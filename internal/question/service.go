package question

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
)

var (
	ErrEmptyQuestion = errors.New("question cannot be empty")
	ErrForbidden     = errors.New("operation not permitted for this actor")
)

type Service interface {
	Ask(ctx context.Context, actor auth.Actor, productID uuid.UUID, text string) (*Question, error)
	ForProduct(ctx context.Context, productID uuid.UUID) ([]Question, error)
	ForUser(ctx context.Context, actor auth.Actor) ([]Question, error)
	Answer(ctx context.Context, actor auth.Actor, questionID uuid.UUID, answer string) error
	MarkAnswersRead(ctx context.Context, actor auth.Actor) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Ask(ctx context.Context, actor auth.Actor, productID uuid.UUID, text string) (*Question, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuestion
	}

	q := &Question{
		ProductID: productID,
		UserID:    actor.ID,
		Question:  text,
	}

	if _, err := s.repo.Create(ctx, q); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}

		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to create question")
		return nil, fmt.Errorf("service: failed to create question: %w", err)
	}

	log.Info().Stringer("question_id", q.ID).Stringer("product_id", productID).Msg("service: question asked")

	return q, nil
}

func (s *service) ForProduct(ctx context.Context, productID uuid.UUID) ([]Question, error) {
	questions, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to fetch product questions")
		return nil, fmt.Errorf("service: failed to fetch product questions: %w", err)
	}

	return questions, nil
}

func (s *service) ForUser(ctx context.Context, actor auth.Actor) ([]Question, error) {
	questions, err := s.repo.ListByUserID(ctx, actor.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", actor.ID).Msg("service: failed to fetch user questions")
		return nil, fmt.Errorf("service: failed to fetch user questions: %w", err)
	}

	return questions, nil
}

// Answer sets the admin's answer. An empty string deletes the current answer
// instead of storing empty text; that is the operational shortcut the admin
// UI relies on, not a validation gap.
func (s *service) Answer(ctx context.Context, actor auth.Actor, questionID uuid.UUID, answer string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	var answerValue *string
	var answeredAt *time.Time
	if answer != "" {
		now := time.Now().UTC()
		answerValue = &answer
		answeredAt = &now
	}

	if err := s.repo.SetAnswer(ctx, questionID, answerValue, answeredAt); err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return ErrQuestionNotFound
		}

		log.Error().Err(err).Stringer("question_id", questionID).Msg("service: failed to set answer")
		return fmt.Errorf("service: failed to set answer: %w", err)
	}

	log.Info().Stringer("question_id", questionID).Bool("cleared", answerValue == nil).Msg("service: question answer updated")

	return nil
}

func (s *service) MarkAnswersRead(ctx context.Context, actor auth.Actor) error {
	if err := s.repo.MarkAnswersRead(ctx, actor.ID); err != nil {
		log.Error().Err(err).Stringer("user_id", actor.ID).Msg("service: failed to mark answers read")
		return fmt.Errorf("service: failed to mark answers read: %w", err)
	}

	return nil
}
