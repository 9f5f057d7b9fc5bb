package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Service interface {
	Create(ctx context.Context, actor auth.Actor, productID uuid.UUID, rating int, comment string) (*Review, error)
	ForProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, productID uuid.UUID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	rv := &Review{
		ProductID: productID,
		UserID:    actor.ID,
		Rating:    rating,
		Comment:   comment,
	}

	if _, err := s.repo.Create(ctx, rv); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}

		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to create review")
		return nil, fmt.Errorf("service: failed to create review: %w", err)
	}

	return rv, nil
}

func (s *service) ForProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	reviews, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to fetch reviews")
		return nil, fmt.Errorf("service: failed to fetch reviews: %w", err)
	}

	return reviews, nil
}
