package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	Items(ctx context.Context, userID uuid.UUID) ([]Item, error)
	Put(ctx context.Context, item *Item) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Merge(ctx context.Context, userID uuid.UUID, items []Item) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Items(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	items, err := s.repo.ItemsForUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart items")
		return nil, fmt.Errorf("service: failed to fetch cart items: %w", err)
	}

	return items, nil
}

func (s *service) Put(ctx context.Context, item *Item) error {
	if item.Quantity <= 0 {
		return errors.New("service: cart item quantity must be greater than zero")
	}

	err := s.repo.Upsert(ctx, item)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}

		log.Error().Err(err).Stringer("user_id", item.UserID).Msg("service: failed to upsert cart item")
		return fmt.Errorf("service: failed to upsert cart item: %w", err)
	}

	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to remove cart item")
		return fmt.Errorf("service: failed to remove cart item: %w", err)
	}

	return nil
}

func (s *service) Merge(ctx context.Context, userID uuid.UUID, items []Item) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("service: cart item quantity for product %s must be greater than zero", item.ProductID)
		}
	}

	if err := s.repo.Merge(ctx, userID, items); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to merge cart")
		return fmt.Errorf("service: failed to merge cart: %w", err)
	}

	log.Info().Stringer("user_id", userID).Int("items", len(items)).Msg("service: cart merged")

	return nil
}
