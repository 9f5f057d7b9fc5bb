package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, category string) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, p *Product) (*Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, errors.New("service: product name cannot be empty")
	}

	if p.PriceCents < 0 {
		return nil, errors.New("service: product price cannot be negative")
	}

	if p.Colors == nil {
		p.Colors = []string{}
	}

	if _, err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")

	return p, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}

	return p, nil
}

func (s *service) List(ctx context.Context, category string) ([]Product, error) {
	products, err := s.repo.List(ctx, category)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

func (s *service) Update(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("service: product name cannot be empty")
	}

	if p.PriceCents < 0 {
		return errors.New("service: product price cannot be negative")
	}

	err := s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product: %w", err)
	}

	return nil
}

// Delete removes the product row. Historical order items keep their snapshot
// of price and color and render a placeholder name afterwards.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product deleted")

	return nil
}
