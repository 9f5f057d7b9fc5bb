package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
)

var ErrForbidden = errors.New("operation not permitted for this actor")

type Service interface {
	AdminStats(ctx context.Context, actor auth.Actor) (AdminStats, error)
	CustomerStats(ctx context.Context, actor auth.Actor) (CustomerStats, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AdminStats(ctx context.Context, actor auth.Actor) (AdminStats, error) {
	if !actor.IsAdmin() {
		return AdminStats{}, ErrForbidden
	}

	adminStats, err := s.repo.AdminStats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to compute admin stats")
		return AdminStats{}, fmt.Errorf("service: failed to compute admin stats: %w", err)
	}

	return adminStats, nil
}

func (s *service) CustomerStats(ctx context.Context, actor auth.Actor) (CustomerStats, error) {
	customerStats, err := s.repo.CustomerStats(ctx, actor.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", actor.ID).Msg("service: failed to compute customer stats")
		return CustomerStats{}, fmt.Errorf("service: failed to compute customer stats: %w", err)
	}

	return customerStats, nil
}
