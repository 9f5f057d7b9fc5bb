package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	Register(ctx context.Context, email, password, name string) (*User, error)
	Login(ctx context.Context, email, password string) (*Session, *User, error)
	Logout(ctx context.Context, token uuid.UUID) error
	ActorByToken(ctx context.Context, token uuid.UUID) (auth.Actor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password, name string) (*User, error) {
	if password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := &User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         auth.RoleCustomer,
	}

	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}

		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Msg("service: user registered")

	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, *User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}

		log.Error().Err(err).Msg("service: failed to fetch user by email")
		return nil, nil, fmt.Errorf("service: failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := uuid.NewV4()
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to generate session token: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    u.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("service: failed to create session")
		return nil, nil, fmt.Errorf("service: failed to create session: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Msg("service: user logged in")

	return session, u, nil
}

func (s *service) Logout(ctx context.Context, token uuid.UUID) error {
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		log.Error().Err(err).Msg("service: failed to delete session")
		return fmt.Errorf("service: failed to delete session: %w", err)
	}

	return nil
}

func (s *service) ActorByToken(ctx context.Context, token uuid.UUID) (auth.Actor, error) {
	actor, err := s.repo.GetActorByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return auth.Actor{}, ErrSessionInvalid
		}

		log.Error().Err(err).Msg("service: failed to resolve session token")
		return auth.Actor{}, fmt.Errorf("service: failed to resolve session token: %w", err)
	}

	return actor, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}

	return u, nil
}
