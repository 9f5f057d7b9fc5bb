package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
)

var (
	ErrEmptyMessage  = errors.New("message content cannot be empty")
	ErrForbidden     = errors.New("not allowed to access this thread")
	ErrOrderNotFound = errors.New("order not found")
)

// OrderDirectory resolves an order to its owning customer. Implemented by the
// order repository; declared here so the packages do not depend on each other.
type OrderDirectory interface {
	OwnerOf(ctx context.Context, orderID uuid.UUID) (owner uuid.UUID, found bool, err error)
}

type Service interface {
	Post(ctx context.Context, actor auth.Actor, orderID uuid.UUID, content string) (*Message, error)
	Messages(ctx context.Context, actor auth.Actor, orderID uuid.UUID) ([]Message, error)
	MarkRead(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error
	UnreadCount(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (int, error)
}

type service struct {
	repo   Repository
	orders OrderDirectory
}

func NewService(repo Repository, orders OrderDirectory) Service {
	return &service{repo: repo, orders: orders}
}

func (s *service) Post(ctx context.Context, actor auth.Actor, orderID uuid.UUID, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	if err := s.authorize(ctx, actor, orderID); err != nil {
		return nil, err
	}

	msg := &Message{
		OrderID: orderID,
		Content: content,
		IsAdmin: actor.IsAdmin(),
	}

	if err := s.repo.Append(ctx, msg); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to append message")
		return nil, fmt.Errorf("service: failed to append message: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Bool("is_admin", msg.IsAdmin).Msg("service: message posted")

	return msg, nil
}

func (s *service) Messages(ctx context.Context, actor auth.Actor, orderID uuid.UUID) ([]Message, error) {
	if err := s.authorize(ctx, actor, orderID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch messages")
		return nil, fmt.Errorf("service: failed to fetch messages: %w", err)
	}

	return messages, nil
}

// MarkRead is triggered by the explicit UI action of opening a thread, never
// by a list fetch. Calling it with nothing unread is a no-op.
func (s *service) MarkRead(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error {
	if err := s.authorize(ctx, actor, orderID); err != nil {
		return err
	}

	if err := s.repo.MarkRead(ctx, orderID, actor.IsAdmin()); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to mark thread read")
		return fmt.Errorf("service: failed to mark thread read: %w", err)
	}

	return nil
}

// UnreadCount reports how many messages from the other party the actor has
// not read yet in this order's thread.
func (s *service) UnreadCount(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (int, error) {
	if err := s.authorize(ctx, actor, orderID); err != nil {
		return 0, err
	}

	count, err := s.repo.UnreadCount(ctx, orderID, !actor.IsAdmin())
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to count unread messages")
		return 0, fmt.Errorf("service: failed to count unread messages: %w", err)
	}

	return count, nil
}

func (s *service) authorize(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error {
	ownerID, found, err := s.orders.OwnerOf(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to resolve order owner")
		return fmt.Errorf("service: failed to resolve order owner: %w", err)
	}
	if !found {
		return ErrOrderNotFound
	}

	if !actor.IsAdmin() && ownerID != actor.ID {
		return ErrForbidden
	}

	return nil
}
