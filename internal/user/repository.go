package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrSessionInvalid = errors.New("session invalid")
)

type Repository interface {
	Create(ctx context.Context, u *User) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	CreateSession(ctx context.Context, s *Session) error
	DeleteSession(ctx context.Context, token uuid.UUID) error
	GetActorByToken(ctx context.Context, token uuid.UUID) (auth.Actor, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, u *User) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate user ID: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query, id, u.Email, u.PasswordHash, u.Name, string(u.Role), now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, ErrEmailExists
		}

		return uuid.Nil, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now

	return id, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("repository: failed to select user by id %s: %w", id, err)
	}

	return u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("repository: failed to select user by email: %w", err)
	}

	return u, nil
}

func (r *postgresRepository) CreateSession(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (token, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, s.Token, s.UserID, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert session: %w", err)
	}

	return nil
}

func (r *postgresRepository) DeleteSession(ctx context.Context, token uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("repository: failed to delete session: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetActorByToken(ctx context.Context, token uuid.UUID) (auth.Actor, error) {
	query := `
		SELECT u.id, u.role
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`

	var actor auth.Actor
	var role string
	err := r.db.QueryRow(ctx, query, token).Scan(&actor.ID, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Actor{}, ErrSessionInvalid
		}

		return auth.Actor{}, fmt.Errorf("repository: failed to resolve session token: %w", err)
	}
	actor.Role = auth.Role(role)

	return actor, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)

	return &u, nil
}
