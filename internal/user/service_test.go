package user_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/user"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) CreateSession(ctx context.Context, s *user.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteSession(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockUserRepository) GetActorByToken(ctx context.Context, token uuid.UUID) (auth.Actor, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Actor), args.Error(1)
}

func TestUserService_Register_HashesPassword(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		if u.PasswordHash == "secret-password" {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-password")) == nil
	})).Return(uuid.Must(uuid.NewV4()), nil)

	svc := user.NewService(repo)

	u, err := svc.Register(context.Background(), "anna@example.com", "secret-password", "Anna")

	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, auth.RoleCustomer, u.Role)
	repo.AssertExpectations(t)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(uuid.Nil, user.ErrEmailExists)

	svc := user.NewService(repo)

	_, err := svc.Register(context.Background(), "anna@example.com", "secret-password", "Anna")

	require.ErrorIs(t, err, user.ErrEmailExists)
}

func TestUserService_Login(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{
		ID:           userID,
		Email:        "anna@example.com",
		PasswordHash: string(hash),
		Role:         auth.RoleCustomer,
	}

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "anna@example.com").Return(stored, nil)
		repo.On("CreateSession", mock.Anything, mock.MatchedBy(func(s *user.Session) bool {
			return s.UserID == userID && s.Token != uuid.Nil
		})).Return(nil)

		svc := user.NewService(repo)

		session, u, err := svc.Login(context.Background(), "anna@example.com", "correct-horse")

		require.NoError(t, err)
		require.NotNil(t, session)
		require.NotNil(t, u)
		assert.Equal(t, userID, session.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("wrong_password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "anna@example.com").Return(stored, nil)

		svc := user.NewService(repo)

		_, _, err := svc.Login(context.Background(), "anna@example.com", "wrong")

		require.ErrorIs(t, err, user.ErrInvalidCredentials)
		repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("unknown_email_maps_to_invalid_credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, user.ErrNotFound)

		svc := user.NewService(repo)

		_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")

		require.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestUserService_ActorByToken(t *testing.T) {
	token := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	t.Run("valid_token", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetActorByToken", mock.Anything, token).Return(auth.Actor{ID: userID, Role: auth.RoleAdmin}, nil)

		svc := user.NewService(repo)

		actor, err := svc.ActorByToken(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, userID, actor.ID)
		assert.True(t, actor.IsAdmin())
	})

	t.Run("stale_token", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetActorByToken", mock.Anything, token).Return(auth.Actor{}, user.ErrSessionInvalid)

		svc := user.NewService(repo)

		_, err := svc.ActorByToken(context.Background(), token)

		require.ErrorIs(t, err, user.ErrSessionInvalid)
	})
}
