package question_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/question"
)

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, q *question.Question) (uuid.UUID, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockQuestionRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]question.Question, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]question.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]question.Question, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]question.Question), args.Error(1)
}

func (m *MockQuestionRepository) SetAnswer(ctx context.Context, id uuid.UUID, answer *string, answeredAt *time.Time) error {
	args := m.Called(ctx, id, answer, answeredAt)
	return args.Error(0)
}

func (m *MockQuestionRepository) MarkAnswersRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestQuestionService_Ask(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())
	actor := auth.Actor{ID: userID, Role: auth.RoleCustomer}

	t.Run("success", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(q *question.Question) bool {
			return q.ProductID == productID && q.UserID == userID && q.Question == "Does it survive a week without water?"
		})).Return(uuid.Must(uuid.NewV4()), nil)

		svc := question.NewService(repo)

		q, err := svc.Ask(context.Background(), actor, productID, "Does it survive a week without water?")

		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Nil(t, q.Answer)
		repo.AssertExpectations(t)
	})

	t.Run("blank_question_rejected", func(t *testing.T) {
		repo := new(MockQuestionRepository)

		svc := question.NewService(repo)

		_, err := svc.Ask(context.Background(), actor, productID, "  ")

		require.ErrorIs(t, err, question.ErrEmptyQuestion)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown_product", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(uuid.Nil, question.ErrProductNotFound)

		svc := question.NewService(repo)

		_, err := svc.Ask(context.Background(), actor, productID, "still there?")

		require.ErrorIs(t, err, question.ErrProductNotFound)
	})
}

func TestQuestionService_Answer(t *testing.T) {
	questionID := uuid.Must(uuid.NewV4())
	admin := auth.Actor{ID: uuid.Must(uuid.NewV4()), Role: auth.RoleAdmin}
	customer := auth.Actor{ID: uuid.Must(uuid.NewV4()), Role: auth.RoleCustomer}

	t.Run("admin_sets_answer", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		repo.On("SetAnswer", mock.Anything, questionID,
			mock.MatchedBy(func(answer *string) bool { return answer != nil && *answer == "Yes, up to ten days." }),
			mock.MatchedBy(func(at *time.Time) bool { return at != nil }),
		).Return(nil)

		svc := question.NewService(repo)

		err := svc.Answer(context.Background(), admin, questionID, "Yes, up to ten days.")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("empty_answer_clears", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		repo.On("SetAnswer", mock.Anything, questionID, (*string)(nil), (*time.Time)(nil)).Return(nil)

		svc := question.NewService(repo)

		err := svc.Answer(context.Background(), admin, questionID, "")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("customer_forbidden", func(t *testing.T) {
		repo := new(MockQuestionRepository)

		svc := question.NewService(repo)

		err := svc.Answer(context.Background(), customer, questionID, "nope")

		require.ErrorIs(t, err, question.ErrForbidden)
		repo.AssertNotCalled(t, "SetAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown_question", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		repo.On("SetAnswer", mock.Anything, questionID, mock.Anything, mock.Anything).Return(question.ErrQuestionNotFound)

		svc := question.NewService(repo)

		err := svc.Answer(context.Background(), admin, questionID, "hello")

		require.ErrorIs(t, err, question.ErrQuestionNotFound)
	})
}

func TestQuestionService_MarkAnswersRead(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	repo := new(MockQuestionRepository)
	repo.On("MarkAnswersRead", mock.Anything, userID).Return(nil)

	svc := question.NewService(repo)

	err := svc.MarkAnswersRead(context.Background(), auth.Actor{ID: userID, Role: auth.RoleCustomer})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
