package thread_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/thread"
)

type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) Append(ctx context.Context, msg *thread.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockThreadRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]thread.Message, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]thread.Message), args.Error(1)
}

func (m *MockThreadRepository) MarkRead(ctx context.Context, orderID uuid.UUID, readerIsAdmin bool) error {
	args := m.Called(ctx, orderID, readerIsAdmin)
	return args.Error(0)
}

func (m *MockThreadRepository) UnreadCount(ctx context.Context, orderID uuid.UUID, authoredByAdmin bool) (int, error) {
	args := m.Called(ctx, orderID, authoredByAdmin)
	return args.Int(0), args.Error(1)
}

type MockOrderDirectory struct {
	mock.Mock
}

func (m *MockOrderDirectory) OwnerOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, bool, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func TestThreadService_Post(t *testing.T) {
	ownerID := uuid.Must(uuid.NewV4())
	strangerID := uuid.Must(uuid.NewV4())
	adminID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name      string
		actor     auth.Actor
		content   string
		found     bool
		wantErrIs error
		wantAdmin bool
	}{
		{
			name:      "owner_posts_customer_message",
			actor:     auth.Actor{ID: ownerID, Role: auth.RoleCustomer},
			content:   "Is the bouquet still fresh?",
			found:     true,
			wantAdmin: false,
		},
		{
			name:      "admin_posts_admin_message",
			actor:     auth.Actor{ID: adminID, Role: auth.RoleAdmin},
			content:   "Your order ships tomorrow.",
			found:     true,
			wantAdmin: true,
		},
		{
			name:      "blank_content_rejected",
			actor:     auth.Actor{ID: ownerID, Role: auth.RoleCustomer},
			content:   "   \n\t",
			found:     true,
			wantErrIs: thread.ErrEmptyMessage,
		},
		{
			name:      "stranger_rejected",
			actor:     auth.Actor{ID: strangerID, Role: auth.RoleCustomer},
			content:   "hello",
			found:     true,
			wantErrIs: thread.ErrForbidden,
		},
		{
			name:      "unknown_order",
			actor:     auth.Actor{ID: ownerID, Role: auth.RoleCustomer},
			content:   "hello",
			found:     false,
			wantErrIs: thread.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockThreadRepository)
			orders := new(MockOrderDirectory)

			orders.On("OwnerOf", mock.Anything, orderID).Return(ownerID, tt.found, nil).Maybe()
			if tt.wantErrIs == nil {
				repo.On("Append", mock.Anything, mock.MatchedBy(func(msg *thread.Message) bool {
					return msg.OrderID == orderID && msg.Content == tt.content && msg.IsAdmin == tt.wantAdmin
				})).Return(nil)
			}

			svc := thread.NewService(repo, orders)

			msg, err := svc.Post(context.Background(), tt.actor, orderID, tt.content)

			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, msg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, msg)
				assert.Equal(t, tt.wantAdmin, msg.IsAdmin)
				assert.False(t, msg.IsRead, "new messages always start unread")
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestThreadService_Messages_DoesNotTouchReadState(t *testing.T) {
	ownerID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	repo := new(MockThreadRepository)
	orders := new(MockOrderDirectory)

	orders.On("OwnerOf", mock.Anything, orderID).Return(ownerID, true, nil)
	repo.On("ListByOrderID", mock.Anything, orderID).Return([]thread.Message{
		{OrderID: orderID, Content: "hi", IsAdmin: true, IsRead: false},
	}, nil)

	svc := thread.NewService(repo, orders)

	messages, err := svc.Messages(context.Background(), auth.Actor{ID: ownerID, Role: auth.RoleCustomer}, orderID)

	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.False(t, messages[0].IsRead)

	// Listing a thread never acknowledges it.
	repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestThreadService_MarkRead(t *testing.T) {
	ownerID := uuid.Must(uuid.NewV4())
	adminID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name          string
		actor         auth.Actor
		readerIsAdmin bool
	}{
		{"customer_acknowledges_admin_messages", auth.Actor{ID: ownerID, Role: auth.RoleCustomer}, false},
		{"admin_acknowledges_customer_messages", auth.Actor{ID: adminID, Role: auth.RoleAdmin}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockThreadRepository)
			orders := new(MockOrderDirectory)

			orders.On("OwnerOf", mock.Anything, orderID).Return(ownerID, true, nil)
			repo.On("MarkRead", mock.Anything, orderID, tt.readerIsAdmin).Return(nil)

			svc := thread.NewService(repo, orders)

			err := svc.MarkRead(context.Background(), tt.actor, orderID)

			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestThreadService_UnreadCount_CountsOtherPartyOnly(t *testing.T) {
	ownerID := uuid.Must(uuid.NewV4())
	adminID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name string
		// The reader's unread count is over messages the other party wrote.
		actor           auth.Actor
		authoredByAdmin bool
	}{
		{"customer_counts_admin_messages", auth.Actor{ID: ownerID, Role: auth.RoleCustomer}, true},
		{"admin_counts_customer_messages", auth.Actor{ID: adminID, Role: auth.RoleAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockThreadRepository)
			orders := new(MockOrderDirectory)

			orders.On("OwnerOf", mock.Anything, orderID).Return(ownerID, true, nil)
			repo.On("UnreadCount", mock.Anything, orderID, tt.authoredByAdmin).Return(2, nil)

			svc := thread.NewService(repo, orders)

			count, err := svc.UnreadCount(context.Background(), tt.actor, orderID)

			require.NoError(t, err)
			assert.Equal(t, 2, count)
			repo.AssertExpectations(t)
		})
	}
}

func TestThreadService_MarkRead_Forbidden(t *testing.T) {
	ownerID := uuid.Must(uuid.NewV4())
	strangerID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	repo := new(MockThreadRepository)
	orders := new(MockOrderDirectory)

	orders.On("OwnerOf", mock.Anything, orderID).Return(ownerID, true, nil)

	svc := thread.NewService(repo, orders)

	err := svc.MarkRead(context.Background(), auth.Actor{ID: strangerID, Role: auth.RoleCustomer}, orderID)

	require.ErrorIs(t, err, thread.ErrForbidden)
	repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}
