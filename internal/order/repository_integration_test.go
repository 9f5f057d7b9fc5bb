package order_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viktor-nazarov/bloomcart/internal/order"
	"github.com/viktor-nazarov/bloomcart/internal/product"
	"github.com/viktor-nazarov/bloomcart/internal/question"
	"github.com/viktor-nazarov/bloomcart/internal/stats"
	"github.com/viktor-nazarov/bloomcart/internal/thread"
)

// testPool connects to the database named by TEST_DATABASE_URL. The schema is
// expected to be migrated already; without the variable the test is skipped so
// the suite stays runnable on machines with no Postgres.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(context.Background()))

	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	id := uuid.Must(uuid.NewV4())
	email := fmt.Sprintf("test-%s@example.com", id)
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, 'x', 'Test User', 'customer', NOW(), NOW())
	`, id, email)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})

	return id
}

func createTestProduct(t *testing.T, pool *pgxpool.Pool, priceCents int64) product.Product {
	t.Helper()

	repo := product.NewRepository(pool)
	p := product.Product{
		Name:        "Test bouquet",
		Description: "for repository tests",
		Category:    "bouquets",
		PriceCents:  priceCents,
		Colors:      []string{"red", "white"},
	}
	_, err := repo.Create(context.Background(), &p)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, p.ID)
	})

	return p
}

func TestOrderRepository_Lifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	userID := createTestUser(t, pool)
	bouquet := createTestProduct(t, pool, 1000)

	orderRepo := order.NewRepository(pool)
	threadRepo := thread.NewRepository(pool)
	statsRepo := stats.NewRepository(pool)

	baseline, err := statsRepo.AdminStats(ctx)
	require.NoError(t, err)

	color := "red"
	o := &order.Order{
		UserID:        userID,
		Status:        order.StatusAwaitingPayment,
		PaymentMethod: order.PaymentBankTransfer,
		TotalCents:    2000,
		Items: []order.Item{
			{ProductID: bouquet.ID, Quantity: 2, PriceCents: 1000, SelectedColor: &color},
		},
	}

	orderID, err := orderRepo.CreateOrder(ctx, o, "https://receipts.example/r1", false)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, orderID)

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	})

	loaded, err := orderRepo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew, "fresh orders carry the NEW badge")
	assert.Equal(t, int64(2000), loaded.TotalCents)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Test bouquet", loaded.Items[0].ProductName)
	require.NotNil(t, loaded.Receipt)
	assert.Equal(t, "https://receipts.example/r1", loaded.Receipt.URL)

	afterCreate, err := statsRepo.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, baseline.NewOrdersCount+1, afterCreate.NewOrdersCount)

	// Customer writes; the admin-facing unread count goes up.
	require.NoError(t, threadRepo.Append(ctx, &thread.Message{OrderID: orderID, Content: "any update?", IsAdmin: false}))

	afterMessage, err := statsRepo.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, baseline.UnreadMessagesCount+1, afterMessage.UnreadMessagesCount)

	// Admin opens the thread: customer messages flip to read, badge clears.
	require.NoError(t, threadRepo.MarkRead(ctx, orderID, true))

	afterRead, err := statsRepo.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, baseline.UnreadMessagesCount, afterRead.UnreadMessagesCount)
	assert.Equal(t, baseline.NewOrdersCount, afterRead.NewOrdersCount, "admin opening the thread clears is_new")

	// Opening an already-read thread is a no-op, not an error.
	require.NoError(t, threadRepo.MarkRead(ctx, orderID, true))

	afterSecondRead, err := statsRepo.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, afterRead, afterSecondRead)

	loaded, err = orderRepo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, loaded.IsNew)
	require.Len(t, loaded.Messages, 1)
	assert.True(t, loaded.Messages[0].IsRead)

	// Status update with clearNew on an already-cleared order is a no-op for
	// the flag and still moves the status.
	require.NoError(t, orderRepo.UpdateStatus(ctx, orderID, order.StatusPaid, true))

	loaded, err = orderRepo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, loaded.Status)
	assert.False(t, loaded.IsNew)

	owner, found, err := orderRepo.OwnerOf(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, userID, owner)
}

func TestThreadRepository_MarkReadIsDirectionalAndIdempotent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	userID := createTestUser(t, pool)
	bouquet := createTestProduct(t, pool, 1000)

	orderRepo := order.NewRepository(pool)
	threadRepo := thread.NewRepository(pool)
	statsRepo := stats.NewRepository(pool)
	questionRepo := question.NewRepository(pool)

	o := &order.Order{
		UserID:        userID,
		Status:        order.StatusAwaitingPayment,
		PaymentMethod: order.PaymentBankTransfer,
		TotalCents:    1000,
		Items:         []order.Item{{ProductID: bouquet.ID, Quantity: 1, PriceCents: 1000}},
	}

	orderID, err := orderRepo.CreateOrder(ctx, o, "", false)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	})

	// Messages from both parties, plus an answered question, so every
	// customer-facing count has something to see.
	require.NoError(t, threadRepo.Append(ctx, &thread.Message{OrderID: orderID, Content: "will it arrive friday?", IsAdmin: false}))
	require.NoError(t, threadRepo.Append(ctx, &thread.Message{OrderID: orderID, Content: "yes, before noon", IsAdmin: true}))

	q := &question.Question{ProductID: bouquet.ID, UserID: userID, Question: "do you deliver on sundays?"}
	_, err = questionRepo.Create(ctx, q)
	require.NoError(t, err)
	answer := "weekends included"
	answeredAt := time.Now().UTC()
	require.NoError(t, questionRepo.SetAnswer(ctx, q.ID, &answer, &answeredAt))

	// The user is fresh, so their counts are exact, not deltas.
	cs, err := statsRepo.CustomerStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, cs.UnreadMessageCount, "admin reply is unread for the customer")
	assert.Equal(t, 1, cs.UnreadAnsweredQuestionCount)

	// Customer opens the thread: only the admin-authored message flips.
	require.NoError(t, threadRepo.MarkRead(ctx, orderID, false))

	cs, err = statsRepo.CustomerStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, cs.UnreadMessageCount)
	assert.Equal(t, 1, cs.UnreadAnsweredQuestionCount, "thread mark-read leaves question read-state alone")

	messages, err := threadRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, msg := range messages {
		if msg.IsAdmin {
			assert.True(t, msg.IsRead, "admin message read after customer opened the thread")
		} else {
			assert.False(t, msg.IsRead, "reader's own message keeps its read-state")
		}
	}

	adminUnread, err := threadRepo.UnreadCount(ctx, orderID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, adminUnread, "customer message still unread from the admin side")

	// Second open changes nothing and does not error.
	require.NoError(t, threadRepo.MarkRead(ctx, orderID, false))

	messagesAfter, err := threadRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, messages, messagesAfter)

	// The customer opening the thread never clears the admin's NEW badge.
	loaded, err := orderRepo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew)

	// Question badge clears through its own explicit action.
	require.NoError(t, questionRepo.MarkAnswersRead(ctx, userID))

	cs, err = statsRepo.CustomerStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, cs.UnreadAnsweredQuestionCount)
}

func TestOrderRepository_DeletedProductDegradesToPlaceholder(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	userID := createTestUser(t, pool)
	bouquet := createTestProduct(t, pool, 1500)

	orderRepo := order.NewRepository(pool)
	productRepo := product.NewRepository(pool)

	o := &order.Order{
		UserID:        userID,
		Status:        order.StatusAwaitingPayment,
		PaymentMethod: order.PaymentWesternUnion,
		TotalCents:    1500,
		Items:         []order.Item{{ProductID: bouquet.ID, Quantity: 1, PriceCents: 1500}},
	}

	orderID, err := orderRepo.CreateOrder(ctx, o, "", false)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	})

	require.NoError(t, productRepo.Delete(ctx, bouquet.ID))

	loaded, err := orderRepo.GetByID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, order.UnknownProductName, loaded.Items[0].ProductName)
	assert.Equal(t, int64(1500), loaded.Items[0].PriceCents, "snapshot price survives product deletion")
	assert.Nil(t, loaded.Receipt)
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	pool := testPool(t)

	orderRepo := order.NewRepository(pool)

	err := orderRepo.UpdateStatus(context.Background(), uuid.Must(uuid.NewV4()), order.StatusPaid, true)
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}
