package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/product"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, category string) ([]product.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newProductTestRouter(handler *ProductHandler, actor *auth.Actor) http.Handler {
	router := newActorRouter(actor)
	handler.RegisterRoutes(router)
	return router
}

func TestProductHandler_Create(t *testing.T) {
	admin := auth.Actor{ID: uuid.Must(uuid.NewV4()), Role: auth.RoleAdmin}

	t.Run("created", func(t *testing.T) {
		service := new(MockProductService)
		service.On("Create", mock.Anything, mock.MatchedBy(func(p *product.Product) bool {
			return p.Name == "Rose bouquet" && p.PriceCents == 1000
		})).Return(&product.Product{ID: uuid.Must(uuid.NewV4()), Name: "Rose bouquet", PriceCents: 1000}, nil)

		handler := NewProductHandler(service)
		router := newProductTestRouter(handler, &admin)

		body := `{"name":"Rose bouquet","price_cents":1000}`
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		service.AssertExpectations(t)
	})

	t.Run("zero_price_is_valid", func(t *testing.T) {
		service := new(MockProductService)
		service.On("Create", mock.Anything, mock.MatchedBy(func(p *product.Product) bool {
			return p.Name == "Greeting card" && p.PriceCents == 0
		})).Return(&product.Product{ID: uuid.Must(uuid.NewV4()), Name: "Greeting card", PriceCents: 0}, nil)

		handler := NewProductHandler(service)
		router := newProductTestRouter(handler, &admin)

		body := `{"name":"Greeting card","price_cents":0}`
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var got product.Product
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(0), got.PriceCents)
		service.AssertExpectations(t)
	})

	t.Run("negative_price_rejected", func(t *testing.T) {
		service := new(MockProductService)

		handler := NewProductHandler(service)
		router := newProductTestRouter(handler, &admin)

		body := `{"name":"Rose bouquet","price_cents":-100}`
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("customer_forbidden", func(t *testing.T) {
		customer := auth.Actor{ID: uuid.Must(uuid.NewV4()), Role: auth.RoleCustomer}
		service := new(MockProductService)

		handler := NewProductHandler(service)
		router := newProductTestRouter(handler, &customer)

		body := `{"name":"Rose bouquet","price_cents":1000}`
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
		service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
