package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/viktor-nazarov/bloomcart/internal/cart"
	"github.com/viktor-nazarov/bloomcart/internal/order"
	"github.com/viktor-nazarov/bloomcart/internal/product"
	"github.com/viktor-nazarov/bloomcart/internal/question"
	"github.com/viktor-nazarov/bloomcart/internal/review"
	"github.com/viktor-nazarov/bloomcart/internal/stats"
	"github.com/viktor-nazarov/bloomcart/internal/thread"
	"github.com/viktor-nazarov/bloomcart/internal/user"
	"github.com/viktor-nazarov/bloomcart/internal/wishlist"
)

// NewRouter wires repositories, services and handlers onto one chi mux.
func NewRouter(dbPool *pgxpool.Pool) *chi.Mux {
	userRepo := user.NewRepository(dbPool)
	userSvc := user.NewService(userRepo)

	productRepo := product.NewRepository(dbPool)
	productSvc := product.NewService(productRepo)

	cartRepo := cart.NewRepository(dbPool)
	cartSvc := cart.NewService(cartRepo)

	orderRepo := order.NewRepository(dbPool)
	orderSvc := order.NewService(orderRepo, productRepo, cartRepo, order.PermissivePolicy())

	threadRepo := thread.NewRepository(dbPool)
	threadSvc := thread.NewService(threadRepo, orderRepo)

	questionRepo := question.NewRepository(dbPool)
	questionSvc := question.NewService(questionRepo)

	statsRepo := stats.NewRepository(dbPool)
	statsSvc := stats.NewService(statsRepo)

	reviewRepo := review.NewRepository(dbPool)
	reviewSvc := review.NewService(reviewRepo)

	wishlistRepo := wishlist.NewRepository(dbPool)
	wishlistSvc := wishlist.NewService(wishlistRepo)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Authenticator(userSvc))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		NewAuthHandler(userSvc).RegisterRoutes(api)
		NewProductHandler(productSvc).RegisterRoutes(api)
		NewCartHandler(cartSvc).RegisterRoutes(api)
		NewOrderHandler(orderSvc).RegisterRoutes(api)
		NewThreadHandler(threadSvc).RegisterRoutes(api)
		NewQuestionHandler(questionSvc).RegisterRoutes(api)
		NewStatsHandler(statsSvc).RegisterRoutes(api)
		NewReviewHandler(reviewSvc).RegisterRoutes(api)
		NewWishlistHandler(wishlistSvc).RegisterRoutes(api)
	})

	return r
}
