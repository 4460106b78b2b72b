package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/attarhouse/attarhouse-backend/api/controllers"
	"github.com/attarhouse/attarhouse-backend/api/middleware"
	cartsvc "github.com/attarhouse/attarhouse-backend/internal/cart"
	checkoutsvc "github.com/attarhouse/attarhouse-backend/internal/checkout"
	ordersvc "github.com/attarhouse/attarhouse-backend/internal/orders"
	productsvc "github.com/attarhouse/attarhouse-backend/internal/products"
	reviewsvc "github.com/attarhouse/attarhouse-backend/internal/reviews"
	wishlistsvc "github.com/attarhouse/attarhouse-backend/internal/wishlist"
	"github.com/attarhouse/attarhouse-backend/pkg/config"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
)

// Services groups everything the storefront API serves.
type Services struct {
	Products *productsvc.Service
	Reviews  *reviewsvc.Service
	Wishlist *wishlistsvc.Service
	Cart     *cartsvc.Service
	Checkout *checkoutsvc.Service
	Orders   *ordersvc.Service
}

// Readiness carries the dependency pingers for /health/ready.
type Readiness struct {
	DB     controllers.Pinger
	Redis  controllers.Pinger
	PubSub controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services, ready Readiness) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(ready.DB, ready.Redis, ready.PubSub)))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(svcs.Products, logg))
			r.Get("/{slug}", controllers.ProductGetBySlug(svcs.Products, logg))
			r.Route("/{productID}/reviews", func(r chi.Router) {
				r.Post("/", controllers.ReviewCreate(svcs.Reviews, logg))
				r.Get("/", controllers.ReviewsList(svcs.Reviews, logg))
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(svcs.Wishlist, logg))
			r.Post("/{productID}", controllers.WishlistAdd(svcs.Wishlist, logg))
			r.Delete("/{productID}", controllers.WishlistRemove(svcs.Wishlist, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartQuote(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{productID}", controllers.CartUpdateQuantity(svcs.Cart, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Post("/coupon", controllers.CartApplyCoupon(svcs.Cart, logg))
			r.Delete("/coupon", controllers.CartRemoveCoupon(svcs.Cart, logg))
			r.Put("/donation", controllers.CartSetDonation(svcs.Cart, logg))
		})

		r.Post("/checkout", controllers.CheckoutSubmit(svcs.Checkout, logg))
		r.Get("/orders/{orderNumber}", controllers.OrderGetByNumber(svcs.Orders, logg))
	})

	return r
}
