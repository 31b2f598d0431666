package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumencart/storefront-backend/api/controllers"
	"github.com/lumencart/storefront-backend/api/middleware"
	"github.com/lumencart/storefront-backend/internal/cart"
	checkoutsvc "github.com/lumencart/storefront-backend/internal/checkout"
	"github.com/lumencart/storefront-backend/internal/orders"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/internal/sessionlists"
	"github.com/lumencart/storefront-backend/internal/wishlist"
	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/logger"
	"github.com/lumencart/storefront-backend/pkg/metrics"
	pkgredis "github.com/lumencart/storefront-backend/pkg/redis"
)

// Services bundles the storefront services the router exposes.
type Services struct {
	Products products.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Wishlist wishlist.Service
	Lists    sessionlists.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *pkgredis.Client,
	pingers map[string]controllers.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App))
		r.Get("/ready", controllers.HealthReady(cfg.App, logg, pingers))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		searchLimit := middleware.RateLimit(redisClient, "search", cfg.Rates.SearchPerMinute, time.Minute, logg)

		r.Route("/products", func(r chi.Router) {
			r.With(searchLimit).Get("/", controllers.SearchProducts(svcs.Products, svcs.Lists, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, svcs.Lists, logg))
		})

		r.With(searchLimit).Get("/search/products", controllers.SearchProducts(svcs.Products, svcs.Lists, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(svcs.Cart, logg))
			r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
			r.Post("/items", controllers.AddCartLine(svcs.Cart, logg))
			r.Patch("/items/{productId}", controllers.UpdateCartLine(svcs.Cart, logg))
			r.Delete("/items/{productId}", controllers.RemoveCartLine(svcs.Cart, logg))
			r.Post("/coupon", controllers.ApplyCoupon(svcs.Cart, logg))
			r.Delete("/coupon", controllers.RemoveCoupon(svcs.Cart, logg))
			r.Put("/shipping-method", controllers.SetCartShippingMethod(svcs.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.StartCheckout(svcs.Checkout, logg))
			r.Get("/", controllers.GetCheckout(svcs.Checkout, logg))
			r.Put("/shipping-info", controllers.SetShippingInfo(svcs.Checkout, logg))
			r.Put("/step", controllers.SetCheckoutStep(svcs.Checkout, logg))
			r.Post("/submit", controllers.SubmitCheckout(svcs.Checkout, logg))
			r.Post("/confirm", controllers.ConfirmPayment(svcs.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(svcs.Orders, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.ListWishlist(svcs.Wishlist, logg))
			r.Post("/items", controllers.AddWishlistItem(svcs.Wishlist, logg))
			r.Delete("/items/{productId}", controllers.RemoveWishlistItem(svcs.Wishlist, logg))
		})

		r.Route("/lists", func(r chi.Router) {
			r.Route("/recently-viewed", func(r chi.Router) {
				r.Post("/", controllers.RecordProductView(svcs.Lists, logg))
				r.Get("/", controllers.RecentlyViewed(svcs.Lists, logg))
			})
			r.Route("/comparison", func(r chi.Router) {
				r.Post("/", controllers.AddToComparison(svcs.Lists, logg))
				r.Get("/", controllers.Comparison(svcs.Lists, logg))
				r.Delete("/{productId}", controllers.RemoveFromComparison(svcs.Lists, logg))
			})
			r.Route("/searches", func(r chi.Router) {
				r.Post("/", controllers.RecordSearch(svcs.Lists, logg))
				r.Get("/", controllers.SearchHistory(svcs.Lists, logg))
				r.Delete("/", controllers.ClearSearchHistory(svcs.Lists, logg))
			})
			r.Route("/search-alerts", func(r chi.Router) {
				r.Post("/", controllers.SaveSearchAlert(svcs.Lists, logg))
				r.Get("/", controllers.SearchAlerts(svcs.Lists, logg))
				r.Delete("/", controllers.RemoveSearchAlert(svcs.Lists, logg))
			})
		})
	})

	return r
}
