package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ovenline/storefront-backend/api/controllers"
	authcontrollers "github.com/ovenline/storefront-backend/api/controllers/auth"
	cartcontrollers "github.com/ovenline/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/ovenline/storefront-backend/api/controllers/orders"
	webhookcontrollers "github.com/ovenline/storefront-backend/api/controllers/webhooks"
	"github.com/ovenline/storefront-backend/api/middleware"
	internalauth "github.com/ovenline/storefront-backend/internal/auth"
	internalcart "github.com/ovenline/storefront-backend/internal/cart"
	"github.com/ovenline/storefront-backend/internal/catalog"
	"github.com/ovenline/storefront-backend/internal/checkout"
	internalorders "github.com/ovenline/storefront-backend/internal/orders"
	"github.com/ovenline/storefront-backend/internal/payments"
	stripewebhook "github.com/ovenline/storefront-backend/internal/webhooks/stripe"
	"github.com/ovenline/storefront-backend/pkg/auth/session"
	"github.com/ovenline/storefront-backend/pkg/config"
	"github.com/ovenline/storefront-backend/pkg/db"
	"github.com/ovenline/storefront-backend/pkg/logger"
	"github.com/ovenline/storefront-backend/pkg/redis"
	"github.com/ovenline/storefront-backend/pkg/stripe"
)

type Dependencies struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              *db.Client
	Redis           *redis.Client
	Sessions        session.AccessSessionChecker
	AuthService     *internalauth.Service
	CatalogService  catalog.Service
	CartService     *internalcart.Service
	CheckoutService *checkout.Service
	OrdersService   *internalorders.Service
	PaymentService  *payments.Service
	StripeClient    *stripe.Client
	WebhookService  *stripewebhook.Service
	WebhookGuard    *stripewebhook.IdempotencyGuard
	Metrics         prometheus.Gatherer
}

// NewRouter wires the HTTP surface. The three payment endpoints keep their
// legacy top-level paths because deployed clients and the Stripe dashboard
// point at them; everything else lives under /api/v1.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	// Legacy payment paths.
	r.Post("/stripeWebhook", webhookcontrollers.StripeWebhook(deps.WebhookService, deps.StripeClient, deps.WebhookGuard, logg))
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Post("/createPaymentIntent", controllers.CreatePaymentIntent(deps.PaymentService, logg))
		r.Get("/verifyPaymentIntent/{intentId}", controllers.VerifyPaymentIntent(deps.PaymentService, logg))
		r.Get("/verifyPaymentIntent", controllers.VerifyPaymentIntent(deps.PaymentService, logg))
		r.Post("/verifyPaymentIntent", controllers.VerifyPaymentIntent(deps.PaymentService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authcontrollers.Register(deps.AuthService, logg))
			r.Post("/login", authcontrollers.Login(deps.AuthService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
				r.Post("/logout", authcontrollers.Logout(deps.AuthService, logg))
				r.Get("/me", authcontrollers.Me(deps.AuthService, logg))
			})
		})

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", controllers.Branches(deps.CatalogService, logg))
			r.Get("/{branchSlug}", controllers.BranchDetail(deps.CatalogService, logg))
			r.Get("/{branchSlug}/categories", controllers.Categories(deps.CatalogService, logg))
			r.Get("/{branchSlug}/deals", controllers.Deals(deps.CatalogService, logg))
		})
		r.Get("/categories/{categoryId}/products", controllers.Products(deps.CatalogService, logg))
		r.Get("/products/{productSlug}", controllers.ProductDetail(deps.CatalogService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Get(deps.CartService, logg))
			r.Post("/items", cartcontrollers.AddItem(deps.CartService, logg))
			r.Patch("/items/{lineKey}", cartcontrollers.UpdateLine(deps.CartService, logg))
			r.Delete("/items/{lineKey}", cartcontrollers.RemoveLine(deps.CartService, logg))
			r.Delete("/", cartcontrollers.Clear(deps.CartService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Post("/checkout", controllers.PlaceOrder(deps.CheckoutService, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(deps.OrdersService, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.OrdersService, logg))
			})
		})
	})

	return r
}
