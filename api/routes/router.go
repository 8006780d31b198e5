package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/s4trading/storefront-backend/api/controllers"
	"github.com/s4trading/storefront-backend/api/middleware"
	checkoutsvc "github.com/s4trading/storefront-backend/internal/checkout"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/internal/marketing"
	orderssvc "github.com/s4trading/storefront-backend/internal/orders"
	stripewebhook "github.com/s4trading/storefront-backend/internal/webhooks/stripe"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/db"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	provider commerce.Provider,
	checkoutService *checkoutsvc.Service,
	ordersService *orderssvc.Service,
	marketingRepo marketing.Repository,
	stripeWebhookService *stripewebhook.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutLimit,
	)
	leadPolicy := middleware.NewRateLimitPolicy(
		"lead",
		cfg.RateLimit.LeadWindow,
		cfg.RateLimit.LeadLimit,
	)

	health := &controllers.HealthController{DB: dbP, Logger: logg}
	if redisClient != nil {
		health.Redis = redisClient
	}
	checkoutCtrl := &controllers.CheckoutController{Service: checkoutService, Logger: logg}
	ordersCtrl := &controllers.OrdersController{Service: ordersService, Logger: logg}
	productsCtrl := &controllers.ProductsController{Provider: provider, Logger: logg}
	marketingCtrl := &controllers.MarketingController{Repo: marketingRepo, Logger: logg}
	webhookCtrl := &controllers.StripeWebhookController{Service: stripeWebhookService, Logger: logg}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", health.Live)
		r.Get("/ready", health.Ready)
	})

	// Webhook deliveries authenticate via signature, not bearer token.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookCtrl.Handle)
	})

	var idempotencyStore redis.IdempotencyStore
	var limiterStore middleware.RateLimitStore
	if redisClient != nil {
		idempotencyStore = redisClient
		limiterStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/products", productsCtrl.List)

		r.With(middleware.RateLimit(checkoutPolicy, limiterStore, logg)).
			Post("/checkout", checkoutCtrl.Create)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersCtrl.List)
			r.Get("/{orderId}", ordersCtrl.Get)
			r.Patch("/{orderId}", ordersCtrl.Patch)
		})

		r.Route("/marketing", func(r chi.Router) {
			r.Post("/events", marketingCtrl.CreateEvent)
			r.With(middleware.RateLimit(leadPolicy, limiterStore, logg)).
				Post("/leads", marketingCtrl.CreateLead)
			r.Get("/metrics", marketingCtrl.Metrics)
		})
	})

	return r
}
