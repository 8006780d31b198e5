package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/s4trading/storefront-backend/api/routes"
	"github.com/s4trading/storefront-backend/internal/attempts"
	checkoutsvc "github.com/s4trading/storefront-backend/internal/checkout"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/internal/commerce/direct"
	"github.com/s4trading/storefront-backend/internal/commerce/headless"
	emailsvc "github.com/s4trading/storefront-backend/internal/email"
	"github.com/s4trading/storefront-backend/internal/identity"
	"github.com/s4trading/storefront-backend/internal/marketing"
	orderssvc "github.com/s4trading/storefront-backend/internal/orders"
	"github.com/s4trading/storefront-backend/internal/reliability"
	stripewebhook "github.com/s4trading/storefront-backend/internal/webhooks/stripe"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/db"
	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/medusa"
	"github.com/s4trading/storefront-backend/pkg/migrate"
	"github.com/s4trading/storefront-backend/pkg/redis"
	"github.com/s4trading/storefront-backend/pkg/resend"
	"github.com/s4trading/storefront-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	resendClient, err := resend.NewClient(cfg.Email)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap email client", err)
		os.Exit(1)
	}

	identityRepo := identity.NewRepository(dbClient.DB())
	attemptsRepo := attempts.NewRepository(dbClient.DB())
	reliabilityRepo := reliability.NewRepository(dbClient.DB())
	marketingRepo := marketing.NewRepository(dbClient.DB())

	emailService, err := emailsvc.NewService(emailsvc.Params{
		Claims: reliabilityRepo,
		Sender: resendClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create email service", err)
		os.Exit(1)
	}

	backend, err := enums.ParseBackend(cfg.Commerce.Backend)
	if err != nil {
		logg.Error(context.Background(), "invalid commerce backend", err)
		os.Exit(1)
	}

	var provider commerce.Provider
	var headlessProvider *headless.Provider

	switch backend {
	case enums.BackendHeadless:
		medusaClient, medusaErr := medusa.NewClient(cfg.Medusa, logg)
		if medusaErr != nil {
			logg.Error(context.Background(), "failed to bootstrap medusa client", medusaErr)
			os.Exit(1)
		}
		resolver, resolverErr := identity.NewResolver(identity.ResolverParams{
			Repo:      identityRepo,
			Directory: medusaClient,
			Logger:    logg,
		})
		if resolverErr != nil {
			logg.Error(context.Background(), "failed to create customer resolver", resolverErr)
			os.Exit(1)
		}
		headlessProvider, err = headless.NewProvider(headless.Params{
			API:      medusaClient,
			Resolver: resolver,
			Attempts: attemptsRepo,
			Site:     cfg.Site,
			Logger:   logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create headless provider", err)
			os.Exit(1)
		}
		provider = headlessProvider
	default:
		provider, err = direct.NewProvider(direct.Params{
			Repo:   direct.NewRepository(dbClient.DB()),
			Users:  identityRepo,
			Site:   cfg.Site,
			Logger: logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create direct provider", err)
			os.Exit(1)
		}
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Params{
		Provider: provider,
		Payments: stripeClient,
		Attempts: attemptsRepo,
		Email:    emailService,
		Site:     cfg.Site,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersParams := orderssvc.Params{
		Provider: provider,
		Logger:   logg,
	}
	webhookParams := stripewebhook.Params{
		SigningSecret: cfg.Stripe.WebhookSecret,
		Events:        reliabilityRepo,
		Provider:      provider,
		Email:         emailService,
		Marketing:     marketingRepo,
		Site:          cfg.Site,
		Logger:        logg,
	}
	if headlessProvider != nil {
		ordersParams.Finalizer = headlessProvider
		ordersParams.Attempts = attemptsRepo
		webhookParams.Finalizer = headlessProvider
		webhookParams.Attempts = attemptsRepo
	}

	ordersService, err := orderssvc.NewService(ordersParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(webhookParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": backend.String(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			provider,
			checkoutService,
			ordersService,
			marketingRepo,
			webhookService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
