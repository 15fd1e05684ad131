package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/paw-haven/paw_haven/internal/auth"
	"github.com/paw-haven/paw_haven/internal/config"
	"github.com/paw-haven/paw_haven/internal/donation"
	"github.com/paw-haven/paw_haven/internal/gateway"
	"github.com/paw-haven/paw_haven/internal/identity"
	"github.com/paw-haven/paw_haven/internal/middleware"
	"github.com/paw-haven/paw_haven/internal/paymethod"
	"github.com/paw-haven/paw_haven/internal/subscription"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	services := buildServices(d)

	api := app.Group("/api")

	donationHandler := donation.NewHandler(services.donations, services.verifier)
	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterDonationRoutes(api, donationHandler, idem)

	subscriptionHandler := subscription.NewHandler(services.scheduler)
	RegisterSubscriptionRoutes(api, subscriptionHandler)

	authHandler := auth.NewHandler(services.auth)
	rateLimiter := middleware.SendCodeRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	return nil
}

// Services groups the constructed domain services so the scheduler binary can
// reuse the exact wiring the API uses.
type Services struct {
	donations *donation.Service
	scheduler *subscription.Scheduler
	auth      *auth.Service
	verifier  *gateway.Verifier
}

// Scheduler exposes the subscription scheduler for out-of-process runs.
func (s Services) Scheduler() *subscription.Scheduler {
	return s.scheduler
}

// BuildServices wires repositories, the provider client and the domain
// services, falling back to in-memory implementations and the static provider
// when DB or credentials are absent (dev mode).
func BuildServices(d Deps) Services {
	return buildServices(d)
}

func buildServices(d Deps) Services {
	var (
		userRepo identity.Repository
		donRepo  donation.Repository
		subRepo  subscription.Repository
		pmRepo   paymethod.Repository
	)
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		donRepo = donation.NewPostgresRepository(d.DB)
		subRepo = subscription.NewPostgresRepository(d.DB)
		pmRepo = paymethod.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
		donRepo = donation.NewMemoryRepository()
		subRepo = subscription.NewMemoryRepository()
		pmRepo = paymethod.NewMemoryRepository()
	}

	var provider gateway.Client
	if d.Cfg.ProviderShopID != "" && d.Cfg.ProviderSecret != "" {
		provider = gateway.NewHTTPClient(d.Cfg.ProviderShopID, d.Cfg.ProviderSecret)
	} else {
		d.Logger.Warn("provider credentials not configured, using static payment stub")
		provider = gateway.NewStaticClient(d.Cfg.PublicBaseURL)
	}

	identitySvc := identity.NewService(userRepo)
	methodSvc := paymethod.NewService(pmRepo)
	scheduler := subscription.NewScheduler(subRepo, donRepo, methodSvc, userRepo, provider, d.Cfg.PublicBaseURL, d.Cfg.Currency, d.Logger)
	donationSvc := donation.NewService(donRepo, identitySvc, provider, scheduler, d.Cfg.PublicBaseURL, d.Cfg.Currency, d.Logger)

	var sessions auth.SessionStore
	if d.Cache != nil {
		sessions = auth.NewRedisStore(d.Cache)
	} else {
		sessions = auth.NewMemoryStore()
	}
	authSvc := auth.NewService(sessions, auth.NewLoggerSender(d.Logger), userRepo, d.Cfg.VerificationTTL)

	return Services{
		donations: donationSvc,
		scheduler: scheduler,
		auth:      authSvc,
		verifier:  gateway.NewVerifier(d.Cfg.WebhookSecret, d.Logger),
	}
}
