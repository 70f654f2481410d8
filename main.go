package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"boutique/internal/cms"
	"boutique/internal/config"
	"boutique/internal/handlers"
	"boutique/internal/logger"
	"boutique/internal/middleware"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"
	"boutique/pkg/cache"
	"boutique/pkg/mailer"
	"boutique/pkg/payment"
	"boutique/pkg/rabbitmq"
)

// staleClaimAfter lets a checkout reconciliation abandoned by a crashed
// request be taken over.
const staleClaimAfter = 2 * time.Minute

// Dependencies are the outside systems the server talks to.
type Dependencies struct {
	DB         *gorm.DB
	Products   repositories.ProductRepository
	Orders     repositories.OrderRepository
	Categories repositories.CategoryRepository
	Media      repositories.MediaRepository
	Users      repositories.UserRepository
	Accounts   repositories.AccountRepository
	Gateway    services.CheckoutGateway // nil disables online payments
	Cache      cache.Cache
	Notifier   services.Notifier
	Registry   *prometheus.Registry
}

// cmsDependencies builds the CMS-backed repositories.
func cmsDependencies(client *cms.Client) Dependencies {
	return Dependencies{
		Products:   repositories.NewCMSProductRepository(client),
		Orders:     repositories.NewCMSOrderRepository(client),
		Categories: repositories.NewCMSCategoryRepository(client),
		Media:      repositories.NewCMSMediaRepository(client),
		Users:      repositories.NewCMSUserRepository(client),
		Accounts:   repositories.NewCMSAccountRepository(client),
	}
}

// openDatabase connects the local database holding admins and the checkout
// ledger and migrates its tables.
func openDatabase(cfg config.DatabaseConfig, log *zap.Logger, level string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.GormLevel(level)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.AdminUser{}, &models.CheckoutReconciliation{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

// errorHandler renders errors that handlers return instead of writing.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}

// NewServer wires services and handlers into a Fiber app.
func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) (*fiber.App, *services.AuthService) {
	// --- Services ---
	authService := services.NewAuthService(repositories.NewGORMAdminUserRepository(deps.DB), cfg.JWT.Secret, cfg.JWT.Expiration, log)
	orderService := services.NewOrderService(deps.Orders, deps.Notifier, cfg.App.OrderCodePrefix, log)
	checkoutService := services.NewCheckoutService(deps.Gateway, orderService,
		repositories.NewGORMReconciliationRepository(deps.DB, staleClaimAfter), cfg.App.PublicURL, log)
	productService := services.NewProductService(deps.Products, deps.Cache, cfg.App.CatalogCacheTTL, cfg.CMS.URL, log)
	mediaService := services.NewMediaService(deps.Media, deps.Products, productService, log)
	categoryService := services.NewCategoryService(deps.Categories, log)
	accountService := services.NewAccountService(deps.Accounts, deps.Users, orderService, deps.Notifier, log)
	dashboardService := services.NewDashboardService(orderService)

	// --- Handlers ---
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	mediaHandler := handlers.NewMediaHandler(mediaService, productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	authHandler := handlers.NewAuthHandler(accountService)
	adminHandler := handlers.NewAdminHandler(authService)
	userHandler := handlers.NewUserHandler(accountService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    32 * 1024 * 1024,
	})

	// --- Middleware ---
	app.Use(logger.FiberMiddleware(log))
	app.Use(middleware.NewMetrics(deps.Registry, "boutique").Handler())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Storefront routes (public or customer token)
	productHandler.RegisterRoutes(apiV1)
	categoryHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)

	// Admin login is public and must be registered before the protected group.
	adminHandler.RegisterRoutes(apiV1)
	adminRoutes := apiV1.Group("/admin", middleware.AuthRequired(authService))
	adminHandler.RegisterAdminRoutes(adminRoutes)
	productHandler.RegisterAdminRoutes(adminRoutes)
	mediaHandler.RegisterAdminRoutes(adminRoutes)
	categoryHandler.RegisterAdminRoutes(adminRoutes)
	orderHandler.RegisterAdminRoutes(adminRoutes)
	userHandler.RegisterAdminRoutes(adminRoutes)
	dashboardHandler.RegisterAdminRoutes(adminRoutes)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"payments": deps.Gateway != nil,
		}
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	return app, authService
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer log.Sync()

	// --- Database ---
	db, err := openDatabase(cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Database initialization failed", zap.Error(err))
	}

	cmsClient := cms.NewClient(cms.Config{BaseURL: cfg.CMS.URL, Token: cfg.CMS.Token, Timeout: cfg.CMS.Timeout}, log)
	deps := cmsDependencies(cmsClient)
	deps.DB = db

	// --- Payments ---
	if cfg.Stripe.SecretKey != "" {
		gateway, err := payment.NewStripeGateway(payment.Config{SecretKey: cfg.Stripe.SecretKey, Currency: cfg.Stripe.Currency}, log)
		if err != nil {
			log.Fatal("Stripe initialization failed", zap.Error(err))
		}
		deps.Gateway = gateway
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, online payments are disabled")
	}

	// --- Catalog cache ---
	deps.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("Redis unreachable, using in-process cache", zap.Error(err))
		} else {
			deps.Cache = redisCache
			defer redisCache.Close()
		}
		cancel()
	}

	// --- Notifications ---
	mail, err := mailer.NewClient(mailer.Config{APIKey: cfg.Mail.APIKey, From: cfg.Mail.From}, log)
	if err != nil {
		log.Fatal("Mailer initialization failed", zap.Error(err))
	}
	mailNotifier := services.NewMailNotifier(mail, cfg.CMS.URL, log)
	deps.Notifier = mailNotifier
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			log.Fatal("Failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		deps.Notifier = services.NewQueueNotifier(mqClient)

		err = mqClient.Consume(func(msg amqp.Delivery) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return services.DispatchNotification(ctx, mailNotifier, msg.Type, msg.Body)
		})
		if err != nil {
			log.Fatal("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- Metrics ---
	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, authService := NewServer(cfg, log, deps)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := authService.SeedAdmin(seedCtx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Error("Failed to seed admin", zap.Error(err))
	}
	cancel()

	// --- Start HTTP Server ---
	log.Info("Starting server", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
}
