package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sexystyle/storefront/internal/config"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/handler"
	"github.com/sexystyle/storefront/internal/middleware"
	"github.com/sexystyle/storefront/internal/repository"
	"github.com/sexystyle/storefront/internal/service"
	"github.com/sexystyle/storefront/internal/telemetry"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config          *config.Config
	MongoDB         *mongo.Database
	RedisClient     *redis.Client
	PaymentProvider domain.PaymentProvider
	SupplierClient  service.SupplierClient
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	planRepo := repository.NewMongoPlanRepository(deps.MongoDB)
	orderRepo := repository.NewMongoOrderRepository(deps.MongoDB)
	cartStore := repository.NewRedisCartStore(deps.RedisClient)
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)

	// Initialize services
	catalogService := service.NewCatalogService(
		deps.SupplierClient,
		planRepo,
		cacheRepo,
		deps.Config.Supplier.CacheTTL,
	)
	cartService := service.NewCartService(
		cartStore,
		planRepo,
		deps.PaymentProvider,
		orderRepo,
		deps.Config.Checkout.Mode,
	)
	authService := service.NewAuthService(deps.Config.Telegram.BotToken, deps.Config.JWT)

	// Periodic supplier sync keeps wholesale prices current. Skipped without
	// an access code; local dev seeds the catalog via cmd/seed/plans instead.
	if deps.Config.Supplier.AccessCode != "" {
		go func() {
			if _, err := catalogService.Refresh(context.Background(), nil); err != nil {
				log.Printf("[Catalog] Initial refresh failed: %v", err)
			}
			ticker := time.NewTicker(deps.Config.Supplier.RefreshInterval)
			defer ticker.Stop()
			for range ticker.C {
				if _, err := catalogService.Refresh(context.Background(), nil); err != nil {
					log.Printf("[Catalog] Scheduled refresh failed: %v", err)
				}
			}
		}()
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(orderRepo)
	webhookHandler := handler.NewWebhookHandler(orderRepo, deps.Config.CryptoPay.Token)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "eSIM Storefront API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Idempotency-Key",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "esim-storefront",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Catalog (public, cache-backed reads)
	v1.Get("/packages", catalogHandler.ListPackages)
	v1.Get("/packages/:id", catalogHandler.GetPackage)
	v1.Get("/countries", catalogHandler.ListCountries)

	// Payment provider callbacks (public, signature-verified)
	v1.Post("/payments/webhook/cryptopay", webhookHandler.CryptoPayWebhook)

	// Cart API (requires a logged-in Mini App user)
	cart := v1.Group("/cart")
	cart.Use(middleware.VerifyStorefrontToken(deps.Config.JWT.Secret))
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Delete("/items/:id", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.ClearCart)
	cart.Post("/checkout",
		middleware.IdempotencyMiddleware(deps.RedisClient, deps.Config.Checkout.IdempotencyTTL),
		cartHandler.Checkout,
	)

	// Orders API
	orders := v1.Group("/orders")
	orders.Use(middleware.VerifyStorefrontToken(deps.Config.JWT.Secret))
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:orderNo", orderHandler.GetOrder)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
