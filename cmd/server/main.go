// @title           Bust Order Backend API
// @version         1.0.0
// @description     Backend API for custom 3D-printed busts: order intake, clay preview and 3D model generation through Meshy, Stripe checkout and the admin fulfillment dashboard.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey AdminSession
// @in header
// @name Authorization
// @description admin_auth session cookie issued by /admin/login; a Bearer token in the Authorization header is also accepted.

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bust-order-backend/docs"
	"bust-order-backend/internal/awss3"
	"bust-order-backend/internal/config"
	"bust-order-backend/internal/database"
	"bust-order-backend/internal/events"
	"bust-order-backend/internal/handlers"
	"bust-order-backend/internal/logger"
	"bust-order-backend/internal/meshy"
	"bust-order-backend/internal/middleware"
	"bust-order-backend/internal/payments"
	"bust-order-backend/internal/services"
	"bust-order-backend/internal/supabase"
	"bust-order-backend/internal/tokens"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Initialize(os.Getenv("ENVIRONMENT"))
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	log := logger.Initialize(cfg.Environment)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx := context.Background()

	// Orders live in Postgres; without it nothing can be served.
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required (Supabase PostgreSQL connection string)")
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	migrator.Close()
	log.Info("Migrations completed successfully")

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database client", zap.Error(err))
	}
	defer dbClient.Close()

	// Blob storage
	var blobs services.BlobStore
	switch cfg.BlobBackend {
	case "s3":
		store, err := awss3.NewStore(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Fatal("Failed to initialize S3 store", zap.Error(err))
		}
		blobs = store
	default:
		store, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
		if err != nil {
			log.Fatal("Failed to initialize storage client", zap.Error(err))
		}
		blobs = store
	}
	log.Info("Blob storage ready", zap.String("backend", cfg.BlobBackend))

	// Supabase API client, only used for the admin connectivity probe.
	var probe handlers.OrdersProber
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceRoleKey != "" {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			log.Warn("Supabase API client unavailable", zap.Error(err))
		} else {
			probe = supabaseClient
		}
	}

	meshyClient := meshy.NewClient(cfg.MeshyAPIBaseURL, cfg.MeshyAPIKey)

	var gateway services.CheckoutGateway
	if cfg.StripeSecretKey != "" {
		gateway = payments.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set; checkout and webhooks are disabled")
	}

	// Lifecycle events
	var publisher services.EventPublisher = events.NewLogPublisher(log)
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Warn("RabbitMQ unavailable, logging events instead", zap.Error(err))
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	// Phone upload tokens
	var tokenStore services.TokenStore
	if cfg.RedisURL != "" {
		redisStore, err := tokens.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, phone upload tokens are not tracked", zap.Error(err))
		} else {
			defer redisStore.Close()
			tokenStore = redisStore
		}
	}

	// Services
	storageService := services.NewStorageService(blobs, cfg.UploadsBucket, cfg.OutputsBucket, cfg.SignedURLTTL, log)
	lifecycleService := services.NewLifecycleService(dbClient, meshyClient, storageService, publisher, services.LifecycleConfig{
		MinPreviewBytes:     cfg.MinPreviewBytes,
		ModelMaxAttempts:    cfg.ModelMaxAttempts,
		FreePreviewAttempts: cfg.FreePreviewAttempts,
	}, log)
	phoneService := services.NewPhoneUploadService(storageService, blobs, tokenStore, log)
	intakeService := services.NewIntakeService(dbClient, storageService, phoneService, lifecycleService, publisher, log)
	paymentService := services.NewPaymentService(dbClient, gateway, publisher, cfg.SiteURL, log)
	adminService := services.NewAdminService(dbClient, storageService, publisher, cfg.AdminPassword, log)

	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD not set; the admin dashboard cannot be unlocked")
	}

	// Handlers
	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}
	sessions := middleware.NewAdminSessions(cfg.SessionSecret(), cfg.IsProduction())

	orderHandler := handlers.NewOrderHandler(intakeService, log)
	statusHandler := handlers.NewStatusHandler(lifecycleService, log)
	retryHandler := handlers.NewRetryHandler(lifecycleService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, log)
	phoneHandler := handlers.NewPhoneUploadHandler(phoneService, log)
	adminHandler := handlers.NewAdminHandler(adminService, sessions, log)
	filesHandler := handlers.NewFilesHandler(adminService, log)
	healthHandler := handlers.NewHealthHandler(dbClient.DB())
	debugHandler := handlers.NewDebugHandler(cfg, probe)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")

	// Customer flow
	api.POST("/orders", orderHandler.CreateOrder)
	api.GET("/orders/status", statusHandler.GetStatus)
	api.POST("/orders/retry", retryHandler.Retry)
	api.POST("/phone-upload", phoneHandler.Upload)
	api.GET("/phone-upload/status", phoneHandler.Status)

	// Payments (webhook authenticates with the Stripe signature)
	api.POST("/stripe/checkout", paymentHandler.Checkout)
	api.POST("/stripe/webhook", paymentHandler.HandleWebhook)

	// Admin
	loginLimiter := middleware.NewRateLimiter(rate.Every(6*time.Second), 5)
	api.POST("/admin/login", loginLimiter.Middleware(), adminHandler.Login)
	api.POST("/admin/logout", adminHandler.Logout)

	admin := api.Group("/admin", middleware.AdminOnly(sessions))
	admin.GET("/orders", adminHandler.ListOrders)
	admin.POST("/orders/status", adminHandler.SetStatus)
	admin.GET("/orders/assets", filesHandler.ExportAssets)

	api.GET("/debug/supabase", middleware.AdminOnly(sessions), debugHandler.Supabase)

	// HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	log.Info("Server stopped")
}
