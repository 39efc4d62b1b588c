package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shopswift-api/apperrors"
	"shopswift-api/config"
	"shopswift-api/controllers"
	"shopswift-api/database"
	"shopswift-api/logger"
	"shopswift-api/middleware"
	"shopswift-api/repository"
	"shopswift-api/routes"
	"shopswift-api/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync() //nolint:errcheck

	if err := database.Connect(cfg.MongoURL, cfg.MongoDB); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx); err != nil {
		cancel()
		logger.Log.Fatal("Failed to ensure indexes", zap.Error(err))
	}
	cancel()

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	cartRepo := repository.NewCartRepository(database.DB)
	orderRepo := repository.NewOrderRepository(database.DB)
	paymentRepo := repository.NewPaymentRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)

	// Services
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailer := services.NewSMTPMailer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPass, cfg.SenderName)
	gateway := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	authService := services.NewAuthService(userRepo, tokenService, mailer, cfg.ResetTokenTTL, cfg.FrontendURL, logger.Log)
	cartService := services.NewCartService(cartRepo, productRepo, cfg.CartTTL)
	orderService := services.NewOrderService(orderRepo, cartRepo, productRepo, services.Pricing{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		StandardShipping:      cfg.StandardShipping,
	}, logger.Log)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, gateway, logger.Log)
	reviewService := services.NewReviewService(reviewRepo, productRepo, orderRepo, logger.Log)

	// Controllers
	ctrl := routes.Controllers{
		Auth:     controllers.NewAuthController(authService, tokenService, cfg.Env == "production"),
		User:     controllers.NewUserController(userRepo, orderRepo, productRepo, logger.Log),
		Product:  controllers.NewProductController(productRepo, categoryRepo, logger.Log),
		Category: controllers.NewCategoryController(categoryRepo, productRepo, logger.Log),
		Cart:     controllers.NewCartController(cartService),
		Order:    controllers.NewOrderController(orderService),
		Payment:  controllers.NewPaymentController(paymentService, gateway, logger.Log),
		Review:   controllers.NewReviewController(reviewService),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute, cfg.RateLimitBurst))
	r.Use(apperrors.ErrorHandler(cfg.Env))

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.Register(r, cfg, ctrl, tokenService, userRepo)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Log.Info("API started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	<-quit
	logger.Log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Server exited cleanly")
}
