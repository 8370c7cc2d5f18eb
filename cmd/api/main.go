package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/media"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// retry delay between in-process notification attempts
const notifyBackoff = 2 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Guest carts live in Redis; without it only signed-in carts are served
	var guestRepo repository.GuestCartRepository
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		guestRepo = repository.NewGuestCartRepository(client, cfg.Redis.GuestCartTTL, logger)
	} else {
		logger.Info().Msg("redis disabled, guest carts are not available")
	}

	var uploader media.Uploader
	if cfg.S3.Enabled {
		uploader, err = media.NewS3Uploader(ctx, cfg.S3, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 uploader, image uploads disabled")
			uploader = nil
		}
	} else {
		logger.Info().Msg("S3 disabled, image uploads are not available")
	}

	queue, err := newQueue(ctx, cfg.Notify, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notification queue: %w", err)
	}

	var mailer notify.Mailer
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTP.Address(), cfg.SMTP.Host, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Info().Msg("SMTP not configured, notifications are logged only")
		mailer = notify.NewLogMailer(logger)
	}

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := notify.NewDispatcher(queue, mailer, logger).Run(ctx); err != nil {
			logger.Error().Err(err).Msg("notification dispatcher exited")
		}
	}()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	wholesaleRepo := repository.NewWholesaleRepository(pool, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, categoryRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	cartService := service.NewCartService(cartRepo, guestRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, notify.NewNotifier(queue), cfg.Pricing, logger)
	reviewService := service.NewReviewService(reviewRepo, userRepo, logger)
	wholesaleService := service.NewWholesaleService(wholesaleRepo, userRepo, productRepo, logger)
	authService := service.NewAuthService(userRepo, cartService, tokens, logger)

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, logger),
		Product:    handler.NewProductHandler(productService, logger),
		Category:   handler.NewCategoryHandler(categoryService, logger),
		Review:     handler.NewReviewHandler(reviewService, logger),
		Cart:       handler.NewCartHandler(cartService, logger),
		Order:      handler.NewOrderHandler(orderService, logger),
		Wholesale:  handler.NewWholesaleHandler(wholesaleService, logger),
		GuestCarts: guestRepo != nil,
	}
	if uploader != nil {
		handlers.Upload = handler.NewUploadHandler(uploader, logger)
	}

	// Initialize router
	mux := router.New(handlers, tokens, cfg.RateLimit, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Stop the dispatcher once no request can enqueue anything new
		cancel()
		select {
		case <-dispatcherDone:
		case <-shutdownCtx.Done():
			logger.Warn().Msg("notification dispatcher did not stop in time")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newQueue picks SQS when configured and an in-process queue otherwise.
func newQueue(ctx context.Context, cfg config.NotifyConfig, logger zerolog.Logger) (notify.Queue, error) {
	if !cfg.SQSEnabled {
		logger.Info().Msg("using in-process notification queue (SQS disabled)")
		return notify.NewMemoryQueue(cfg.BufferSize, cfg.MaxAttempts, notifyBackoff, logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info().Str("queue_url", cfg.QueueURL).Msg("using SQS notification queue")
	return notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.QueueURL, cfg.MaxAttempts, logger), nil
}
