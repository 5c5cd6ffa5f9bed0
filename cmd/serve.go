package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/storefront/config"
	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/handler"
	"github.com/Payphone-Digital/storefront/internal/middleware"
	"github.com/Payphone-Digital/storefront/internal/repository"
	"github.com/Payphone-Digital/storefront/internal/router"
	"github.com/Payphone-Digital/storefront/internal/service"
	"github.com/Payphone-Digital/storefront/pkg/cache"
	"github.com/Payphone-Digital/storefront/pkg/circuit"
	"github.com/Payphone-Digital/storefront/pkg/database"
	"github.com/Payphone-Digital/storefront/pkg/health"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/pool"
	"github.com/Payphone-Digital/storefront/pkg/redis"
	"github.com/Payphone-Digital/storefront/pkg/upstream"
	"github.com/Payphone-Digital/storefront/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout      = 15 * time.Second
	sessionSweepInterval = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logger.InitLogger(config); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		return serve(config)
	},
}

func serve(config *configs.Config) error {
	log := logger.GetLogger()

	log.Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	db, err := database.NewPostgresDB(config.Database, config.App.Environment)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrated successfully")

	monitor := health.NewMonitor(config.Upstream.HealthInterval, logger.WithFields(zap.String("component", "health")))
	monitor.Register(handler.CheckDatabase, health.CheckFunc(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}))

	// Redis is optional: without it catalog reads are cached in process
	var catalogCache service.Cache
	if config.Redis.Enabled {
		redisClient, err := redis.NewClient(config)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory catalog cache", zap.Error(err))
			monitor.Register(handler.CheckRedis, health.CheckFunc(func(context.Context) error { return err }))
		} else {
			defer redisClient.Close()
			catalogCache = redisClient
			monitor.Register(handler.CheckRedis, health.CheckFunc(redisClient.Ping))
		}
	} else {
		monitor.MarkDisabled(handler.CheckRedis, "Redis cache is disabled")
	}
	if catalogCache == nil {
		memory := cache.NewCache()
		defer memory.Close()
		catalogCache = memory
	}

	connections := pool.NewConnectionPool(pool.PoolConfig{
		ConnectionTimeout:   5 * time.Second,
		RequestTimeout:      config.Upstream.Timeout,
		IdleTimeout:         90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
	}, logger.WithFields(zap.String("component", "pool")))
	defer connections.CloseAllConnections()

	upstreamClient, err := upstream.NewClient(upstream.Config{
		BaseURL:    config.Upstream.BaseURL,
		Timeout:    config.Upstream.Timeout,
		MaxRetries: config.Upstream.MaxRetries,
		RetryDelay: config.Upstream.RetryDelay,
		Breaker: circuit.Config{
			Threshold:        config.Upstream.BreakerThreshold,
			Timeout:          config.Upstream.BreakerTimeout,
			SuccessThreshold: 2,
			MaxHalfOpen:      1,
		},
		HTTPClient: connections.GetHTTPClient(config.Upstream.BaseURL),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to build upstream client: %w", err)
	}
	monitor.RegisterHTTPChecker(handler.CheckUpstream, config.Upstream.BaseURL, "/categories",
		connections.GetHTTPClient(config.Upstream.BaseURL))

	monitor.CheckAll()
	for _, name := range []string{handler.CheckDatabase, handler.CheckRedis, handler.CheckUpstream} {
		if result, ok := monitor.GetResult(name); ok && !monitor.IsHealthy(name) {
			log.Warn("Dependency unhealthy at startup",
				zap.String("check", name),
				zap.String("status", result.Status.String()),
				zap.String("message", result.Message),
			)
		}
	}
	monitor.Start()
	defer monitor.Stop()

	// Repositories
	sessionRepo := repository.NewSessionRepository(db)

	// Services
	cacheService := service.NewCacheService(catalogCache)
	tokenService := service.NewTokenService(config.JWT.Secret, config.JWT.ExpirationTime, config.JWT.RefreshDuration)
	authService := service.NewAuthService(upstreamClient, sessionRepo, tokenService)
	catalogService := service.NewCatalogService(upstreamClient, cacheService, config.Catalog)
	userService := service.NewUserService(upstreamClient, sessionRepo)
	purchaseService := service.NewPurchaseService(upstreamClient, sessionRepo)

	// Middleware
	validationMiddleware := middleware.NewValidationMiddleware(validation.New(dto.RegisterValidations))
	jwtMiddleware := middleware.NewJWTMiddleware(authService)

	engine := router.NewRouter(
		handler.NewCatalogHandler(catalogService),
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewPurchaseHandler(purchaseService),
		handler.NewCacheHandler(cacheService),
		handler.NewHealthHandler(monitor, upstreamClient),

		validationMiddleware,
		jwtMiddleware,
		config,
	).SetupRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, sessionRepo)

	server := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// sweepSessions deletes sessions past their refresh expiry until ctx ends.
func sweepSessions(ctx context.Context, sessions *repository.SessionRepository) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			deleted, err := sessions.DeleteExpired(ctx, now)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.GetLogger().Warn("Failed to sweep expired sessions", zap.Error(err))
				}
				continue
			}
			if deleted > 0 {
				logger.GetLogger().Info("Expired sessions removed", zap.Int64("count", deleted))
			}
		}
	}
}
