package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/featureflags"
	"github.com/yourorg/estatehub/internal/handler"
	"github.com/yourorg/estatehub/internal/infrastructure/logger"
	"github.com/yourorg/estatehub/internal/infrastructure/redis"
	"github.com/yourorg/estatehub/internal/observability/metrics"
	"github.com/yourorg/estatehub/internal/observability/tracing"
	"github.com/yourorg/estatehub/internal/reliability/circuitbreaker"
	"github.com/yourorg/estatehub/internal/reliability/retry"
	"github.com/yourorg/estatehub/internal/repository"
	"github.com/yourorg/estatehub/internal/security/audit"
	"github.com/yourorg/estatehub/internal/security/ratelimit"
	"github.com/yourorg/estatehub/pkg/config"
	"github.com/yourorg/estatehub/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting estatehub server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "estatehub", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to PostgreSQL, waiting for it to come up
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect postgres",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, cfg.Database.Pool(), log)
		})
	if err != nil {
		log.Error("failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, pool, database.Migrations())
		if err != nil {
			log.Error("failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("schema up to date", slog.Int("applied", len(applied)))
	}

	// 5. Rate limiting: shared counters in Redis when configured, per process otherwise
	healthChecks := map[string]handler.Check{"postgres": pool.Health}
	var limiter ratelimit.Allower
	limiterKind := "disabled"
	if cfg.RateLimitPerMinute > 0 {
		if cfg.RedisURL != "" {
			redisClient, err := redis.NewClient(ctx, cfg.RedisURL, log)
			if err != nil {
				log.Error("failed to connect to Redis", slog.String("error", err.Error()))
				os.Exit(1)
			}
			defer redisClient.Close()
			limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
			healthChecks["redis"] = redisClient.Ping
			limiterKind = "redis"
		} else {
			memLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
			defer memLimiter.Stop()
			limiter = memLimiter
			limiterKind = "memory"
		}
	}

	// 6. Initialize repositories
	var (
		roles      domain.RoleRepository     = repository.NewPostgresRoleRepository(pool, log)
		categories domain.CategoryRepository = repository.NewPostgresCategoryRepository(pool, log)
	)
	if cfg.LookupCacheTTL > 0 {
		roles = repository.NewCachedRoleRepository(roles, cfg.LookupCacheTTL)
		categories = repository.NewCachedCategoryRepository(categories, cfg.LookupCacheTTL)
	}

	repos := handler.Repositories{
		Users:      repository.NewPostgresUserRepository(pool, log),
		Roles:      roles,
		Listings:   repository.NewPostgresListingRepository(pool, log),
		Categories: categories,
		Images:     repository.NewPostgresImageRepository(pool, log),
		Bids:       repository.NewPostgresBidRepository(pool, log),
		Favorites:  repository.NewPostgresFavoriteRepository(pool, log),
		Viewings:   repository.NewPostgresViewingRepository(pool, log),
		Reviews:    repository.NewPostgresReviewRepository(pool, log),
		Agencies:   repository.NewPostgresAgencyRepository(pool, log),
		Addresses:  repository.NewPostgresAddressRepository(pool, log),
	}

	exclusive := featureflags.Enabled(featureflags.ExclusiveBidAccept)

	// Fail fast on connection acquisition while PostgreSQL is unreachable
	var conns database.Acquirer = pool
	if cfg.Database.BreakerFailures > 0 {
		breaker := circuitbreaker.New(cfg.Database.BreakerFailures, cfg.Database.BreakerCooldown)
		breaker.OnStateChange(func(from, to circuitbreaker.State) {
			metrics.SetBreakerState(int(to))
			log.Warn("database circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		})
		conns = circuitbreaker.GuardAcquirer(pool, breaker)
	}

	// 7. Setup HTTP routes
	router := handler.NewRouter(repos, handler.Options{
		Logger:             log,
		Conns:              conns,
		Limiter:            limiter,
		Audit:              audit.NewLogger(log),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ExclusiveBidAccept: exclusive,
		HealthChecks:       healthChecks,
	})

	// 8. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("rate_limiter", limiterKind),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.Bool("exclusive_bid_accept", exclusive),
		slog.String("cors_origins", strings.Join(cfg.CORSAllowedOrigins, ",")),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-sigChan:
		log.Info("shutdown signal received")
	case err := <-serverErr:
		log.Error("server error", slog.String("error", err.Error()))
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	log.Info("server stopped")
}
