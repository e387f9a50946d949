package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/wishwell"
	"github.com/utafrali/wishwell/internal/auth"
	"github.com/utafrali/wishwell/internal/cache"
	"github.com/utafrali/wishwell/internal/config"
	"github.com/utafrali/wishwell/internal/event"
	handler "github.com/utafrali/wishwell/internal/handler/http"
	"github.com/utafrali/wishwell/internal/repository/postgres"
	"github.com/utafrali/wishwell/internal/service"
	"github.com/utafrali/wishwell/pkg/database"
	"github.com/utafrali/wishwell/pkg/health"
	pkgkafka "github.com/utafrali/wishwell/pkg/kafka"
	"github.com/utafrali/wishwell/pkg/middleware"
)

// App wires together all dependencies and runs the wishwell service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, wishwell.Migrations, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis. The cache layer degrades to store reads when Redis
	// is unavailable, so a failed ping is not fatal.
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisConfig())
	if err != nil {
		logger.Warn("redis unavailable at startup, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig().Addr(),
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
	} else {
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisConfig().Addr()))
	}
	appCache := cache.New(redisClient, logger, cfg.CacheOpTimeout())

	// Initialize Kafka producer with connection validation and retry.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
		logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	userRepo := postgres.NewUserRepository(pool)
	wishlistRepo := postgres.NewWishlistRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	linkRepo := postgres.NewSharedLinkRepository(pool)

	eventProducer := event.NewProducer(producer, logger)

	userService := service.NewUserService(userRepo, appCache, cfg.CacheTTL, eventProducer, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, itemRepo, linkRepo, appCache, cfg.CacheTTL, eventProducer, logger)
	sharedLinkService := service.NewSharedLinkService(linkRepo, wishlistRepo, itemRepo, userRepo, appCache, cfg.CacheTTL, eventProducer, logger)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)

	// Health checks. Redis and Kafka are non-fatal dependencies but still
	// reported so operators can see degraded mode.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(
		userService,
		wishlistService,
		sharedLinkService,
		jwtManager.Validator(),
		healthHandler,
		corsCfg,
		logger,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Kafka producer
// 3. Redis client
// 4. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d error(s): %v", len(errs), errs)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := producer.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", 3),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}
