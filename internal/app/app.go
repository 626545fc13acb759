package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Luiza-Bandeira/VarandaJK/internal/config"
	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/event"
	handler "github.com/Luiza-Bandeira/VarandaJK/internal/handler/http"
	"github.com/Luiza-Bandeira/VarandaJK/internal/repository"
	"github.com/Luiza-Bandeira/VarandaJK/internal/repository/postgres"
	redisrepo "github.com/Luiza-Bandeira/VarandaJK/internal/repository/redis"
	"github.com/Luiza-Bandeira/VarandaJK/internal/repository/rest"
	"github.com/Luiza-Bandeira/VarandaJK/internal/service"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/database"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/health"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/httpclient"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/idempotency"
	pkgkafka "github.com/Luiza-Bandeira/VarandaJK/pkg/kafka"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/middleware"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/tracing"
)

const (
	idempotencyKeyPrefix = "varandajk:idem:"
	catalogLoadTimeout   = 30 * time.Second
)

// App wires together all dependencies and runs the menu service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	catalog        *service.CatalogService
	carts          *service.CartService
	httpServer     *http.Server
	shutdownTracer tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize tracing.
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler()

	// Initialize Redis client. Carts degrade to memory-only while Redis is
	// unreachable, so a failed startup ping is not fatal.
	redisCfg := database.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB}
	var idemStore idempotency.Store
	rdb, err := database.NewRedisClient(ctx, redisCfg, logger)
	if err != nil {
		logger.Warn("redis unavailable, carts will not survive restarts until it recovers",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		rdb = redis.NewClient(&redis.Options{Addr: redisCfg.Addr, Password: redisCfg.Password, DB: redisCfg.DB})
		idemStore = idempotency.NewMemoryStore(cfg.IdempotencyTTL())
	} else {
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		idemStore = idempotency.NewRedisStore(rdb, idempotencyKeyPrefix, cfg.IdempotencyTTL())
	}
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	// Catalog source.
	catalogRepo, pool, err := newCatalogRepository(ctx, cfg, logger)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	if pool != nil {
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}

	// Initialize Kafka producer.
	var producer *pkgkafka.Producer
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.Register("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	eventProducer := event.NewProducer(producer, logger)
	catalogService := service.NewCatalogService(catalogRepo, logger)
	cartService := service.NewCartService(
		redisrepo.NewCartRepository(rdb, cfg.CartTTL()),
		catalogService,
		eventProducer,
		logger,
		domain.Money(cfg.DeliveryFeeCents),
		cfg.SessionIdle(),
	)
	orderService := service.NewOrderService(
		cartService,
		eventProducer,
		idemStore,
		cfg.RestaurantName,
		cfg.WhatsAppNumber,
		logger,
	)

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(catalogService, cartService, orderService, healthHandler, logger, handler.RouterConfig{
		ServiceName:      cfg.ServiceName,
		CORS:             corsCfg,
		MenuCacheSeconds: cfg.MenuCacheSeconds,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		pool:           pool,
		producer:       producer,
		catalog:        catalogService,
		carts:          cartService,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// newCatalogRepository builds the configured catalog source. The pool is nil
// for the REST source.
func newCatalogRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.CatalogRepository, *pgxpool.Pool, error) {
	if cfg.CatalogSource == config.CatalogSourceREST {
		httpCfg := httpclient.DefaultConfig()
		httpCfg.Headers = rest.AuthHeaders(cfg.CatalogRESTKey)
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			httpclient.DefaultCircuitBreakerConfig("catalog-rest"),
			logger,
		)
		logger.Info("catalog source configured",
			slog.String("source", cfg.CatalogSource),
			slog.String("url", cfg.CatalogRESTURL),
		)
		return rest.NewCatalogRepository(client, cfg.CatalogRESTURL), nil, nil
	}

	pgCfg := cfg.PostgresConfig()

	// An unreachable database must not keep the server from starting; the
	// pool connects lazily and menu requests retry the catalog load.
	connected := true
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		logger.Warn("postgres unavailable, catalog will load once it recovers",
			slog.String("host", cfg.PostgresHost),
			slog.String("error", err.Error()),
		)
		connected = false
		pool, err = pgxpool.New(context.Background(), pgCfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("create postgres pool: %w", err)
		}
	} else {
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
	}

	if err := database.RegisterPoolMetrics(pool, cfg.ServiceName); err != nil {
		logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	if cfg.PostgresRunMigrations && connected {
		if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return postgres.NewCatalogRepository(pool), pool, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Load the catalog in the background; the server starts regardless and
	// menu requests retry the load while it is missing.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, catalogLoadTimeout)
		defer cancel()
		if _, err := a.catalog.Load(loadCtx); err == nil {
			a.logger.Info("initial catalog load complete")
		}
	}()

	a.carts.StartJanitor(ctx)

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
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
