// Package app wires together all dependencies and runs the catalog search
// sync service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/softmaker-io/spree-searchkick/internal/config"
	"github.com/softmaker-io/spree-searchkick/internal/engine"
	esengine "github.com/softmaker-io/spree-searchkick/internal/engine/elasticsearch"
	"github.com/softmaker-io/spree-searchkick/internal/engine/memory"
	"github.com/softmaker-io/spree-searchkick/internal/event"
	handler "github.com/softmaker-io/spree-searchkick/internal/handler/http"
	"github.com/softmaker-io/spree-searchkick/internal/index"
	"github.com/softmaker-io/spree-searchkick/internal/repository"
	pgrepo "github.com/softmaker-io/spree-searchkick/internal/repository/postgres"
	"github.com/softmaker-io/spree-searchkick/internal/service"
	"github.com/softmaker-io/spree-searchkick/internal/store"
	catsync "github.com/softmaker-io/spree-searchkick/internal/sync"
	"github.com/softmaker-io/spree-searchkick/internal/synth"
	"github.com/softmaker-io/spree-searchkick/pkg/database"
	"github.com/softmaker-io/spree-searchkick/pkg/health"
	pkgkafka "github.com/softmaker-io/spree-searchkick/pkg/kafka"
	"github.com/softmaker-io/spree-searchkick/pkg/tracing"
)

// App owns the long-lived components of the service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	coordinator    *catsync.Coordinator
	consumers      []*pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// The locale set is resolved once here: the index schema, the synthesizer,
// and the autocomplete defaults all derive from the same snapshot.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "catalog-search-sync",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}

	repo := pgrepo.NewCatalogRepository(pool)

	var stores repository.StoreProvider
	switch cfg.StoreSource {
	case "static":
		stores = store.NewStaticProvider(cfg.StaticStoreConfig())
	default:
		stores = pgrepo.NewStoreProvider(pool)
	}

	storeCfg, err := stores.Current(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("resolve store configuration: %w", err)
	}
	locales := store.ActiveLocales(storeCfg)
	logger.Info("active locale set resolved", slog.Any("locales", locales))

	registry := index.NewRegistry(index.BaseConfig(locales))

	var eng engine.Engine
	switch cfg.SearchEngine {
	case "elasticsearch":
		es, err := esengine.New(cfg.ElasticsearchURL, cfg.IndexName, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = es
		logger.Info("elasticsearch engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.IndexName),
		)
	default:
		eng = memory.New()
		logger.Info("in-memory engine initialized")
	}

	if err := eng.EnsureIndex(ctx, registry.Current()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	synthesizer := synth.NewSynthesizer(repo, stores, locales, logger)
	coordinator := catsync.NewCoordinator(synthesizer, eng, logger,
		catsync.WithMaxWorkers(cfg.SyncWorkers),
		catsync.WithJobTimeout(cfg.SyncJobTimeout),
	)

	searchService := service.NewSearchService(eng, repo, registry, coordinator, locales, logger)

	// Event intake: one consumer per product topic, all funneling into the
	// coordinator. Redelivery is harmless, but the optional redis store
	// spares the pipeline the redundant graph loads.
	eventConsumer := event.NewConsumer(coordinator, logger)
	eventHandler := eventConsumer.Handle

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisConfig())
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis client: %w", err)
		}
		idemStore := pkgkafka.NewRedisIdempotencyStore(redisClient, "catalog-search-sync", cfg.IdempotencyTTL)
		eventHandler = pkgkafka.IdempotentHandler(idemStore, eventHandler, logger)
		logger.Info("redis event idempotency enabled")
	}

	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)

	var consumers []*pkgkafka.Consumer
	for _, topic := range event.Topics() {
		c := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.KafkaGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}, eventHandler, logger).WithDLQ(dlq)
		consumers = append(consumers, c)
	}
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Int("topic_count", len(event.Topics())),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("engine", eng.Ping)
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	router := handler.NewRouter(searchService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		coordinator:    coordinator,
		consumers:      consumers,
		dlq:            dlq,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully stops all components: stop intake first, then drain
// in-flight resync jobs, then release the clients.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.coordinator.Close(shutdownCtx); err != nil {
		a.logger.Error("sync coordinator close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.dlq.Close(); err != nil {
		a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.pool.Close()

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
