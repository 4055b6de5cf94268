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

	"educare/internal/access"
	"educare/internal/activities"
	"educare/internal/adapters/storage"
	"educare/internal/chat"
	"educare/internal/children"
	"educare/internal/email"
	"educare/internal/events"
	apphttp "educare/internal/http"
	"educare/internal/http/router"
	"educare/internal/insights"
	"educare/internal/media"
	mediaservice "educare/internal/media/service"
	"educare/internal/notification"
	"educare/internal/profiles"
	"educare/internal/scheduler"
	"educare/internal/stats"
	"educare/internal/teams"
	"educare/internal/users"
	"educare/platform/config"
	"educare/platform/db"
	"educare/platform/logger"
	"educare/platform/metrics"
	"educare/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const storageBucketEnsureErrPrefix = "failed to ensure storage bucket exists: "
const storageBucketEnsureErrMsg = "failed to ensure storage bucket exists"

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error(storageBucketEnsureErrMsg, "error", err, "bucket", bucket)
		panic(storageBucketEnsureErrPrefix + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	collector := metrics.New()
	scopes := access.NewResolver(access.NewRepository(pool))

	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, minioSvc, "media-resources", cfg.GetMinioBucketMediaResources())
		storageSvc = minioSvc
		log.Info("storage service initialized", "mediaBucket", cfg.GetMinioBucketMediaResources())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; media file uploads disabled")
	}

	cleanupScheduler, closeScheduler := initCleanupScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender := email.NewSender(cfg, log)

	// ========================================================================
	// Domain Modules
	// ========================================================================

	usersModule := users.NewModule(pool)
	profilesModule := profiles.NewModule(pool, val, log)
	childrenModule := children.NewModule(pool, scopes, eventBus, val, log)
	teamsModule := teams.NewModule(pool, scopes, usersModule.Service(), eventBus, val, log)
	chatModule := chat.NewModule(pool, scopes, eventBus, val, log)

	var cleanup mediaservice.CleanupScheduler
	if cleanupScheduler != nil {
		cleanup = cleanupScheduler
	}
	mediaModule := media.NewModule(pool, storageSvc, cleanup, collector, cfg, val, log)

	activitiesModule, err := activities.NewModule(pool, childrenModule.Service(), cfg, val, log)
	if err != nil {
		log.Error("failed to initialize activities module", "error", err)
		panic("failed to initialize activities module: " + err.Error())
	}

	insightsModule := insights.NewModule(initInsights(ctx, cfg, childrenModule.Service(), collector, log), log)
	notificationModule := notification.New(sender, teamsModule.Service(), cfg, log)

	statsModule := stats.NewModule(pool)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Metrics:  collector,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			usersModule,
			profilesModule,
			childrenModule,
			teamsModule,
			chatModule,
			mediaModule,
			activitiesModule,
			insightsModule,
			notificationModule,
			statsModule,
		},
	}

	app.SubscribeAll()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		// Open event streams never go idle; end them so Shutdown can drain.
		notificationModule.SSE().Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initCleanupScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; deferred upload cleanup disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize cleanup scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initInsights builds the insights service. Without a Gemini key the service
// answers 503; without Redis it generates on every request.
func initInsights(ctx context.Context, cfg *config.Config, children insights.ChildSource, collector *metrics.Collector, log *logger.Logger) *insights.Service {
	var gen insights.Generator
	if cfg.IsInsightsEnabled() {
		g, err := insights.NewGeminiGenerator(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
		if err != nil {
			log.Error("failed to initialize insights generator", "error", err)
		} else {
			gen = g
		}
	} else {
		log.Warn("GEMINI_API_KEY not configured; insights disabled")
	}

	var cache insights.Cache
	if cfg.GetRedisURL() != "" {
		rdb, err := insights.NewRedisClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
		if err != nil {
			log.Error("failed to initialize insights cache", "error", err)
		} else {
			cache = insights.NewRedisCache(rdb)
		}
	}

	return insights.NewService(children, gen, cache, collector, cfg.GetInsightsCacheTTL(), log)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
