// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the LinguaPhoto HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the document store (PostgreSQL + migrations, or in-memory).
//  4. Open the translation queue (Redis, or in-memory).
//  5. Open the object store (S3, or in-memory) and the AI clients.
//  6. Wire domain services and HTTP handlers.
//  7. Start the translation workers and the HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/linguaphoto/internal/ai"
	"github.com/taibuivan/linguaphoto/internal/api"
	"github.com/taibuivan/linguaphoto/internal/library/collection"
	"github.com/taibuivan/linguaphoto/internal/library/image"
	"github.com/taibuivan/linguaphoto/internal/notify"
	"github.com/taibuivan/linguaphoto/internal/platform/config"
	"github.com/taibuivan/linguaphoto/internal/platform/constants"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
	"github.com/taibuivan/linguaphoto/internal/platform/migration"
	"github.com/taibuivan/linguaphoto/internal/platform/objectstore"
	pgstore "github.com/taibuivan/linguaphoto/internal/platform/postgres"
	"github.com/taibuivan/linguaphoto/internal/platform/queue"
	redisstore "github.com/taibuivan/linguaphoto/internal/platform/redis"
	"github.com/taibuivan/linguaphoto/internal/platform/sec"
	"github.com/taibuivan/linguaphoto/internal/translation"
	"github.com/taibuivan/linguaphoto/internal/users/auth"
	"github.com/taibuivan/linguaphoto/internal/users/subscription"
)

// memoryQueueCapacity bounds pending jobs when no Redis is configured.
const memoryQueueCapacity = 1024

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[LinguaPhoto] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("docstore", cfg.DocstoreDriver),
		slog.String("queue", cfg.QueueDriver),
		slog.String("objectstore", cfg.ObjectStoreDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background context for middleware janitors and workers.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var health api.HealthDependencies

	// ── 3. Document Store ─────────────────────────────────────────────────
	var store docstore.Store

	switch cfg.DocstoreDriver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		store = docstore.NewPostgresStore(pool)
		health.CheckDocstore = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }
	default:
		log.Warn("using in-memory docstore; data is lost on restart")
		store = docstore.NewMemoryStore()
	}

	// ── 4. Translation Queue ──────────────────────────────────────────────
	var (
		jobs     queue.Queue
		inflight translation.InFlight
	)

	switch cfg.QueueDriver {
	case config.DriverRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer closeRedis(log, rdb)

		jobs = queue.NewRedisQueue(rdb, constants.TranslationQueueName)
		inflight = translation.NewRedisInFlight(rdb, constants.RedisPrefixInFlight, constants.InFlightTTL)
		health.CheckQueue = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	default:
		memoryQueue := queue.NewMemoryQueue(memoryQueueCapacity)
		defer memoryQueue.Close()

		jobs = memoryQueue
		inflight = translation.NewMemoryInFlight()
	}

	// ── 5. Object Store & AI ──────────────────────────────────────────────
	var cdn *objectstore.CDNSigner
	if cfg.CDNEnabled() {
		cdn, err = objectstore.NewCDNSignerFromFile(cfg.CDNBaseURL, cfg.CDNKeyPairID, cfg.CDNPrivateKeyPath)
		must(log, err, "load cdn signing key")
	}

	var (
		objects     objectstore.Store
		objectsHTTP http.Handler
		objectsPath string
	)

	switch cfg.ObjectStoreDriver {
	case config.DriverMemory:
		baseURL, err := url.Parse(cfg.ObjectStoreBaseURL)
		must(log, err, "parse object store base url")

		memoryObjects := objectstore.NewMemoryStore(cfg.ObjectStoreBaseURL, cdn)
		objects, objectsHTTP, objectsPath = memoryObjects, memoryObjects, baseURL.Path
		log.Warn("using in-memory object store", slog.String("base_url", cfg.ObjectStoreBaseURL))
	default:
		s3Objects, err := objectstore.NewS3Store(startupCtx, objectstore.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			CDN:             cdn,
		})
		must(log, err, "initialize s3 client")
		if pingErr := s3Objects.Ping(startupCtx); pingErr != nil {
			log.Warn("s3 bucket not reachable at startup", slog.String("bucket", cfg.S3Bucket), slog.Any("error", pingErr))
		}
		objects = s3Objects
	}

	aiClient := ai.NewClient(ai.Options{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL})

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	users := auth.NewDocstoreUserRepository(store)
	authService, err := auth.NewService(users, tokens, log)
	must(log, err, "initialize auth service")
	defer authService.Close()

	subscriptionService := subscription.NewService(users, subscription.NewStripeProvider(cfg.StripeAPIKey, cfg.StripePriceID, nil), log)

	hub := notify.NewHub(log)
	dispatcher := translation.NewDispatcher(inflight, jobs, log)

	collectionService := collection.NewService(collection.NewDocstoreRepository(store), log)
	imageRepository := image.NewDocstoreRepository(store)
	imageService := image.NewService(imageRepository, objects, collectionService, dispatcher, image.Options{
		MaxBytes:  cfg.ImageMaxBytes,
		MaxWidth:  cfg.ImageMaxWidth,
		MaxHeight: cfg.ImageMaxHeight,
		URLTTL:    cfg.SignedURLTTL,
	}, log)
	collectionService.SetImageRemover(imageService)

	worker := translation.NewWorker(jobs, translation.NewWorkflow(translation.Dependencies{
		Images:      imageRepository,
		Objects:     objects,
		Transcriber: ai.NewTranscriber(aiClient),
		Synthesizer: ai.NewSynthesizer(aiClient, cfg.SpeechVoice),
		Notifier:    hub,
		URLTTL:      cfg.SignedURLTTL,
		Logger:      log,
	}), inflight, translation.WorkerOptions{
		Concurrency:       cfg.TranslationWorkers,
		MaxAttempts:       cfg.TranslationMaxAttempts,
		JobTimeout:        cfg.TranslationJobTimeout,
		HeartbeatInterval: constants.InFlightTTL / 3,
	}, log)

	liveness, readiness := api.NewHealthHandlers(health, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(appCtx, cfg, log, tokens, api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         auth.NewHandler(authService),
		Subscription: subscription.NewHandler(subscriptionService),
		Collection:   collection.NewHandler(collectionService),
		Image:        image.NewHandler(imageService, authService),
		Notify:       notify.NewHandler(hub, tokens, cfg, log),
		Objects:      objectsHTTP,
		ObjectsPath:  objectsPath,
	})

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		worker.Run(appCtx)
	}()

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	shutdownErr := server.Shutdown(shutdownTimeout)

	// Workers finish their current job before the stores close.
	appCancel()
	workers.Wait()

	if shutdownErr != nil {
		log.Error("shutdown error", slog.Any("error", shutdownErr))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", "linguaphoto-api"))
}

func closeRedis(log *slog.Logger, rdb *goredis.Client) {
	log.Info("closing redis client")
	if cerr := rdb.Close(); cerr != nil {
		log.Error("redis close error", slog.Any("error", cerr))
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
