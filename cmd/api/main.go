package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadforge/leadforge-back/internal/ai"
	"github.com/leadforge/leadforge-back/internal/cache"
	"github.com/leadforge/leadforge-back/internal/config"
	contextbuilder "github.com/leadforge/leadforge-back/internal/context"
	httpserver "github.com/leadforge/leadforge-back/internal/http"
	"github.com/leadforge/leadforge-back/internal/http/handlers"
	"github.com/leadforge/leadforge-back/internal/quality"
	"github.com/leadforge/leadforge-back/internal/queue"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/service"
	"github.com/leadforge/leadforge-back/internal/store"
	"github.com/leadforge/leadforge-back/internal/tracker"
	"github.com/leadforge/leadforge-back/internal/viewer"
	"github.com/leadforge/leadforge-back/internal/worker"
)

func main() {
	logger := log.New(os.Stdout, "[leadforge] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Printf("failed loading .env files: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	artifactsRepo, tasksRepo, repoCloser := setupRepositories(ctx, cfg, logger)
	defer repoCloser()

	stateService, stateCloser := setupState(ctx, cfg, logger)
	defer stateCloser()

	producer, consumer, queueCloser := setupQueue(ctx, cfg, logger)
	defer queueCloser()

	modelRouter := ai.NewModelRouter(ai.ModelRouterConfig{
		StructureModel:    cfg.ModelStructure,
		DesignModel:       cfg.ModelDesign,
		CodeModel:         cfg.ModelCode,
		ContentModel:      cfg.ModelContent,
		OptimizationModel: cfg.ModelOptimization,
	})
	gatewayClient := ai.NewGatewayClient(ai.GatewayClientConfig{
		APIKey:  cfg.GatewayAPIKey,
		BaseURL: cfg.GatewayBaseURL,
		Timeout: time.Duration(cfg.GatewayTimeoutMS) * time.Millisecond,
		SiteURL: cfg.GatewaySiteURL,
		AppName: cfg.GatewayAppName,
	})
	if !gatewayClient.Available() {
		logger.Printf("GATEWAY_API_KEY not configured, builds will use template assembly only")
	}

	responseCache := cache.NewResponseCache(cache.Config{
		TTL:        time.Duration(cfg.ResponseCacheTTLSeconds) * time.Second,
		MaxEntries: cfg.ResponseCacheMaxEntries,
	})
	builder := service.NewArtifactBuilder(service.ArtifactBuilderDependencies{
		Router:    modelRouter,
		Client:    gatewayClient,
		Cache:     responseCache,
		Context:   contextbuilder.NewBuilder(contextbuilder.NewBusinessRetriever()),
		Validator: quality.NewOutputValidator(),
		Artifacts: artifactsRepo,
		Logger:    logger,
	})

	taskTracker := tracker.New(tasksRepo, stateService, logger)
	buildsService := service.NewBuildsService(taskTracker, producer, stateService)

	deployer := viewer.NewSimulatedDeployer()
	deployer.Delay = time.Duration(cfg.DeployDelayMS) * time.Millisecond
	if cfg.GatewaySiteURL != "" {
		deployer.BaseURL = cfg.GatewaySiteURL
	}

	api := handlers.NewAPI(buildsService, artifactsRepo, stateService, deployer)

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      cfg.AuthToken,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if cfg.WorkerEnabled {
		processor := worker.NewProcessor(consumer, taskTracker, builder, logger)
		go processor.Start(ctx)
		logger.Printf("worker enabled and started")
	} else {
		logger.Printf("worker disabled by configuration")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Printf("api listening on :%s", cfg.Port)
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

func setupRepositories(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (repository.ArtifactsRepository, repository.TasksRepository, func()) {
	if cfg.DatabaseURL == "" {
		logger.Printf("DATABASE_URL not configured, using in-memory repositories")
		return repository.NewMemoryArtifactsRepository(), repository.NewMemoryTasksRepository(), func() {}
	}

	pgArtifacts, err := repository.NewPostgresArtifactsRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Printf("failed to initialize postgres repositories, fallback to memory: %v", err)
		return repository.NewMemoryArtifactsRepository(), repository.NewMemoryTasksRepository(), func() {}
	}
	pgTasks := repository.NewPostgresTasksRepositoryFromPool(pgArtifacts.Pool())
	logger.Printf("postgres repositories initialized")
	return pgArtifacts, pgTasks, func() {
		pgArtifacts.Close()
	}
}

func setupState(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (*store.StateService, func()) {
	if cfg.StatePath == "" {
		logger.Printf("STATE_DB_PATH not configured, using in-memory client state")
		return store.NewStateService(store.NewMemoryKV()), func() {}
	}

	kv, err := store.OpenSQLiteKV(ctx, cfg.StatePath)
	if err != nil {
		logger.Printf("failed to open sqlite state, fallback to memory: %v", err)
		return store.NewStateService(store.NewMemoryKV()), func() {}
	}
	logger.Printf("sqlite client state initialized path=%s", cfg.StatePath)
	return store.NewStateService(kv), func() {
		_ = kv.Close()
	}
}

func setupQueue(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (queue.Producer, queue.Consumer, func()) {
	var (
		baseProducer queue.Producer
		consumer     queue.Consumer
		baseCloser   = func() {}
	)

	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using local queue fallback")
		local := queue.NewLocalQueue(512, 3, logger)
		baseProducer = local
		consumer = local
	} else {
		streams, err := queue.NewStreamsQueue(ctx, queue.StreamsConfig{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			Stream:      cfg.RedisStream,
			DLQStream:   cfg.RedisDLQ,
			Group:       cfg.RedisGroup,
			Consumer:    cfg.RedisConsumer,
			MaxAttempts: 3,
		})
		if err != nil {
			logger.Printf("failed to initialize redis streams queue, fallback to local: %v", err)
			local := queue.NewLocalQueue(512, 3, logger)
			baseProducer = local
			consumer = local
		} else {
			logger.Printf("redis streams queue initialized")
			baseProducer = streams
			consumer = streams
			baseCloser = func() {
				_ = streams.Close()
			}
		}
	}

	producer := baseProducer
	batchingCloser := func() {}
	if cfg.QueueBatchingEnabled {
		batching := queue.NewBatchingProducer(ctx, baseProducer, queue.BatchingConfig{
			MaxBatchSize:       cfg.QueueBatchSize,
			FlushInterval:      time.Duration(cfg.QueueBatchFlushMS) * time.Millisecond,
			FlushTimeout:       time.Duration(cfg.QueueBatchFlushTimeoutMS) * time.Millisecond,
			QueueCapacity:      cfg.QueueBatchQueueCapacity,
			MaxInFlightBatches: cfg.QueueBatchMaxInFlight,
		})
		producer = batching
		batchingCloser = batching.Close
		logger.Printf(
			"queue batching enabled size=%d flush_ms=%d queue_capacity=%d max_in_flight=%d",
			cfg.QueueBatchSize,
			cfg.QueueBatchFlushMS,
			cfg.QueueBatchQueueCapacity,
			cfg.QueueBatchMaxInFlight,
		)
	}

	return producer, consumer, func() {
		batchingCloser()
		baseCloser()
	}
}
