package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"terraflow_backend/internal/adapters"
	"terraflow_backend/internal/adapters/storage"
	"terraflow_backend/internal/aiflows"
	"terraflow_backend/internal/auth"
	"terraflow_backend/internal/email"
	"terraflow_backend/internal/events"
	apphttp "terraflow_backend/internal/http"
	"terraflow_backend/internal/http/router"
	"terraflow_backend/internal/leads"
	"terraflow_backend/internal/leads/scoring"
	"terraflow_backend/internal/notification"
	"terraflow_backend/internal/properties"
	proprepo "terraflow_backend/internal/properties/repository"
	"terraflow_backend/internal/scheduler"
	"terraflow_backend/migrations"
	"terraflow_backend/platform/config"
	"terraflow_backend/platform/db"
	"terraflow_backend/platform/logger"
	"terraflow_backend/platform/validator"
)

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

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	taskClient := initTaskClient(cfg, log)
	defer func() { _ = taskClient.Close() }()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	weights := loadScoringWeights(cfg, log)

	// Storage service for listing media uploads (MinIO). Optional: media
	// endpoints reject uploads when storage is not configured.
	var storageSvc storage.Service
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure property-media bucket", 5, 2*time.Second, func() error {
			return minioSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketPropertyMedia())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = minioSvc
		log.Info("storage service initialized", "propertyMediaBucket", cfg.GetMinioBucketPropertyMedia())
	} else {
		log.Warn("MinIO not configured; listing media uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, log)

	// The properties repository is built first so the leads module can match
	// listings against a lead's property of interest (breaks the construction
	// cycle between the two modules).
	propertyRepo := proprepo.New(pool)
	matcher := adapters.NewPropertyMatcherAdapter(propertyRepo)

	leadsModule := leads.NewModule(pool, matcher, eventBus, weights, log)

	enquiryIntake := adapters.NewLeadIntakeAdapter(leadsModule.Service())
	propertiesModule := properties.NewModule(
		propertyRepo,
		enquiryIntake,
		storageSvc,
		eventBus,
		cfg.GetMinioBucketPropertyMedia(),
		cfg.GetAppBaseURL(),
		log,
	)

	var generator aiflows.Generator
	if cfg.IsGenAIEnabled() {
		genAI, err := aiflows.NewGenAIGenerator(ctx, cfg.GetGenAIAPIKey(), cfg.GetGenAIModel())
		if err != nil {
			log.Error("failed to initialize text generator", "error", err)
			panic("failed to initialize text generator: " + err.Error())
		}
		generator = genAI
		log.Info("text generator initialized", "model", cfg.GetGenAIModel())
	} else {
		log.Warn("GENAI_API_KEY not configured; generation endpoints disabled")
	}

	chatIntake := adapters.NewChatIntakeAdapter(leadsModule.Service())
	aiflowsModule := aiflows.NewModule(aiflows.NewService(generator, chatIntake, validator.New(), log))

	// Notification module subscribes to domain events (not HTTP-facing).
	agentResolver := adapters.NewAgentResolverAdapter(authModule.Repository())
	notificationModule := notification.New(sender, agentResolver, cfg, log)
	notificationModule.Subscribe(eventBus)

	// Hot-lead alerts go through the task queue when one is configured so a
	// slow SMTP server never stalls an intake request. Without redis they are
	// delivered in-process from the bus.
	if taskClient != nil {
		subscribeHotLeadEnqueue(eventBus, taskClient)
	} else {
		notificationModule.SubscribeHotLead(eventBus)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			propertiesModule,
			aiflowsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initTaskClient builds the asynq client when redis is configured. A nil
// client is safe to use; enqueues become no-ops.
func initTaskClient(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background tasks run in-process")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		return nil
	}
	return client
}

func loadScoringWeights(cfg config.ScoringConfig, log *logger.Logger) scoring.Weights {
	path := cfg.GetScoringWeightsPath()
	if path == "" {
		return scoring.DefaultWeights()
	}

	weights, err := scoring.LoadWeights(path)
	if err != nil {
		log.Error("failed to load scoring weights, using defaults", "path", path, "error", err)
		return scoring.DefaultWeights()
	}
	log.Info("scoring weights loaded", "path", path)
	return weights
}

func subscribeHotLeadEnqueue(bus events.Bus, client *scheduler.Client) {
	bus.Subscribe(events.HotLeadDetected{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		event, ok := e.(events.HotLeadDetected)
		if !ok {
			return errors.New("unexpected event type for hot lead enqueue")
		}
		return client.EnqueueHotLeadNotify(ctx, scheduler.HotLeadNotifyPayload{
			LeadID:   event.LeadID.String(),
			UserID:   event.UserID.String(),
			LeadName: event.LeadName,
			AIScore:  event.AIScore,
		})
	}))
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
