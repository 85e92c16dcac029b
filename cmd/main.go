package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"asclepius/internal/adapters/clickhouse"
	"asclepius/internal/adapters/config"
	"asclepius/internal/adapters/errors/noop"
	"asclepius/internal/adapters/errors/sentry"
	"asclepius/internal/adapters/kafka"
	"asclepius/internal/adapters/postgres"
	"asclepius/internal/adapters/redis"
	"asclepius/internal/adapters/telegram"
	"asclepius/internal/agents"
	"asclepius/internal/api"
	"asclepius/internal/api/health"
	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/verdict"
	"asclepius/internal/events"
	"asclepius/internal/metrics"
	"asclepius/internal/ml/triage"
	chrepo "asclepius/internal/repository/clickhouse"
	pgrepo "asclepius/internal/repository/postgres"
	redisrepo "asclepius/internal/repository/redis"
	"asclepius/internal/services/dashboard"
	"asclepius/internal/services/pipeline"
	"asclepius/internal/services/synthesis"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	db := initDatabases(cfg, log)
	defer db.Close(log)

	classifier := initClassifier(cfg, log)
	defer classifier.Close()

	council := initCouncil(cfg, log)

	repo := pgrepo.NewVerdictRepository(db.Postgres.DB())

	pipelineSvc := initPipeline(cfg, classifier, council, repo, db, log)
	dashboardSvc := dashboard.NewService(repo)

	server := api.NewServer(
		api.ServerConfig{
			Port:        cfg.App.HTTPPort,
			ServiceName: cfg.App.Name,
			Version:     version,
		},
		api.NewHandler(pipelineSvc, dashboardSvc, cfg.Triage.StreamHeartbeat),
		health.New(cfg.App.Name, version, map[string]health.Checker{
			"postgres":   db.Postgres,
			"clickhouse": db.ClickHouse,
			"redis":      db.Redis,
		}),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	waitForShutdown(ctx, cancel, server, errorTracker, log)
}

// Database holds all storage connections
type Database struct {
	Postgres   *postgres.Client
	ClickHouse *clickhouse.Client
	Redis      *redis.Client
}

// Close closes all connections
func (db *Database) Close(log *logger.Logger) {
	if err := db.Postgres.Close(); err != nil {
		log.Warnf("Failed to close PostgreSQL: %v", err)
	}
	if err := db.ClickHouse.Close(); err != nil {
		log.Warnf("Failed to close ClickHouse: %v", err)
	}
	if err := db.Redis.Close(); err != nil {
		log.Warnf("Failed to close Redis: %v", err)
	}
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.NewTracker()
	}

	tracker, err := sentry.NewTracker(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.NewTracker()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initDatabases initializes PostgreSQL, ClickHouse and Redis connections
func initDatabases(cfg *config.Config, log *logger.Logger) *Database {
	log.Info("Initializing databases...")

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	if err := pgClient.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to prepare verdict store: %v", err)
	}

	log.Info("Databases initialized")
	return &Database{
		Postgres:   pgClient,
		ClickHouse: chClient,
		Redis:      redisClient,
	}
}

// initClassifier loads the ONNX risk model
func initClassifier(cfg *config.Config, log *logger.Logger) *triage.Classifier {
	classifier, err := triage.NewClassifier(cfg.ML.ModelPath)
	if err != nil {
		log.Fatalf("Failed to load risk model: %v", err)
	}

	log.Infof("Risk model loaded from %s", cfg.ML.ModelPath)
	return classifier
}

// initCouncil assembles the specialist producers for the configured provider
func initCouncil(cfg *config.Config, log *logger.Logger) *agents.Council {
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.AI.RequestsPerMin)/60.0), cfg.AI.RequestsPerMin)

	var (
		producers []agents.Producer
		scorer    agents.DepartmentScorer
	)

	switch strings.ToLower(cfg.AI.DefaultProvider) {
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			log.Fatal("OPENAI_API_KEY is required for the openai provider")
		}
		for _, specialty := range opinion.CouncilOrder {
			p, err := agents.NewOpenAIProducer(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel, specialty, limiter)
			if err != nil {
				log.Fatalf("Failed to create %s producer: %v", specialty, err)
			}
			producers = append(producers, p)
		}
		log.Infof("Council using OpenAI (%s)", cfg.AI.OpenAIModel)

	default:
		if cfg.AI.GeminiKey == "" {
			log.Fatal("GEMINI_API_KEY is required for the gemini provider")
		}
		client, err := agents.NewGeminiClient(context.Background(), cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		for _, specialty := range opinion.CouncilOrder {
			producers = append(producers, agents.NewGeminiProducer(client, cfg.AI.GeminiModel, specialty, limiter))
		}
		scorer = agents.NewGeminiDepartmentScorer(client, cfg.AI.GeminiModel, limiter)
		log.Infof("Council using Gemini (%s)", cfg.AI.GeminiModel)
	}

	return agents.NewCouncil(producers, scorer, cfg.Triage.CouncilTimeout, cfg.Triage.ProducerRetries)
}

// initPipeline wires the triage pipeline with its side-channels
func initPipeline(
	cfg *config.Config,
	classifier *triage.Classifier,
	council *agents.Council,
	repo verdict.Repository,
	db *Database,
	log *logger.Logger,
) *pipeline.Service {
	opts := []pipeline.Option{
		pipeline.WithCache(redisrepo.NewVerdictCache(db.Redis, cfg.Triage.CacheTTL)),
		pipeline.WithRunLock(redisrepo.NewRunLock(db.Redis, cfg.Triage.CouncilTimeout+time.Minute)),
		pipeline.WithAnalytics(chrepo.NewTriageEventRepository(db.ClickHouse)),
		pipeline.WithPublisher(events.NewPublisher(kafka.NewProducer(cfg.Kafka))),
	}

	if cfg.Telegram.Enabled {
		bot, err := telegram.NewBot(telegram.Config{
			Token: cfg.Telegram.BotToken,
			Debug: cfg.App.Debug,
		})
		if err != nil {
			log.Warnf("Failed to initialize Telegram bot: %v", err)
		} else {
			opts = append(opts, pipeline.WithNotifier(telegram.NewNotifier(bot, cfg.Telegram.ChatIDs)))
			log.Info("Telegram verdict delivery enabled")
		}
	}

	return pipeline.NewService(classifier, council, synthesis.NewEngine(), repo, opts...)
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
