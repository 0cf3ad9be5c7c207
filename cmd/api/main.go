package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	_ "embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"

	"github.com/calder-ai/lead-qualification-platform/cmd/mainconfig"
	"github.com/calder-ai/lead-qualification-platform/internal/api/router"
	appconfig "github.com/calder-ai/lead-qualification-platform/internal/config"
	"github.com/calder-ai/lead-qualification-platform/internal/conversation"
	"github.com/calder-ai/lead-qualification-platform/internal/dedup"
	"github.com/calder-ai/lead-qualification-platform/internal/leads"
	"github.com/calder-ai/lead-qualification-platform/internal/notify"
	"github.com/calder-ai/lead-qualification-platform/internal/observability/metrics"
	"github.com/calder-ai/lead-qualification-platform/internal/webchat"
	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

//go:embed widget.js
var widgetJS []byte

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lead-qualification-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	convMetrics := metrics.NewConversationMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// AWS is only dialed when something actually needs it.
	var awsCfg aws.Config
	needAWS := cfg.EmailProvider == "ses" || cfg.BedrockModelID != "" || !cfg.UseMemoryQueue
	if needAWS {
		var err error
		awsCfg, err = mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
	}

	var sessions conversation.SessionStore = conversation.NewMemorySessionStore()
	var guard dedup.Guard = dedup.NewMemoryGuard(cfg.LeadDedupWindow)
	if redisClient != nil {
		sessions = conversation.NewRedisSessionStore(redisClient, nil)
		guard = dedup.NewRedisGuard(redisClient, cfg.LeadDedupWindow)
	} else {
		logger.Warn("REDIS_ADDR not set; sessions and dedup state are process-local")
	}

	var leadsRepo leads.Repository = leads.NewInMemoryRepository()
	var archiveDB *sql.DB
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadsRepo = leads.NewPostgresRepository(pool)

		archiveDB, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open archive db", "error", err)
			os.Exit(1)
		}
		defer func() { _ = archiveDB.Close() }()
	} else {
		logger.Warn("DATABASE_URL not set; leads are stored in memory")
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			sender = s
		}
	case "ses":
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); s != nil {
			sender = s
		}
	}
	if sender == nil {
		logger.Warn("no email provider configured; lead routing will be logged only")
		sender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(sender, cfg.RoutingTable(), cfg.OrgName, logger)

	llm := buildLLMClient(cfg, awsCfg, logger)

	processor := conversation.NewLeadProcessor(leadsRepo, notifier, guard, logger, convMetrics)
	engineOpts := []conversation.EngineOption{conversation.WithMetrics(convMetrics)}
	if archiveDB != nil {
		engineOpts = append(engineOpts, conversation.WithArchive(conversation.NewArchiveStore(archiveDB, logger)))
	}
	model := cfg.OpenAIModel
	if cfg.OpenAIAPIKey == "" && cfg.BedrockModelID != "" {
		model = cfg.BedrockModelID
	}
	engine := conversation.NewEngine(llm, model, sessions, processor, notifier, logger, engineOpts...)

	var dispatcher conversation.Dispatcher
	if cfg.UseMemoryQueue {
		dispatcher = conversation.NewOrchestrator(engine, conversation.NewMemoryQueue(256), logger,
			conversation.WithWorkerCount(cfg.WorkerCount))
	} else {
		sqsQueue := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ConversationQueueURL)
		dispatcher = conversation.NewOrchestrator(engine, sqsQueue, logger,
			conversation.WithWorkerCount(cfg.WorkerCount))
	}

	routerCfg := &router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(dispatcher, logger),
		LeadsHandler:        leads.NewHandler(leadsRepo, logger),
		WebChatHandler:      webchat.NewHandler(dispatcher, widgetJS, logger),
		MetricsHandler:      metricsHandler,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		EmailConfigured:     cfg.EmailConfigured(),
		RateLimitPerSecond:  cfg.RateLimitPerSec,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatcher forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// buildLLMClient assembles the generation stack: OpenAI primary with an
// optional Bedrock fallback, or Bedrock alone when no OpenAI key is set.
func buildLLMClient(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) conversation.LLMClient {
	var primary conversation.LLMClient
	if cfg.OpenAIAPIKey != "" {
		primary = conversation.NewOpenAIClient(openai.NewClient(cfg.OpenAIAPIKey), logger)
	}
	if cfg.BedrockModelID != "" {
		bedrock := conversation.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
		if primary == nil {
			return bedrock
		}
		return conversation.NewFallbackLLMClient(primary, bedrock, cfg.BedrockModelID, logger)
	}
	return primary
}
