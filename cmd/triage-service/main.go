package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/delivery/consumer"
	delivery "github.com/jyaunches/benz-sent-filter-sub001/internal/triage/delivery/http"
	_ "github.com/jyaunches/benz-sent-filter-sub001/internal/triage/docs"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/override"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/repository"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/service"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/common"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/postgres"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/redis"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/telegram"

	"google.golang.org/genai"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the triage service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Triage Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Create the consumer group if it doesn't exist
	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamTriageRequest, common.RedisStreamGroup, "0").Err(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
	}
	if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamTriageAccepted, common.RedisStreamGroup, "0").Err(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
	}

	// Initialize repositories
	tickerContextRepo := repository.NewTickerContextRepository(db.DB)

	// Initialize scoring provider
	var scoringRepo repository.ScoringRepository
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		repo, err := repository.NewGeminiScoringRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini scoring repository", zap.Error(err))
		}
		scoringRepo = repo
	case config.ProviderOpenAI:
		scoringRepo = repository.NewOpenAIScoringRepository(cfg, appLogger)
	default:
		scoringRepo = repository.NewClassifierScoringRepository(cfg, appLogger)
	}

	telegramNotifier := telegram.NewNoopClient()
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	// Initialize the override registry. Config validation already compiled
	// these patterns once, so a failure here means a code bug.
	overrideRegistry, err := override.NewRegistry(!cfg.Overrides.DisableBuiltins, cfg.OverrideEntries())
	if err != nil {
		appLogger.Fatal("Failed to compile override patterns", zap.Error(err))
	}

	// Initialize the entity store and warm it from the database. A failed
	// warm-up is not fatal since config-declared contexts still apply.
	entityStore := service.NewEntityStore(cfg, appLogger, tickerContextRepo)
	if err := entityStore.Reload(ctx); err != nil {
		appLogger.Warn("Failed to warm entity store from database", zap.Error(err))
	}

	// Initialize services
	pipeline := service.NewTriagePipeline(cfg, appLogger, scoringRepo, overrideRegistry, entityStore)
	triageSvc := service.NewTriageService(cfg, appLogger, redisClient.Client, pipeline, telegramNotifier)

	// Initialize and start the feed ingestor
	feedIngestor := service.NewFeedIngestor(cfg, appLogger, triageSvc, entityStore)
	if err := feedIngestor.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start feed ingestor", zap.Error(err))
	}

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, triageSvc, appLogger)
	redisConsumer.Start(ctx)

	// Schedule periodic maintenance
	maintenanceCron := cron.New()
	if cfg.Contexts.RefreshCron != "" {
		_, err := maintenanceCron.AddFunc(cfg.Contexts.RefreshCron, func() {
			refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := entityStore.Reload(refreshCtx); err != nil {
				appLogger.Error("Scheduled entity store reload failed", zap.Error(err))
			}
		})
		if err != nil {
			appLogger.Fatal("Failed to schedule entity store refresh", zap.Error(err))
		}
	}
	if cfg.Telegram.Enabled && cfg.Telegram.DigestCron != "" {
		_, err := maintenanceCron.AddFunc(cfg.Telegram.DigestCron, triageSvc.FlushDigest)
		if err != nil {
			appLogger.Fatal("Failed to schedule digest flush", zap.Error(err))
		}
	}
	maintenanceCron.Start()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	triageHandler := delivery.NewTriageHandler(triageSvc, appLogger)
	triageGroup := apiV1.Group("/triage")
	triageHandler.RegisterRoutes(triageGroup)

	contextHandler := delivery.NewTickerContextHandler(tickerContextRepo, entityStore, appLogger)
	contextsGroup := apiV1.Group("/contexts")
	contextHandler.RegisterRoutes(contextsGroup)

	patternHandler := delivery.NewPatternHandler(overrideRegistry)
	patternsGroup := apiV1.Group("/patterns")
	patternHandler.RegisterRoutes(patternsGroup)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	appLogger.Info("Triage service started. Waiting for headlines...")

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down triage service...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	<-maintenanceCron.Stop().Done()
	feedIngestor.Stop()
	redisConsumer.Stop()

	appLogger.Info("Triage service stopped.")
}

// @title Headline Triage Service API
// @version 1.0
// @description Evaluates financial news headlines for relevance and materiality.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "triage-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-triage.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing triage-service CLI: %s\n", err)
		os.Exit(1)
	}
}
