package main

import (
	"context"
	"fmt"
	"os"

	"spendlens/internal/ai"
	"spendlens/internal/categorize"
	"spendlens/internal/config"
	"spendlens/internal/database"
	"spendlens/internal/insights"
	"spendlens/internal/logger"
	"spendlens/internal/server"
	"spendlens/internal/validator"
)

// @title           Spendlens API
// @version         1.0
// @description     Spendlens tracks personal expenses and turns them into insights, with AI assistance when a provider is configured.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// cacheMaxBytes bounds the provider response cache.
const cacheMaxBytes = 32 << 20

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()
	ctx := context.Background()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Database and migrations
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// AI providers; either may be absent.
	generator, err := ai.NewTextGenerator(ctx, appConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	classifier := ai.NewClassifier(appConfig)

	if appConfig.CacheEnabled {
		cache, err := ai.NewCache(cacheMaxBytes, ai.DefaultCacheTTL)
		if err != nil {
			return fmt.Errorf("failed to create provider cache: %w", err)
		}
		defer cache.Close()
		generator = ai.WithCache(generator, cache)
		classifier = ai.WithClassifierCache(classifier, cache)
	}

	if generator == nil {
		log.Warnw("no AI provider configured, insights use offline fallbacks", "provider", appConfig.AIProvider)
	} else {
		log.Infow("AI provider configured", "provider", generator.Name())
	}

	categorizer := categorize.New(categorize.Config{
		Generator:  generator,
		Classifier: classifier,
		Timeout:    appConfig.AITimeout,
	}, logger.Named("categorize"))
	log.Infow("categorizer ready", "strategies", categorizer.Strategies())

	orchestrator := insights.NewOrchestrator(insights.Config{
		Generator: generator,
		Timeout:   appConfig.AITimeout,
		Thresholds: insights.AnomalyThresholds{
			HighAmount:    appConfig.AnomalyHighMultiplier,
			CategorySpike: appConfig.AnomalyCategoryMultiplier,
		},
	}, logger.Named("insights"))

	validator.Register()

	router := server.NewRouter(server.Options{
		DB:             dbManager.DB(),
		Categorizer:    categorizer,
		Orchestrator:   orchestrator,
		AllowedOrigin:  appConfig.AllowedOrigin,
		RequestLogging: true,
	})

	log.Infof("Starting Spendlens server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
