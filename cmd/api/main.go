package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	scoringapp "fraud-scoring-engine/internal/application/scoring"
	"fraud-scoring-engine/internal/domain/scoring"
	"fraud-scoring-engine/internal/infrastructure/cache/redis"
	"fraud-scoring-engine/internal/infrastructure/database/postgres"
	"fraud-scoring-engine/internal/infrastructure/http/router"
	"fraud-scoring-engine/internal/infrastructure/ml"
	"fraud-scoring-engine/internal/infrastructure/stream/kafka"
	"fraud-scoring-engine/internal/interfaces/http/handler"
	"fraud-scoring-engine/internal/pkg/config"
	"fraud-scoring-engine/internal/pkg/telemetry"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting scoring API v%s", version)

	dbClient, err := postgres.NewClient(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbClient.Close()
	log.Printf("Connected to PostgreSQL at %s:%d", cfg.Database.Host, cfg.Database.Port)

	eventRepo := postgres.NewEventRepository(dbClient)
	featureRepo := postgres.NewFeatureRepository(dbClient)
	alertRepo := postgres.NewAlertRepository(dbClient)
	registryRepo := postgres.NewRegistryRepository(dbClient)

	// Redis is optional for scoring; the velocity endpoint degrades
	var redisClient *redis.Client
	var velocityCache *redis.VelocityCache
	redisClient, err = redis.NewClient(redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Printf("Warning: Redis connection failed (velocity profiles disabled): %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		velocityCache = redis.NewVelocityCache(redisClient)
	}

	metrics := telemetry.New(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A scoring service with no model must not serve
	loader := ml.NewLoader(registryRepo)
	if err := loader.Load(ctx); err != nil {
		log.Fatalf("Model load failed: %v", err)
	}
	metrics.SetModelVersion(loader.Version())
	go loader.Run(ctx, cfg.Scoring.ModelRefreshInterval)

	publisher := kafka.NewAlertPublisher(cfg.Kafka.Brokers, cfg.Kafka.AlertsTopic)
	defer publisher.Close()

	scoringService := scoring.NewService(
		featureRepo,
		eventRepo,
		alertRepo,
		publisher,
		loader,
		scoring.ServiceConfig{
			Thresholds: scoring.Thresholds{
				Review: cfg.Scoring.ReviewThreshold,
				Block:  cfg.Scoring.BlockThreshold,
			},
			TopKFactors:       cfg.Scoring.TopKFactors,
			MaterialityCutoff: cfg.Scoring.MaterialityCutoff,
			PollAttempts:      cfg.Scoring.FeaturePollAttempts,
			PollInterval:      cfg.Scoring.FeaturePollInterval,
		},
	)

	scoreUseCase := scoringapp.NewScoreTransactionUseCase(scoringService, metrics, cfg.Scoring.RequestTimeout)

	scoreHandler := handler.NewScoreHandler(scoreUseCase)
	alertHandler := handler.NewAlertHandler(scoringService)

	var userHandler *handler.UserHandler
	if velocityCache != nil {
		userHandler = handler.NewUserHandler(velocityCache)
	}

	var redisChecker handler.HealthChecker
	if redisClient != nil {
		redisChecker = redisClient
	}
	healthHandler := handler.NewHealthHandler(dbClient, redisChecker, loader, version)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	r := router.NewRouter(scoreHandler, alertHandler, userHandler, healthHandler, metricsPath)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}
