package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"fraud-scoring-engine/internal/domain/feature"
	"fraud-scoring-engine/internal/infrastructure/cache/redis"
	"fraud-scoring-engine/internal/infrastructure/database/postgres"
	"fraud-scoring-engine/internal/infrastructure/stream/kafka"
	"fraud-scoring-engine/internal/interfaces/http/handler"
	"fraud-scoring-engine/internal/pkg/config"
	"fraud-scoring-engine/internal/pkg/telemetry"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	migrate := flag.Bool("migrate", false, "Run schema migrations before consuming")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting feature consumer v%s", version)

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

	if *migrate {
		if err := dbClient.Migrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Schema migrations applied")
	}

	eventRepo := postgres.NewEventRepository(dbClient)
	featureRepo := postgres.NewFeatureRepository(dbClient)

	// The velocity cache is write-through and best effort
	var redisClient *redis.Client
	var velocity feature.VelocityRecorder
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
		log.Printf("Warning: Redis connection failed (velocity tracking disabled): %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		velocity = redis.NewVelocityCache(redisClient)
	}

	engine := feature.NewEngine(eventRepo, featureRepo, velocity, feature.EngineConfig{
		AmountHistoryDays:   cfg.Features.AmountHistoryDays,
		MaxMinutesSinceLast: cfg.Features.MaxMinutesSinceLast,
		MaxWriteRetries:     cfg.Features.MaxWriteRetries,
		RetryBackoff:        cfg.Features.RetryBackoff,
		StoreTimeout:        cfg.Features.StoreTimeout,
	})

	metrics := telemetry.New(prometheus.DefaultRegisterer)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:         cfg.Kafka.Brokers,
		Topic:           cfg.Kafka.TransactionsTopic,
		DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
		GroupID:         cfg.Kafka.ConsumerGroup,
		MinBytes:        cfg.Kafka.MinBytes,
		MaxBytes:        cfg.Kafka.MaxBytes,
		MaxWait:         cfg.Kafka.MaxWait,
	}, engine, metrics)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Consuming %s as group %s", cfg.Kafka.TransactionsTopic, cfg.Kafka.ConsumerGroup)
		return consumer.Run(gctx)
	})

	// Ops surface: health probes and metrics only
	var redisChecker handler.HealthChecker
	if redisClient != nil {
		redisChecker = redisClient
	}
	healthHandler := handler.NewHealthHandler(dbClient, redisChecker, nil, version)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, handler.MetricsHandler())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		log.Printf("Ops server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("Consumer stopped: %v", err)
	}
	log.Println("Consumer stopped")
}
