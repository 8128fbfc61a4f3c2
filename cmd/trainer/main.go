package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fraud-scoring-engine/internal/infrastructure/database/postgres"
	"fraud-scoring-engine/internal/infrastructure/ml"
	"fraud-scoring-engine/internal/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

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

	featureRepo := postgres.NewFeatureRepository(dbClient)
	registryRepo := postgres.NewRegistryRepository(dbClient)

	trainer := ml.NewTrainer(featureRepo, registryRepo, cfg.Trainer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := trainer.Run(ctx)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	os.Stdout.Write(append(out, '\n'))

	// Exit nonzero on gate failure so schedulers notice, even though
	// the artifacts are registered for inspection
	if !report.GatePassed {
		log.Printf("Quality gate failed: %s", report.GateReason)
		os.Exit(2)
	}
}
