package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Features FeatureConfig  `mapstructure:"features"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Trainer  TrainerConfig  `mapstructure:"trainer"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers           []string      `mapstructure:"brokers"`
	TransactionsTopic string        `mapstructure:"transactions_topic"`
	AlertsTopic       string        `mapstructure:"alerts_topic"`
	DeadLetterTopic   string        `mapstructure:"dead_letter_topic"`
	ConsumerGroup     string        `mapstructure:"consumer_group"`
	MinBytes          int           `mapstructure:"min_bytes"`
	MaxBytes          int           `mapstructure:"max_bytes"`
	MaxWait           time.Duration `mapstructure:"max_wait"`
}

// FeatureConfig holds aggregation engine configuration
type FeatureConfig struct {
	// Trailing window backing the amount statistics (z-score, 30d aggregates)
	AmountHistoryDays int `mapstructure:"amount_history_days"`

	// Write retry policy for transient store failures
	MaxWriteRetries int           `mapstructure:"max_write_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	StoreTimeout    time.Duration `mapstructure:"store_timeout"`

	// Cap for minutes_since_last_txn (one week in minutes)
	MaxMinutesSinceLast int `mapstructure:"max_minutes_since_last"`
}

// ScoringConfig holds scoring decision service configuration
type ScoringConfig struct {
	// Decision thresholds: p < review → APPROVE,
	// review <= p <= block → REVIEW, p > block → BLOCK
	ReviewThreshold float64 `mapstructure:"review_threshold"`
	BlockThreshold  float64 `mapstructure:"block_threshold"`

	// Risk factor explanation
	TopKFactors       int     `mapstructure:"top_k_factors"`
	MaterialityCutoff float64 `mapstructure:"materiality_cutoff"`

	// Bounded feature-readiness poll for requests that arrive before
	// the aggregation engine has materialized the feature row
	FeaturePollAttempts int           `mapstructure:"feature_poll_attempts"`
	FeaturePollInterval time.Duration `mapstructure:"feature_poll_interval"`

	// Per-request deadline
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// How often the service checks the registry for a new passing version
	ModelRefreshInterval time.Duration `mapstructure:"model_refresh_interval"`
}

// TrainerConfig holds training job configuration
type TrainerConfig struct {
	// Bounded historical window of labeled feature rows
	WindowDays int `mapstructure:"window_days"`
	MaxRows    int `mapstructure:"max_rows"`
	MinRows    int `mapstructure:"min_rows"`

	// Time-ordered split
	TestRatio float64 `mapstructure:"test_ratio"`

	// Logistic regression fit
	Epochs       int     `mapstructure:"epochs"`
	LearningRate float64 `mapstructure:"learning_rate"`
	L2Penalty    float64 `mapstructure:"l2_penalty"`

	// Threshold used for precision/recall/F1 on the test split
	DecisionThreshold float64 `mapstructure:"decision_threshold"`

	// Quality gate: new versions are registered only if both clear
	MinPRAUC  float64 `mapstructure:"min_pr_auc"`
	MinRecall float64 `mapstructure:"min_recall"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "fraud_user",
			Password:        "",
			Name:            "fraud_features",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			Password:     "",
			DB:           0,
			PoolSize:     10,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:           []string{"localhost:9092"},
			TransactionsTopic: "transactions",
			AlertsTopic:       "fraud-alerts",
			DeadLetterTopic:   "transactions-dead-letter",
			ConsumerGroup:     "feature-engine",
			MinBytes:          1,
			MaxBytes:          10 << 20,
			MaxWait:           500 * time.Millisecond,
		},
		Features: FeatureConfig{
			AmountHistoryDays:   30,
			MaxWriteRetries:     5,
			RetryBackoff:        200 * time.Millisecond,
			StoreTimeout:        5 * time.Second,
			MaxMinutesSinceLast: 10080,
		},
		Scoring: ScoringConfig{
			ReviewThreshold:      0.3,
			BlockThreshold:       0.7,
			TopKFactors:          5,
			MaterialityCutoff:    0.01,
			FeaturePollAttempts:  5,
			FeaturePollInterval:  20 * time.Millisecond,
			RequestTimeout:       500 * time.Millisecond,
			ModelRefreshInterval: 30 * time.Second,
		},
		Trainer: TrainerConfig{
			WindowDays:        30,
			MaxRows:           500000,
			MinRows:           500,
			TestRatio:         0.2,
			Epochs:            200,
			LearningRate:      0.05,
			L2Penalty:         0.001,
			DecisionThreshold: 0.5,
			MinPRAUC:          0.15,
			MinRecall:         0.30,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
