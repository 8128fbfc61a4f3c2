package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()

	setDefaults(v, cfg)

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Config file not found is ok - we use defaults and env vars
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Read from environment variables
	v.SetEnvPrefix("FRAUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", cfg.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)

	v.SetDefault("redis.host", cfg.Redis.Host)
	v.SetDefault("redis.port", cfg.Redis.Port)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.pool_size", cfg.Redis.PoolSize)
	v.SetDefault("redis.read_timeout", cfg.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", cfg.Redis.WriteTimeout)

	v.SetDefault("kafka.brokers", cfg.Kafka.Brokers)
	v.SetDefault("kafka.transactions_topic", cfg.Kafka.TransactionsTopic)
	v.SetDefault("kafka.alerts_topic", cfg.Kafka.AlertsTopic)
	v.SetDefault("kafka.dead_letter_topic", cfg.Kafka.DeadLetterTopic)
	v.SetDefault("kafka.consumer_group", cfg.Kafka.ConsumerGroup)
	v.SetDefault("kafka.min_bytes", cfg.Kafka.MinBytes)
	v.SetDefault("kafka.max_bytes", cfg.Kafka.MaxBytes)
	v.SetDefault("kafka.max_wait", cfg.Kafka.MaxWait)

	v.SetDefault("features.amount_history_days", cfg.Features.AmountHistoryDays)
	v.SetDefault("features.max_write_retries", cfg.Features.MaxWriteRetries)
	v.SetDefault("features.retry_backoff", cfg.Features.RetryBackoff)
	v.SetDefault("features.store_timeout", cfg.Features.StoreTimeout)
	v.SetDefault("features.max_minutes_since_last", cfg.Features.MaxMinutesSinceLast)

	v.SetDefault("scoring.review_threshold", cfg.Scoring.ReviewThreshold)
	v.SetDefault("scoring.block_threshold", cfg.Scoring.BlockThreshold)
	v.SetDefault("scoring.top_k_factors", cfg.Scoring.TopKFactors)
	v.SetDefault("scoring.materiality_cutoff", cfg.Scoring.MaterialityCutoff)
	v.SetDefault("scoring.feature_poll_attempts", cfg.Scoring.FeaturePollAttempts)
	v.SetDefault("scoring.feature_poll_interval", cfg.Scoring.FeaturePollInterval)
	v.SetDefault("scoring.request_timeout", cfg.Scoring.RequestTimeout)
	v.SetDefault("scoring.model_refresh_interval", cfg.Scoring.ModelRefreshInterval)

	v.SetDefault("trainer.window_days", cfg.Trainer.WindowDays)
	v.SetDefault("trainer.max_rows", cfg.Trainer.MaxRows)
	v.SetDefault("trainer.min_rows", cfg.Trainer.MinRows)
	v.SetDefault("trainer.test_ratio", cfg.Trainer.TestRatio)
	v.SetDefault("trainer.epochs", cfg.Trainer.Epochs)
	v.SetDefault("trainer.learning_rate", cfg.Trainer.LearningRate)
	v.SetDefault("trainer.l2_penalty", cfg.Trainer.L2Penalty)
	v.SetDefault("trainer.decision_threshold", cfg.Trainer.DecisionThreshold)
	v.SetDefault("trainer.min_pr_auc", cfg.Trainer.MinPRAUC)
	v.SetDefault("trainer.min_recall", cfg.Trainer.MinRecall)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
