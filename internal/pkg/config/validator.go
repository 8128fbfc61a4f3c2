package config

import (
	"errors"
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	if c.Scoring.ReviewThreshold < 0 || c.Scoring.ReviewThreshold > 1 {
		return errors.New("review_threshold must be between 0 and 1")
	}

	if c.Scoring.BlockThreshold < 0 || c.Scoring.BlockThreshold > 1 {
		return errors.New("block_threshold must be between 0 and 1")
	}

	if c.Scoring.ReviewThreshold >= c.Scoring.BlockThreshold {
		return errors.New("review_threshold should be less than block_threshold")
	}

	if c.Scoring.FeaturePollAttempts <= 0 {
		return errors.New("feature_poll_attempts must be positive")
	}

	if c.Scoring.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}

	if c.Features.AmountHistoryDays <= 0 {
		return errors.New("amount_history_days must be positive")
	}

	if c.Features.MaxWriteRetries <= 0 {
		return errors.New("max_write_retries must be positive")
	}

	if c.Trainer.TestRatio <= 0 || c.Trainer.TestRatio >= 1 {
		return errors.New("test_ratio must be between 0 and 1 exclusive")
	}

	if c.Trainer.MinPRAUC < 0 || c.Trainer.MinPRAUC > 1 {
		return errors.New("min_pr_auc must be between 0 and 1")
	}

	if c.Trainer.MinRecall < 0 || c.Trainer.MinRecall > 1 {
		return errors.New("min_recall must be between 0 and 1")
	}

	return nil
}
