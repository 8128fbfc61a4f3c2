package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"fraud-scoring-engine/internal/domain/event"
)

// VelocityCache keeps a rolling hot window of each user's transactions
// in a Redis sorted set, scored by event time. The aggregation engine
// writes through on every processed event; the API reads it to serve
// user velocity profiles without touching the feature store. The
// feature store remains the source of truth.
type VelocityCache struct {
	client    *Client
	retention time.Duration
}

// NewVelocityCache creates a new velocity cache with a 7-day retention,
// matching the widest sub-month velocity window
func NewVelocityCache(client *Client) *VelocityCache {
	return &VelocityCache{client: client, retention: 7 * 24 * time.Hour}
}

func velocityKey(userID string) string {
	return fmt.Sprintf("velocity:user:%s", userID)
}

// Record implements feature.VelocityRecorder
func (c *VelocityCache) Record(ctx context.Context, evt *event.RawEvent) error {
	key := velocityKey(evt.UserID)

	// Sorted set with event time as score for efficient range queries
	member := redis.Z{
		Score:  float64(evt.EventTime.Unix()),
		Member: fmt.Sprintf("%s|%s", evt.TransactionID.String(), evt.Amount.String()),
	}

	if err := c.client.ZAdd(ctx, key, member); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	if err := c.client.Expire(ctx, key, c.retention); err != nil {
		return fmt.Errorf("failed to set expiration: %w", err)
	}

	// Trim entries past retention; best effort
	cutoff := time.Now().Add(-c.retention).Unix()
	_ = c.client.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))

	return nil
}

// TransactionCount returns the number of cached transactions in the
// trailing window
func (c *VelocityCache) TransactionCount(ctx context.Context, userID string, window time.Duration) (int64, error) {
	now := time.Now()
	count, err := c.client.ZCount(ctx, velocityKey(userID),
		strconv.FormatInt(now.Add(-window).Unix(), 10),
		strconv.FormatInt(now.Unix(), 10))
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction count: %w", err)
	}
	return count, nil
}

// TransactionSum returns the sum of cached transaction amounts in the
// trailing window
func (c *VelocityCache) TransactionSum(ctx context.Context, userID string, window time.Duration) (decimal.Decimal, error) {
	now := time.Now()
	members, err := c.client.ZRangeByScore(ctx, velocityKey(userID), &redis.ZRangeBy{
		Min: strconv.FormatInt(now.Add(-window).Unix(), 10),
		Max: strconv.FormatInt(now.Unix(), 10),
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get transactions: %w", err)
	}

	total := decimal.Zero
	for _, member := range members {
		// Members are "txID|amount"
		sep := strings.LastIndexByte(member, '|')
		if sep == -1 {
			continue
		}
		if amount, err := decimal.NewFromString(member[sep+1:]); err == nil {
			total = total.Add(amount)
		}
	}
	return total, nil
}
