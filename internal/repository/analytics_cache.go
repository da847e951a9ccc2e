package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/grievance-service/internal/domain"
)

const analyticsKeyPrefix = "analytics:"

// AnalyticsCache keeps dashboard summaries in Redis. Entries are keyed by the
// filter and a generation counter; Invalidate bumps the generation so stale
// summaries are never read again and expire on their own.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache builds a cache over client.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{client: client, ttl: ttl}
}

// Key resolves the cache key for filter under the current generation.
// Callers resolve it once and pass it to both Get and Set, so a summary
// computed before an Invalidate can never land under the newer generation.
func (c *AnalyticsCache) Key(ctx context.Context, filter domain.IssueFilter) (string, error) {
	gen, err := c.client.Get(ctx, analyticsKeyPrefix+"generation").Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return analyticsKeyPrefix + fmt.Sprintf("%d:", gen) + FilterFingerprint(filter), nil
}

// Get returns the summary cached under key, if any.
func (c *AnalyticsCache) Get(ctx context.Context, key string) (*domain.AnalyticsSummary, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var summary domain.AnalyticsSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached analytics: %w", err)
	}
	return &summary, true, nil
}

// Set stores summary under key.
func (c *AnalyticsCache) Set(ctx context.Context, key string, summary *domain.AnalyticsSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate retires every cached summary.
func (c *AnalyticsCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, analyticsKeyPrefix+"generation").Err()
}

// FilterFingerprint is a stable digest of filter.
func FilterFingerprint(filter domain.IssueFilter) string {
	raw, _ := json.Marshal(filter)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
