package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"campuswell/internal/model"
)

// AnalyticsCache holds the computed admin overview for a short TTL so the
// dashboard does not rescan every risk profile on each page load.
type AnalyticsCache interface {
	GetOverview(ctx context.Context) (*model.AnalyticsOverview, error)
	SetOverview(ctx context.Context, overview *model.AnalyticsOverview) error
}

type analyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a new analytics cache
func NewAnalyticsCache(client *redis.Client) AnalyticsCache {
	return &analyticsCache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

const overviewKey = "analytics:overview"

func (c *analyticsCache) GetOverview(ctx context.Context) (*model.AnalyticsOverview, error) {
	data, err := c.client.Get(ctx, overviewKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var overview model.AnalyticsOverview
	if err := json.Unmarshal([]byte(data), &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

func (c *analyticsCache) SetOverview(ctx context.Context, overview *model.AnalyticsOverview) error {
	data, err := json.Marshal(overview)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, overviewKey, data, c.ttl).Err()
}
