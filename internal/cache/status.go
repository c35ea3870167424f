// Package cache provides the optional Redis read-through cache for space
// occupancy status. The status rows are written by the external sensor
// pipeline, so staleness is bounded by the TTL and a missing or failing
// Redis only costs the extra database read.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/easypark/server/internal/domain/spaces"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const statusTTL = 15 * time.Second

type StatusCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewStatusCache connects to Redis at url (redis:// form). An empty url
// returns nil, which the spaces service treats as cache disabled.
func NewStatusCache(url string, logger zerolog.Logger) (*StatusCache, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &StatusCache{
		client: redis.NewClient(opts),
		logger: logger.With().Str("component", "status-cache").Logger(),
	}, nil
}

func (c *StatusCache) GetStatus(ctx context.Context, spaceID int64) (*spaces.Status, bool) {
	payload, err := c.client.Get(ctx, statusKey(spaceID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Int64("vaga_id", spaceID).Msg("cache read failed")
		}
		return nil, false
	}

	var status spaces.Status
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, false
	}
	return &status, true
}

func (c *StatusCache) SetStatus(ctx context.Context, spaceID int64, status *spaces.Status) {
	payload, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusKey(spaceID), payload, statusTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Int64("vaga_id", spaceID).Msg("cache write failed")
	}
}

func (c *StatusCache) Close() error {
	return c.client.Close()
}

func statusKey(spaceID int64) string {
	return fmt.Sprintf("vaga:%d:status", spaceID)
}
