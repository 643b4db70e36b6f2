// Package cache keeps a read-through copy of the cabin catalog in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"cabana/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyActive = "cabana:cabins:active"
	keyAll    = "cabana:cabins:all"
)

// CabinLister is the catalog source behind the cache.
type CabinLister interface {
	ListCabins(ctx context.Context, activeOnly bool) ([]model.Cabin, error)
}

// Cabins serves the catalog from Redis and falls back to the lister.
// A nil client or a zero TTL disables caching.
type Cabins struct {
	src    CabinLister
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewCabins(src CabinLister, client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Cabins {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Cabins{src: src, redis: client, ttl: ttl, logger: logger}
}

func (c *Cabins) ListCabins(ctx context.Context, activeOnly bool) ([]model.Cabin, error) {
	key := keyAll
	if activeOnly {
		key = keyActive
	}

	var cabins []model.Cabin
	if c.readCache(ctx, key, &cabins) {
		return cabins, nil
	}

	cabins, err := c.src.ListCabins(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, cabins)
	return cabins, nil
}

// Invalidate drops cached catalog entries after a cabin write or config sync.
func (c *Cabins) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.redis.Del(ctx, keyActive, keyAll).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("cabin cache invalidate failed")
	}
}

func (c *Cabins) enabled() bool {
	return c.redis != nil && c.ttl > 0
}

func (c *Cabins) readCache(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache entry")
		return false
	}
	return true
}

func (c *Cabins) writeCache(ctx context.Context, key string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
