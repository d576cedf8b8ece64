// Package slotcache keeps recent live slot lookups in Redis so that cards
// rendered within the same window share one proxy call.
package slotcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/slots"
)

const (
	keyPrefix  = "slots:"
	DefaultTTL = 100 * time.Second
)

var ErrMiss = errors.New("slotcache: miss")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		panic("slotcache: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(scope, extID, date string) string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, scope, extID, date)
}

// Get returns ErrMiss when nothing is stored for the key.
func (c *Cache) Get(ctx context.Context, scope, extID, date string) ([]models.Slot, error) {
	raw, err := c.client.Get(ctx, cacheKey(scope, extID, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("slotcache: get: %w", err)
	}

	var cached []models.Slot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("slotcache: decode: %w", err)
	}
	return cached, nil
}

func (c *Cache) Set(ctx context.Context, scope, extID, date string, value []models.Slot) error {
	if value == nil {
		value = []models.Slot{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("slotcache: encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(scope, extID, date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("slotcache: set: %w", err)
	}
	return nil
}

// Fetcher serves lookups from the cache and falls through to Next on a miss.
// Only successful lookups are stored. Redis failures are logged and bypassed.
type Fetcher struct {
	Cache *Cache
	Scope string
	Next  slots.Fetcher
}

func (f Fetcher) FetchSlots(ctx context.Context, extID, date string) ([]models.Slot, error) {
	if f.Cache == nil {
		return f.Next.FetchSlots(ctx, extID, date)
	}
	logger := log.Ctx(ctx)

	cached, err := f.Cache.Get(ctx, f.Scope, extID, date)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, ErrMiss):
		logger.Warn().Err(err).Str("ext_id", extID).Str("date", date).Msg("Slot cache read failed")
	}

	fresh, err := f.Next.FetchSlots(ctx, extID, date)
	if err != nil {
		return nil, err
	}
	if err := f.Cache.Set(ctx, f.Scope, extID, date, fresh); err != nil {
		logger.Warn().Err(err).Str("ext_id", extID).Str("date", date).Msg("Slot cache write failed")
	}
	return fresh, nil
}
