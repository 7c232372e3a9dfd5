// Package cache holds short-lived hot data in Redis: the latest reading
// per sensor device and the most recent weather lookup per postal code.
// The cache is optional; a nil *Cache no-ops everywhere so the system
// runs without Redis configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/weather"
)

const (
	readingTTL    = time.Hour
	conditionsTTL = 30 * time.Minute
)

// Cache wraps a Redis client.
type Cache struct {
	rdb *redis.Client
}

// New connects to Redis at the given address. Empty addr returns a nil
// cache, which disables caching.
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func readingKey(deviceID int64) string {
	return fmt.Sprintf("govee:latest:%d", deviceID)
}

func conditionsKey(postalCode string) string {
	return "weather:conditions:" + postalCode
}

// SetLatestReading stores the most recent reading for a device.
func (c *Cache) SetLatestReading(ctx context.Context, reading domain.GoveeReading) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	return c.rdb.Set(ctx, readingKey(reading.DeviceID), raw, readingTTL).Err()
}

// LatestReading returns the cached reading for a device, or nil on miss.
func (c *Cache) LatestReading(ctx context.Context, deviceID int64) (*domain.GoveeReading, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, readingKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached reading: %w", err)
	}
	var reading domain.GoveeReading
	if err := json.Unmarshal(raw, &reading); err != nil {
		return nil, fmt.Errorf("unmarshal cached reading: %w", err)
	}
	return &reading, nil
}

// SetConditions stores a weather lookup for a postal code.
func (c *Cache) SetConditions(ctx context.Context, postalCode string, cond *weather.Conditions) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(cond)
	if err != nil {
		return fmt.Errorf("marshal conditions: %w", err)
	}
	return c.rdb.Set(ctx, conditionsKey(postalCode), raw, conditionsTTL).Err()
}

// Conditions returns the cached weather lookup for a postal code, or
// nil on miss.
func (c *Cache) Conditions(ctx context.Context, postalCode string) (*weather.Conditions, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, conditionsKey(postalCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached conditions: %w", err)
	}
	var cond weather.Conditions
	if err := json.Unmarshal(raw, &cond); err != nil {
		return nil, fmt.Errorf("unmarshal cached conditions: %w", err)
	}
	return &cond, nil
}
