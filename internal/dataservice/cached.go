package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cached is a read-through redis cache for the immutable reference data
// (specialties and doctors). Everything else passes straight to the inner
// Service. Redis failures are logged and fall through to the inner Service.
type Cached struct {
	Service
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewCached(inner Service, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Cached {
	return &Cached{Service: inner, redis: rdb, ttl: ttl, log: log}
}

const cacheKeyPrefix = "carebook:ref:"

func (c *Cached) Specialties(ctx context.Context) ([]doctor.Specialty, error) {
	return readThrough(ctx, c, cacheKeyPrefix+"specialties", func() ([]doctor.Specialty, error) {
		return c.Service.Specialties(ctx)
	})
}

func (c *Cached) Doctors(ctx context.Context, specialtyID *int) ([]doctor.Doctor, error) {
	key := cacheKeyPrefix + "doctors:all"
	if specialtyID != nil {
		key = cacheKeyPrefix + "doctors:" + strconv.Itoa(*specialtyID)
	}
	return readThrough(ctx, c, key, func() ([]doctor.Doctor, error) {
		return c.Service.Doctors(ctx, specialtyID)
	})
}

func readThrough[T any](ctx context.Context, c *Cached, key string, load func() (T, error)) (T, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jerr := json.Unmarshal(data, &v); jerr == nil {
			return v, nil
		}
		c.log.Warn("discarding unreadable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// Invalidate drops every cached reference entry, e.g. after reseeding.
func (c *Cached) Invalidate(ctx context.Context) error {
	iter := c.redis.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}
