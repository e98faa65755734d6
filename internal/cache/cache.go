// Package cache stores rendered masks in redis keyed by a hash of their input.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"image-labeler/internal/config"
	"image-labeler/internal/logging"
)

// ErrDisabled is returned by a nil cache.
var ErrDisabled = errors.New("mask cache disabled")

const keyPrefix = "mask:"

type MaskCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New returns a cache for cfg, or nil when redis is disabled.
func New(cfg config.RedisConfig) *MaskCache {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &MaskCache{client: client, ttl: cfg.TTL, logger: logging.Named("cache")}
}

// Key hashes the JSON encoding of v. Struct fields encode in declaration
// order, so equal documents produce equal keys.
func Key(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

func (c *MaskCache) Ping(ctx context.Context) error {
	if c == nil {
		return ErrDisabled
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the cached bytes for key, or nil on a miss.
func (c *MaskCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, ErrDisabled
	}
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return data, nil
}

// Set stores data under key with the configured TTL.
func (c *MaskCache) Set(ctx context.Context, key string, data []byte) error {
	if c == nil {
		return ErrDisabled
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *MaskCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
