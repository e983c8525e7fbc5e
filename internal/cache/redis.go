package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parfumpos/internal/domain"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

func variantKey(id int64) string {
	return fmt.Sprintf("variant:%d", id)
}

func (c *RedisCache) Get(ctx context.Context, id int64) (*domain.Variant, bool, error) {
	raw, err := c.client.Get(ctx, variantKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v domain.Variant
	if err := json.Unmarshal(raw, &v); err != nil {
		// Corrupt entry, drop it and treat as a miss.
		_ = c.client.Del(ctx, variantKey(id)).Err()
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, v *domain.Variant, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, variantKey(v.ID), raw, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, variantKey(id)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
