package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/storage"
	"github.com/redis/go-redis/v9"
)

const liquidityPrefix = "dlmm:liquidity:"

// RedisCache stores short-lived pool liquidity readings
type RedisCache struct {
	client redis.UniversalClient
}

var _ storage.LiquidityCache = (*RedisCache)(nil)

// NewRedisClient opens a client for addr and checks it with PING
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) GetLiquidity(ctx context.Context, pairAddress string) (float64, bool, error) {
	val, err := r.client.Get(ctx, liquidityPrefix+pairAddress).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get liquidity: %w", err)
	}

	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached liquidity %q: %w", val, err)
	}
	return v, true, nil
}

func (r *RedisCache) SetLiquidity(ctx context.Context, pairAddress string, liquidity float64, ttl time.Duration) error {
	val := strconv.FormatFloat(liquidity, 'f', -1, 64)
	if err := r.client.Set(ctx, liquidityPrefix+pairAddress, val, ttl).Err(); err != nil {
		return fmt.Errorf("set liquidity: %w", err)
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
