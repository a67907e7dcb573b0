package pooldata

import (
	"context"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/storage"
	"github.com/sirupsen/logrus"
)

// CachedSource serves liquidity from a short-lived cache before asking the
// underlying source. Cache errors degrade to a direct read.
type CachedSource struct {
	next   dlmm.PoolDataSource
	cache  storage.LiquidityCache
	ttl    time.Duration
	logger *logrus.Logger
}

var _ dlmm.PoolDataSource = (*CachedSource)(nil)

func NewCachedSource(next dlmm.PoolDataSource, cache storage.LiquidityCache, ttl time.Duration, logger *logrus.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedSource{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedSource) TotalLiquidity(ctx context.Context, pairAddress string) (float64, error) {
	v, ok, err := c.cache.GetLiquidity(ctx, pairAddress)
	if err != nil {
		c.logger.WithError(err).WithField("pair", pairAddress).Warn("liquidity cache read failed")
	} else if ok {
		return v, nil
	}

	v, err = c.next.TotalLiquidity(ctx, pairAddress)
	if err != nil {
		return 0, err
	}

	if err := c.cache.SetLiquidity(ctx, pairAddress, v, c.ttl); err != nil {
		c.logger.WithError(err).WithField("pair", pairAddress).Warn("liquidity cache write failed")
	}
	return v, nil
}
