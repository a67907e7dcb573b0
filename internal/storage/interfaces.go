package storage

import (
	"context"
	"io"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/models"
)

// SwapPublisher fans executed swap results out to live subscribers
type SwapPublisher interface {
	// PublishSwap publishes a swap event to the Pub/Sub channels
	PublishSwap(ctx context.Context, swap *models.SwapExecuted) error

	io.Closer
}

// SwapHandler is a function that processes swap events
type SwapHandler func(*models.SwapExecuted)

// LiquidityCache keeps recent pool liquidity readings
type LiquidityCache interface {
	// GetLiquidity returns the cached value and whether it was present
	GetLiquidity(ctx context.Context, pairAddress string) (float64, bool, error)

	// SetLiquidity stores a value for ttl
	SetLiquidity(ctx context.Context, pairAddress string, liquidity float64, ttl time.Duration) error

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	io.Closer
}
