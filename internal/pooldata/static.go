package pooldata

import (
	"context"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
)

// DefaultStaticLiquidity is reported by StaticSource when no value is set
const DefaultStaticLiquidity = 2_000_000.0

// StaticSource reports the same liquidity for every pair. Used in dry-run mode.
type StaticSource struct {
	Liquidity float64
}

var _ dlmm.PoolDataSource = StaticSource{}

func NewStaticSource() StaticSource {
	return StaticSource{Liquidity: DefaultStaticLiquidity}
}

func (s StaticSource) TotalLiquidity(ctx context.Context, _ string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Liquidity, nil
}
