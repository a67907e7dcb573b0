package dlmm

import (
	"context"
	"math"
)

// Pricer turns validated SwapParams into a QuoteResult. Implementations may
// assume the params already passed Validate.
type Pricer interface {
	Quote(ctx context.Context, p SwapParams) (QuoteResult, error)
}

// Placeholder model constants
const (
	DefaultExchangeRate      = 100.0     // 1 input unit ~ 100 output units
	DefaultImpactDivisor     = 1_000_000 // impact grows per 1M of notional
	DefaultImpactCoefficient = 0.05
	DefaultFeeRate           = 0.003 // 30 bps
)

// PlaceholderPricer is a fixed-constant model: every output is linear in the
// input amount. A bin-aware DLMM model can replace it behind the Pricer interface.
type PlaceholderPricer struct {
	ExchangeRate      float64
	ImpactDivisor     float64
	ImpactCoefficient float64
	FeeRate           float64
}

// DefaultPricer returns the reference model
func DefaultPricer() PlaceholderPricer {
	return PlaceholderPricer{
		ExchangeRate:      DefaultExchangeRate,
		ImpactDivisor:     DefaultImpactDivisor,
		ImpactCoefficient: DefaultImpactCoefficient,
		FeeRate:           DefaultFeeRate,
	}
}

// Quote never fails
func (pp PlaceholderPricer) Quote(_ context.Context, p SwapParams) (QuoteResult, error) {
	return pp.compute(p.Amount), nil
}

func (pp PlaceholderPricer) compute(amount float64) QuoteResult {
	impact := 0.0
	if pp.ImpactDivisor != 0 {
		impact = (amount / pp.ImpactDivisor) * pp.ImpactCoefficient
	}
	return QuoteResult{
		InputAmount:    amount,
		ExpectedOutput: amount * pp.ExchangeRate,
		PriceImpact:    impact,
		Fee:            amount * pp.FeeRate,
	}
}

// ApplySlippage returns the minimum acceptable output for a slippage tolerance
// in basis points. 10000 bps or more yields 0.
func ApplySlippage(output float64, slippageBps uint16) float64 {
	if slippageBps >= BasisPointMax {
		return 0
	}
	minOut := output * float64(BasisPointMax-int(slippageBps)) / BasisPointMax
	return math.Max(0, minOut)
}
