package models

import (
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/constants"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
)

// SwapExecuted is broadcast after every swap attempt that passed validation
type SwapExecuted struct {
	Signature      string    `json:"signature,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Network        string    `json:"network"`
	TokenIn        string    `json:"token_in"`
	TokenOut       string    `json:"token_out"`
	AmountIn       float64   `json:"amount_in"`
	ExpectedOutput float64   `json:"expected_output"`
	PriceImpact    float64   `json:"price_impact"`
	Fee            float64   `json:"fee"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	DryRun         bool      `json:"dry_run"`
}

// NewSwapExecuted joins the request, its quote and the outcome into one event
func NewSwapExecuted(network dlmm.Network, p dlmm.SwapParams, q dlmm.QuoteResult, r dlmm.SwapResult, dryRun bool) *SwapExecuted {
	return &SwapExecuted{
		Signature:      r.Signature,
		Timestamp:      time.Now().UTC(),
		Network:        string(network),
		TokenIn:        p.InputToken,
		TokenOut:       p.OutputToken,
		AmountIn:       p.Amount,
		ExpectedOutput: q.ExpectedOutput,
		PriceImpact:    q.PriceImpact,
		Fee:            q.Fee,
		Success:        r.Success,
		Error:          r.Error,
		DryRun:         dryRun,
	}
}

// Pair is the "IN-OUT" label used for per-pair channels. Known tokens are
// labelled by symbol whether the caller gave a symbol or a mint.
func (s *SwapExecuted) Pair() string {
	return symbol(s.TokenIn) + "-" + symbol(s.TokenOut)
}

func symbol(id string) string {
	if t, ok := constants.LookupToken(id); ok {
		return t.Symbol
	}
	return id
}
