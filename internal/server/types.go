package server

import "github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Network string `json:"network"`
	DryRun  bool   `json:"dry_run"`
}

// ConfigResponse exposes the client's effective settings
type ConfigResponse struct {
	Network              string `json:"network"`
	SlippageToleranceBps uint16 `json:"slippage_tolerance_bps"`
	DryRun               bool   `json:"dry_run"`
}

// QuoteResponse is a quote plus the slippage-adjusted floor
type QuoteResponse struct {
	dlmm.QuoteResult
	MinimumOutput float64 `json:"minimum_output"`
	SlippageBps   uint16  `json:"slippage_bps"`
}

// PoolStatsResponse carries the liquidity of one pair
type PoolStatsResponse struct {
	PairAddress    string  `json:"pair_address"`
	TotalLiquidity float64 `json:"total_liquidity"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}
