package dlmm

import "fmt"

// Network identifies the Solana cluster the client talks to
type Network string

const (
	NetworkMainnet Network = "mainnet-beta"
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"
	NetworkLocal   Network = "localhost"
)

// BasisPointMax is 100% expressed in basis points
const BasisPointMax = 10000

// Config holds immutable client settings
type Config struct {
	Network              Network
	SlippageToleranceBps uint16 // e.g. 50 = 0.5%
}

// Validate checks the config invariants
func (c Config) Validate() error {
	if c.Network == "" {
		return fmt.Errorf("network is required")
	}
	if c.SlippageToleranceBps > BasisPointMax {
		return fmt.Errorf("slippage tolerance %d bps exceeds %d", c.SlippageToleranceBps, BasisPointMax)
	}
	return nil
}

// Token describes a tradable asset
type Token struct {
	Mint     string `json:"mint"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
}

// SwapParams is a single swap request as supplied by the caller
type SwapParams struct {
	InputToken      string  `json:"input_token"`
	OutputToken     string  `json:"output_token"`
	Amount          float64 `json:"amount"` // human-readable units of InputToken
	WalletPublicKey string  `json:"wallet_public_key"`
}

// QuoteResult is the locally computed estimate for a swap
type QuoteResult struct {
	InputAmount    float64 `json:"input_amount"`
	ExpectedOutput float64 `json:"expected_output"`
	PriceImpact    float64 `json:"price_impact"`
	Fee            float64 `json:"fee"`
}

// SwapResult is the outcome of ExecuteSwap. Exactly one of Signature or
// Error is set; build it with Succeeded or Failed.
type SwapResult struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Succeeded returns a successful result carrying the transaction signature
func Succeeded(signature string) SwapResult {
	return SwapResult{Success: true, Signature: signature}
}

// Failed returns a failed result carrying the error message
func Failed(err error) SwapResult {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return SwapResult{Success: false, Error: msg}
}
