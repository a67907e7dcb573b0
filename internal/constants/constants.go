package constants

import (
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
)

// Redis Pub/Sub channels
const (
	PubSubChannelSwaps = "dlmm:swaps:live"
)

// Feature flags
const (
	FlagSwapsEnabled = "swaps.enabled"
)

// Transaction confirmation
const (
	ConfirmTimeout    = 60 * time.Second
	DefaultCommitment = "confirmed"
)

// DLMM program addresses by network
var ProgramAddresses = map[dlmm.Network]string{
	dlmm.NetworkMainnet: "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo",
	dlmm.NetworkDevnet:  "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo",
	dlmm.NetworkLocal:   "LbVRzDTvBDEcrthxfZ4RL6yiq3uZw8bS6MwtdY6UhFQ",
}

// Tokens maps symbols to token metadata
var Tokens = map[string]dlmm.Token{
	"SOL":  {Mint: "So11111111111111111111111111111111111111112", Decimals: 9, Symbol: "SOL"},
	"USDC": {Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6, Symbol: "USDC"},
	"USDT": {Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6, Symbol: "USDT"},
	"mSOL": {Mint: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Decimals: 9, Symbol: "mSOL"},
	"JUP":  {Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Decimals: 6, Symbol: "JUP"},
	"BONK": {Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Decimals: 5, Symbol: "BONK"},
}

// LookupToken resolves a symbol or a mint address
func LookupToken(id string) (dlmm.Token, bool) {
	if t, ok := Tokens[id]; ok {
		return t, true
	}
	for _, t := range Tokens {
		if t.Mint == id {
			return t, true
		}
	}
	return dlmm.Token{}, false
}
