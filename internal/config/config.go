package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
)

type Config struct {
	// DLMM client settings
	Network     string
	SlippageBps int
	DryRun      bool

	// RPC settings
	RPCUrl       string
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Wallet
	WalletPrivateKey string

	// Pair registry and pool data service
	PairsPath   string
	PoolDataURL string

	// Redis settings
	RedisAddr string

	// API settings
	APIAddr string
	APIKey  string
	DevMode bool

	LogLevel string
}

// DefaultRPCURLs maps known networks to public RPC endpoints
var DefaultRPCURLs = map[dlmm.Network]string{
	dlmm.NetworkMainnet: "https://api.mainnet-beta.solana.com",
	dlmm.NetworkDevnet:  "https://api.devnet.solana.com",
	dlmm.NetworkTestnet: "https://api.testnet.solana.com",
	dlmm.NetworkLocal:   "http://127.0.0.1:8899",
}

func Load() *Config {
	network := getEnv("DLMM_NETWORK", string(dlmm.NetworkMainnet))

	return &Config{
		// DLMM
		Network:     network,
		SlippageBps: getIntEnv("DLMM_SLIPPAGE_BPS", 50),
		DryRun:      getBoolEnv("DRY_RUN", false),

		// RPC
		RPCUrl:       getEnv("SOLANA_RPC_URL", DefaultRPCURLs[dlmm.Network(network)]),
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 1*time.Second),

		// Wallet
		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),

		// Pairs / pool data
		PairsPath:   getEnv("DLMM_PAIRS_PATH", ""),
		PoolDataURL: getEnv("POOL_DATA_URL", "https://dlmm-api.meteora.ag"),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the settings every binary relies on
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Network) == "" {
		return fmt.Errorf("DLMM_NETWORK is required")
	}
	if c.SlippageBps < 0 || c.SlippageBps > dlmm.BasisPointMax {
		return fmt.Errorf("DLMM_SLIPPAGE_BPS must be between 0 and %d, got %d", dlmm.BasisPointMax, c.SlippageBps)
	}
	if !c.DryRun && c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required for network %q", c.Network)
	}
	if c.Live() && c.PairsPath == "" {
		return fmt.Errorf("DLMM_PAIRS_PATH is required when WALLET_PRIVATE_KEY is set")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be >= 0")
	}
	return nil
}

// Live reports whether swaps are signed and sent to the network
func (c *Config) Live() bool {
	return !c.DryRun && c.WalletPrivateKey != ""
}

// DLMM returns the immutable client config
func (c *Config) DLMM() dlmm.Config {
	return dlmm.Config{
		Network:              dlmm.Network(c.Network),
		SlippageToleranceBps: uint16(c.SlippageBps),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
