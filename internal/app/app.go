// Package app wires a dlmm.Client from process configuration.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/chain"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/config"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/constants"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/metrics"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/pooldata"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/storage"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// PoolDataStatic selects the fixed-value pool data source
const PoolDataStatic = "static"

// Deps are optional collaborators shared with the caller
type Deps struct {
	Logger         *logrus.Logger
	Metrics        *metrics.Metrics
	LiquidityCache storage.LiquidityCache // wraps the pool data source when set
}

// App is a ready-to-use swap client and the signer behind it
type App struct {
	Client *dlmm.Client
	Wallet *wallet.Wallet // nil in dry-run mode
	DryRun bool
}

// NewLogger returns the text logger every binary uses
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// New builds the client. Without a wallet key, or with DRY_RUN set, swaps go
// through the dry-run submitter and nothing is signed. Live mode needs a pair
// registry and a pair API.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = NewLogger(cfg.LogLevel)
	}

	a := &App{DryRun: !cfg.Live()}
	pools, prices := newPoolData(cfg, deps)
	opts := []dlmm.Option{
		dlmm.WithLogger(deps.Logger),
		dlmm.WithMetrics(deps.Metrics),
		dlmm.WithPoolData(pools),
	}

	if a.DryRun {
		opts = append(opts, dlmm.WithSubmitter(chain.NewDryRunSubmitter(deps.Logger)))
	} else {
		w, sub, err := newLiveSubmitter(cfg, prices, deps.Logger)
		if err != nil {
			return nil, err
		}
		a.Wallet = w
		opts = append(opts, dlmm.WithSubmitter(sub))
	}

	client, err := dlmm.NewClient(cfg.DLMM(), opts...)
	if err != nil {
		return nil, err
	}
	a.Client = client

	deps.Logger.WithFields(logrus.Fields{
		"network":  cfg.Network,
		"slippage": cfg.SlippageBps,
		"dry_run":  a.DryRun,
	}).Info("dlmm client ready")
	return a, nil
}

// newPoolData returns the liquidity source and, when a pair API is configured,
// the live price source for minimum-output checks
func newPoolData(cfg *config.Config, deps Deps) (dlmm.PoolDataSource, chain.PriceSource) {
	switch strings.TrimSpace(cfg.PoolDataURL) {
	case "", PoolDataStatic:
		return pooldata.NewStaticSource(), nil
	}

	api := pooldata.NewHTTPSource(cfg.PoolDataURL, cfg.HTTPTimeout)
	if deps.LiquidityCache != nil {
		return pooldata.NewCachedSource(api, deps.LiquidityCache, 0, deps.Logger), api
	}
	return api, api
}

func newLiveSubmitter(cfg *config.Config, prices chain.PriceSource, logger *logrus.Logger) (*wallet.Wallet, *chain.Submitter, error) {
	network := dlmm.Network(cfg.Network)
	program, ok := constants.ProgramAddresses[network]
	if !ok {
		return nil, nil, fmt.Errorf("no DLMM program address for network %q", network)
	}
	programID, err := solana.PublicKeyFromBase58(program)
	if err != nil {
		return nil, nil, fmt.Errorf("program address: %w", err)
	}

	pairs, err := chain.LoadPairRegistry(cfg.PairsPath)
	if err != nil {
		return nil, nil, err
	}
	if pairs.Len() == 0 {
		return nil, nil, fmt.Errorf("pair registry %s has no pairs", cfg.PairsPath)
	}
	// the placeholder rate is no market price, min-out needs the live pair price
	if prices == nil {
		return nil, nil, errors.New("live swaps need a pair API for minimum output: set POOL_DATA_URL")
	}

	w, err := wallet.NewWallet(wallet.WalletConfig{
		RPCURL:       cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PrivateKey:   cfg.WalletPrivateKey,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}

	sub, err := chain.NewSubmitter(w, chain.SubmitterConfig{
		ProgramID:   programID,
		Pairs:       pairs,
		Prices:      prices,
		SlippageBps: uint16(cfg.SlippageBps),
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.WithFields(logrus.Fields{
		"wallet": w.Address(),
		"pairs":  pairs.Len(),
	}).Info("live submitter ready")
	return w, sub, nil
}
