package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/app"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/config"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/joho/godotenv"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "quote", "quote | execute | stats")
	inTok := flag.String("in", "SOL", "input token symbol or mint (e.g. SOL)")
	outTok := flag.String("out", "USDC", "output token symbol or mint (e.g. USDC)")
	amt := flag.Float64("amt", 0, "amount in human units (e.g. 0.1)")
	pair := flag.String("pair", "", "pair address for -mode stats")
	flag.Parse()

	cfg := config.Load()
	logger := app.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	a, err := app.New(cfg, app.Deps{Logger: logger})
	if err != nil {
		fmt.Println("failed to init dlmm client:", err)
		os.Exit(1)
	}

	params := dlmm.SwapParams{
		InputToken:  *inTok,
		OutputToken: *outTok,
		Amount:      *amt,
	}
	if a.Wallet != nil {
		params.WalletPublicKey = a.Wallet.Address()
	}

	switch *mode {
	case "quote":
		q, err := a.Client.Quote(ctx, params)
		if err != nil {
			fmt.Println("quote failed:", err)
			os.Exit(1)
		}
		minOut := dlmm.ApplySlippage(q.ExpectedOutput, a.Client.Config().SlippageToleranceBps)
		fmt.Printf("amount_in=%g expected_out=%g min_out=%g price_impact=%g fee=%g\n",
			q.InputAmount, q.ExpectedOutput, minOut, q.PriceImpact, q.Fee)
	case "execute":
		res, err := a.Client.ExecuteSwap(ctx, params)
		if err != nil {
			fmt.Println("execute aborted:", err)
			os.Exit(1)
		}
		if !res.Success {
			fmt.Println("swap failed:", res.Error)
			os.Exit(1)
		}
		fmt.Printf("success=%v sig=%s dry_run=%v\n", res.Success, res.Signature, a.DryRun)
	case "stats":
		if *pair == "" {
			fmt.Println("missing -pair")
			os.Exit(2)
		}
		liq, err := a.Client.GetPoolStats(ctx, *pair)
		if err != nil {
			fmt.Println("pool stats failed:", err)
			os.Exit(1)
		}
		fmt.Printf("pair=%s total_liquidity=%g\n", *pair, liq)
	default:
		fmt.Println("invalid -mode (use quote|execute|stats)")
		os.Exit(2)
	}
}
