// Example consumer of the live swap feed published by cmd/api
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/app"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/cache"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/config"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/constants"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/models"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_, filename, _, _ := runtime.Caller(0)
	_ = godotenv.Load(filepath.Join(filepath.Dir(filename), "../..", ".env"))

	cfg := config.Load()
	logger := app.NewLogger(cfg.LogLevel)

	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	rclient, err := cache.NewRedisClient(ctx, addr)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	pubsub := cache.NewPubSubManager(rclient, logger)
	defer pubsub.Close()

	logger.Info("starting swap subscriber")

	var wg sync.WaitGroup
	run := func(name string, sub func(context.Context, string, storage.SwapHandler) error, channel string, handler storage.SwapHandler) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sub(ctx, channel, handler); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).WithField("sub", name).Error("subscription ended")
			}
		}()
	}

	// every swap
	run("all", pubsub.Subscribe, constants.PubSubChannelSwaps, func(s *models.SwapExecuted) {
		logger.WithFields(logrus.Fields{
			"sig":      s.Signature,
			"pair":     s.Pair(),
			"amount":   s.AmountIn,
			"expected": s.ExpectedOutput,
			"success":  s.Success,
			"dry_run":  s.DryRun,
		}).Info("swap")
	})

	// one pair
	run("sol-usdc", pubsub.Subscribe, cache.PairChannel("SOL-USDC"), func(s *models.SwapExecuted) {
		logger.Infof("SOL-USDC swap: %.4f -> %.4f (impact %.6f)", s.AmountIn, s.ExpectedOutput, s.PriceImpact)
	})

	// failures on any pair
	run("failures", pubsub.PSubscribe, cache.PairChannel("*"), func(s *models.SwapExecuted) {
		if !s.Success {
			logger.WithField("pair", s.Pair()).Warnf("swap failed: %s", s.Error)
		}
	})

	logger.Info("subscriber running, press Ctrl+C to stop")

	<-sigChan
	logger.Info("shutting down subscriber")
	cancel()
	wg.Wait()
}
