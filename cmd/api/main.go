package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/app"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/cache"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/config"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/constants"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/flags"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/metrics"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/server"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	logger := app.NewLogger("info")

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps := app.Deps{
		Logger:  logger,
		Metrics: metrics.NewMetrics("dlmm", reg),
	}

	h := &server.Handlers{
		DevMode: cfg.DevMode,
		Logger:  logger,
	}

	// Redis backs flags, the liquidity cache and the swap feed. Without it the
	// API still serves quotes and swaps.
	if cfg.RedisAddr != "" {
		rclient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
		defer rclient.Close()

		flagStore, err := flags.NewStore(rclient)
		if err != nil {
			logger.WithError(err).Fatal("failed to create flags store")
		}
		if created, err := flagStore.EnsureDefault(ctx, constants.FlagSwapsEnabled, true); err != nil {
			logger.WithError(err).Warn("failed to seed swap kill switch")
		} else if created {
			logger.WithField("flag", constants.FlagSwapsEnabled).Info("seeded swap kill switch")
		}

		h.Flags = flagStore
		h.Publisher = cache.NewPubSubManager(rclient, logger)
		deps.LiquidityCache = cache.NewRedisCache(rclient)
	} else {
		logger.Warn("REDIS_ADDR not set, flags and swap feed disabled")
	}

	a, err := app.New(cfg, deps)
	if err != nil {
		logger.WithError(err).Fatal("failed to create dlmm client")
	}
	h.Client = a.Client
	h.DryRun = a.DryRun

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:     cfg.APIAddr,
			DevMode:  cfg.DevMode,
			APIKey:   cfg.APIKey,
			Gatherer: reg,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithFields(logrus.Fields{
		"addr":    cfg.APIAddr,
		"network": cfg.Network,
		"dry_run": a.DryRun,
	}).Info("api server starting")
	if err := srv.Start(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
