package dlmm

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/metrics"
	"github.com/sirupsen/logrus"
)

// TransactionSubmitter sends a validated swap on-chain and returns its signature
type TransactionSubmitter interface {
	Submit(ctx context.Context, p SwapParams) (string, error)
}

// PoolDataSource returns the aggregate liquidity of a DLMM pair
type PoolDataSource interface {
	TotalLiquidity(ctx context.Context, pairAddress string) (float64, error)
}

// Client is the quote / swap / pool-stats facade over a DLMM pool.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	cfg       Config
	pricer    Pricer
	submitter TransactionSubmitter
	pools     PoolDataSource
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

// NewClient validates cfg and builds a client. The reference PlaceholderPricer
// is used unless WithPricer is given.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dlmm config: %w", err)
	}

	c := &Client{
		cfg:    cfg,
		pricer: DefaultPricer(),
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the client settings
func (c *Client) Config() Config { return c.cfg }

// Quote validates p and returns the pricing estimate
func (c *Client) Quote(ctx context.Context, p SwapParams) (QuoteResult, error) {
	if err := Validate(p); err != nil {
		c.metrics.IncQuote("invalid")
		return QuoteResult{}, err
	}

	q, err := c.quote(ctx, p)
	if err != nil {
		c.metrics.IncQuote("error")
		return QuoteResult{}, err
	}

	c.metrics.IncQuote("ok")
	return q, nil
}

func (c *Client) quote(ctx context.Context, p SwapParams) (QuoteResult, error) {
	start := time.Now()
	q, err := c.pricer.Quote(ctx, p)
	c.metrics.ObserveCollaborator(OpQuote, start)
	if err != nil {
		return QuoteResult{}, collaboratorErr(OpQuote, err)
	}
	return q, nil
}

// ExecuteSwap runs validate -> quote -> submit and reports the outcome as a
// SwapResult. The error return is non-nil only when ctx ended before submission.
func (c *Client) ExecuteSwap(ctx context.Context, p SwapParams) (SwapResult, error) {
	res, _, err := c.ExecuteSwapWithQuote(ctx, p)
	return res, err
}

// ExecuteSwapWithQuote is ExecuteSwap that also returns the quote the swap was
// priced with. The quote is zero when validation or pricing failed.
func (c *Client) ExecuteSwapWithQuote(ctx context.Context, p SwapParams) (SwapResult, QuoteResult, error) {
	log := c.logger.WithFields(logrus.Fields{
		"network": c.cfg.Network,
		"in":      p.InputToken,
		"out":     p.OutputToken,
		"amount":  p.Amount,
	})

	// 1. Validate
	if err := Validate(p); err != nil {
		log.WithError(err).Warn("swap rejected by validation")
		c.metrics.IncSwap("invalid")
		return Failed(err), QuoteResult{}, nil
	}

	// 2. Quote. A pricing failure aborts before anything is submitted.
	q, err := c.quote(ctx, p)
	if err != nil {
		log.WithError(err).Error("swap quote failed")
		c.metrics.IncSwap("quote_error")
		return Failed(err), QuoteResult{}, nil
	}
	log = log.WithFields(logrus.Fields{
		"expected_out": q.ExpectedOutput,
		"price_impact": q.PriceImpact,
		"fee":          q.Fee,
	})

	if err := ctx.Err(); err != nil {
		c.metrics.IncSwap("cancelled")
		return Failed(err), q, err
	}

	// 3. Submit
	if c.submitter == nil {
		err := collaboratorErr(OpSubmit, ErrSubmitterNotConfigured)
		log.WithError(err).Error("swap not submitted")
		c.metrics.IncSwap("submit_error")
		return Failed(err), q, nil
	}

	start := time.Now()
	sig, err := c.submitter.Submit(ctx, p)
	c.metrics.ObserveCollaborator(OpSubmit, start)
	if err == nil && sig == "" {
		err = ErrEmptySignature
	}

	// 4. Report
	if err != nil {
		cerr := collaboratorErr(OpSubmit, err)
		log.WithError(cerr).Error("swap submission failed")
		c.metrics.IncSwap("submit_error")
		return Failed(cerr), q, nil
	}

	log.WithField("signature", sig).Info("swap submitted")
	c.metrics.IncSwap("success")
	return Succeeded(sig), q, nil
}

// GetPoolStats returns the total liquidity of a pair as reported by the pool
// data collaborator
func (c *Client) GetPoolStats(ctx context.Context, pairAddress string) (float64, error) {
	if c.pools == nil {
		c.metrics.IncPoolStats("error")
		return 0, collaboratorErr(OpPoolStats, ErrPoolDataNotConfigured)
	}

	start := time.Now()
	liq, err := c.pools.TotalLiquidity(ctx, pairAddress)
	c.metrics.ObserveCollaborator(OpPoolStats, start)
	if err != nil {
		c.logger.WithError(err).WithField("pair", pairAddress).Warn("pool stats failed")
		c.metrics.IncPoolStats("error")
		return 0, collaboratorErr(OpPoolStats, err)
	}

	c.metrics.IncPoolStats("ok")
	return liq, nil
}
