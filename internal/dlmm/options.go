package dlmm

import (
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Option configures a Client.
type Option func(*Client)

// WithPricer replaces the reference pricing model.
func WithPricer(p Pricer) Option {
	return func(c *Client) {
		if p != nil {
			c.pricer = p
		}
	}
}

// WithSubmitter sets the transaction submission collaborator.
func WithSubmitter(s TransactionSubmitter) Option {
	return func(c *Client) { c.submitter = s }
}

// WithPoolData sets the pool data collaborator.
func WithPoolData(p PoolDataSource) Option {
	return func(c *Client) { c.pools = p }
}

// WithLogger sets a custom logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}
