package chain

import (
	"context"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/sirupsen/logrus"
)

// SimulatedSignature is returned by DryRunSubmitter for every swap
const SimulatedSignature = "simulated-transaction-signature"

// DryRunSubmitter accepts every swap without touching the network
type DryRunSubmitter struct {
	logger *logrus.Logger
}

var _ dlmm.TransactionSubmitter = (*DryRunSubmitter)(nil)

func NewDryRunSubmitter(logger *logrus.Logger) *DryRunSubmitter {
	if logger == nil {
		logger = logrus.New()
	}
	return &DryRunSubmitter{logger: logger}
}

func (d *DryRunSubmitter) Submit(ctx context.Context, p dlmm.SwapParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.logger.WithFields(logrus.Fields{
		"input":  p.InputToken,
		"output": p.OutputToken,
		"amount": p.Amount,
	}).Info("dry run: swap not submitted")
	return SimulatedSignature, nil
}
