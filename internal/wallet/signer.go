package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	projectrpc "github.com/aman-zulfiqar/dlmm-swap-client/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// ErrConfirmTimeout is returned when a signature is not confirmed in time
var ErrConfirmTimeout = errors.New("transaction confirmation timeout")

// SendOptions configures transaction sending behavior
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment string
	MaxRetries          *int
}

// SendOptions derives send settings from the wallet config
func (w *Wallet) SendOptions() SendOptions {
	maxRetries := 3
	return SendOptions{
		SkipPreflight:       w.cfg.SkipPreflight,
		PreflightCommitment: w.cfg.PreflightCommitment,
		MaxRetries:          &maxRetries,
	}
}

// SignTx signs a transaction with the wallet's private key
func (w *Wallet) SignTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// SendTx sends a signed transaction and returns its signature
func (w *Wallet) SendTx(ctx context.Context, tx *solana.Transaction, opts *SendOptions) (string, error) {
	if opts == nil {
		o := w.SendOptions()
		opts = &o
	}

	encodedTx, err := encodeTx(tx)
	if err != nil {
		return "", err
	}

	cfg := map[string]any{
		"encoding":            "base64",
		"skipPreflight":       opts.SkipPreflight,
		"preflightCommitment": opts.PreflightCommitment,
	}
	if opts.MaxRetries != nil {
		cfg["maxRetries"] = *opts.MaxRetries
	}

	var sig string
	if err := w.rpc.Call(ctx, "sendTransaction", []any{encodedTx, cfg}, &sig); err != nil {
		return "", fmt.Errorf("sendTransaction failed: %w", err)
	}
	return sig, nil
}

// GetLatestBlockhash fetches the most recent blockhash with commitment level
func (w *Wallet) GetLatestBlockhash(ctx context.Context, commitment string) (solana.Hash, error) {
	if commitment == "" {
		commitment = "processed"
	}

	var out projectrpc.ContextValue[projectrpc.BlockhashInfo]
	params := []any{map[string]any{"commitment": commitment}}
	if err := w.rpc.Call(ctx, "getLatestBlockhash", params, &out); err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}

	hash, err := solana.HashFromBase58(out.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	return hash, nil
}

// SimulationResult contains simulation output
type SimulationResult struct {
	Success       bool
	Error         string
	Logs          []string
	UnitsConsumed uint64
}

// Simulate builds and signs a transaction from instructions and simulates it
func (w *Wallet) Simulate(ctx context.Context, instructions []solana.Instruction) (*SimulationResult, error) {
	tx, err := w.BuildTransaction(ctx, instructions)
	if err != nil {
		return nil, err
	}
	if err := w.SignTx(tx); err != nil {
		return nil, err
	}
	return w.SimulateTransaction(ctx, tx)
}

// SimulateTransaction runs a transaction through simulateTransaction without landing it
func (w *Wallet) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	encodedTx, err := encodeTx(tx)
	if err != nil {
		return nil, err
	}

	var out projectrpc.ContextValue[projectrpc.SimulationValue]
	params := []any{
		encodedTx,
		map[string]any{
			"encoding":   "base64",
			"commitment": "processed",
		},
	}
	if err := w.rpc.Call(ctx, "simulateTransaction", params, &out); err != nil {
		return nil, fmt.Errorf("simulateTransaction failed: %w", err)
	}

	result := &SimulationResult{
		Success:       out.Value.Err == nil,
		Logs:          out.Value.Logs,
		UnitsConsumed: out.Value.UnitsConsumed,
	}
	if !result.Success {
		result.Error = fmt.Sprintf("%v", out.Value.Err)
		if n := len(result.Logs); n > 0 {
			return result, fmt.Errorf("simulation failed: %v (%s)", out.Value.Err, result.Logs[n-1])
		}
		return result, fmt.Errorf("simulation failed: %v", out.Value.Err)
	}
	return result, nil
}

// ConfirmTransaction polls for transaction confirmation
func (w *Wallet) ConfirmTransaction(ctx context.Context, signature, commitment string, timeout time.Duration) error {
	if commitment == "" {
		commitment = w.cfg.DefaultCommitment
	}

	deadline := time.Now().Add(timeout)
	backoff := 500 * time.Millisecond
	maxBackoff := 4 * time.Second

	for time.Now().Before(deadline) {
		confirmed, err := w.checkSignatureStatus(ctx, signature, commitment)
		if err != nil {
			return fmt.Errorf("failed to check signature: %w", err)
		}
		if confirmed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return fmt.Errorf("%w after %v", ErrConfirmTimeout, timeout)
}

func (w *Wallet) checkSignatureStatus(ctx context.Context, signature, commitment string) (bool, error) {
	var out projectrpc.ContextValue[[]*projectrpc.SignatureStatus]
	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}
	if err := w.rpc.Call(ctx, "getSignatureStatuses", params, &out); err != nil {
		return false, err
	}

	if len(out.Value) == 0 || out.Value[0] == nil || out.Value[0].ConfirmationStatus == "" {
		return false, nil // not yet processed
	}

	status := out.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("transaction failed: %v", status.Err)
	}

	switch commitment {
	case "confirmed":
		return status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized", nil
	case "finalized":
		return status.ConfirmationStatus == "finalized", nil
	default:
		return true, nil
	}
}

// BuildTransaction creates a new transaction with recent blockhash, paid by the wallet
func (w *Wallet) BuildTransaction(ctx context.Context, instructions []solana.Instruction) (*solana.Transaction, error) {
	recentBlockhash, err := w.GetLatestBlockhash(ctx, "processed")
	if err != nil {
		return nil, fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recentBlockhash,
		solana.TransactionPayer(w.pub),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// SignAndSend builds, signs and sends a transaction
func (w *Wallet) SignAndSend(ctx context.Context, instructions []solana.Instruction, opts *SendOptions) (string, error) {
	tx, err := w.BuildTransaction(ctx, instructions)
	if err != nil {
		return "", err
	}
	if err := w.SignTx(tx); err != nil {
		return "", err
	}
	return w.SendTx(ctx, tx, opts)
}

func encodeTx(tx *solana.Transaction) (string, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(txBytes), nil
}
