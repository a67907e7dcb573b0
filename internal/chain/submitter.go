package chain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/constants"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Signer is the wallet surface the submitter needs
type Signer interface {
	PublicKey() solana.PublicKey
	AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error)
	Balance(ctx context.Context) (uint64, error)
	TokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	Simulate(ctx context.Context, instructions []solana.Instruction) (*wallet.SimulationResult, error)
	SignAndSend(ctx context.Context, instructions []solana.Instruction, opts *wallet.SendOptions) (string, error)
	ConfirmTransaction(ctx context.Context, signature, commitment string, timeout time.Duration) error
}

// PriceSource returns the current price of a pair's X token in Y token units
type PriceSource interface {
	Price(ctx context.Context, pairAddress string) (float64, error)
}

// ErrInsufficientBalance is returned when the wallet cannot fund the swap input
var ErrInsufficientBalance = errors.New("insufficient balance")

// SubmitterConfig configures the on-chain submitter. The minimum output is
// derived from the live pair price in Prices.
type SubmitterConfig struct {
	ProgramID      solana.PublicKey
	Pairs          *PairRegistry
	Prices         PriceSource
	SlippageBps    uint16
	Commitment     string
	ConfirmTimeout time.Duration
	Logger         *logrus.Logger
}

// Submitter turns swap params into a signed DLMM swap transaction
type Submitter struct {
	signer Signer
	cfg    SubmitterConfig
	logger *logrus.Logger
}

var (
	_ dlmm.TransactionSubmitter = (*Submitter)(nil)
	_ Signer                    = (*wallet.Wallet)(nil)
)

// NewSubmitter creates an on-chain submitter
func NewSubmitter(signer Signer, cfg SubmitterConfig) (*Submitter, error) {
	if signer == nil {
		return nil, errors.New("chain: signer is required")
	}
	if cfg.Pairs == nil {
		return nil, errors.New("chain: pair registry is required")
	}
	if cfg.ProgramID.IsZero() {
		return nil, errors.New("chain: program id is required")
	}
	if cfg.Prices == nil {
		return nil, errors.New("chain: price source is required")
	}
	if cfg.Commitment == "" {
		cfg.Commitment = constants.DefaultCommitment
	}
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = constants.ConfirmTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Submitter{signer: signer, cfg: cfg, logger: cfg.Logger}, nil
}

// Submit builds, simulates, signs, sends and confirms a swap and returns its
// signature. Nothing is broadcast when the balance check or simulation fails.
func (s *Submitter) Submit(ctx context.Context, p dlmm.SwapParams) (string, error) {
	owner := s.signer.PublicKey()
	if p.WalletPublicKey != "" && p.WalletPublicKey != owner.String() {
		return "", fmt.Errorf("wallet %s does not match signing key %s", p.WalletPublicKey, owner)
	}

	in, err := resolveToken(p.InputToken)
	if err != nil {
		return "", err
	}
	out, err := resolveToken(p.OutputToken)
	if err != nil {
		return "", err
	}
	inMint, err := solana.PublicKeyFromBase58(in.Mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint for %s: %w", in.Symbol, err)
	}
	outMint, err := solana.PublicKeyFromBase58(out.Mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint for %s: %w", out.Symbol, err)
	}

	pair, err := s.cfg.Pairs.FindByMints(inMint, outMint)
	if err != nil {
		return "", err
	}

	amountIn, err := ToRawAmount(p.Amount, in.Decimals)
	if err != nil {
		return "", err
	}

	expected, err := s.expectedOutput(ctx, pair, inMint, p)
	if err != nil {
		return "", err
	}
	minOut, err := ToRawAmount(dlmm.ApplySlippage(expected, s.cfg.SlippageBps), out.Decimals)
	if err != nil && !errors.Is(err, errZeroAmount) {
		return "", err
	}

	userIn, err := resolveTokenAccount(ctx, s.signer, owner, inMint)
	if err != nil {
		return "", fmt.Errorf("resolve input token account: %w", err)
	}
	userOut, err := resolveTokenAccount(ctx, s.signer, owner, outMint)
	if err != nil {
		return "", fmt.Errorf("resolve output token account: %w", err)
	}

	if err := s.checkBalance(ctx, inMint, userIn, amountIn); err != nil {
		return "", err
	}

	ixs := make([]solana.Instruction, 0, 8)
	ixs = append(ixs, userIn.PreIxs...)
	ixs = append(ixs, userOut.PreIxs...)

	// native SOL in: fund the wSOL ATA and sync
	if inMint.Equals(solana.SolMint) {
		ixs = append(ixs,
			NewSystemTransferIx(owner, userIn.Account, amountIn),
			NewTokenSyncNativeIx(userIn.Account),
		)
	}

	swapIx, err := BuildSwapInstruction(s.cfg.ProgramID, pair, SwapAccounts{
		User:         owner,
		UserTokenIn:  userIn.Account,
		UserTokenOut: userOut.Account,
	}, amountIn, minOut)
	if err != nil {
		return "", err
	}
	ixs = append(ixs, swapIx)

	// native SOL out: unwrap
	if outMint.Equals(solana.SolMint) {
		ixs = append(ixs, NewTokenCloseAccountIx(userOut.Account, owner, owner))
	}

	log := s.logger.WithFields(logrus.Fields{
		"pair":      pair.Name,
		"amount_in": amountIn,
		"min_out":   minOut,
	})

	sim, err := s.signer.Simulate(ctx, ixs)
	if err != nil {
		return "", fmt.Errorf("swap simulation failed: %w", err)
	}
	log.WithField("units", sim.UnitsConsumed).Debug("sending DLMM swap")

	sig, err := s.signer.SignAndSend(ctx, ixs, nil)
	if err != nil {
		return "", err
	}

	if err := s.signer.ConfirmTransaction(ctx, sig, s.cfg.Commitment, s.cfg.ConfirmTimeout); err != nil {
		return "", fmt.Errorf("transaction %s not confirmed: %w", sig, err)
	}

	log.WithField("signature", sig).Info("DLMM swap confirmed")
	return sig, nil
}

func (s *Submitter) expectedOutput(ctx context.Context, pair *Pair, inMint solana.PublicKey, p dlmm.SwapParams) (float64, error) {
	price, err := s.cfg.Prices.Price(ctx, pair.LbPair.String())
	if err != nil {
		return 0, fmt.Errorf("pair price: %w", err)
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("pair %s has no usable price (%v)", pair.Name, price)
	}
	if inMint.Equals(pair.TokenXMint) {
		return p.Amount * price, nil
	}
	return p.Amount / price, nil
}

// checkBalance makes sure the wallet holds amountIn of the input token. Native
// SOL input is wrapped from the system balance, so that is what gets checked.
func (s *Submitter) checkBalance(ctx context.Context, inMint solana.PublicKey, in *resolvedTokenAccount, need uint64) error {
	var (
		have uint64
		err  error
	)
	switch {
	case inMint.Equals(solana.SolMint):
		have, err = s.signer.Balance(ctx)
	case in.Created:
		// no token account yet, nothing to spend
	default:
		have, err = s.signer.TokenBalance(ctx, in.Account)
	}
	if err != nil {
		return fmt.Errorf("input balance: %w", err)
	}
	if have < need {
		return fmt.Errorf("%w: have %d, need %d base units of %s", ErrInsufficientBalance, have, need, inMint)
	}
	return nil
}

func resolveToken(id string) (dlmm.Token, error) {
	t, ok := constants.LookupToken(id)
	if !ok {
		return dlmm.Token{}, fmt.Errorf("unknown token %q", id)
	}
	return t, nil
}

var errZeroAmount = errors.New("amount rounds to zero base units")

// ToRawAmount converts a human amount into integer base units, rounding down
func ToRawAmount(amount float64, decimals uint8) (uint64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, fmt.Errorf("invalid amount %v", amount)
	}

	raw := decimal.NewFromFloat(amount).Shift(int32(decimals)).Floor()
	if raw.IsZero() {
		return 0, errZeroAmount
	}

	bi := raw.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("amount %v overflows u64 base units", amount)
	}
	return bi.Uint64(), nil
}
