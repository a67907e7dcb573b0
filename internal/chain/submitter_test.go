package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	pub          solana.PublicKey
	existing     map[solana.PublicKey]bool
	lamports     uint64
	tokenBalance uint64
	simulated    [][]solana.Instruction
	sent         [][]solana.Instruction
	simErr       error
	sendErr      error
	confirmErr   error
	sig          string
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{
		pub:          solana.NewWallet().PublicKey(),
		existing:     map[solana.PublicKey]bool{},
		lamports:     100_000_000_000,
		tokenBalance: 1_000_000_000_000,
		sig:          "5xSig",
	}
}

func (f *fakeSigner) PublicKey() solana.PublicKey { return f.pub }

func (f *fakeSigner) AccountExists(_ context.Context, pk solana.PublicKey) (bool, error) {
	return f.existing[pk], nil
}

func (f *fakeSigner) Balance(context.Context) (uint64, error) {
	return f.lamports, nil
}

func (f *fakeSigner) TokenBalance(context.Context, solana.PublicKey) (uint64, error) {
	return f.tokenBalance, nil
}

func (f *fakeSigner) Simulate(_ context.Context, ixs []solana.Instruction) (*wallet.SimulationResult, error) {
	f.simulated = append(f.simulated, ixs)
	if f.simErr != nil {
		return &wallet.SimulationResult{Error: f.simErr.Error()}, f.simErr
	}
	return &wallet.SimulationResult{Success: true, UnitsConsumed: 42_000}, nil
}

func (f *fakeSigner) SignAndSend(_ context.Context, ixs []solana.Instruction, _ *wallet.SendOptions) (string, error) {
	f.sent = append(f.sent, ixs)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.sig, nil
}

func (f *fakeSigner) ConfirmTransaction(context.Context, string, string, time.Duration) error {
	return f.confirmErr
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixedPrice struct {
	price float64
	err   error
	asked []string
}

func (f *fixedPrice) Price(_ context.Context, pair string) (float64, error) {
	f.asked = append(f.asked, pair)
	return f.price, f.err
}

func newTestSubmitter(t *testing.T, signer Signer) (*Submitter, testPair) {
	t.Helper()
	return newPricedSubmitter(t, signer, &fixedPrice{price: 100})
}

func newPricedSubmitter(t *testing.T, signer Signer, prices PriceSource) (*Submitter, testPair) {
	t.Helper()
	tp := newTestPair()
	reg, err := ParsePairRegistry([]byte("pairs:\n" + tp.yaml("SOL-USDC", solana.SolMint, usdcMint)))
	require.NoError(t, err)

	s, err := NewSubmitter(signer, SubmitterConfig{
		ProgramID:   mainnetProgram,
		Pairs:       reg,
		Prices:      prices,
		SlippageBps: 50,
		Logger:      quietLogger(),
	})
	require.NoError(t, err)
	return s, tp
}

func swapIxOf(t *testing.T, ixs []solana.Instruction) solana.Instruction {
	t.Helper()
	for _, ix := range ixs {
		if ix.ProgramID().Equals(mainnetProgram) {
			return ix
		}
	}
	t.Fatal("no DLMM swap instruction sent")
	return nil
}

func TestSubmitter_SOLToUSDC(t *testing.T) {
	signer := newFakeSigner()
	s, tp := newTestSubmitter(t, signer)

	sig, err := s.Submit(context.Background(), dlmm.SwapParams{
		InputToken:  "SOL",
		OutputToken: "USDC",
		Amount:      1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "5xSig", sig)
	require.Len(t, signer.sent, 1)
	require.Len(t, signer.simulated, 1)
	assert.Equal(t, signer.sent[0], signer.simulated[0], "simulates what it sends")

	ixs := signer.sent[0]
	// create wSOL ATA, create USDC ATA, wrap transfer, sync native, swap
	require.Len(t, ixs, 5)

	swap := swapIxOf(t, ixs)
	data, err := swap.Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(data[8:16]))

	// 1.5 SOL at 100 is 150 USDC, 50 bps slippage leaves 149.25
	assert.Equal(t, uint64(149_250_000), binary.LittleEndian.Uint64(data[16:24]))
	assert.True(t, swap.Accounts()[0].PublicKey.Equals(tp.lbPair))

	wsolATA, _, err := FindAssociatedTokenAddress(signer.pub, solana.SolMint)
	require.NoError(t, err)
	assert.True(t, swap.Accounts()[4].PublicKey.Equals(wsolATA))
	assert.True(t, ixs[2].ProgramID().Equals(solana.SystemProgramID), "wrap transfer")
	assert.True(t, ixs[3].ProgramID().Equals(solana.TokenProgramID), "sync native")
}

func TestSubmitter_USDCToSOL_UnwrapsAndReusesATAs(t *testing.T) {
	signer := newFakeSigner()
	usdcATA, _, _ := FindAssociatedTokenAddress(signer.pub, usdcMint)
	wsolATA, _, _ := FindAssociatedTokenAddress(signer.pub, solana.SolMint)
	signer.existing[usdcATA] = true
	signer.existing[wsolATA] = true

	s, _ := newTestSubmitter(t, signer)

	_, err := s.Submit(context.Background(), dlmm.SwapParams{
		InputToken:      usdcMint.String(),
		OutputToken:     "SOL",
		Amount:          10,
		WalletPublicKey: signer.pub.String(),
	})
	require.NoError(t, err)

	ixs := signer.sent[0]
	require.Len(t, ixs, 2, "swap then close wSOL")
	assert.True(t, ixs[0].ProgramID().Equals(mainnetProgram))
	closeData, err := ixs[1].Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, closeData)
}

func TestSubmitter_MinOutFromPairPrice(t *testing.T) {
	minOutOf := func(t *testing.T, signer *fakeSigner) uint64 {
		data, err := swapIxOf(t, signer.sent[0]).Data()
		require.NoError(t, err)
		return binary.LittleEndian.Uint64(data[16:24])
	}

	t.Run("x to y multiplies", func(t *testing.T) {
		signer := newFakeSigner()
		prices := &fixedPrice{price: 180}
		s, tp := newPricedSubmitter(t, signer, prices)

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1.5})
		require.NoError(t, err)
		assert.Equal(t, []string{tp.lbPair.String()}, prices.asked)
		// 270 USDC less 50 bps
		assert.Equal(t, uint64(268_650_000), minOutOf(t, signer))
	})

	t.Run("y to x divides", func(t *testing.T) {
		signer := newFakeSigner()
		usdcATA, _, _ := FindAssociatedTokenAddress(signer.pub, usdcMint)
		signer.existing[usdcATA] = true
		s, _ := newPricedSubmitter(t, signer, &fixedPrice{price: 180})

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "USDC", OutputToken: "SOL", Amount: 10})
		require.NoError(t, err)
		assert.InDelta(t, 55_277_777, float64(minOutOf(t, signer)), 1)
	})

	t.Run("unusable price", func(t *testing.T) {
		signer := newFakeSigner()
		s, _ := newPricedSubmitter(t, signer, &fixedPrice{price: 0})

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1})
		assert.ErrorContains(t, err, "no usable price")
		assert.Empty(t, signer.sent)
	})

	t.Run("price error", func(t *testing.T) {
		signer := newFakeSigner()
		s, _ := newPricedSubmitter(t, signer, &fixedPrice{err: errors.New("pair api http 503")})

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1})
		assert.ErrorContains(t, err, "pair api http 503")
		assert.Empty(t, signer.sent)
	})
}

func TestSubmitter_BalanceCheck(t *testing.T) {
	t.Run("not enough SOL", func(t *testing.T) {
		signer := newFakeSigner()
		signer.lamports = 1_000_000_000
		s, _ := newTestSubmitter(t, signer)

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1.5})
		require.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Contains(t, err.Error(), "have 1000000000, need 1500000000")
		assert.Empty(t, signer.simulated)
		assert.Empty(t, signer.sent)
	})

	t.Run("no input token account", func(t *testing.T) {
		signer := newFakeSigner()
		s, _ := newTestSubmitter(t, signer)

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "USDC", OutputToken: "SOL", Amount: 10})
		require.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Empty(t, signer.sent)
	})

	t.Run("not enough tokens", func(t *testing.T) {
		signer := newFakeSigner()
		usdcATA, _, _ := FindAssociatedTokenAddress(signer.pub, usdcMint)
		signer.existing[usdcATA] = true
		signer.tokenBalance = 9_999_999
		s, _ := newTestSubmitter(t, signer)

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "USDC", OutputToken: "SOL", Amount: 10})
		require.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Empty(t, signer.sent)
	})

	t.Run("exact balance is enough", func(t *testing.T) {
		signer := newFakeSigner()
		usdcATA, _, _ := FindAssociatedTokenAddress(signer.pub, usdcMint)
		signer.existing[usdcATA] = true
		signer.tokenBalance = 10_000_000
		s, _ := newTestSubmitter(t, signer)

		_, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "USDC", OutputToken: "SOL", Amount: 10})
		require.NoError(t, err)
		assert.Len(t, signer.sent, 1)
	})
}

func TestSubmitter_SimulationFailureIsNotBroadcast(t *testing.T) {
	signer := newFakeSigner()
	signer.simErr = errors.New("simulation failed: {InstructionError:[3 {Custom:6003}]} (Program log: Error: ExceededAmountSlippageTolerance)")
	s, _ := newTestSubmitter(t, signer)

	sig, err := s.Submit(context.Background(), dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1})
	require.Error(t, err)
	assert.Empty(t, sig)
	assert.Contains(t, err.Error(), "swap simulation failed")
	assert.Contains(t, err.Error(), "ExceededAmountSlippageTolerance")
	assert.Len(t, signer.simulated, 1)
	assert.Empty(t, signer.sent)
}

func TestSubmitter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params dlmm.SwapParams
		setup  func(*fakeSigner)
		want   string
	}{
		{
			name:   "unknown token",
			params: dlmm.SwapParams{InputToken: "DOGE", OutputToken: "USDC", Amount: 1},
			want:   `unknown token "DOGE"`,
		},
		{
			name:   "no pair",
			params: dlmm.SwapParams{InputToken: "USDT", OutputToken: "USDC", Amount: 1},
			want:   "no DLMM pair registered",
		},
		{
			name:   "dust amount",
			params: dlmm.SwapParams{InputToken: "USDC", OutputToken: "SOL", Amount: 0.0000001},
			want:   "rounds to zero",
		},
		{
			name:   "wallet mismatch",
			params: dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1, WalletPublicKey: solana.NewWallet().PublicKey().String()},
			want:   "does not match signing key",
		},
		{
			name:   "send failure verbatim",
			params: dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1},
			setup:  func(f *fakeSigner) { f.sendErr = errors.New("Insufficient funds") },
			want:   "Insufficient funds",
		},
		{
			name:   "not confirmed",
			params: dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1},
			setup:  func(f *fakeSigner) { f.confirmErr = wallet.ErrConfirmTimeout },
			want:   "not confirmed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := newFakeSigner()
			if tt.setup != nil {
				tt.setup(signer)
			}
			s, _ := newTestSubmitter(t, signer)

			sig, err := s.Submit(context.Background(), tt.params)
			require.Error(t, err)
			assert.Empty(t, sig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewSubmitter_Requires(t *testing.T) {
	reg, err := ParsePairRegistry([]byte("pairs: []"))
	require.NoError(t, err)

	_, err = NewSubmitter(nil, SubmitterConfig{ProgramID: mainnetProgram, Pairs: reg})
	assert.Error(t, err)
	_, err = NewSubmitter(newFakeSigner(), SubmitterConfig{ProgramID: mainnetProgram})
	assert.Error(t, err)
	_, err = NewSubmitter(newFakeSigner(), SubmitterConfig{Pairs: reg, Prices: &fixedPrice{price: 1}})
	assert.Error(t, err)
	_, err = NewSubmitter(newFakeSigner(), SubmitterConfig{ProgramID: mainnetProgram, Pairs: reg})
	assert.ErrorContains(t, err, "price source is required")
}

func TestToRawAmount(t *testing.T) {
	tests := []struct {
		amount   float64
		decimals uint8
		want     uint64
		wantErr  bool
	}{
		{1, 9, 1_000_000_000, false},
		{0.1, 6, 100_000, false},
		{1.23456789, 6, 1_234_567, false},
		{0.0000001, 6, 0, true},
		{-1, 6, 0, true},
		{math.NaN(), 6, 0, true},
		{math.Inf(1), 6, 0, true},
		{1e12, 9, 0, true},
	}

	for _, tt := range tests {
		got, err := ToRawAmount(tt.amount, tt.decimals)
		if tt.wantErr {
			assert.Error(t, err, "amount %v", tt.amount)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "amount %v", tt.amount)
	}
}

func TestDryRunSubmitter(t *testing.T) {
	d := NewDryRunSubmitter(quietLogger())

	sig, err := d.Submit(context.Background(), dlmm.SwapParams{InputToken: "SOL", OutputToken: "USDC", Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, "simulated-transaction-signature", sig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Submit(ctx, dlmm.SwapParams{})
	assert.ErrorIs(t, err, context.Canceled)
}
