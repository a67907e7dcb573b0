package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var swapDiscriminator = anchorDiscriminator("swap")

// anchorDiscriminator is the first 8 bytes of sha256("global:<name>")
func anchorDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// SwapAccounts are the user-side accounts of a DLMM swap
type SwapAccounts struct {
	User         solana.PublicKey
	UserTokenIn  solana.PublicKey
	UserTokenOut solana.PublicKey
}

// BuildSwapInstruction constructs the DLMM program's swap instruction for pair.
// Bin arrays are appended as remaining accounts in registry order.
func BuildSwapInstruction(
	programID solana.PublicKey,
	pair *Pair,
	user SwapAccounts,
	amountIn uint64,
	minAmountOut uint64,
) (solana.Instruction, error) {
	if pair == nil {
		return nil, fmt.Errorf("pair cannot be nil")
	}
	if amountIn == 0 {
		return nil, fmt.Errorf("amount in must be > 0")
	}
	for name, pk := range map[string]solana.PublicKey{
		"user":           user.User,
		"user token in":  user.UserTokenIn,
		"user token out": user.UserTokenOut,
	} {
		if pk.IsZero() {
			return nil, fmt.Errorf("%s is zero", name)
		}
	}

	eventAuthority, err := deriveEventAuthority(programID)
	if err != nil {
		return nil, fmt.Errorf("derive event authority: %w", err)
	}

	// optional accounts are passed as the program id when absent
	bitmapExt := programID
	if pair.BitmapExtension != nil {
		bitmapExt = *pair.BitmapExtension
	}

	// 0. lb_pair
	// 1. bin_array_bitmap_extension (optional)
	// 2. reserve_x
	// 3. reserve_y
	// 4. user_token_in
	// 5. user_token_out
	// 6. token_x_mint
	// 7. token_y_mint
	// 8. oracle
	// 9. host_fee_in (optional)
	// 10. user (signer)
	// 11. token_x_program
	// 12. token_y_program
	// 13. event_authority
	// 14. program
	// 15.. bin arrays
	accounts := []*solana.AccountMeta{
		{PublicKey: pair.LbPair, IsWritable: true},
		{PublicKey: bitmapExt, IsWritable: pair.BitmapExtension != nil},
		{PublicKey: pair.ReserveX, IsWritable: true},
		{PublicKey: pair.ReserveY, IsWritable: true},
		{PublicKey: user.UserTokenIn, IsWritable: true},
		{PublicKey: user.UserTokenOut, IsWritable: true},
		{PublicKey: pair.TokenXMint},
		{PublicKey: pair.TokenYMint},
		{PublicKey: pair.Oracle, IsWritable: true},
		{PublicKey: programID},
		{PublicKey: user.User, IsSigner: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: eventAuthority},
		{PublicKey: programID},
	}

	for _, idx := range pair.BinArrayIndexes {
		binArray, err := deriveBinArray(pair.LbPair, idx, programID)
		if err != nil {
			return nil, fmt.Errorf("derive bin array %d: %w", idx, err)
		}
		accounts = append(accounts, &solana.AccountMeta{PublicKey: binArray, IsWritable: true})
	}

	// [0:8] discriminator, [8:16] amount_in u64 LE, [16:24] min_amount_out u64 LE
	data := make([]byte, 24)
	copy(data[0:8], swapDiscriminator[:])
	binary.LittleEndian.PutUint64(data[8:16], amountIn)
	binary.LittleEndian.PutUint64(data[16:24], minAmountOut)

	return solana.NewInstruction(programID, accounts, data), nil
}
