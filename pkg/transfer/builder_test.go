package transfer

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-checkout/pkg/registry"
)

var computeBudgetProgram = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

type fixture struct {
	reg      *registry.Registry
	prober   *MockProber
	sender   solana.PublicKey
	receiver solana.PublicKey
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return fixture{
		reg:      registry.MustDefault(),
		prober:   NewMockProber(),
		sender:   solana.NewWallet().PublicKey(),
		receiver: solana.NewWallet().PublicKey(),
	}
}

func (f fixture) mint(t *testing.T, symbol string) string {
	t.Helper()
	tok, err := f.reg.LookupSymbol(symbol)
	require.NoError(t, err)
	return tok.Mint
}

func programIDs(tr *Transfer) []solana.PublicKey {
	ids := make([]solana.PublicKey, 0, len(tr.Instructions))
	for _, ix := range tr.Instructions {
		ids = append(ids, ix.ProgramID())
	}
	return ids
}

func TestBuildNativeTransfer(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{})

	tr, err := b.BuildTransfer(context.Background(), decimal.RequireFromString("2.75"), f.mint(t, "SOL"), f.sender, f.receiver)
	require.NoError(t, err)

	assert.Equal(t, KindNative, tr.Kind)
	assert.Equal(t, uint64(2_750_000_000), tr.BaseUnits)
	assert.Equal(t, []solana.PublicKey{computeBudgetProgram, solana.SystemProgramID}, programIDs(tr))
	assert.Equal(t, f.sender, tr.FeePayer())
	assert.True(t, tr.SenderTokenAccount.IsZero())
}

func TestBuildTokenTransferCreatesMissingAccount(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{})

	tr, err := b.BuildTransfer(context.Background(), decimal.RequireFromString("10.5"), f.mint(t, "USDC"), f.sender, f.receiver)
	require.NoError(t, err)

	assert.Equal(t, KindToken, tr.Kind)
	assert.Equal(t, uint64(10_500_000), tr.BaseUnits)
	assert.True(t, tr.CreatesReceiverAccount)
	assert.Equal(t, []solana.PublicKey{
		computeBudgetProgram,
		solana.SPLAssociatedTokenAccountProgramID,
		solana.TokenProgramID,
	}, programIDs(tr))

	usdc := solana.MustPublicKeyFromBase58(f.mint(t, "USDC"))
	want, _, err := solana.FindAssociatedTokenAddress(f.receiver, usdc)
	require.NoError(t, err)
	assert.Equal(t, want, tr.ReceiverTokenAccount)
}

func TestBuildTokenTransferSkipsExistingAccount(t *testing.T) {
	f := newFixture(t)
	usdc := solana.MustPublicKeyFromBase58(f.mint(t, "USDC"))
	ata, _, err := solana.FindAssociatedTokenAddress(f.receiver, usdc)
	require.NoError(t, err)
	f.prober.Add(ata)

	b := NewBuilder(f.reg, f.prober, Config{})
	tr, err := b.BuildTransfer(context.Background(), decimal.RequireFromString("10.5"), usdc.String(), f.sender, f.receiver)
	require.NoError(t, err)

	assert.False(t, tr.CreatesReceiverAccount)
	assert.Equal(t, []solana.PublicKey{computeBudgetProgram, solana.TokenProgramID}, programIDs(tr))
}

func TestBuildTransferFloorsSubUnitAmounts(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{})

	tr, err := b.BuildTransfer(context.Background(), decimal.RequireFromString("0.0000001"), f.mint(t, "USDC"), f.sender, f.receiver)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tr.BaseUnits)

	tr, err = b.BuildTransfer(context.Background(), decimal.RequireFromString("1.0000019"), f.mint(t, "USDC"), f.sender, f.receiver)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_001), tr.BaseUnits)
}

func TestBuildTransferRejectsOverflowingAmounts(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{})

	// MaxUint64 lamports is 18446744073.709551615 SOL.
	_, err := b.BuildTransfer(context.Background(), decimal.RequireFromString("18446744074"), f.mint(t, "SOL"), f.sender, f.receiver)
	assert.ErrorIs(t, err, registry.ErrAmountTooLarge)

	_, err = b.BuildTransfer(context.Background(), decimal.RequireFromString("18446744073710"), f.mint(t, "USDC"), f.sender, f.receiver)
	assert.ErrorIs(t, err, registry.ErrAmountTooLarge)

	tr, err := b.BuildTransfer(context.Background(), decimal.RequireFromString("18446744073.709551615"), f.mint(t, "SOL"), f.sender, f.receiver)
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), tr.BaseUnits)
}

func TestBuildTransferRejectDust(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{RejectDust: true})

	_, err := b.BuildTransfer(context.Background(), decimal.RequireFromString("0.0000001"), f.mint(t, "USDC"), f.sender, f.receiver)
	assert.ErrorIs(t, err, ErrDustAmount)

	_, err = b.BuildTransfer(context.Background(), decimal.RequireFromString("0.0000000001"), f.mint(t, "SOL"), f.sender, f.receiver)
	assert.ErrorIs(t, err, ErrDustAmount)
}

func TestBuildTransferUnknownToken(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{})

	_, err := b.BuildTransfer(context.Background(), decimal.NewFromInt(1), solana.NewWallet().PublicKey().String(), f.sender, f.receiver)
	assert.ErrorIs(t, err, ErrUnknownToken)
	assert.ErrorIs(t, err, registry.ErrTokenNotFound)
}

func TestBuildTransferNegativeAmount(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{})

	_, err := b.BuildTransfer(context.Background(), decimal.NewFromInt(-1), f.mint(t, "SOL"), f.sender, f.receiver)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestTransferCompilesToTransaction(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, f.prober, Config{ComputeUnitLimit: 150_000})

	tr, err := b.BuildTransfer(context.Background(), decimal.NewFromInt(5), f.mint(t, "USDT"), f.sender, f.receiver)
	require.NoError(t, err)

	tx, err := tr.Transaction(solana.Hash{})
	require.NoError(t, err)
	require.NotEmpty(t, tx.Message.AccountKeys)
	assert.Equal(t, f.sender, tx.Message.AccountKeys[0])
	assert.Len(t, tx.Message.Instructions, 3)
}
