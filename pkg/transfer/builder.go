package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"

	"sol-checkout/pkg/registry"
)

const DefaultComputeUnitLimit uint32 = 200_000

var (
	// ErrUnknownToken wraps registry.ErrTokenNotFound so callers can match either.
	ErrUnknownToken = fmt.Errorf("unknown token: %w", registry.ErrTokenNotFound)

	// ErrDustAmount is only returned when RejectDust is set.
	ErrDustAmount = errors.New("amount is below one base unit")

	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Kind distinguishes native transfers from token transfers.
type Kind string

const (
	KindNative Kind = "native"
	KindToken  Kind = "token"
)

// Config tunes the builder.
type Config struct {
	ComputeUnitLimit uint32
	// RejectDust makes a positive amount that floors to zero base units an
	// error instead of a silent zero transfer.
	RejectDust bool
}

// AccountProber answers whether an on-chain account already exists.
type AccountProber interface {
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
}

// Transfer is an ordered instruction list plus the facts used to build it.
// Executed atomically in order, it moves BaseUnits from Sender to Receiver.
type Transfer struct {
	Kind      Kind
	Token     registry.TokenInfo
	Amount    decimal.Decimal
	BaseUnits uint64

	Sender   solana.PublicKey
	Receiver solana.PublicKey

	// Zero for native transfers.
	SenderTokenAccount     solana.PublicKey
	ReceiverTokenAccount   solana.PublicKey
	CreatesReceiverAccount bool

	Instructions []solana.Instruction
}

// FeePayer is always the sender.
func (t *Transfer) FeePayer() solana.PublicKey {
	return t.Sender
}

// Transaction compiles the instructions into an unsigned transaction.
func (t *Transfer) Transaction(recentBlockhash solana.Hash) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(
		t.Instructions,
		recentBlockhash,
		solana.TransactionPayer(t.FeePayer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// Builder assembles transfers for tokens known to the registry.
type Builder struct {
	registry *registry.Registry
	prober   AccountProber
	cfg      Config
}

// NewBuilder returns a builder that resolves mints through reg and checks
// receiver token accounts with prober.
func NewBuilder(reg *registry.Registry, prober AccountProber, cfg Config) *Builder {
	if cfg.ComputeUnitLimit == 0 {
		cfg.ComputeUnitLimit = DefaultComputeUnitLimit
	}
	return &Builder{
		registry: reg,
		prober:   prober,
		cfg:      cfg,
	}
}

// BuildTransfer returns the instruction sequence that pays amount of mint
// from sender to receiver. Amounts are floored to whole base units.
func (b *Builder) BuildTransfer(ctx context.Context, amount decimal.Decimal, mint string, sender, receiver solana.PublicKey) (*Transfer, error) {
	tok, err := b.registry.Lookup(mint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, mint)
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	t := &Transfer{
		Token:    tok,
		Amount:   amount,
		Sender:   sender,
		Receiver: receiver,
		Instructions: []solana.Instruction{
			computebudget.NewSetComputeUnitLimitInstruction(b.cfg.ComputeUnitLimit).Build(),
		},
	}

	if tok.Native {
		t.Kind = KindNative
		t.BaseUnits, err = lamports(amount)
	} else {
		t.Kind = KindToken
		t.BaseUnits, err = tok.ToBaseUnits(amount)
	}
	if err != nil {
		return nil, err
	}

	if b.cfg.RejectDust && amount.IsPositive() && t.BaseUnits == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrDustAmount, amount.String(), tok.Symbol)
	}

	if t.Kind == KindNative {
		t.Instructions = append(t.Instructions,
			system.NewTransferInstruction(t.BaseUnits, sender, receiver).Build(),
		)
		return t, nil
	}

	mintKey, err := solana.PublicKeyFromBase58(tok.Mint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint address: %w", err)
	}

	t.SenderTokenAccount, err = associatedTokenAddress(sender, mintKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get source token account: %w", err)
	}
	t.ReceiverTokenAccount, err = associatedTokenAddress(receiver, mintKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get destination token account: %w", err)
	}

	exists, err := b.prober.AccountExists(ctx, t.ReceiverTokenAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to check destination account: %w", err)
	}

	if !exists {
		t.CreatesReceiverAccount = true
		t.Instructions = append(t.Instructions,
			associatedtokenaccount.NewCreateInstruction(sender, receiver, mintKey).Build(),
		)
	}

	t.Instructions = append(t.Instructions,
		token.NewTransferInstruction(
			t.BaseUnits,
			t.SenderTokenAccount,
			t.ReceiverTokenAccount,
			sender,
			[]solana.PublicKey{},
		).Build(),
	)

	return t, nil
}

// lamports floors a SOL amount to whole lamports.
func lamports(amount decimal.Decimal) (uint64, error) {
	scaled := amount.Mul(decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL))).Floor()
	if scaled.Sign() <= 0 {
		return 0, nil
	}
	units := scaled.BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("%w: %s SOL", registry.ErrAmountTooLarge, amount.String())
	}
	return units.Uint64(), nil
}

func associatedTokenAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return addr, nil
}
