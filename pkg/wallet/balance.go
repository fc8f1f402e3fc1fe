package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"sol-checkout/pkg/registry"
)

// BalanceSource reports how much of a token an owner holds.
type BalanceSource interface {
	Balance(ctx context.Context, owner solana.PublicKey, token registry.TokenInfo) (decimal.Decimal, error)
}

// ParseAddress validates a base58 wallet address.
func ParseAddress(addr string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(addr))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid wallet address: %w", err)
	}
	return pk, nil
}

// ParseCommitment maps a config string to an RPC commitment level.
func ParseCommitment(s string) rpc.CommitmentType {
	switch strings.ToLower(s) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}

// RPCBalances reads balances from a Solana node.
type RPCBalances struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewRPCBalances reads balances through client at the given commitment.
func NewRPCBalances(client *rpc.Client, commitment rpc.CommitmentType) *RPCBalances {
	return &RPCBalances{client: client, commitment: commitment}
}

// Balance returns lamports for the native token and the associated token
// account balance otherwise. A missing token account reads as zero.
func (b *RPCBalances) Balance(ctx context.Context, owner solana.PublicKey, token registry.TokenInfo) (decimal.Decimal, error) {
	if token.Native {
		res, err := b.client.GetBalance(ctx, owner, b.commitment)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
		}
		return token.FromBaseUnits(res.Value), nil
	}

	mint, err := solana.PublicKeyFromBase58(token.Mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid token mint address: %w", err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to derive associated token address: %w", err)
	}

	res, err := b.client.GetTokenAccountBalance(ctx, ata, b.commitment)
	if err != nil {
		// No holding account yet means nothing held.
		if errors.Is(err, rpc.ErrNotFound) || strings.Contains(err.Error(), "could not find account") {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get token balance: %w", err)
	}

	amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse token balance: %w", err)
	}
	return token.FromBaseUnits(amount), nil
}

// MockBalances invents a balance the first time an (owner, token) pair is
// asked for and returns the same figure afterwards.
type MockBalances struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	max      decimal.Decimal
	balances map[string]decimal.Decimal
}

// Option configures MockBalances.
type Option func(*MockBalances)

// WithRandom injects the source used for generated balances.
func WithRandom(r *rand.Rand) Option {
	return func(m *MockBalances) { m.rnd = r }
}

// WithMax caps generated balances. Defaults to 1000 whole tokens.
func WithMax(max decimal.Decimal) Option {
	return func(m *MockBalances) { m.max = max }
}

// NewMockBalances returns an empty mock. Balances are generated on first use.
func NewMockBalances(opts ...Option) *MockBalances {
	m := &MockBalances{
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		max:      decimal.NewFromInt(1000),
		balances: make(map[string]decimal.Decimal),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Set pins a balance, replacing any generated one.
func (m *MockBalances) Set(owner solana.PublicKey, mint string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balanceKey(owner, mint)] = amount
}

// Balance returns the stored figure for owner and token, generating one on first use.
func (m *MockBalances) Balance(_ context.Context, owner solana.PublicKey, token registry.TokenInfo) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := balanceKey(owner, token.Mint)
	if b, ok := m.balances[key]; ok {
		return b, nil
	}

	b := m.max.Mul(decimal.NewFromFloat(m.rnd.Float64())).Truncate(int32(token.Decimals))
	m.balances[key] = b
	return b, nil
}

func balanceKey(owner solana.PublicKey, mint string) string {
	return owner.String() + "|" + mint
}
