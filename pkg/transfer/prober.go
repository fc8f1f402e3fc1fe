package transfer

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCProber checks account existence against a Solana node.
type RPCProber struct {
	client *rpc.Client
}

// NewRPCProber probes accounts through client.
func NewRPCProber(client *rpc.Client) *RPCProber {
	return &RPCProber{client: client}
}

// AccountExists reports whether the node has an account at the address.
func (p *RPCProber) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := p.client.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return info != nil && info.Value != nil, nil
}

// MockProber answers from an in-memory set. Nothing exists until Add is called.
type MockProber struct {
	mu       sync.RWMutex
	existing map[solana.PublicKey]bool
}

// NewMockProber returns a prober that knows only the given accounts.
func NewMockProber(accounts ...solana.PublicKey) *MockProber {
	p := &MockProber{existing: make(map[solana.PublicKey]bool)}
	for _, a := range accounts {
		p.existing[a] = true
	}
	return p
}

// Add marks account as existing.
func (p *MockProber) Add(account solana.PublicKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.existing[account] = true
}

// AccountExists reports whether account was added.
func (p *MockProber) AccountExists(_ context.Context, account solana.PublicKey) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.existing[account], nil
}
