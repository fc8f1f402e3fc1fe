package submit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"sol-checkout/pkg/transfer"
)

const DefaultDelay = 1500 * time.Millisecond

var ErrSubmissionFailed = errors.New("submission failed")

// Submitter hands a transfer to the settlement network and returns its
// confirmation id.
type Submitter interface {
	Submit(ctx context.Context, tr *transfer.Transfer) (string, error)
}

// MockSubmitter stands in for a real network. It compiles the transaction,
// sleeps, and returns a random signature that has no relation to the
// instructions it was given.
type MockSubmitter struct {
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a MockSubmitter.
type Option func(*MockSubmitter)

// WithRandom injects the source used for generated signatures.
func WithRandom(r *rand.Rand) Option {
	return func(m *MockSubmitter) { m.rnd = r }
}

// NewMockSubmitter returns a submitter that waits delay before "confirming".
func NewMockSubmitter(delay time.Duration, opts ...Option) *MockSubmitter {
	m := &MockSubmitter{
		delay: delay,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Submit compiles the transfer, waits for the configured delay and returns
// a random signature. Cancellation or timeout of ctx fails the submission.
func (m *MockSubmitter) Submit(ctx context.Context, tr *transfer.Transfer) (string, error) {
	if tr == nil || len(tr.Instructions) == 0 {
		return "", fmt.Errorf("%w: empty transfer", ErrSubmissionFailed)
	}

	// A zero blockhash is enough to prove the instructions compile.
	if _, err := tr.Transaction(solana.Hash{}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", ErrSubmissionFailed, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	var sig solana.Signature
	m.mu.Lock()
	m.rnd.Read(sig[:])
	m.mu.Unlock()

	return sig.String(), nil
}
