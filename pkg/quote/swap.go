package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Swapper converts the quoted input into the output token.
type Swapper interface {
	Swap(ctx context.Context, q *Quote) (decimal.Decimal, error)
}

// SimulatedSwapper pretends to route a swap: it waits, then hands back
// amount × rate × (1 − slippage), truncated to the output token's decimals.
type SimulatedSwapper struct {
	delay time.Duration
}

// NewSimulatedSwapper returns a swapper that takes delay per swap.
func NewSimulatedSwapper(delay time.Duration) *SimulatedSwapper {
	return &SimulatedSwapper{delay: delay}
}

// Swap waits for the delay, then returns the quoted input converted at the
// quoted rate less slippage.
func (s *SimulatedSwapper) Swap(ctx context.Context, q *Quote) (decimal.Decimal, error) {
	if q == nil {
		return decimal.Zero, fmt.Errorf("swap: nil quote")
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return decimal.Zero, fmt.Errorf("swap interrupted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	if !q.NeedsSwap() {
		return q.InAmount, nil
	}

	slippage := decimal.NewFromInt(int64(q.SlippageBps)).Div(decimal.NewFromInt(bpsDenominator))
	out := q.InAmount.Mul(q.Rate).Mul(decimal.NewFromInt(1).Sub(slippage))
	return out.Truncate(int32(q.OutputDecimals)), nil
}
