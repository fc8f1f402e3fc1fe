package quote

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-checkout/pkg/registry"
)

func newTestEstimator(t *testing.T, cfg Config) (*Estimator, *registry.Registry) {
	t.Helper()
	reg := registry.MustDefault()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	est := NewEstimator(reg, cfg,
		WithRandom(rand.New(rand.NewSource(42))),
		WithClock(func() time.Time { return fixed }),
	)
	return est, reg
}

func mint(t *testing.T, reg *registry.Registry, symbol string) string {
	t.Helper()
	tok, err := reg.LookupSymbol(symbol)
	require.NoError(t, err)
	return tok.Mint
}

func TestQuoteSameTokenPassThrough(t *testing.T) {
	est, reg := newTestEstimator(t, DefaultConfig())
	usdc := mint(t, reg, "USDC")

	for _, amount := range []string{"0", "0.000001", "10.5", "123456.789"} {
		q, err := est.Quote(context.Background(), usdc, usdc, decimal.RequireFromString(amount))
		require.NoError(t, err)

		assert.True(t, q.OutAmount.Equal(q.InAmount), "amount %s", amount)
		assert.True(t, q.FeeAmount.IsZero())
		assert.True(t, q.PriceImpactPct.IsZero())
		assert.False(t, q.NeedsSwap())
		assert.Equal(t, "direct", q.Route)
	}
}

func TestQuoteDirectPair(t *testing.T) {
	est, reg := newTestEstimator(t, DefaultConfig())

	q, err := est.Quote(context.Background(), mint(t, reg, "SOL"), mint(t, reg, "USDC"), decimal.NewFromInt(1))
	require.NoError(t, err)

	assert.True(t, q.Rate.Equal(decimal.NewFromInt(150)))
	assert.True(t, q.FeeAmount.Equal(decimal.RequireFromString("0.003")))
	// (1 - 0.003) * 150
	assert.True(t, q.OutAmount.Equal(decimal.RequireFromString("149.55")), q.OutAmount.String())
	// 149.55 * 0.995
	assert.True(t, q.MinOutAmount.Equal(decimal.RequireFromString("148.80225")), q.MinOutAmount.String())

	assert.Equal(t, uint64(1_000_000_000), q.InBaseUnits)
	assert.Equal(t, uint64(3_000_000), q.FeeBaseUnits)
	assert.Equal(t, uint64(149_550_000), q.OutBaseUnits)
	assert.Equal(t, uint64(148_802_250), q.MinOutBaseUnits)
	assert.Equal(t, 30, q.FeeBps)
	assert.Equal(t, "SOL -> USDC", q.Route)
	assert.True(t, q.PriceImpactPct.LessThan(decimal.RequireFromString("0.5")))
	assert.False(t, q.Fallback)
}

func TestRateInverseSymmetry(t *testing.T) {
	est, _ := newTestEstimator(t, DefaultConfig())
	tolerance := decimal.RequireFromString("0.000000000001")

	for pair := range DefaultRates() {
		from, to, ok := splitPair(pair)
		require.True(t, ok)

		forward, _, ok := est.Rate(from, to)
		require.True(t, ok)
		backward, route, ok := est.Rate(to, from)
		require.True(t, ok)
		assert.Contains(t, route, "inverse")

		product := forward.Mul(backward)
		assert.True(t, product.Sub(decimal.NewFromInt(1)).Abs().LessThan(tolerance),
			"%s: %s * %s = %s", pair, forward, backward, product)
	}
}

func TestRateBridgesThroughReference(t *testing.T) {
	est, _ := newTestEstimator(t, DefaultConfig())

	rate, route, ok := est.Rate("SOL", "USDT")
	require.True(t, ok)
	assert.Equal(t, "SOL -> USDC -> USDT", route)
	assert.True(t, rate.Equal(decimal.RequireFromString("149.925")), rate.String())

	rate, route, ok = est.Rate("SOL", "BONK")
	require.True(t, ok)
	assert.Equal(t, "SOL -> USDC -> BONK", route)
	assert.True(t, rate.Equal(decimal.NewFromInt(7_500_000)), rate.String())
}

func TestQuoteIdentityFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rates = map[string]decimal.Decimal{"SOL|USDC": decimal.NewFromInt(150)}
	est, reg := newTestEstimator(t, cfg)

	q, err := est.Quote(context.Background(), mint(t, reg, "BONK"), mint(t, reg, "RAY"), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, q.Fallback)
	assert.True(t, q.Rate.Equal(decimal.NewFromInt(1)))
	require.Len(t, q.Warnings, 1)
	assert.Contains(t, q.Warnings[0], ErrQuoteUnavailable.Error())
}

func TestQuoteStrictPricingRejectsFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rates = map[string]decimal.Decimal{"SOL|USDC": decimal.NewFromInt(150)}
	cfg.StrictPricing = true
	est, reg := newTestEstimator(t, cfg)

	_, err := est.Quote(context.Background(), mint(t, reg, "BONK"), mint(t, reg, "RAY"), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}

func TestQuoteUnknownToken(t *testing.T) {
	est, reg := newTestEstimator(t, DefaultConfig())

	_, err := est.Quote(context.Background(), "missing", mint(t, reg, "USDC"), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, registry.ErrTokenNotFound)

	_, err = est.Quote(context.Background(), mint(t, reg, "USDC"), "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, registry.ErrTokenNotFound)
}

func TestQuoteNegativeAmount(t *testing.T) {
	est, reg := newTestEstimator(t, DefaultConfig())
	usdc := mint(t, reg, "USDC")

	_, err := est.Quote(context.Background(), usdc, usdc, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestQuoteRejectsOverflowingAmounts(t *testing.T) {
	est, reg := newTestEstimator(t, DefaultConfig())
	sol := mint(t, reg, "SOL")

	_, err := est.Quote(context.Background(), sol, sol, decimal.RequireFromString("18446744074"))
	assert.ErrorIs(t, err, registry.ErrAmountTooLarge)

	// The input fits but the converted USDC figure does not.
	cfg := DefaultConfig()
	cfg.Rates = map[string]decimal.Decimal{"SOL|USDC": decimal.RequireFromString("1e12")}
	est, _ = newTestEstimator(t, cfg)
	_, err = est.Quote(context.Background(), sol, mint(t, reg, "USDC"), decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, registry.ErrAmountTooLarge)
}

func TestParseRates(t *testing.T) {
	rates, err := ParseRates(map[string]string{"sol|usdc": "150", "RAY|SOL": " 0.0123 "})
	require.NoError(t, err)
	assert.True(t, rates["SOL|USDC"].Equal(decimal.NewFromInt(150)))
	assert.True(t, rates["RAY|SOL"].Equal(decimal.RequireFromString("0.0123")))

	_, err = ParseRates(map[string]string{"SOLUSDC": "1"})
	assert.Error(t, err)
	_, err = ParseRates(map[string]string{"SOL|USDC": "abc"})
	assert.Error(t, err)
	_, err = ParseRates(map[string]string{"SOL|USDC": "0"})
	assert.Error(t, err)
}
