package quote

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sol-checkout/pkg/registry"
)

const (
	DefaultFeeBps          = 30 // 0.3% platform fee
	DefaultSlippageBps     = 50 // 0.5% slippage tolerance
	DefaultReferenceSymbol = "USDC"

	bpsDenominator = 10000
)

// Config holds the pricing inputs. Rates are keyed "FROM|TO" by symbol.
type Config struct {
	Rates           map[string]decimal.Decimal
	FeeBps          int
	SlippageBps     int
	ReferenceSymbol string
	StrictPricing   bool
}

// DefaultConfig returns the demo pricing setup.
func DefaultConfig() Config {
	return Config{
		Rates:           DefaultRates(),
		FeeBps:          DefaultFeeBps,
		SlippageBps:     DefaultSlippageBps,
		ReferenceSymbol: DefaultReferenceSymbol,
	}
}

// DefaultRates is the demo price table. Pairs not listed are derived by
// inversion or by bridging through the reference stablecoin.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"SOL|USDC":  decimal.NewFromInt(150),
		"USDC|USDT": decimal.RequireFromString("0.9995"),
		"BONK|USDC": decimal.RequireFromString("0.00002"),
		"RAY|USDC":  decimal.RequireFromString("1.85"),
		"RAY|SOL":   decimal.RequireFromString("0.0123"),
	}
}

// ParseRates turns config strings into a rate table.
func ParseRates(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for pair, value := range raw {
		from, to, ok := splitPair(pair)
		if !ok {
			return nil, fmt.Errorf("invalid rate pair '%s', expected FROM|TO", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", pair, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", pair)
		}
		out[pairKey(from, to)] = rate
	}
	return out, nil
}

// Estimator prices conversions from a fixed rate table. It never touches the
// network; the only nondeterminism is the display-only price impact.
type Estimator struct {
	registry *registry.Registry
	cfg      Config
	rates    map[string]decimal.Decimal
	random   func() float64
	now      func() time.Time
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithRandom injects the source used for the price-impact display figure.
func WithRandom(r *rand.Rand) Option {
	return func(e *Estimator) {
		e.random = r.Float64
	}
}

// WithClock overrides the clock used for quote timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		e.now = now
	}
}

// NewEstimator builds an estimator over reg. A nil rate table means DefaultRates.
func NewEstimator(reg *registry.Registry, cfg Config, opts ...Option) *Estimator {
	if cfg.Rates == nil {
		cfg.Rates = DefaultRates()
	}
	if cfg.ReferenceSymbol == "" {
		cfg.ReferenceSymbol = DefaultReferenceSymbol
	}

	rates := make(map[string]decimal.Decimal, len(cfg.Rates))
	for pair, rate := range cfg.Rates {
		if from, to, ok := splitPair(pair); ok {
			rates[pairKey(from, to)] = rate
		}
	}

	e := &Estimator{
		registry: reg,
		cfg:      cfg,
		rates:    rates,
		random:   rand.Float64,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rate finds a conversion rate between two symbols: direct pair, inverse
// pair, then a two-hop bridge through the reference stablecoin.
func (e *Estimator) Rate(from, to string) (decimal.Decimal, string, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), from, true
	}

	if rate, inverse, ok := e.pair(from, to); ok {
		route := from + " -> " + to
		if inverse {
			route += " (inverse)"
		}
		return rate, route, true
	}

	ref := strings.ToUpper(e.cfg.ReferenceSymbol)
	if from != ref && to != ref {
		first, _, ok1 := e.pair(from, ref)
		second, _, ok2 := e.pair(ref, to)
		if ok1 && ok2 {
			return first.Mul(second), from + " -> " + ref + " -> " + to, true
		}
	}

	return decimal.Decimal{}, "", false
}

func (e *Estimator) pair(from, to string) (rate decimal.Decimal, inverse bool, ok bool) {
	if r, found := e.rates[pairKey(from, to)]; found {
		return r, false, true
	}
	if r, found := e.rates[pairKey(to, from)]; found && !r.IsZero() {
		return decimal.NewFromInt(1).Div(r), true, true
	}
	return decimal.Decimal{}, false, false
}

// Quote prices amount of inputMint in outputMint.
func (e *Estimator) Quote(ctx context.Context, inputMint, outputMint string, amount decimal.Decimal) (*Quote, error) {
	in, err := e.registry.Lookup(inputMint)
	if err != nil {
		return nil, fmt.Errorf("input token: %w", err)
	}
	out, err := e.registry.Lookup(outputMint)
	if err != nil {
		return nil, fmt.Errorf("output token: %w", err)
	}
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	q := &Quote{
		InputMint:      in.Mint,
		OutputMint:     out.Mint,
		InputSymbol:    in.Symbol,
		OutputSymbol:   out.Symbol,
		InputDecimals:  in.Decimals,
		OutputDecimals: out.Decimals,
		InAmount:       amount,
		CreatedAt:      e.now().UTC(),
	}

	// Same token: nothing to swap, pass straight through.
	if in.Mint == out.Mint {
		q.OutAmount = amount
		q.MinOutAmount = amount
		q.FeeAmount = decimal.Zero
		q.Rate = decimal.NewFromInt(1)
		q.PriceImpactPct = decimal.Zero
		q.Route = "direct"
		if err := scale(q, in, out); err != nil {
			return nil, err
		}
		return q, nil
	}

	rate, route, ok := e.Rate(in.Symbol, out.Symbol)
	if !ok {
		if e.cfg.StrictPricing {
			return nil, fmt.Errorf("%w: %s -> %s", ErrQuoteUnavailable, in.Symbol, out.Symbol)
		}
		rate = decimal.NewFromInt(1)
		route = in.Symbol + " -> " + out.Symbol + " (identity fallback)"
		q.Fallback = true
		q.Warnings = append(q.Warnings, fmt.Sprintf("%s: %s -> %s, using 1:1", ErrQuoteUnavailable, in.Symbol, out.Symbol))
	}

	bps := decimal.NewFromInt(bpsDenominator)
	fee := amount.Mul(decimal.NewFromInt(int64(e.cfg.FeeBps))).Div(bps)
	outAmount := amount.Sub(fee).Mul(rate)
	slippage := decimal.NewFromInt(int64(e.cfg.SlippageBps)).Div(bps)

	q.FeeAmount = fee
	q.FeeBps = e.cfg.FeeBps
	q.SlippageBps = e.cfg.SlippageBps
	q.Rate = rate
	q.Route = route
	q.OutAmount = outAmount.Truncate(int32(out.Decimals))
	q.MinOutAmount = outAmount.Mul(decimal.NewFromInt(1).Sub(slippage)).Truncate(int32(out.Decimals))
	q.PriceImpactPct = decimal.NewFromFloat(e.random() * 0.5).Round(4)

	if err := scale(q, in, out); err != nil {
		return nil, err
	}
	return q, nil
}

func scale(q *Quote, in, out registry.TokenInfo) error {
	var err error
	if q.InBaseUnits, err = in.ToBaseUnits(q.InAmount); err != nil {
		return err
	}
	if q.FeeBaseUnits, err = in.ToBaseUnits(q.FeeAmount); err != nil {
		return err
	}
	if q.OutBaseUnits, err = out.ToBaseUnits(q.OutAmount); err != nil {
		return err
	}
	if q.MinOutBaseUnits, err = out.ToBaseUnits(q.MinOutAmount); err != nil {
		return err
	}
	return nil
}

// ScaleBaseUnits fills the base-unit figures of q from its human amounts.
// It fails with registry.ErrAmountTooLarge when any figure overflows.
func ScaleBaseUnits(q *Quote, in, out registry.TokenInfo) error {
	return scale(q, in, out)
}

func pairKey(from, to string) string {
	return strings.ToUpper(from) + "|" + strings.ToUpper(to)
}

func splitPair(pair string) (string, string, bool) {
	parts := strings.Split(pair, "|")
	if len(parts) != 2 {
		return "", "", false
	}
	from, to := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}
