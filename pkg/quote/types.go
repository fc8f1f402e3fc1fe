package quote

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrQuoteUnavailable means no pricing path exists between two tokens.
	// In lenient mode it is attached to the quote as a warning instead of returned.
	ErrQuoteUnavailable = errors.New("no pricing path between tokens")

	ErrInvalidAmount = errors.New("amount must not be negative")
)

// Quoter is anything that can price a conversion. The rate-table Estimator
// and the remote 1Click client both satisfy it.
type Quoter interface {
	Quote(ctx context.Context, inputMint, outputMint string, amount decimal.Decimal) (*Quote, error)
}

// Quote is a transient conversion estimate. Human amounts and their
// base-unit equivalents are both carried so callers never rescale.
type Quote struct {
	InputMint      string          `json:"input_mint"`
	OutputMint     string          `json:"output_mint"`
	InputSymbol    string          `json:"input_symbol"`
	OutputSymbol   string          `json:"output_symbol"`
	InputDecimals  uint8           `json:"input_decimals"`
	OutputDecimals uint8           `json:"output_decimals"`
	InAmount       decimal.Decimal `json:"in_amount"`
	OutAmount      decimal.Decimal `json:"out_amount"`
	MinOutAmount   decimal.Decimal `json:"min_out_amount"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	FeeBps         int             `json:"fee_bps"`
	SlippageBps    int             `json:"slippage_bps"`
	Rate           decimal.Decimal `json:"rate"`
	PriceImpactPct decimal.Decimal `json:"price_impact_pct"`
	Route          string          `json:"route"`

	InBaseUnits     uint64 `json:"in_base_units"`
	OutBaseUnits    uint64 `json:"out_base_units"`
	MinOutBaseUnits uint64 `json:"min_out_base_units"`
	FeeBaseUnits    uint64 `json:"fee_base_units"`

	Fallback  bool      `json:"fallback,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NeedsSwap reports whether settlement requires converting tokens.
func (q *Quote) NeedsSwap() bool {
	return q.InputMint != q.OutputMint
}
