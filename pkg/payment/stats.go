package payment

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Stats is the dashboard summary.
type Stats struct {
	Total     int                        `json:"total"`
	ByStatus  map[Status]int             `json:"by_status"`
	Volume    map[string]decimal.Decimal `json:"volume"` // Completed amount per token symbol
	Merchants int                        `json:"merchants"`
}

// Summarize counts payments by status and totals completed volume per token.
func Summarize(payments []Payment) Stats {
	st := Stats{
		Total:    len(payments),
		ByStatus: make(map[Status]int),
		Volume:   make(map[string]decimal.Decimal),
	}

	merchants := make(map[string]struct{})
	for _, p := range payments {
		st.ByStatus[p.Status]++
		merchants[p.MerchantID] = struct{}{}

		if p.Status != StatusCompleted {
			continue
		}
		key := p.TokenSymbol
		if key == "" {
			key = p.Token
		}
		st.Volume[key] = st.Volume[key].Add(p.Amount)
	}
	st.Merchants = len(merchants)

	return st
}

// SuccessRate is completed over total, in percent.
func (s Stats) SuccessRate() decimal.Decimal {
	if s.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.ByStatus[StatusCompleted])).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(s.Total))).
		Round(2)
}

// VolumeTokens lists the tokens with completed volume, sorted.
func (s Stats) VolumeTokens() []string {
	tokens := make([]string, 0, len(s.Volume))
	for t := range s.Volume {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}
