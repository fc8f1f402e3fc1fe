package registry

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	six := TokenInfo{Symbol: "USDC", Decimals: 6}
	nine := TokenInfo{Symbol: "SOL", Decimals: 9}

	tests := []struct {
		name   string
		token  TokenInfo
		amount string
		want   uint64
	}{
		{"whole", six, "10", 10_000_000},
		{"fraction", six, "10.5", 10_500_000},
		{"floors remainder", six, "1.2345679", 1_234_567},
		{"sub unit", six, "0.0000001", 0},
		{"native", nine, "2.75", 2_750_000_000},
		{"zero", nine, "0", 0},
		{"negative", nine, "-1", 0},
		{"largest", nine, "18446744073.709551615", math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.token.ToBaseUnits(decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToBaseUnitsOverflow(t *testing.T) {
	nine := TokenInfo{Symbol: "SOL", Decimals: 9}

	for _, amount := range []string{"18446744073.709551616", "18446744074", "1e30"} {
		got, err := nine.ToBaseUnits(decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, ErrAmountTooLarge, amount)
		assert.Zero(t, got)
	}
}

func TestFromBaseUnits(t *testing.T) {
	six := TokenInfo{Decimals: 6}
	assert.True(t, six.FromBaseUnits(10_500_000).Equal(decimal.RequireFromString("10.5")))
}
