package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentCommand(t *testing.T) {
	tests := []struct {
		in     string
		amount string
		token  string
		dest   string
	}{
		{"pay 10.5 USDC", "10.5", "USDC", ""},
		{"10.5 usdc", "10.5", "USDC", ""},
		{"1 SOL to USDC", "1", "SOL", "USDC"},
		{"quote 250000 bonk in usdt", "250000", "BONK", "USDT"},
		{"  pay   .5   wsol  ", "0.5", "SOL", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req, err := ParsePaymentCommand(tt.in)
			require.NoError(t, err)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString(tt.amount)), req.Amount.String())
			assert.Equal(t, tt.token, req.Token)
			assert.Equal(t, tt.dest, req.DestToken)
		})
	}
}

func TestParsePaymentCommandRejects(t *testing.T) {
	for _, in := range []string{"", "pay USDC", "pay -1 USDC", "pay 0 USDC", "pay 1.2.3 SOL", "swap 1 SOL to USDC"} {
		_, err := ParsePaymentCommand(in)
		assert.Error(t, err, in)
	}
}

func TestParseArgs(t *testing.T) {
	req, err := ParseArgs([]string{"2.75", "SOL"})
	require.NoError(t, err)
	assert.True(t, req.Amount.Equal(decimal.RequireFromString("2.75")))
	assert.Equal(t, "SOL", req.Token)
}

func TestNormalizeTokenSymbol(t *testing.T) {
	assert.Equal(t, "SOL", NormalizeTokenSymbol(" wsol "))
	assert.Equal(t, "USDC", NormalizeTokenSymbol("usd"))
	assert.Equal(t, "BONK", NormalizeTokenSymbol("bonk"))
}
