package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := MustDefault()

	all := r.All()
	require.Len(t, all, 5)
	assert.Equal(t, "SOL", all[0].Symbol)

	native, ok := r.Native()
	require.True(t, ok)
	assert.Equal(t, uint8(9), native.Decimals)

	usdc, err := r.LookupSymbol("usdc")
	require.NoError(t, err)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", usdc.Mint)
	assert.Equal(t, uint8(6), usdc.Decimals)

	byMint, err := r.Lookup(usdc.Mint)
	require.NoError(t, err)
	assert.Equal(t, usdc, byMint)
}

func TestLookupUnknown(t *testing.T) {
	r := MustDefault()

	_, err := r.Lookup("nope")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = r.LookupSymbol("DOGE")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = r.Resolve("DOGE")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestResolveAcceptsMintOrSymbol(t *testing.T) {
	r := MustDefault()

	a, err := r.Resolve("RAY")
	require.NoError(t, err)
	b, err := r.Resolve(a.Mint)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name   string
		tokens []TokenInfo
	}{
		{"empty", nil},
		{"no symbol", []TokenInfo{{Mint: "m1"}}},
		{"no mint", []TokenInfo{{Symbol: "A"}}},
		{"duplicate mint", []TokenInfo{{Symbol: "A", Mint: "m1"}, {Symbol: "B", Mint: "m1"}}},
		{"duplicate symbol", []TokenInfo{{Symbol: "a", Mint: "m1"}, {Symbol: "A", Mint: "m2"}}},
		{"two natives", []TokenInfo{{Symbol: "A", Mint: "m1", Native: true}, {Symbol: "B", Mint: "m2", Native: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tokens)
			assert.Error(t, err)
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := MustDefault()
	all := r.All()
	all[0].Symbol = "XXX"

	_, err := r.LookupSymbol("SOL")
	assert.NoError(t, err)
	assert.Equal(t, "SOL", r.All()[0].Symbol)
}
