package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTokenNotFound is returned when an identifier does not resolve to a known token.
	ErrTokenNotFound = errors.New("token not found")

	// ErrAmountTooLarge is returned when an amount does not fit in 64-bit base units.
	ErrAmountTooLarge = errors.New("amount exceeds the largest transferable value")
)

// TokenInfo describes a single asset accepted at checkout.
type TokenInfo struct {
	Symbol   string `json:"symbol" mapstructure:"symbol"`
	Name     string `json:"name" mapstructure:"name"`
	Mint     string `json:"mint" mapstructure:"mint"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals"`
	Icon     string `json:"icon,omitempty" mapstructure:"icon"`
	Native   bool   `json:"native,omitempty" mapstructure:"native"`
}

const iconBase = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/"

// DefaultTokens is the registry used when the config file lists none.
func DefaultTokens() []TokenInfo {
	return []TokenInfo{
		{
			Symbol:   "SOL",
			Name:     "Solana",
			Mint:     "So11111111111111111111111111111111111111112",
			Decimals: 9,
			Icon:     iconBase + "So11111111111111111111111111111111111111112/logo.png",
			Native:   true,
		},
		{
			Symbol:   "USDC",
			Name:     "USD Coin",
			Mint:     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			Decimals: 6,
			Icon:     iconBase + "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v/logo.png",
		},
		{
			Symbol:   "USDT",
			Name:     "Tether USD",
			Mint:     "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
			Decimals: 6,
			Icon:     iconBase + "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB/logo.svg",
		},
		{
			Symbol:   "BONK",
			Name:     "Bonk",
			Mint:     "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
			Decimals: 5,
			Icon:     "https://arweave.net/hQiPZOsRZXGXBJd_82PhVdlM_hACsT_q6wqwf5cSY7I",
		},
		{
			Symbol:   "RAY",
			Name:     "Raydium",
			Mint:     "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R",
			Decimals: 6,
			Icon:     iconBase + "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R/logo.png",
		},
	}
}

// Registry is a read-only index of tokens keyed by mint and by symbol.
// It is safe for concurrent use because nothing mutates it after New.
type Registry struct {
	tokens   []TokenInfo
	byMint   map[string]TokenInfo
	bySymbol map[string]TokenInfo
}

// New validates the entries and builds the lookup tables.
func New(tokens []TokenInfo) (*Registry, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("registry needs at least one token")
	}

	r := &Registry{
		tokens:   make([]TokenInfo, 0, len(tokens)),
		byMint:   make(map[string]TokenInfo, len(tokens)),
		bySymbol: make(map[string]TokenInfo, len(tokens)),
	}

	natives := 0
	for _, t := range tokens {
		t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
		t.Mint = strings.TrimSpace(t.Mint)

		if t.Symbol == "" {
			return nil, fmt.Errorf("token with mint '%s' has no symbol", t.Mint)
		}
		if t.Mint == "" {
			return nil, fmt.Errorf("token '%s' has no mint", t.Symbol)
		}
		if _, exists := r.byMint[t.Mint]; exists {
			return nil, fmt.Errorf("duplicate mint '%s'", t.Mint)
		}
		if _, exists := r.bySymbol[t.Symbol]; exists {
			return nil, fmt.Errorf("duplicate symbol '%s'", t.Symbol)
		}
		if t.Native {
			natives++
		}

		r.tokens = append(r.tokens, t)
		r.byMint[t.Mint] = t
		r.bySymbol[t.Symbol] = t
	}

	if natives > 1 {
		return nil, fmt.Errorf("only one native token allowed, got %d", natives)
	}

	return r, nil
}

// MustDefault returns a registry over DefaultTokens.
func MustDefault() *Registry {
	r, err := New(DefaultTokens())
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup resolves a mint address.
func (r *Registry) Lookup(mint string) (TokenInfo, error) {
	t, ok := r.byMint[mint]
	if !ok {
		return TokenInfo{}, fmt.Errorf("%w: %s", ErrTokenNotFound, mint)
	}
	return t, nil
}

// LookupSymbol resolves a ticker symbol, case-insensitively.
func (r *Registry) LookupSymbol(symbol string) (TokenInfo, error) {
	t, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return TokenInfo{}, fmt.Errorf("%w: %s", ErrTokenNotFound, symbol)
	}
	return t, nil
}

// Resolve accepts either a mint or a symbol. Mints win on collision.
func (r *Registry) Resolve(id string) (TokenInfo, error) {
	if t, ok := r.byMint[strings.TrimSpace(id)]; ok {
		return t, nil
	}
	return r.LookupSymbol(id)
}

// Native returns the network's native asset, if one is registered.
func (r *Registry) Native() (TokenInfo, bool) {
	for _, t := range r.tokens {
		if t.Native {
			return t, true
		}
	}
	return TokenInfo{}, false
}

// All returns the tokens in configuration order.
func (r *Registry) All() []TokenInfo {
	out := make([]TokenInfo, len(r.tokens))
	copy(out, r.tokens)
	return out
}
