package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode answers getAccountInfo for the accounts in existing.
func fakeNode(t *testing.T, existing ...solana.PublicKey) *rpc.Client {
	t.Helper()
	known := make(map[string]bool)
	for _, a := range existing {
		known[a.String()] = true
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		var account string
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) ||
			!assert.Equal(t, "getAccountInfo", req.Method) ||
			!assert.NoError(t, json.Unmarshal(req.Params[0], &account)) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var value interface{}
		if known[account] {
			value = map[string]interface{}{
				"data":       []string{"", "base64"},
				"executable": false,
				"lamports":   2039280,
				"owner":      solana.TokenProgramID.String(),
				"rentEpoch":  0,
				"space":      165,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value":   value,
			},
		})
	}))
	t.Cleanup(srv.Close)
	return rpc.New(srv.URL)
}

func TestRPCProberAccountExists(t *testing.T) {
	present := solana.NewWallet().PublicKey()
	missing := solana.NewWallet().PublicKey()
	p := NewRPCProber(fakeNode(t, present))

	ok, err := p.AccountExists(context.Background(), present)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.AccountExists(context.Background(), missing)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildTransferWithRPCProber(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder(f.reg, NewRPCProber(fakeNode(t)), Config{})

	tr, err := b.BuildTransfer(context.Background(), decimal.NewFromInt(10), f.mint(t, "USDC"), f.sender, f.receiver)
	require.NoError(t, err)
	assert.True(t, tr.CreatesReceiverAccount)
	assert.Len(t, tr.Instructions, 3)
}
