package payment

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(id string, status Status, merchant, symbol, amount string) Payment {
	return Payment{
		ID:          id,
		Amount:      decimal.RequireFromString(amount),
		Token:       symbol + "-mint",
		TokenSymbol: symbol,
		Status:      status,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MerchantID:  merchant,
	}
}

func TestStoreKeepsCreationOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(newPayment(fmt.Sprintf("p%d", i), StatusCompleted, "m1", "USDC", "1")))
	}

	list := s.List()
	require.Len(t, list, 5)
	for i, p := range list {
		assert.Equal(t, fmt.Sprintf("p%d", i), p.ID)
	}
	assert.Equal(t, 5, s.Count())
}

func TestStoreRejectsDuplicateAndEmptyIDs(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(newPayment("p1", StatusCompleted, "m1", "USDC", "1")))

	assert.Error(t, s.Add(newPayment("p1", StatusFailed, "m1", "USDC", "1")))
	assert.Error(t, s.Add(newPayment("", StatusFailed, "m1", "USDC", "1")))
	assert.Equal(t, 1, s.Count())
}

func TestStoreGet(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(newPayment("p1", StatusCompleted, "m1", "USDC", "10.5")))

	p, err := s.Get("p1")
	require.NoError(t, err)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("10.5")))

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestStoreFilters(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(newPayment("a", StatusCompleted, "m1", "USDC", "1")))
	require.NoError(t, s.Add(newPayment("b", StatusFailed, "m1", "USDC", "1")))
	require.NoError(t, s.Add(newPayment("c", StatusCompleted, "m2", "SOL", "1")))

	assert.Len(t, s.ListByStatus(StatusCompleted), 2)
	assert.Len(t, s.ListByStatus(StatusPending), 0)
	assert.Len(t, s.ListByMerchant("m1"), 2)
	assert.Len(t, s.ListByMerchant("m2"), 1)
}

func TestStoreListReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(newPayment("a", StatusCompleted, "m1", "USDC", "1")))

	list := s.List()
	list[0].Status = StatusFailed

	p, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestStoreConcurrentAdds(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Add(newPayment(fmt.Sprintf("p%d", i), StatusCompleted, "m1", "USDC", "1"))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Count())
}

func TestSummarize(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(newPayment("a", StatusCompleted, "m1", "USDC", "10.5")))
	require.NoError(t, s.Add(newPayment("b", StatusCompleted, "m1", "USDC", "149.25")))
	require.NoError(t, s.Add(newPayment("c", StatusFailed, "m2", "USDC", "99")))
	require.NoError(t, s.Add(newPayment("d", StatusCompleted, "m2", "SOL", "2")))

	st := s.Stats()
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 3, st.ByStatus[StatusCompleted])
	assert.Equal(t, 1, st.ByStatus[StatusFailed])
	assert.Equal(t, 2, st.Merchants)
	assert.True(t, st.Volume["USDC"].Equal(decimal.RequireFromString("159.75")))
	assert.True(t, st.Volume["SOL"].Equal(decimal.NewFromInt(2)))
	assert.Equal(t, []string{"SOL", "USDC"}, st.VolumeTokens())
	assert.True(t, st.SuccessRate().Equal(decimal.NewFromInt(75)))
}

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil)
	assert.Equal(t, 0, st.Total)
	assert.True(t, st.SuccessRate().IsZero())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}

func TestMerchantValidate(t *testing.T) {
	m := Merchant{ID: "m1", Name: "Shop", Address: "addr", PreferredToken: "USDC"}
	assert.NoError(t, m.Validate())

	m.Address = ""
	assert.Error(t, m.Validate())
}
