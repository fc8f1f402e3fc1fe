package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-checkout/pkg/payment"
)

func TestClientReadsDashboard(t *testing.T) {
	s := newTestServer(t)
	customer := s.fund(t, "USDC", "5")

	for _, amount := range []string{"2", "10"} {
		s.do(t, http.MethodPost, "/payments", PaymentRequestBody{
			CustomerAddress: customer.String(),
			Amount:          decimal.RequireFromString(amount),
			Token:           "USDC",
		})
	}

	ts := httptest.NewServer(s.handler)
	defer ts.Close()
	c := NewClient(ts.URL + "/")

	all, err := c.Payments(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, payment.StatusCompleted, all[0].Status)

	failed, err := c.Payments(context.Background(), payment.StatusFailed)
	require.NoError(t, err)
	assert.Empty(t, failed)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.True(t, stats.Volume["USDC"].Equal(decimal.NewFromInt(2)))
}

func TestClientSurfacesServerErrors(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.handler)
	defer ts.Close()

	_, err := NewClient(ts.URL).Payments(context.Background(), payment.Status("bogus"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
