package server

import (
	"github.com/shopspring/decimal"

	"sol-checkout/pkg/payment"
	"sol-checkout/pkg/quote"
)

// QuoteRequestBody is the body of POST /quote.
type QuoteRequestBody struct {
	Amount    decimal.Decimal `json:"amount"`
	Token     string          `json:"token"`
	DestToken string          `json:"dest_token,omitempty"`
}

// PaymentRequestBody is the body of POST /payments.
type PaymentRequestBody struct {
	CustomerAddress string          `json:"customer_address"`
	Amount          decimal.Decimal `json:"amount"`
	Token           string          `json:"token"`
}

// PaymentResponse carries the recorded payment, if any, and the session's final state.
type PaymentResponse struct {
	Payment *payment.Payment `json:"payment,omitempty"`
	Quote   *quote.Quote     `json:"quote,omitempty"`
	State   string           `json:"state"`
	Error   string           `json:"error,omitempty"`
}

// PaymentListResponse is the body of GET /payments.
type PaymentListResponse struct {
	Payments []payment.Payment `json:"payments"`
	Count    int               `json:"count"`
}

// StatsResponse is the body of GET /payments/stats.
type StatsResponse struct {
	payment.Stats
	SuccessRate decimal.Decimal `json:"success_rate"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
