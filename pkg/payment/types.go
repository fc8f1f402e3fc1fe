package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is fixed at creation. Records are never transitioned in place.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus accepts the lower-case status names.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown payment status %q", s)
	}
}

// Payment is what the merchant sees once a checkout finishes, successfully or not.
type Payment struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`      // Settled amount, in Token
	Token       string          `json:"token"`       // Mint of the settlement token
	TokenSymbol string          `json:"token_symbol"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	MerchantID  string          `json:"merchant_id"`

	CustomerAddress string `json:"customer_address,omitempty"`
	Signature       string `json:"signature,omitempty"`

	// What the customer paid with, when it differs from Token.
	InputToken  string          `json:"input_token,omitempty"`
	InputAmount decimal.Decimal `json:"input_amount"`
	Route       string          `json:"route,omitempty"`

	Error string `json:"error,omitempty"`
}

// Merchant receives payments in one preferred token.
type Merchant struct {
	ID             string `json:"id" mapstructure:"id"`
	Name           string `json:"name" mapstructure:"name"`
	Address        string `json:"address" mapstructure:"address"`
	PreferredToken string `json:"preferred_token" mapstructure:"preferred_token"`
}

// Validate checks that the merchant can receive payments.
func (m Merchant) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("merchant id is required")
	}
	if m.Address == "" {
		return fmt.Errorf("merchant address is required")
	}
	if m.PreferredToken == "" {
		return fmt.Errorf("merchant preferred token is required")
	}
	return nil
}
