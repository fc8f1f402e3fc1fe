package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentRequest is a parsed "pay" or "quote" command.
type PaymentRequest struct {
	Amount decimal.Decimal
	Token  string
	// Optional; empty means the merchant's preferred token.
	DestToken string
}

// Pattern: [PAY|QUOTE] <amount> <token> [TO|IN <token>]
var commandPattern = regexp.MustCompile(`^(?:(?:PAY|QUOTE)\s+)?(\d+(?:\.\d+)?|\.\d+)\s+([A-Z0-9]+)(?:\s+(?:TO|IN)\s+([A-Z0-9]+))?$`)

// ParsePaymentCommand parses a short payment command
// Examples:
//   - "pay 10.5 USDC"
//   - "1 SOL to USDC"
//   - "quote 250000 bonk in usdt"
func ParsePaymentCommand(command string) (*PaymentRequest, error) {
	command = strings.Join(strings.Fields(strings.ToUpper(command)), " ")

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid payment command format. Expected: 'pay <amount> <token> [to <token>]' (e.g., 'pay 10.5 USDC')")
	}

	amount, err := decimal.NewFromString(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	req := &PaymentRequest{
		Amount: amount,
		Token:  NormalizeTokenSymbol(matches[2]),
	}
	if matches[3] != "" {
		req.DestToken = NormalizeTokenSymbol(matches[3])
	}

	if err := ValidatePaymentRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseArgs joins CLI args and parses them as a payment command.
func ParseArgs(args []string) (*PaymentRequest, error) {
	return ParsePaymentCommand(strings.Join(args, " "))
}

// ValidatePaymentRequest validates that a request has all required fields
func ValidatePaymentRequest(req *PaymentRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("amount must be greater than 0")
	}
	if req.Token == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	aliases := map[string]string{
		"WSOL":   "SOL",
		"USDCET": "USDC",
		"USD":    "USDC",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
