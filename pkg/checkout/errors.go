package checkout

import (
	"context"
	"errors"

	"sol-checkout/pkg/quote"
	"sol-checkout/pkg/registry"
	"sol-checkout/pkg/submit"
	"sol-checkout/pkg/transfer"
)

var (
	ErrNoWallet            = errors.New("no wallet connected")
	ErrNoQuote             = errors.New("no quote available")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceUnavailable  = errors.New("wallet balance could not be fetched")
	ErrBusy                = errors.New("a payment is already in progress")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
)

// UserMessage turns an error from the checkout flow into text fit for a
// customer. Unknown errors get a generic message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoWallet):
		return "Please connect your wallet first."
	case errors.Is(err, ErrNoQuote):
		return "Enter an amount to get a quote before paying."
	case errors.Is(err, ErrInsufficientBalance):
		return "Insufficient balance for this payment."
	case errors.Is(err, ErrBalanceUnavailable):
		return "Could not check your wallet balance. Please try again."
	case errors.Is(err, registry.ErrAmountTooLarge):
		return "Amount is too large."
	case errors.Is(err, ErrBusy):
		return "A payment is already being processed."
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, quote.ErrInvalidAmount):
		return "Please enter a valid amount."
	case errors.Is(err, transfer.ErrDustAmount):
		return "Amount is too small to send."
	case errors.Is(err, registry.ErrTokenNotFound):
		return "This token is not supported."
	case errors.Is(err, quote.ErrQuoteUnavailable):
		return "No price is available for this token pair."
	case errors.Is(err, context.DeadlineExceeded):
		return "The network took too long to confirm the payment."
	case errors.Is(err, submit.ErrSubmissionFailed):
		return "Transaction failed. Please try again."
	default:
		return "Payment failed. Please try again."
	}
}
