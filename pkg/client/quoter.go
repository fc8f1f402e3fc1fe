package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sol-checkout/pkg/quote"
	"sol-checkout/pkg/registry"
)

// quoteAPI is the slice of OneClickClient the quoter needs.
type quoteAPI interface {
	GetQuote(ctx context.Context, req QuoteRequest) (*AmountPair, error)
}

// AmountPair is the part of a 1Click quote used for pricing.
type AmountPair struct {
	AmountIn  string
	AmountOut string
	Route     string
}

// PriceQuotes adapts the raw client to quoteAPI.
type PriceQuotes struct {
	*OneClickClient
}

// GetQuote requests a quote and keeps only its amounts and route.
func (p PriceQuotes) GetQuote(ctx context.Context, req QuoteRequest) (*AmountPair, error) {
	resp, err := p.OneClickClient.GetQuote(ctx, req)
	if err != nil {
		return nil, err
	}
	details := resp.GetQuote()
	return &AmountPair{
		AmountIn:  details.GetAmountInFormatted(),
		AmountOut: details.GetAmountOutFormatted(),
		Route:     fmt.Sprintf("1click (~%.0fs)", float64(details.GetTimeEstimate())),
	}, nil
}

// RemoteQuoter prices conversions with the 1Click API instead of the local
// rate table. It satisfies quote.Quoter.
type RemoteQuoter struct {
	api         quoteAPI
	registry    *registry.Registry
	slippageBps int
	recipient   string
	now         func() time.Time
}

// NewRemoteQuoter prices through api. recipient is the merchant address
// quoted as the swap destination.
func NewRemoteQuoter(api *OneClickClient, reg *registry.Registry, slippageBps int, recipient string) *RemoteQuoter {
	return newRemoteQuoter(PriceQuotes{api}, reg, slippageBps, recipient)
}

func newRemoteQuoter(api quoteAPI, reg *registry.Registry, slippageBps int, recipient string) *RemoteQuoter {
	return &RemoteQuoter{
		api:         api,
		registry:    reg,
		slippageBps: slippageBps,
		recipient:   recipient,
		now:         time.Now,
	}
}

// Quote asks 1Click for a dry quote and converts it into a quote.Quote.
// Same-token requests never reach the API.
func (r *RemoteQuoter) Quote(ctx context.Context, inputMint, outputMint string, amount decimal.Decimal) (*quote.Quote, error) {
	in, err := r.registry.Lookup(inputMint)
	if err != nil {
		return nil, err
	}
	out, err := r.registry.Lookup(outputMint)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, quote.ErrInvalidAmount
	}

	q := &quote.Quote{
		InputMint:      in.Mint,
		OutputMint:     out.Mint,
		InputSymbol:    in.Symbol,
		OutputSymbol:   out.Symbol,
		InputDecimals:  in.Decimals,
		OutputDecimals: out.Decimals,
		InAmount:       amount,
		FeeAmount:      decimal.Zero,
		SlippageBps:    r.slippageBps,
		PriceImpactPct: decimal.Zero,
		CreatedAt:      r.now(),
	}

	if in.Mint == out.Mint {
		q.OutAmount = amount
		q.MinOutAmount = amount
		q.Rate = decimal.NewFromInt(1)
		q.Route = "direct"
		if err := quote.ScaleBaseUnits(q, in, out); err != nil {
			return nil, err
		}
		return q, nil
	}

	inUnits, err := in.ToBaseUnits(amount)
	if err != nil {
		return nil, err
	}

	pair, err := r.api.GetQuote(ctx, QuoteRequest{
		SourceSymbol: in.Symbol,
		DestSymbol:   out.Symbol,
		BaseUnits:    strconv.FormatUint(inUnits, 10),
		SlippageBps:  int32(r.slippageBps),
		Recipient:    r.recipient,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quote.ErrQuoteUnavailable, err)
	}

	amountIn, err := decimal.NewFromString(pair.AmountIn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount in: %w", err)
	}
	amountOut, err := decimal.NewFromString(pair.AmountOut)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount out: %w", err)
	}
	if amountIn.IsZero() {
		return nil, fmt.Errorf("invalid amount in: 0")
	}

	slippage := decimal.NewFromInt(int64(r.slippageBps)).Div(decimal.NewFromInt(10000))
	q.Rate = amountOut.Div(amountIn)
	q.OutAmount = amountOut.Truncate(int32(out.Decimals))
	q.MinOutAmount = amountOut.Mul(decimal.NewFromInt(1).Sub(slippage)).Truncate(int32(out.Decimals))
	q.Route = fmt.Sprintf("%s -> %s via %s", in.Symbol, out.Symbol, pair.Route)
	if err := quote.ScaleBaseUnits(q, in, out); err != nil {
		return nil, err
	}

	return q, nil
}
