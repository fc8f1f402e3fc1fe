package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
)

// SolanaChain is the 1Click blockchain id for Solana assets.
const SolanaChain = "sol"

// OneClickClient wraps the 1Click SDK
type OneClickClient struct {
	client *oneclick.APIClient
	token  string
}

// NewOneClickClient creates a new 1Click API client. An empty baseURL keeps
// the SDK's default server.
func NewOneClickClient(jwtToken, baseURL string) *OneClickClient {
	config := oneclick.NewConfiguration()
	if baseURL != "" {
		config.Servers = oneclick.ServerConfigurations{{URL: baseURL}}
	}

	return &OneClickClient{
		client: oneclick.NewAPIClient(config),
		token:  jwtToken,
	}
}

func (c *OneClickClient) authed(ctx context.Context) context.Context {
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.token)
}

// GetSupportedTokens retrieves all supported tokens
func (c *OneClickClient) GetSupportedTokens(ctx context.Context) ([]oneclick.TokenResponse, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetTokens(c.authed(ctx)).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return resp, nil
}

// SolanaTokens returns the supported tokens that live on Solana.
func (c *OneClickClient) SolanaTokens(ctx context.Context) ([]oneclick.TokenResponse, error) {
	tokens, err := c.GetSupportedTokens(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]oneclick.TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		if strings.EqualFold(token.GetBlockchain(), SolanaChain) {
			out = append(out, token)
		}
	}
	return out, nil
}

// FindTokenOnChain searches for a token by symbol on a specific chain
func (c *OneClickClient) FindTokenOnChain(ctx context.Context, symbol, chain string) (*oneclick.TokenResponse, error) {
	tokens, err := c.GetSupportedTokens(ctx)
	if err != nil {
		return nil, err
	}

	for _, token := range tokens {
		if strings.EqualFold(token.GetSymbol(), symbol) &&
			strings.EqualFold(token.GetBlockchain(), chain) {
			return &token, nil
		}
	}

	return nil, fmt.Errorf("token '%s' not found on chain '%s'", symbol, chain)
}

// QuoteRequest is a price request for two Solana assets.
type QuoteRequest struct {
	SourceSymbol string
	DestSymbol   string
	// Amount in the source token's smallest unit.
	BaseUnits   string
	SlippageBps int32
	Recipient   string
	RefundTo    string
}

// GetQuote asks 1Click for a dry-run quote; no deposit address is reserved.
func (c *OneClickClient) GetQuote(ctx context.Context, req QuoteRequest) (*oneclick.QuoteResponse, error) {
	sourceToken, err := c.FindTokenOnChain(ctx, req.SourceSymbol, SolanaChain)
	if err != nil {
		return nil, fmt.Errorf("source token error: %w", err)
	}
	destToken, err := c.FindTokenOnChain(ctx, req.DestSymbol, SolanaChain)
	if err != nil {
		return nil, fmt.Errorf("destination token error: %w", err)
	}

	if req.Recipient == "" {
		return nil, fmt.Errorf("recipient address is required")
	}
	refundTo := req.RefundTo
	if refundTo == "" {
		refundTo = req.Recipient
	}

	quoteReq := oneclick.NewQuoteRequest(
		true,                     // dry
		"EXACT_INPUT",            // swapType
		float32(req.SlippageBps), // slippageTolerance in bps
		sourceToken.GetAssetId(), // originAsset
		"ORIGIN_CHAIN",           // depositType
		destToken.GetAssetId(),   // destinationAsset
		req.BaseUnits,            // amount in smallest unit
		refundTo,                 // refundTo
		"ORIGIN_CHAIN",           // refundType
		req.Recipient,            // recipient
		"DESTINATION_CHAIN",      // recipientType
		time.Now().Add(time.Hour),
	)

	resp, httpResp, err := c.client.OneClickAPI.GetQuote(c.authed(ctx)).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		return nil, apiError(httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	if resp == nil {
		return nil, fmt.Errorf("empty quote response")
	}

	return resp, nil
}

// apiError pulls the server's message out of a failed response body.
func apiError(httpResp *http.Response, err error) error {
	if httpResp == nil {
		return fmt.Errorf("failed to get quote from API: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil || len(bodyBytes) == 0 {
		return fmt.Errorf("failed to get quote from API (status: %d): %w", httpResp.StatusCode, err)
	}

	var errorResp map[string]interface{}
	if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, message)
		}
		if errs, ok := errorResp["errors"]; ok {
			return fmt.Errorf("API error (status %d): %v", httpResp.StatusCode, errs)
		}
	}
	return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(bodyBytes))
}
