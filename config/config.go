package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sol-checkout/pkg/payment"
	"sol-checkout/pkg/quote"
	"sol-checkout/pkg/registry"
)

const (
	NetworkMock = "mock"
	NetworkRPC  = "rpc"

	QuoteSourceTable    = "table"
	QuoteSourceOneClick = "oneclick"
)

// Config holds the application configuration
type Config struct {
	Env        string               `mapstructure:"env"`
	LogLevel   string               `mapstructure:"log_level"`
	ListenAddr string               `mapstructure:"listen_addr"`
	Merchant   payment.Merchant     `mapstructure:"merchant"`
	Network    NetworkConfig        `mapstructure:"network"`
	Quote      QuoteConfig          `mapstructure:"quote"`
	Transfer   TransferConfig       `mapstructure:"transfer"`
	Submit     SubmitConfig         `mapstructure:"submit"`
	OneClick   OneClickConfig       `mapstructure:"oneclick"`
	Tokens     []registry.TokenInfo `mapstructure:"tokens"`
}

type NetworkConfig struct {
	Mode       string `mapstructure:"mode"`
	RPCUrl     string `mapstructure:"rpc_url"`
	Commitment string `mapstructure:"commitment"`
}

type QuoteConfig struct {
	Source          string            `mapstructure:"source"`
	FeeBps          int               `mapstructure:"fee_bps"`
	SlippageBps     int               `mapstructure:"slippage_bps"`
	ReferenceSymbol string            `mapstructure:"reference_symbol"`
	Debounce        time.Duration     `mapstructure:"debounce"`
	StrictPricing   bool              `mapstructure:"strict_pricing"`
	Rates           map[string]string `mapstructure:"rates"`
}

type TransferConfig struct {
	ComputeUnitLimit uint32 `mapstructure:"compute_unit_limit"`
	RejectDust       bool   `mapstructure:"reject_dust"`
}

type SubmitConfig struct {
	Delay   time.Duration `mapstructure:"delay"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OneClickConfig struct {
	JWTToken string `mapstructure:"jwt_token"`
	BaseURL  string `mapstructure:"base_url"`
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.GetViper()
	v.SetConfigName(".sol-checkout")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper applies defaults and environment overrides to v and decodes it.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("SOL_CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")

	v.SetDefault("merchant.id", "demo-merchant")
	v.SetDefault("merchant.name", "Demo Store")
	v.SetDefault("merchant.address", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	v.SetDefault("merchant.preferred_token", "USDC")

	v.SetDefault("network.mode", NetworkMock)
	v.SetDefault("network.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("network.commitment", "confirmed")

	v.SetDefault("quote.source", QuoteSourceTable)
	v.SetDefault("quote.fee_bps", quote.DefaultFeeBps)
	v.SetDefault("quote.slippage_bps", quote.DefaultSlippageBps)
	v.SetDefault("quote.reference_symbol", quote.DefaultReferenceSymbol)
	v.SetDefault("quote.debounce", "500ms")
	v.SetDefault("quote.strict_pricing", false)

	v.SetDefault("transfer.compute_unit_limit", 200000)
	v.SetDefault("transfer.reject_dust", false)

	v.SetDefault("submit.delay", "1500ms")
	v.SetDefault("submit.timeout", "30s")

	v.SetDefault("oneclick.jwt_token", "")
	v.SetDefault("oneclick.base_url", "https://1click.chaindefuser.com")
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if err := c.Merchant.Validate(); err != nil {
		return err
	}

	switch c.Network.Mode {
	case NetworkMock:
	case NetworkRPC:
		if c.Network.RPCUrl == "" {
			return fmt.Errorf("network.rpc_url is required when network.mode is %q", NetworkRPC)
		}
	default:
		return fmt.Errorf("network.mode must be %q or %q, got %q", NetworkMock, NetworkRPC, c.Network.Mode)
	}

	switch c.Quote.Source {
	case QuoteSourceTable:
	case QuoteSourceOneClick:
		if c.OneClick.JWTToken == "" {
			return fmt.Errorf("JWT token not found. Please set SOL_CHECKOUT_ONECLICK_JWT_TOKEN or add oneclick.jwt_token to .sol-checkout.yaml")
		}
	default:
		return fmt.Errorf("quote.source must be %q or %q, got %q", QuoteSourceTable, QuoteSourceOneClick, c.Quote.Source)
	}

	if c.Quote.FeeBps < 0 || c.Quote.FeeBps >= 10000 {
		return fmt.Errorf("quote.fee_bps must be between 0 and 9999")
	}
	if c.Quote.SlippageBps < 0 || c.Quote.SlippageBps >= 10000 {
		return fmt.Errorf("quote.slippage_bps must be between 0 and 9999")
	}
	if c.Submit.Timeout <= 0 {
		return fmt.Errorf("submit.timeout must be positive")
	}
	return nil
}

// Registry builds the token registry, falling back to the built-in list.
func (c *Config) Registry() (*registry.Registry, error) {
	if len(c.Tokens) == 0 {
		return registry.New(registry.DefaultTokens())
	}
	return registry.New(c.Tokens)
}

// EstimatorConfig converts the quote section. Configured rates replace the
// built-in table entirely.
func (c *Config) EstimatorConfig() (quote.Config, error) {
	qc := quote.Config{
		Rates:           quote.DefaultRates(),
		FeeBps:          c.Quote.FeeBps,
		SlippageBps:     c.Quote.SlippageBps,
		ReferenceSymbol: c.Quote.ReferenceSymbol,
		StrictPricing:   c.Quote.StrictPricing,
	}
	if len(c.Quote.Rates) > 0 {
		rates, err := quote.ParseRates(c.Quote.Rates)
		if err != nil {
			return quote.Config{}, fmt.Errorf("invalid quote.rates: %w", err)
		}
		qc.Rates = rates
	}
	return qc, nil
}
