package app

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"

	"sol-checkout/config"
	"sol-checkout/pkg/checkout"
	"sol-checkout/pkg/client"
	"sol-checkout/pkg/logger"
	"sol-checkout/pkg/payment"
	"sol-checkout/pkg/quote"
	"sol-checkout/pkg/registry"
	"sol-checkout/pkg/submit"
	"sol-checkout/pkg/transfer"
	"sol-checkout/pkg/wallet"
)

// App holds the long-lived collaborators shared by every checkout session.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Registry  *registry.Registry
	Quoter    quote.Quoter
	Swapper   quote.Swapper
	Builder   *transfer.Builder
	Submitter submit.Submitter
	Balances  wallet.BalanceSource
	Payments  *payment.Store
	Metrics   *checkout.Metrics
	Prom      *prometheus.Registry
}

// New wires the application from configuration.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("invalid token registry: %w", err)
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		Registry:  reg,
		Swapper:   quote.NewSimulatedSwapper(cfg.Submit.Delay / 2),
		Submitter: submit.NewMockSubmitter(cfg.Submit.Delay),
		Payments:  payment.NewStore(),
		Prom:      prometheus.NewRegistry(),
	}
	a.Metrics = checkout.NewMetrics(a.Prom)

	var prober transfer.AccountProber
	switch cfg.Network.Mode {
	case config.NetworkRPC:
		rpcClient := rpc.New(cfg.Network.RPCUrl)
		prober = transfer.NewRPCProber(rpcClient)
		a.Balances = wallet.NewRPCBalances(rpcClient, wallet.ParseCommitment(cfg.Network.Commitment))
		log.Infof("using Solana RPC at %s", cfg.Network.RPCUrl)
	default:
		prober = transfer.NewMockProber()
		a.Balances = wallet.NewMockBalances()
	}

	a.Builder = transfer.NewBuilder(reg, prober, transfer.Config{
		ComputeUnitLimit: cfg.Transfer.ComputeUnitLimit,
		RejectDust:       cfg.Transfer.RejectDust,
	})

	switch cfg.Quote.Source {
	case config.QuoteSourceOneClick:
		api := client.NewOneClickClient(cfg.OneClick.JWTToken, cfg.OneClick.BaseURL)
		a.Quoter = client.NewRemoteQuoter(api, reg, cfg.Quote.SlippageBps, cfg.Merchant.Address)
		log.Infof("pricing quotes with 1Click at %s", cfg.OneClick.BaseURL)
	default:
		qc, err := cfg.EstimatorConfig()
		if err != nil {
			return nil, err
		}
		a.Quoter = quote.NewEstimator(reg, qc)
	}

	return a, nil
}

// NewCheckout starts a fresh session against the shared collaborators.
func (a *App) NewCheckout(opts ...checkout.Option) (*checkout.Controller, error) {
	return checkout.NewController(checkout.Deps{
		Registry:  a.Registry,
		Quoter:    a.Quoter,
		Swapper:   a.Swapper,
		Builder:   a.Builder,
		Submitter: a.Submitter,
		Balances:  a.Balances,
		Sink:      a.Payments,
		Logger:    a.Log,
		Metrics:   a.Metrics,
	}, checkout.Config{
		Merchant:      a.Config.Merchant,
		Debounce:      a.Config.Quote.Debounce,
		SubmitTimeout: a.Config.Submit.Timeout,
	}, opts...)
}
