package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sol-checkout/pkg/checkout"
	"sol-checkout/pkg/parser"
	"sol-checkout/pkg/quote"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <token> [to <token>]",
	Short: "Estimate what a payment settles to",
	Long: `Estimate how much of the settlement token a payment produces.

The destination defaults to the merchant's preferred token.

Examples:
  sol-checkout quote 1 SOL
  sol-checkout quote 250000 BONK to USDT`,
	Args: cobra.MinimumNArgs(2),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	req, err := parser.ParseArgs(args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	a, err := loadApp(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	dest := req.DestToken
	if dest == "" {
		dest = a.Config.Merchant.PreferredToken
	}
	in, err := a.Registry.Resolve(req.Token)
	if err != nil {
		printError(fmt.Errorf("%s: %w", req.Token, err))
		os.Exit(1)
	}
	out, err := a.Registry.Resolve(dest)
	if err != nil {
		printError(fmt.Errorf("%s: %w", dest, err))
		os.Exit(1)
	}

	stop := startSpinner(cmd, "Fetching quote...")
	q, err := a.Quoter.Quote(context.Background(), in.Mint, out.Mint, req.Amount)
	stop()
	if err != nil {
		a.Log.Debugf("quote err: %v", err)
		printError(fmt.Errorf("%s", checkout.UserMessage(err)))
		os.Exit(1)
	}

	if jsonOutput(cmd) {
		printJSON(q)
		return
	}
	displayQuote(q)
}

func displayQuote(q *quote.Quote) {
	banner("PAYMENT QUOTE", 60)

	fmt.Printf("\n  You pay:           %s %s\n", q.InAmount, color.YellowString(q.InputSymbol))
	fmt.Printf("  Merchant receives: ~%s %s\n", q.OutAmount, color.YellowString(q.OutputSymbol))
	if q.NeedsSwap() {
		fmt.Printf("  Minimum received:  %s %s (%d bps slippage)\n", q.MinOutAmount, q.OutputSymbol, q.SlippageBps)
		fmt.Printf("  Rate:              1 %s = %s %s\n", q.InputSymbol, q.Rate, q.OutputSymbol)
		fmt.Printf("  Fee:               %s %s (%d bps)\n", q.FeeAmount, q.InputSymbol, q.FeeBps)
		fmt.Printf("  Price impact:      %s%%\n", q.PriceImpactPct)
	}
	fmt.Printf("  Route:             %s\n", q.Route)

	for _, w := range q.Warnings {
		color.Yellow("\n  Warning: %s", w)
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
