package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sol-checkout/pkg/client"
	"sol-checkout/pkg/registry"
)

var (
	filterSymbol string
	remoteTokens bool
)

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "List the tokens customers can pay with",
	Long: `List the tokens in the checkout registry.

With --remote, list the Solana tokens the 1Click API can route instead.

Examples:
  sol-checkout tokens
  sol-checkout tokens --symbol US
  sol-checkout tokens --remote`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
	tokensCmd.Flags().BoolVar(&remoteTokens, "remote", false, "List Solana tokens from the 1Click API")
}

func runListTokens(cmd *cobra.Command, args []string) {
	a, err := loadApp(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if remoteTokens {
		api := client.NewOneClickClient(a.Config.OneClick.JWTToken, a.Config.OneClick.BaseURL)
		stop := startSpinner(cmd, "Fetching supported tokens...")
		tokens, err := api.SolanaTokens(context.Background())
		stop()
		if err != nil {
			printError(err)
			os.Exit(1)
		}

		var filtered []oneclick.TokenResponse
		for _, t := range tokens {
			if matchesSymbol(t.GetSymbol()) {
				filtered = append(filtered, t)
			}
		}
		if jsonOutput(cmd) {
			printJSON(filtered)
			return
		}
		displayRemoteTokens(filtered)
		return
	}

	var filtered []registry.TokenInfo
	for _, t := range a.Registry.All() {
		if matchesSymbol(t.Symbol) {
			filtered = append(filtered, t)
		}
	}
	if jsonOutput(cmd) {
		printJSON(filtered)
		return
	}
	displayTokens(filtered, a.Config.Merchant.PreferredToken)
}

func matchesSymbol(symbol string) bool {
	return filterSymbol == "" || strings.Contains(strings.ToUpper(symbol), strings.ToUpper(filterSymbol))
}

func displayTokens(tokens []registry.TokenInfo, preferred string) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	banner("SUPPORTED TOKENS", 90)
	for _, t := range tokens {
		marker := " "
		if strings.EqualFold(t.Symbol, preferred) || t.Mint == preferred {
			marker = color.GreenString("*")
		}
		fmt.Printf("%s %-10s  %-12s %2d decimals  %s\n",
			marker,
			color.YellowString(t.Symbol),
			t.Name,
			t.Decimals,
			color.HiBlackString(t.Mint))
	}
	fmt.Println(strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens (* = merchant settlement token)\n\n", len(tokens))
}

func displayRemoteTokens(tokens []oneclick.TokenResponse) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	banner("1CLICK SOLANA TOKENS", 90)
	for _, t := range tokens {
		address := t.GetContractAddress()
		if len(address) > 48 {
			address = address[:45] + "..."
		}
		fmt.Printf("  %-10s  %2.0f decimals  $%-10.4f %s\n",
			color.YellowString(t.GetSymbol()),
			t.GetDecimals(),
			t.GetPrice(),
			color.HiBlackString(address))
	}
	fmt.Println(strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens\n\n", len(tokens))
}
