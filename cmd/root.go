package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sol-checkout/config"
	"sol-checkout/pkg/app"
	"sol-checkout/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sol-checkout",
	Short: "A Solana checkout for merchants, with mocked settlement",
	Long: `sol-checkout quotes, builds and (mock) submits Solana payments to a
merchant wallet. Customers may pay in any supported token; anything other
than the merchant's preferred token is converted first.

Examples:
  sol-checkout tokens
  sol-checkout quote 1 SOL
  sol-checkout pay 10.5 USDC --wallet <address>
  sol-checkout serve
  sol-checkout dashboard --status completed`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// loadApp reads configuration and wires the application. Verbose mode
// forces debug logging.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return app.New(cfg, logger.New(cfg.Env, level))
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

// startSpinner shows a spinner unless output is JSON. The returned func stops it.
func startSpinner(cmd *cobra.Command, suffix string) func() {
	if jsonOutput(cmd) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}

func banner(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	pad := (width - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	color.Green("%s%s", strings.Repeat(" ", pad), title)
	fmt.Println(strings.Repeat("=", width))
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "\n%s %v\n\n", color.RedString("Error:"), err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", color.GreenString(message))
}
