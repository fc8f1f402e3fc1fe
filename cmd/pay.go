package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sol-checkout/pkg/checkout"
	"sol-checkout/pkg/parser"
	"sol-checkout/pkg/payment"
)

var (
	walletAddr string
	noConfirm  bool
)

var payCmd = &cobra.Command{
	Use:   "pay <amount> <token>",
	Short: "Pay the merchant from a customer wallet",
	Long: `Run a full checkout: fetch the wallet balance, quote the payment,
convert to the merchant's token when needed, then build and submit the
transfer. Settlement is simulated; nothing is broadcast.

Examples:
  sol-checkout pay 10.5 USDC --wallet <address>
  sol-checkout pay 1 SOL --wallet <address> --yes`,
	Args: cobra.MinimumNArgs(2),
	Run:  runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringVar(&walletAddr, "wallet", "", "Customer wallet address (REQUIRED)")
	payCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	_ = payCmd.MarkFlagRequired("wallet")
}

func runPay(cmd *cobra.Command, args []string) {
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
	if req.DestToken != "" {
		printError(fmt.Errorf("payments settle in the merchant's token (%s); drop 'to %s'", a.Config.Merchant.PreferredToken, req.DestToken))
		os.Exit(1)
	}

	asJSON := jsonOutput(cmd)
	var s *spinner.Spinner
	if !asJSON {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	}

	ctrl, err := a.NewCheckout(checkout.OnStateChange(func(_, to checkout.State) {
		if s == nil {
			return
		}
		s.Lock()
		defer s.Unlock()
		switch to {
		case checkout.StateProcessing:
			s.Suffix = " Processing payment..."
		case checkout.StateConfirming:
			s.Suffix = " Waiting for confirmation..."
		}
	}))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := ctrl.ConnectWallet(ctx, walletAddr); err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := ctrl.UpdateInput(req.Amount, req.Token); err != nil {
		printError(fmt.Errorf("%s", checkout.UserMessage(err)))
		os.Exit(1)
	}

	stop := startSpinner(cmd, "Fetching quote...")
	q, err := ctrl.RefreshQuote(ctx)
	stop()
	if err != nil {
		printError(fmt.Errorf("%s", checkout.UserMessage(err)))
		os.Exit(1)
	}

	bal, err := ctrl.RefreshBalance(ctx)
	if err != nil {
		a.Log.Warnf("balance lookup failed: %v", err)
	}

	if !asJSON {
		displayQuote(q)
		if err == nil {
			fmt.Printf("  Wallet balance: %s %s\n", bal, q.InputSymbol)
		}
	}

	if !noConfirm && !asJSON {
		if !confirmPayment(ctrl.Merchant()) {
			fmt.Println("\nPayment cancelled.")
			os.Exit(0)
		}
	}

	if s != nil {
		s.Suffix = " Submitting payment..."
		s.Start()
	}
	p, err := ctrl.Submit(ctx)
	if s != nil {
		s.Stop()
	}

	if err != nil {
		if asJSON && ctrl.LastPayment() != nil {
			printJSON(ctrl.LastPayment())
		}
		a.Log.Debugf("submit err: %v", err)
		printError(fmt.Errorf("%s", checkout.UserMessage(err)))
		os.Exit(1)
	}

	if asJSON {
		printJSON(p)
		return
	}
	displayReceipt(p)
}

func confirmPayment(m payment.Merchant) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\nPay %s? (y/N): ", color.CyanString(m.Name))

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func displayReceipt(p *payment.Payment) {
	banner("PAYMENT COMPLETE", 60)

	fmt.Printf("\n  Payment ID:  %s\n", p.ID)
	fmt.Printf("  Amount:      %s %s\n", p.Amount, color.YellowString(p.TokenSymbol))
	if p.InputToken != "" && p.InputToken != p.Token {
		fmt.Printf("  Paid with:   %s (%s)\n", p.InputAmount, color.HiBlackString(p.InputToken))
	}
	fmt.Printf("  Merchant:    %s\n", p.MerchantID)
	fmt.Printf("  Signature:   %s\n", color.CyanString(p.Signature))
	fmt.Printf("  Time:        %s\n", p.CreatedAt.Format(time.RFC1123))

	fmt.Println("\n" + strings.Repeat("=", 60))
	printSuccess("Thank you for your payment.")
}
