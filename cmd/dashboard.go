package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sol-checkout/pkg/payment"
	"sol-checkout/pkg/server"
)

var (
	serverURL    string
	filterStatus string
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"payments"},
	Short:   "Show the merchant's payments",
	Long: `Show payment statistics and the payment list from a running
checkout server.

Examples:
  sol-checkout dashboard
  sol-checkout dashboard --status failed
  sol-checkout dashboard --server http://checkout.internal:8080`,
	Run: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Checkout server base URL")
	dashboardCmd.Flags().StringVar(&filterStatus, "status", "", "Filter by status (pending, processing, completed, failed)")
}

func runDashboard(cmd *cobra.Command, args []string) {
	var status payment.Status
	if filterStatus != "" {
		st, err := payment.ParseStatus(strings.ToLower(filterStatus))
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		status = st
	}

	c := server.NewClient(serverURL)
	ctx := context.Background()

	stop := startSpinner(cmd, "Loading payments...")
	stats, err := c.Stats(ctx)
	var list []payment.Payment
	if err == nil {
		list, err = c.Payments(ctx, status)
	}
	stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput(cmd) {
		printJSON(map[string]interface{}{"stats": stats, "payments": list})
		return
	}
	displayStats(stats)
	displayPayments(list)
}

func displayStats(st *server.StatsResponse) {
	banner("MERCHANT DASHBOARD", 90)

	fmt.Printf("\n  Total payments:  %d\n", st.Total)
	fmt.Printf("  Completed:       %s\n", color.GreenString("%d", st.ByStatus[payment.StatusCompleted]))
	fmt.Printf("  Failed:          %s\n", color.RedString("%d", st.ByStatus[payment.StatusFailed]))
	fmt.Printf("  Success rate:    %s%%\n", st.SuccessRate)
	for _, sym := range st.VolumeTokens() {
		fmt.Printf("  Volume:          %s %s\n", st.Volume[sym], color.YellowString(sym))
	}
	fmt.Println()
}

func displayPayments(list []payment.Payment) {
	if len(list) == 0 {
		fmt.Println("No payments found.")
		fmt.Println(strings.Repeat("=", 90) + "\n")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAMOUNT\tTOKEN\tSTATUS\tCUSTOMER\tCREATED")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shorten(p.ID, 12),
			p.Amount,
			p.TokenSymbol,
			statusColor(p.Status),
			shorten(p.CustomerAddress, 12),
			p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Println(strings.Repeat("=", 90) + "\n")
}

func statusColor(st payment.Status) string {
	switch st {
	case payment.StatusCompleted:
		return color.GreenString(string(st))
	case payment.StatusFailed:
		return color.RedString(string(st))
	default:
		return color.YellowString(string(st))
	}
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
