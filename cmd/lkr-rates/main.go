// lkr-rates serves Sri Lankan Rupee exchange rates, conversions and a
// simulated trend as callable tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/damon-houk/lkr-exchange-tools/internal/config"
)

const serverName = "lkr-rates"

// Build-time variables (set via -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   serverName,
	Short: "Sri Lankan Rupee exchange-rate tools",
	Long: `lkr-rates fetches current LKR exchange rates from a bank rates page,
falling back to a public rates API, and exposes them as three tools:
get_exchange_rates, convert_currency and get_currency_trend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		configFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			loaded.Logging.Level = level
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s)\n", serverName, version, commit)
	},
}
