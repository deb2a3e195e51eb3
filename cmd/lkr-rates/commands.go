package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/damon-houk/lkr-exchange-tools/internal/application/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/application/tools"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/db"
)

// runTool builds the app, calls one tool and prints its text result
func runTool(cmd *cobra.Command, name string, args map[string]any) error {
	app, err := newApp(cfg, nil, journalOff)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Dispatcher.Call(cmd.Context(), name, args)
	if err != nil {
		return err
	}

	for _, c := range result.Content {
		fmt.Fprintln(cmd.OutOrStdout(), c.Text)
	}
	return nil
}

var ratesCmd = &cobra.Command{
	Use:   "rates [currency]",
	Short: "Show current exchange rates for one currency or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		currency := service.AllCurrencies
		if len(args) == 1 {
			currency = args[0]
		}
		return runTool(cmd, tools.ToolGetExchangeRates, map[string]any{"currency": currency})
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <amount> <from> <to>",
	Short: "Convert an amount between currencies",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		rateType, _ := cmd.Flags().GetString("rate-type")

		return runTool(cmd, tools.ToolConvertCurrency, map[string]any{
			"amount":        amount,
			"from_currency": args[1],
			"to_currency":   args[2],
			"rate_type":     rateType,
		})
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend <currency>",
	Short: "Show a simulated daily trend for a currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		return runTool(cmd, tools.ToolGetCurrencyTrend, map[string]any{
			"currency": args[0],
			"days":     days,
		})
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalog as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg, nil, journalOff)
		if err != nil {
			return err
		}
		defer app.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"tools": app.Dispatcher.Tools()})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent tool calls from the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 1 || limit > db.MaxRecentLimit {
			return fmt.Errorf("--limit must be between 1 and %d", db.MaxRecentLimit)
		}

		app, err := newApp(cfg, nil, journalRead)
		if err != nil {
			return err
		}
		defer app.Close()

		calls, err := app.Journal.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range calls {
			line := fmt.Sprintf("%s  %-20s %-16s %5dms", c.At.Format("2006-01-02 15:04:05"), c.Tool, c.Status, c.DurationMS)
			if c.Message != "" {
				line += "  " + c.Message
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().String("rate-type", "selling", "rate side to use: buying or selling")
	trendCmd.Flags().Int("days", service.DefaultTrendDays, "number of days to simulate")
	historyCmd.Flags().Int("limit", db.DefaultRecentLimit, "maximum number of calls to show")
}
