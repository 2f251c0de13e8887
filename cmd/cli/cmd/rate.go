// Package cmd - rate command
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"measureconvert/internal/config"
)

var rateCmd = &cobra.Command{
	Use:   "rate <from> <to>",
	Short: "Print the current exchange rate between two currencies",
	Long: `Query the rate cache service directly for a currency pair,
bypassing text detection. Exercises the same cache/fetch/fallback path
convert uses for currency amounts.

Examples:
  measureconvert rate USD EUR
  measureconvert rate usd jpy`,
	Args: cobra.ExactArgs(2),
	RunE: runRate,
}

func runRate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1])

	cfg := config.Get()
	_, _, rateCache, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	rateCache.UpdateActivity(ctx)

	result, err := rateCache.GetCurrencyRate(ctx, from, to)
	if err != nil {
		return fmt.Errorf("fetch rate: %w", err)
	}

	flags := ""
	switch {
	case result.Stale && result.UsedFallback:
		flags = " (stale, fallback API)"
	case result.Stale:
		flags = " (stale)"
	case result.FromCache:
		flags = " (cached)"
	case result.UsedFallback:
		flags = " (fallback API)"
	}
	fmt.Printf("1 %s = %.6f %s%s\n", from, result.Rate, to, flags)
	return nil
}
