// Package cmd - convert command
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"measureconvert/core/convert"
	"measureconvert/core/currency"
	"measureconvert/core/ratecache"
	"measureconvert/core/types"
	"measureconvert/internal/config"
)

var (
	targetCurrency string
	targetTimezone string
	use12hr        bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <text>",
	Short: "Detect and convert a measurement expression in text",
	Long: `Scan the given text for one measurement expression - a length,
weight, temperature, volume, area, speed, acceleration, flow rate,
torque, pressure, currency amount, or time-of-day-with-zone - and print
its converted form.

Examples:
  measureconvert convert "the box is 10 feet long"
  measureconvert convert "$100 for the ticket" --currency EUR
  measureconvert convert "3:30 PM EST" --timezone PST`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&targetCurrency, "currency", "", "target currency code (default: config's currency)")
	convertCmd.Flags().StringVar(&targetTimezone, "timezone", "", "target timezone, or GMT+N (default: auto, from local offset)")
	convertCmd.Flags().BoolVar(&use12hr, "12hr", true, "render times of day in 12-hour format")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	text := strings.Join(args, " ")

	cfg := config.Get()
	detector, converter, rateCache, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	settings := cfg.DefaultUserSettings()
	if targetCurrency != "" {
		settings.CurrencyUnit = strings.ToUpper(targetCurrency)
	}
	if targetTimezone != "" {
		settings.TimezoneUnit = targetTimezone
	}
	settings.Is12hr = use12hr

	conv := detector.FindConversion(text, settings)
	if conv == nil {
		fmt.Println("no measurement expression found")
		return nil
	}

	rateCache.UpdateActivity(ctx)

	switch {
	case conv.Scalar != nil:
		fmt.Printf("%q -> %s\n", conv.OriginalText, converter.FormatResult(conv.Scalar.ConvertedValue, conv.Scalar.ConvertedUnit))
	case conv.Dimensions3D != nil:
		fmt.Printf("%q -> %s\n", conv.OriginalText, converter.FormatDimensions3D(*conv.Dimensions3D))
	case conv.TimeZone != nil:
		fmt.Printf("%q -> %s\n", conv.OriginalText, convert.FormatTimeZone(conv.TimeZone, settings.Is12hr))
	case conv.CurrencyPending != nil:
		out, cerr := resolveCurrency(ctx, rateCache, conv.CurrencyPending, settings.CurrencyUnit)
		if cerr != nil {
			return fmt.Errorf("resolve currency rate: %w", cerr)
		}
		fmt.Printf("%q -> %s\n", conv.OriginalText, out)
	default:
		fmt.Println("no measurement expression found")
	}
	return nil
}

func resolveCurrency(ctx context.Context, rateCache *ratecache.Service, pending *types.CurrencyPending, preferredCode string) (string, error) {
	to := pending.ToCode
	if preferredCode != "" {
		to = preferredCode
	}
	result, err := rateCache.GetCurrencyRate(ctx, pending.FromCode, to)
	if err != nil {
		return "", err
	}
	amount := pending.Amount * result.Rate
	out := currency.FormatCurrency(amount, to, "en-US")
	if result.Stale {
		out += " (stale rate)"
	}
	return out, nil
}
