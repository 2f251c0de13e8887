// Package cmd - cache maintenance commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"measureconvert/internal/config"
)

var warmCacheCmd = &cobra.Command{
	Use:   "warm-cache",
	Short: "Fetch and cache exchange rates for USD up front",
	Long:  `Populates the rate cache from the primary API (falling back to the secondary one) so the first convert/rate call doesn't pay the network cost.`,
	RunE:  runWarmCache,
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove all cached exchange rates",
	RunE:  runClearCache,
}

func runWarmCache(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()
	_, _, rateCache, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	if err := rateCache.WarmCache(ctx); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}
	fmt.Println("rate cache warmed")
	return nil
}

func runClearCache(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()
	_, _, rateCache, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	if err := rateCache.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Println("rate cache cleared")
	return nil
}
