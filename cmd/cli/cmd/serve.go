// Package cmd - serve command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"measureconvert/adapters/httpapi"
	"measureconvert/adapters/scheduler"
	"measureconvert/internal/config"
	"measureconvert/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion engine as an HTTP server",
	Long: `Serves POST /v1/convert and GET /v1/rate over HTTP, backed by the
same detector and rate cache the convert/rate subcommands use.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	detector, converter, rateCache, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	if _, err := rateCache.LoadActivity(ctx); err != nil {
		logging.Warn("load activity failed")
	}

	sched := scheduler.NewTickerScheduler(ctx)
	sched.CreateAlarm("refresh-rate-cache", cfg.RateCache.RefreshThreshold, rateCache.RefreshCacheIfNeeded)
	defer sched.Stop()

	server := httpapi.NewServer(detector, converter, rateCache, "0.1.0")
	fmt.Printf("measureconvert HTTP server listening on %s\n", serveAddr)
	return server.ListenAndServe(serveAddr)
}
