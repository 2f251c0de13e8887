// Package cmd provides the CLI commands for measureconvert.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"measureconvert/internal/config"
	"measureconvert/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "measureconvert",
	Short: "Detect and convert measurement expressions in free text",
	Long: `measureconvert detects length, weight, temperature, volume, area,
speed, acceleration, flow rate, torque, pressure, currency, and
timezone/time-of-day expressions in text and converts each to the
reader's preferred units.

Examples:
  measureconvert convert "the box is 10 feet long"
  measureconvert convert "meeting is at 3:30 PM EST" --timezone "PST"
  measureconvert rate USD EUR
  measureconvert serve --addr :8080`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.measureconvert.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(warmCacheCmd)
	rootCmd.AddCommand(clearCacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".measureconvert.json")
		}
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("measureconvert version 0.1.0")
	},
}
