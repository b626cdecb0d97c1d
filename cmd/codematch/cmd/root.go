package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solatis/codematch/internal/core/logging"
)

// Version is the codematch release.
const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "codematch",
	Short: "Barcode template matching and embedding",
	Long: `codematch classifies scanned barcodes against retailer code templates,
extracts embedded weights and prices, and renders codes with new embedded values.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(logLevel, logFormat, cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, console)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
