package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blattlab/blatt/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "blatt",
	Short: "Reading-order and entity reconstruction for OCR'd directory pages",
	Long: `Blatt reconstructs the reading order and logical record structure of
two-column directory pages from PAGE XML OCR output, then extracts
structured key-value entities from the reconstructed entries.

The pipeline: column ordering, vertical-gap segmentation with boundary
corrections, cross-page merging, hyphenation repair and attribute
extraction. Thresholds and exception lists are corpus-specific and come
from a YAML config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./blatt.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "debug logging",
	)

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}
