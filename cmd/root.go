// Package cmd wires the CLI entry points: serving the API, sweeping stale
// files, and printing version information.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "swiftconvert",
	Short: "Document conversion and OCR pipeline service",
	Long: "SwiftConvert converts office documents, images and spreadsheets between\n" +
		"formats and extracts text from scans through an OCR pipeline with\n" +
		"classification, language detection and optional translation.",
	SilenceUsage: true,
}

// NewRootCmd returns the assembled root command.
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a YAML config file (env vars override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(versionCmd)
}
