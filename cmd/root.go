// Package cmd implements the rhassist command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/clovis-labs/rhassist/internal/log"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "rhassist",
	Short: "rhassist - assistant RH avec retrieval sur corpus interne",
	Long: `rhassist répond aux questions RH des collaborateurs (congés, paie,
transport, temps de travail, avantages) en s'appuyant sur un corpus CSV
validé et indexé dans une base vectorielle locale.

Sans sous-commande, rhassist démarre le serveur HTTP.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the process logger honoring the --verbose flag and sets
// it as the slog default.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)
	return logger
}
