package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clovis-labs/rhassist/internal/app"
	"github.com/clovis-labs/rhassist/internal/config"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the vector index from the CSV corpus",
	Long: `index valide le corpus CSV, calcule les embeddings et persiste
l'index vectoriel sur disque. Sans --force, un index déjà présent est
conservé tel quel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex()
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "rebuild even if a snapshot exists")
	rootCmd.AddCommand(indexCmd)
}

func runIndex() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger, indexForce)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	defer a.Close()

	stats, err := a.Loader.Stats()
	if err != nil {
		return fmt.Errorf("reading corpus stats: %w", err)
	}

	fmt.Printf("Index ready: %d documents (%d rows rejected)\n", a.Index.Count(), stats.Rejected)
	fmt.Printf("Snapshot: %s\n", cfg.IndexPath)
	return nil
}
