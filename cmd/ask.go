package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clovis-labs/rhassist/internal/agent"
	"github.com/clovis-labs/rhassist/internal/app"
	"github.com/clovis-labs/rhassist/internal/config"
)

var (
	askProfile string
	askDomaine string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single HR question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().StringVar(&askProfile, "profile", "", "employee profile (CDI, CDD, Intérim, Cadre, Non-Cadre, Stagiaire)")
	askCmd.Flags().StringVar(&askDomaine, "domaine", "", "HR domain filter (Congés, Avantages, Transport, Temps de travail, Paie)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(question string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger, false)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	out, err := a.ChatFlow.Run(ctx, agent.Input{
		Message: question,
		Profile: askProfile,
		Domaine: askDomaine,
	})
	if err != nil {
		return fmt.Errorf("processing question: %w", err)
	}

	fmt.Println(out.Response)
	if !out.SourcesUsed {
		fmt.Println("\n(aucune source du corpus utilisée)")
	}
	return nil
}
