// Command quotectl runs maintenance tasks against the quotedesk stores.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/verandameister/quotedesk/internal/app"
)

// cliEnv is filled by the root command before any subcommand runs.
type cliEnv struct {
	cfg    *app.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	env := &cliEnv{}
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Maintenance commands for quotedesk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			env.cfg = cfg
			env.logger = app.NewLogger(cfg)
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				env.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelError}))
			}
			return nil
		},
	}
	root.PersistentFlags().BoolP("quiet", "q", false, "only log errors")

	root.AddCommand(
		newMigrateCmd(env),
		newSeedCatalogCmd(env),
		newNextNumberCmd(env),
		newRenderCmd(env),
		newResyncCmd(env),
		newJobsCmd(env),
	)
	return root
}

// openStores opens the stores described by the loaded config.
func (e *cliEnv) openStores(ctx context.Context) (*app.Stores, error) {
	return app.OpenStores(ctx, e.cfg, e.logger, nil)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "quotectl:", err)
		os.Exit(1)
	}
}
