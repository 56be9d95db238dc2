package main

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/verandameister/quotedesk/jobs"
)

func newJobsCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage background jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "trigger <name> [args...]",
		Short: fmt.Sprintf("Enqueue a job (%s <quote-id>, %s)", jobs.TaskDocumentRender, jobs.TaskStoreResync),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := jobs.NewTask(args[0], args[1:]...)
			if err != nil {
				return err
			}
			client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: env.cfg.RedisAddr})
			if err != nil {
				return err
			}
			defer client.Close()

			info, err := client.Enqueue(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	})
	return cmd
}
