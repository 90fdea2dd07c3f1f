package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/qasummary/internal/cli"
)

func newWatchCommand() *cobra.Command {
	var strict bool

	command := &cobra.Command{
		Use:   "watch DIR",
		Short: "Re-parse transcripts in a directory whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return cli.Watch(ctx, args[0], strict, func(event cli.WatchEvent) {
				cli.PrintWatchEvent(out, event)
			})
		},
	}

	command.Flags().BoolVar(&strict, "strict", false, "fail on unanswered or misnumbered questions")
	return command
}
