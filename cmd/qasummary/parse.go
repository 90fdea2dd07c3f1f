package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/qasummary/internal/cli"
	"github.com/at-ishikawa/qasummary/internal/transcript"
)

func transcriptOptions(strict bool) []transcript.Option {
	if strict {
		return []transcript.Option{transcript.WithStrict()}
	}
	return nil
}

func newParseCommand() *cobra.Command {
	var (
		strict bool
		output string
	)

	command := &cobra.Command{
		Use:   "parse FILE",
		Short: "Split a transcript into numbered question and answer entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := transcript.Load(args[0], transcriptOptions(strict)...)
			if err != nil {
				return fmt.Errorf("transcript.Load(%s) > %w", args[0], err)
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "no questions found in %s\n", args[0])
			}
			return cli.PrintTranscript(cmd.OutOrStdout(), entries, output)
		},
	}

	command.Flags().BoolVar(&strict, "strict", false, "fail on unanswered or misnumbered questions")
	command.Flags().VarP(newChoiceValue(&output, cli.OutputText, cli.OutputText, cli.OutputJSON, cli.OutputYAML),
		"output", "o", "output format (text, json, yaml)")
	return command
}

func newFormatCommand() *cobra.Command {
	var (
		strict bool
		write  bool
	)

	command := &cobra.Command{
		Use:   "format FILE",
		Short: "Rewrite a transcript in the canonical layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := transcript.Load(args[0], transcriptOptions(strict)...)
			if err != nil {
				return fmt.Errorf("transcript.Load(%s) > %w", args[0], err)
			}

			formatted := entries.Format()
			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), formatted)
				return err
			}
			if err := os.WriteFile(args[0], []byte(formatted), 0644); err != nil {
				return fmt.Errorf("os.WriteFile(%s) > %w", args[0], err)
			}
			return nil
		},
	}

	command.Flags().BoolVar(&strict, "strict", false, "fail on unanswered or misnumbered questions")
	command.Flags().BoolVarP(&write, "write", "w", false, "overwrite the file instead of printing")
	return command
}
