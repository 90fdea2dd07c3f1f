package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/qasummary/internal/analyzer"
	"github.com/at-ishikawa/qasummary/internal/cli"
	"github.com/at-ishikawa/qasummary/internal/interview"
	"github.com/at-ishikawa/qasummary/internal/report"
)

func newSummarizeCommand() *cobra.Command {
	var (
		metadata  interview.Metadata
		format    string
		outputDir string
	)

	command := &cobra.Command{
		Use:   "summarize FILE...",
		Short: "Summarize interviews and write a report for each of them",
		Long: `Summarize interviews and write a report for each of them.

A FILE is either a YAML interview with candidate_name, job_title, company_name,
and interview_qna, or a plain transcript whose metadata comes from the flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.Outputs.ReportDirectory
			}

			tmpl, err := report.ParseTemplate(cfg.Templates.MarkdownFile)
			if err != nil {
				return fmt.Errorf("report.ParseTemplate() > %w", err)
			}

			ctx := cmd.Context()
			components, err := analyzer.Setup(ctx, cfg)
			if err != nil {
				return fmt.Errorf("analyzer.Setup() > %w", err)
			}
			defer components.Close()

			summarizer := &cli.Summarizer{
				Analyzer:    components.Analyzer,
				Template:    tmpl,
				Metadata:    metadata,
				OutputDir:   outputDir,
				Format:      format,
				Strict:      cfg.Analyzer.Strict,
				Concurrency: cfg.Analyzer.Concurrency,
				Stdout:      cmd.OutOrStdout(),
			}
			_, err = summarizer.Run(ctx, args)
			return err
		},
	}

	command.Flags().StringVar(&metadata.CandidateName, "candidate", "", "candidate name")
	command.Flags().StringVar(&metadata.JobTitle, "job", "", "job title of the position")
	command.Flags().StringVar(&metadata.CompanyName, "company", "", "company name")
	command.Flags().VarP(newChoiceValue(&format, report.FormatMarkdown, report.FormatMarkdown, report.FormatHTML, report.FormatPDF),
		"format", "f", "report format (md, html, pdf)")
	command.Flags().StringVar(&outputDir, "output-dir", "", "directory for reports (default is outputs.report_directory)")
	return command
}
