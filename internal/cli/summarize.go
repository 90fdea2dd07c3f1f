package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/qasummary/internal/analyzer"
	"github.com/at-ishikawa/qasummary/internal/interview"
	"github.com/at-ishikawa/qasummary/internal/report"
	"github.com/at-ishikawa/qasummary/internal/transcript"
)

// Summarizer analyzes interview files and writes a report for each of them.
type Summarizer struct {
	Analyzer    *analyzer.Analyzer
	Template    *template.Template
	Metadata    interview.Metadata
	OutputDir   string
	Format      string
	Strict      bool
	Concurrency int
	Stdout      io.Writer
}

// Run summarizes every file and returns report paths in the order of paths.
// It keeps going after a failure and returns the failures joined.
func (s *Summarizer) Run(ctx context.Context, paths []string) ([]string, error) {
	var opts []transcript.Option
	if s.Strict {
		opts = append(opts, transcript.WithStrict())
	}

	names := reportNames(paths, s.Format)
	reports := make([]string, len(paths))
	var (
		mu   sync.Mutex
		errs []error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		eg.SetLimit(s.Concurrency)
	}
	for i, path := range paths {
		eg.Go(func() error {
			reportPath, err := s.summarize(egCtx, path, names[i], opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Default().Error("failed to summarize", "path", path, "error", err)
				_, _ = color.New(color.FgRed).Fprintf(s.Stdout, "✗ %s: %v\n", path, err)
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				return nil
			}
			reports[i] = reportPath
			_, _ = color.New(color.FgGreen).Fprintf(s.Stdout, "✓ %s -> %s\n", path, reportPath)
			return nil
		})
	}
	_ = eg.Wait()

	if len(errs) > 0 {
		return reports, fmt.Errorf("%d of %d interviews failed: %w", len(errs), len(paths), errors.Join(errs...))
	}
	return reports, nil
}

func (s *Summarizer) summarize(ctx context.Context, path, name string, opts []transcript.Option) (string, error) {
	iv, err := interview.LoadFile(path, s.Metadata, opts...)
	if err != nil {
		return "", fmt.Errorf("interview.LoadFile() > %w", err)
	}

	result, err := s.Analyzer.Analyze(ctx, iv)
	if err != nil {
		return "", fmt.Errorf("analyzer.Analyze() > %w", err)
	}

	reportPath, err := report.Write(s.OutputDir, name, s.Template, report.NewData(iv, result), s.Format)
	if err != nil {
		return "", fmt.Errorf("report.Write() > %w", err)
	}
	return reportPath, nil
}

// reportNames names each report after its input file. Inputs whose report
// files would collide get a numeric suffix, in the order of paths.
func reportNames(paths []string, format string) []string {
	baseNames := make([]string, len(paths))
	counts := make(map[string]int, len(paths))
	for i, path := range paths {
		baseNames[i] = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		counts[report.FileName(baseNames[i], format)]++
	}

	used := make(map[string]bool, len(paths))
	names := make([]string, len(paths))
	for i, name := range baseNames {
		if counts[report.FileName(name, format)] > 1 {
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s-%d", name, n)
				fileName := report.FileName(candidate, format)
				if !used[fileName] && counts[fileName] == 0 {
					name = candidate
					break
				}
			}
		}
		used[report.FileName(name, format)] = true
		names[i] = name
	}
	return names
}
