package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/qasummary/internal/transcript"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// PrintTranscript writes entries to w in the output format.
func PrintTranscript(w io.Writer, entries transcript.Transcript, output string) error {
	switch output {
	case OutputText:
		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		for i, entry := range entries {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = bold.Fprintf(w, "%d. %s\n", entry.Index, entry.Question)
			if entry.Answer == "" {
				_, _ = faint.Fprintln(w, "(no answer)")
				continue
			}
			_, _ = fmt.Fprintln(w, entry.Answer)
		}
		return nil
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(entries); err != nil {
			return fmt.Errorf("encoder.Encode() > %w", err)
		}
		return nil
	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(entries); err != nil {
			return fmt.Errorf("encoder.Encode() > %w", err)
		}
		return encoder.Close()
	}
	return fmt.Errorf("unsupported output format: %s", output)
}
