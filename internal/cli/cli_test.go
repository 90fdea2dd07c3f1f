package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/qasummary/internal/analyzer"
	"github.com/at-ishikawa/qasummary/internal/inference"
	"github.com/at-ishikawa/qasummary/internal/interview"
	mock_inference "github.com/at-ishikawa/qasummary/internal/mocks/inference"
	"github.com/at-ishikawa/qasummary/internal/report"
	"github.com/at-ishikawa/qasummary/internal/testutil"
	"github.com/at-ishikawa/qasummary/internal/transcript"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	goleak.VerifyTestMain(m)
}

var completeSummary = inference.Summary{
	Name:                    "John Doe",
	OverallImpression:       "Calm and articulate.",
	ChanceOfGettingTheJob:   "High",
	MostRelevantPosition:    "Backend Engineer",
	PersonalCapability:      "Collaborative.",
	PsychologicalCapability: "Handles pressure well.",
	TechnicalCapability:     "Solid fundamentals.",
	FinalThoughts:           "Recommend a system design round.",
}

func TestPrintTranscript(t *testing.T) {
	entries := transcript.Transcript{
		{Index: 1, Question: "What is Git?", Answer: "A version control system."},
		{Index: 2, Question: "Why tests?"},
	}

	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{
			name:   "text",
			output: OutputText,
			want:   "1. What is Git?\nA version control system.\n\n2. Why tests?\n(no answer)\n",
		},
		{
			name:   "json",
			output: OutputJSON,
			want: `[
  {
    "index": 1,
    "question": "What is Git?",
    "answer": "A version control system."
  },
  {
    "index": 2,
    "question": "Why tests?",
    "answer": ""
  }
]
`,
		},
		{
			name:   "yaml",
			output: OutputYAML,
			want: `- index: 1
  question: What is Git?
  answer: A version control system.
- index: 2
  question: Why tests?
  answer: ""
`,
		},
		{
			name:    "unsupported",
			output:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := PrintTranscript(&buf, entries, tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSummarizer_Run(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteTranscript(t, dir, "first.txt",
		transcript.QAEntry{Question: "What is Git?", Answer: "A version control system."},
	)
	second := testutil.WriteTranscript(t, dir, "second.txt",
		transcript.QAEntry{Question: "Why tests?", Answer: "To catch regressions."},
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "other"), 0755))
	sameName := testutil.WriteTranscript(t, filepath.Join(dir, "other"), "first.txt",
		transcript.QAEntry{Question: "What is CI?", Answer: "Continuous integration."},
	)
	broken := filepath.Join(dir, "broken.txt")
	missing := filepath.Join(dir, "missing.txt")
	writeFile(t, broken, "1. Question: What is Git?\n")

	tmpl, err := report.ParseTemplate("")
	require.NoError(t, err)

	tests := []struct {
		name       string
		paths      []string
		strict     bool
		clientErr  error
		wantCalls  int
		wantFiles  []string
		wantErrMsg string
	}{
		{
			name:      "writes a report per file",
			paths:     []string{first, second},
			wantCalls: 2,
			wantFiles: []string{"first.md", "second.md"},
		},
		{
			name:      "inputs with the same base name get distinct reports",
			paths:     []string{first, sameName},
			wantCalls: 2,
			wantFiles: []string{"first-1.md", "first-2.md"},
		},
		{
			name:       "keeps going after a failure",
			paths:      []string{missing, first},
			wantCalls:  1,
			wantFiles:  []string{"", "first.md"},
			wantErrMsg: "1 of 2 interviews failed",
		},
		{
			name:       "strict mode rejects unanswered questions",
			paths:      []string{broken},
			strict:     true,
			wantFiles:  []string{""},
			wantErrMsg: "Answer:",
		},
		{
			name:       "client errors are reported",
			paths:      []string{first},
			clientErr:  errors.New("response error 401: bad key"),
			wantCalls:  1,
			wantFiles:  []string{""},
			wantErrMsg: "response error 401",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_inference.NewMockClient(ctrl)
			var calls atomic.Int32
			client.EXPECT().
				SummarizeInterview(gomock.Any(), gomock.Any()).
				DoAndReturn(func(context.Context, inference.SummarizeInterviewRequest) (inference.SummarizeInterviewResponse, error) {
					calls.Add(1)
					if tt.clientErr != nil {
						return inference.SummarizeInterviewResponse{}, tt.clientErr
					}
					return inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gpt-4o-mini"}, nil
				}).
				AnyTimes()

			outputDir := filepath.Join(t.TempDir(), "reports")
			var stdout bytes.Buffer
			summarizer := &Summarizer{
				Analyzer: analyzer.New(client),
				Template: tmpl,
				Metadata: interview.Metadata{
					CandidateName: "John Doe",
					JobTitle:      "Software Engineer",
					CompanyName:   "Example Corp",
				},
				OutputDir:   outputDir,
				Format:      report.FormatMarkdown,
				Strict:      tt.strict,
				Concurrency: 2,
				Stdout:      &stdout,
			}

			got, err := summarizer.Run(context.Background(), tt.paths)
			assert.Equal(t, int32(tt.wantCalls), calls.Load())
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				require.NoError(t, err)
			}

			require.Len(t, got, len(tt.wantFiles))
			for i, want := range tt.wantFiles {
				if want == "" {
					assert.Empty(t, got[i])
					continue
				}
				assert.Equal(t, filepath.Join(outputDir, want), got[i])
				content, err := os.ReadFile(got[i])
				require.NoError(t, err)
				assert.Contains(t, string(content), "# John Doe")
				assert.Contains(t, stdout.String(), "✓ "+tt.paths[i])
			}
		})
	}
}

func TestReportNames(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "unique names are kept",
			paths: []string{"a/jane.txt", "b/john.md"},
			want:  []string{"jane", "john"},
		},
		{
			name:  "same base name in different directories",
			paths: []string{"a/jane.txt", "b/jane.txt", "c/jane.md"},
			want:  []string{"jane-1", "jane-2", "jane-3"},
		},
		{
			name:  "names that only differ in case",
			paths: []string{"a/Jane.txt", "b/jane.txt"},
			want:  []string{"Jane-1", "jane-2"},
		},
		{
			name:  "suffix skips an existing input name",
			paths: []string{"a/jane.txt", "b/jane.txt", "c/jane-1.txt"},
			want:  []string{"jane-2", "jane-3", "jane-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportNames(tt.paths, report.FormatMarkdown))
		})
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	events := make(chan WatchEvent, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, false, func(event WatchEvent) {
			select {
			case events <- event:
			default:
			}
		})
	}()

	path := filepath.Join(dir, "interview.txt")
	ignored := filepath.Join(dir, "notes.json")
	timeout := time.After(5 * time.Second)

	// the watcher may not be registered yet, so keep writing until an event arrives
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	var got WatchEvent
wait:
	for {
		select {
		case <-ticker.C:
			writeFile(t, ignored, "{}")
			writeFile(t, path, "1. Question: Q1\n\nAnswer:\nA1\n\n2. Question: Q2\n\nAnswer:\nA2\n")
		case event := <-events:
			if event.Err == nil && event.Entries == 2 {
				got = event
				break wait
			}
		case <-timeout:
			t.Fatal("no watch event")
		}
	}

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, path, got.Path)

	var buf bytes.Buffer
	PrintWatchEvent(&buf, got)
	assert.Equal(t, "✓ "+path+": 2 entries\n", buf.String())
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), false, func(WatchEvent) {})
	assert.Error(t, err)
}

func TestPrintWatchEvent_Error(t *testing.T) {
	var buf bytes.Buffer
	PrintWatchEvent(&buf, WatchEvent{Path: "a.txt", Err: transcript.ErrDecode})
	assert.Contains(t, buf.String(), "✗ a.txt:")
}
