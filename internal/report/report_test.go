package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/qasummary/internal/analyzer"
	"github.com/at-ishikawa/qasummary/internal/inference"
	"github.com/at-ishikawa/qasummary/internal/interview"
	"github.com/at-ishikawa/qasummary/internal/transcript"
)

func newData() Data {
	iv := interview.New(interview.Metadata{
		CandidateName: "John Doe",
		JobTitle:      "Software Engineer",
		CompanyName:   "Example Corp",
	}, []transcript.QAEntry{
		{Question: "What is version control?", Answer: "Tracking changes with Git."},
	})
	return NewData(iv, analyzer.Result{
		Summary: inference.Summary{
			Name:                    "John Doe",
			OverallImpression:       "Calm and articulate.",
			ChanceOfGettingTheJob:   "High",
			MostRelevantPosition:    "Backend Engineer",
			PersonalCapability:      "Collaborative.",
			PsychologicalCapability: "Handles pressure well.",
			TechnicalCapability:     "Solid fundamentals.",
			FinalThoughts:           "Recommend a system design round.",
		},
		Model: "gpt-4o-mini",
	})
}

func TestNewData(t *testing.T) {
	data := newData()

	require.Len(t, data.Sections, 7)
	assert.Equal(t, Section{Key: "overall_impression", Value: "Calm and articulate."}, data.Sections[0])
	assert.Equal(t, Section{Key: "final_thoughts", Value: "Recommend a system design round."}, data.Sections[6])
	assert.Equal(t, 1, data.QNA[0].Index)
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name             string
		templatePath     func(t *testing.T) string
		wantTemplateName string
		wantContains     []string
	}{
		{
			name: "uses filesystem template when available",
			templatePath: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "custom.md.go.tmpl")
				require.NoError(t, os.WriteFile(path, []byte(`Custom: {{ .CandidateName }} / {{ title "chance_of_getting_the_job" }}`), 0644))
				return path
			},
			wantTemplateName: "custom.md.go.tmpl",
			wantContains:     []string{"Custom: John Doe / Chance Of Getting The Job"},
		},
		{
			name: "uses embedded template when file doesn't exist",
			templatePath: func(t *testing.T) string {
				return "/non/existent/report.md.go.tmpl"
			},
			wantTemplateName: "report.md.go.tmpl",
			wantContains: []string{
				"# John Doe",
				"- **Position:** Software Engineer",
				"- **Model:** gpt-4o-mini",
				"## Overall Impression\n\nCalm and articulate.",
				"## Final Thoughts\n\nRecommend a system design round.",
				"### 1. What is version control?\n\nTracking changes with Git.",
			},
		},
		{
			name: "uses embedded template when path is empty",
			templatePath: func(t *testing.T) string {
				return ""
			},
			wantTemplateName: "report.md.go.tmpl",
			wantContains:     []string{"## Technical Capability"},
		},
		{
			name: "falls back when the file template is broken",
			templatePath: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "broken.md.go.tmpl")
				require.NoError(t, os.WriteFile(path, []byte(`{{ .CandidateName `), 0644))
				return path
			},
			wantTemplateName: "report.md.go.tmpl",
			wantContains:     []string{"# John Doe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.templatePath(t))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTemplateName, tmpl.Name())

			got, err := Markdown(tmpl, newData())
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(got), want)
			}
		})
	}
}

func TestHTML(t *testing.T) {
	got, err := HTML([]byte("# John Doe\n\n| Key | Value |\n| --- | --- |\n| chance | High |\n"))
	require.NoError(t, err)

	assert.Contains(t, string(got), "<h1>John Doe</h1>")
	assert.Contains(t, string(got), "<table>")
	assert.Contains(t, string(got), "<td>High</td>")
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "John Doe", format: FormatMarkdown, want: "john-doe.md"},
		{name: "  Jane   O'Brien ", format: FormatHTML, want: "jane-obrien.html"},
		{name: "interview_2025-01", format: FormatHTML, want: "interview_2025-01.html"},
		{name: "", format: FormatPDF, want: "report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.name, tt.format))
		})
	}
}

func TestWrite(t *testing.T) {
	tmpl, err := ParseTemplate("")
	require.NoError(t, err)

	tests := []struct {
		name         string
		format       string
		wantFile     string
		wantContains string
		wantErr      bool
	}{
		{name: "markdown", format: FormatMarkdown, wantFile: "john-doe.md", wantContains: "## Most Relevant Position"},
		{name: "html", format: FormatHTML, wantFile: "john-doe.html", wantContains: "<h2>Most Relevant Position</h2>"},
		{name: "pdf", format: FormatPDF, wantFile: "john-doe.pdf", wantContains: "%PDF"},
		{name: "unsupported", format: "docx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "reports")

			got, err := Write(dir, "", tmpl, newData(), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.wantFile), got)

			content, err := os.ReadFile(got)
			require.NoError(t, err)
			assert.Contains(t, string(content), tt.wantContains)
		})
	}
}
