// Package report renders summaries as markdown, HTML, or PDF documents.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/at-ishikawa/qasummary/internal/analyzer"
	"github.com/at-ishikawa/qasummary/internal/inference"
	"github.com/at-ishikawa/qasummary/internal/interview"
	"github.com/at-ishikawa/qasummary/internal/transcript"
)

const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

//go:embed templates/report.md.go.tmpl
var fallbackReportTemplate string

const fallbackReportTemplateName = "report.md.go.tmpl"

// Section is one titled part of a summary.
type Section struct {
	Key   string
	Value string
}

// Data is passed to the report template.
type Data struct {
	CandidateName string
	JobTitle      string
	CompanyName   string
	Model         string
	Summary       inference.Summary
	Sections      []Section
	QNA           []transcript.QAEntry
}

// NewData combines an interview with its analysis.
func NewData(iv interview.Interview, result analyzer.Result) Data {
	sections := make([]Section, 0, len(inference.SummaryFields))
	for _, field := range inference.SummaryFields {
		// the candidate name is already the report title
		if field.Key == "name" {
			continue
		}
		sections = append(sections, Section{Key: field.Key, Value: field.Value(result.Summary)})
	}
	return Data{
		CandidateName: iv.CandidateName,
		JobTitle:      iv.JobTitle,
		CompanyName:   iv.CompanyName,
		Model:         result.Model,
		Summary:       result.Summary,
		Sections:      sections,
		QNA:           iv.QNA,
	}
}

var titleCaser = cases.Title(language.English)

func title(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// ParseTemplate reads the report template at templatePath, falling back to the
// embedded one when the path is empty, missing, or does not parse.
func ParseTemplate(templatePath string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"title": title,
		"join":  strings.Join,
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackReportTemplateName).
		Funcs(funcMap).
		Parse(fallbackReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// Markdown renders the report with tmpl.
func Markdown(tmpl *template.Template, data Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return buf.Bytes(), nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts markdown into an HTML fragment.
func HTML(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown.Convert() > %w", err)
	}
	return buf.Bytes(), nil
}

// FileName turns name into a safe file name with the format's extension.
func FileName(name, format string) string {
	name = strings.Join(strings.Fields(strings.ToLower(name)), "-")
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '-', r == '_', r >= '0' && r <= '9', r >= 'a' && r <= 'z':
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "report"
	}
	return name + "." + format
}
