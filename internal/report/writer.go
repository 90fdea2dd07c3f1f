package report

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/at-ishikawa/qasummary/internal/pdf"
)

// Write renders data in the format and writes it into dir as name, returning the file path.
// An empty name falls back to the candidate name.
func Write(dir, name string, tmpl *template.Template, data Data, format string) (string, error) {
	content, err := Markdown(tmpl, data)
	if err != nil {
		return "", err
	}

	if name == "" {
		name = data.CandidateName
	}
	path := filepath.Join(dir, FileName(name, format))
	switch format {
	case FormatMarkdown:
	case FormatHTML:
		content, err = HTML(content)
		if err != nil {
			return "", err
		}
	case FormatPDF:
		if err := pdf.Write(content, path); err != nil {
			return "", fmt.Errorf("pdf.Write(%s) > %w", path, err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return path, nil
}
