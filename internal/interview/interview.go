// Package interview describes an interview to be summarized: who was interviewed,
// for which position, and the question/answer transcript.
package interview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/qasummary/internal/transcript"
)

// ErrInvalid is wrapped by Validate errors.
var ErrInvalid = errors.New("invalid interview")

// Interview is the input of a summary.
type Interview struct {
	CandidateName string               `json:"candidate_name" yaml:"candidate_name" validate:"required"`
	JobTitle      string               `json:"job_title" yaml:"job_title" validate:"required"`
	CompanyName   string               `json:"company_name" yaml:"company_name" validate:"required"`
	QNA           []transcript.QAEntry `json:"interview_qna" yaml:"interview_qna" validate:"required,min=1,dive"`
}

// Metadata fills in interview fields that a bare transcript file cannot carry.
type Metadata struct {
	CandidateName string
	JobTitle      string
	CompanyName   string
}

// apply copies the non-empty metadata fields over the interview's.
func (m Metadata) apply(iv *Interview) {
	if m.CandidateName != "" {
		iv.CandidateName = m.CandidateName
	}
	if m.JobTitle != "" {
		iv.JobTitle = m.JobTitle
	}
	if m.CompanyName != "" {
		iv.CompanyName = m.CompanyName
	}
}

// LoadFile reads an interview from a YAML file, or from a plain transcript
// for .txt and .md files. Non-empty metadata overrides what the file says.
func LoadFile(path string, metadata Metadata, opts ...transcript.Option) (Interview, error) {
	var iv Interview

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Interview{}, fmt.Errorf("%w: %s", transcript.ErrNotFound, path)
			}
			return Interview{}, fmt.Errorf("os.Open(%s) > %w", path, err)
		}
		defer func() {
			_ = file.Close()
		}()

		if err := yaml.NewDecoder(file).Decode(&iv); err != nil {
			return Interview{}, fmt.Errorf("yaml.NewDecoder().Decode(%s) > %w", path, err)
		}
		iv.QNA = reindex(iv.QNA)
	default:
		entries, err := transcript.Load(path, opts...)
		if err != nil {
			return Interview{}, err
		}
		iv.QNA = entries
	}

	metadata.apply(&iv)
	return iv, nil
}

// New builds an interview from question/answer pairs in order.
func New(metadata Metadata, qna []transcript.QAEntry) Interview {
	iv := Interview{QNA: reindex(qna)}
	metadata.apply(&iv)
	return iv
}

// reindex numbers entries from 1 in their current order.
func reindex(entries []transcript.QAEntry) []transcript.QAEntry {
	result := make([]transcript.QAEntry, len(entries))
	for i, entry := range entries {
		entry.Index = i + 1
		result[i] = entry
	}
	return result
}

// Transcript renders the question/answer pairs in the numbered transcript layout.
func (iv Interview) Transcript() string {
	return transcript.Format(iv.QNA)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		entry := sl.Current().Interface().(transcript.QAEntry)
		if strings.TrimSpace(entry.Question) == "" {
			sl.ReportError(entry.Question, "question", "Question", "notblank", "")
		}
	}, transcript.QAEntry{})
	return v
}

// Validate reports missing metadata or an empty transcript.
func (iv Interview) Validate() error {
	if err := validate.Struct(iv); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("%s failed on %s", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(messages, ", "))
		}
		return fmt.Errorf("validate.Struct() > %w", err)
	}
	return nil
}
