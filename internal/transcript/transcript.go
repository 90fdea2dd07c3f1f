// Package transcript loads numbered question/answer transcripts.
//
// A transcript is plain UTF-8 text where each entry starts with a numbered
// question line and its answer follows an "Answer:" line:
//
//	Interview notes
//
//	1. Question: What is version control?
//
//	Answer:
//	Version control tracks changes to files over time.
//
// Text before the first question marker, like "Interview notes" above, is
// ignored. A question ends at the first blank line or at the answer marker.
package transcript

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNotFound is returned by Load when the path does not exist.
	ErrNotFound = errors.New("transcript not found")
	// ErrDecode is returned when the input is not valid UTF-8 text.
	ErrDecode = errors.New("transcript is not valid UTF-8")
	// ErrParse is wrapped by every *ParseError.
	ErrParse = errors.New("malformed transcript")
)

// QAEntry is one question with its answer and 1-based position in the transcript.
type QAEntry struct {
	Index    int    `json:"index" yaml:"index"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Transcript is an ordered list of entries.
type Transcript []QAEntry

// Questions returns the question texts in order.
func (t Transcript) Questions() []string {
	questions := make([]string, 0, len(t))
	for _, entry := range t {
		questions = append(questions, entry.Question)
	}
	return questions
}

// Format re-serializes the transcript in the numbered layout Parse accepts.
func (t Transcript) Format() string {
	return Format(t)
}

// ParseError describes where a transcript stopped making sense.
type ParseError struct {
	Line   int
	Index  int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d (entry %d): %s", e.Line, e.Index, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Option changes how a transcript is parsed.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict makes an entry without an "Answer:" marker, or whose printed
// number is not its position, a *ParseError instead of being accepted.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load reads and parses the transcript at path.
func Load(path string, opts ...Option) (Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	text, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("Decode(%s) > %w", path, err)
	}
	return Parse(text, opts...)
}

// Parse splits text into entries. Empty input yields an empty transcript.
func Parse(text string, opts ...Option) (Transcript, error) {
	entries := Transcript{}
	for entry, err := range All(text, opts...) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Format renders entries as numbered question/answer blocks separated by blank lines.
func Format(entries []QAEntry) string {
	var sb strings.Builder
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. Question: %s\n\nAnswer:\n", entry.Index, entry.Question)
		if entry.Answer != "" {
			sb.WriteString(entry.Answer)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Normalize collapses every run of whitespace into a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
