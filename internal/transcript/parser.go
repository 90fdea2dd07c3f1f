package transcript

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	questionPattern = regexp.MustCompile(`^\s*(\d+)\.\s*Question:\s*(.*)$`)
	answerPattern   = regexp.MustCompile(`^\s*Answer:\s*(.*)$`)
)

// pending is the entry being assembled while lines are consumed.
type pending struct {
	index     int
	line      int
	question  []string
	answer    []string
	hasAnswer bool

	// questionDone is set by the first blank line after question text
	questionDone bool
}

func (p *pending) addQuestion(line string) {
	if line = strings.TrimSpace(line); line != "" {
		p.question = append(p.question, line)
	}
}

func (p *pending) entry() QAEntry {
	return QAEntry{
		Index:    p.index,
		Question: strings.Join(p.question, " "),
		Answer:   strings.TrimSpace(strings.Join(p.answer, "\n")),
	}
}

// All returns a lazy sequence of the entries in text.
// The sequence ends after the first non-nil error.
func All(text string, opts ...Option) iter.Seq2[QAEntry, error] {
	o := newOptions(opts)

	return func(yield func(QAEntry, error) bool) {
		if !utf8.ValidString(text) {
			yield(QAEntry{}, ErrDecode)
			return
		}

		var (
			current *pending
			index   int
			lineNo  int
		)

		// flush reports whether iteration should continue.
		flush := func() bool {
			if current == nil {
				return true
			}
			if o.strict {
				if len(current.question) == 0 {
					yield(QAEntry{}, &ParseError{Line: current.line, Index: current.index, Reason: "empty question"})
					return false
				}
				if !current.hasAnswer {
					yield(QAEntry{}, &ParseError{Line: current.line, Index: current.index, Reason: `missing "Answer:" marker`})
					return false
				}
			}
			return yield(current.entry(), nil)
		}

		for line := range strings.Lines(text) {
			lineNo++
			line = strings.TrimRight(line, "\r\n")

			if m := questionPattern.FindStringSubmatch(line); m != nil {
				if !flush() {
					return
				}
				index++
				if o.strict {
					if number, err := strconv.Atoi(m[1]); err != nil || number != index {
						yield(QAEntry{}, &ParseError{
							Line:   lineNo,
							Index:  index,
							Reason: fmt.Sprintf("question numbered %s, want %d", m[1], index),
						})
						return
					}
				}
				current = &pending{index: index, line: lineNo}
				current.addQuestion(m[2])
				continue
			}

			if current == nil {
				// preamble
				continue
			}
			if !current.hasAnswer {
				if m := answerPattern.FindStringSubmatch(line); m != nil {
					current.hasAnswer = true
					current.answer = append(current.answer, m[1])
					continue
				}
				switch {
				case current.questionDone:
					// unmarked answer text
					current.answer = append(current.answer, line)
				case strings.TrimSpace(line) == "":
					current.questionDone = len(current.question) > 0
				default:
					current.addQuestion(line)
				}
				continue
			}
			current.answer = append(current.answer, line)
		}
		flush()
	}
}
