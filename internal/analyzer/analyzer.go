// Package analyzer turns an interview into a candidate summary using an inference client.
package analyzer

import (
	"bytes"
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/at-ishikawa/qasummary/internal/inference"
	"github.com/at-ishikawa/qasummary/internal/interview"
	"github.com/at-ishikawa/qasummary/internal/summary"
)

// ErrEmptyInterview is returned for an interview without any question.
var ErrEmptyInterview = errors.New("interview has no questions")

//go:embed templates/prompt.go.tmpl
var promptTemplate string

var prompt = template.Must(template.New("prompt").Parse(promptTemplate))

type promptData struct {
	JobTitle           string
	CompanyName        string
	CandidateName      string
	FormatInstructions string
	Transcript         string
}

// Result is the outcome of one analysis.
type Result struct {
	Summary inference.Summary `json:"summary" yaml:"summary"`
	Model   string            `json:"model" yaml:"model"`
	// RecordID is set when the summary was persisted
	RecordID string `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	Cached   bool   `json:"cached" yaml:"cached"`
}

type Analyzer struct {
	client inference.Client
	// model identifies the provider and model behind client in cache keys
	model           string
	cache           summary.Cache
	repository      summary.Repository
	temperature     float32
	maxOutputTokens int
}

type Option func(*Analyzer)

func WithCache(cache summary.Cache) Option {
	return func(a *Analyzer) {
		a.cache = cache
	}
}

// WithModel names the provider and model the client talks to, such as "openai/gpt-4o-mini".
func WithModel(model string) Option {
	return func(a *Analyzer) {
		a.model = model
	}
}

func WithRepository(repository summary.Repository) Option {
	return func(a *Analyzer) {
		a.repository = repository
	}
}

func WithTemperature(temperature float32) Option {
	return func(a *Analyzer) {
		a.temperature = temperature
	}
}

func WithMaxOutputTokens(maxOutputTokens int) Option {
	return func(a *Analyzer) {
		a.maxOutputTokens = maxOutputTokens
	}
}

func New(client inference.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:          client,
		temperature:     inference.DefaultTemperature,
		maxOutputTokens: inference.DefaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildPrompt renders the instructions and transcript sent to the model.
func BuildPrompt(iv interview.Interview) (string, error) {
	var buf bytes.Buffer
	if err := prompt.Execute(&buf, promptData{
		JobTitle:           iv.JobTitle,
		CompanyName:        iv.CompanyName,
		CandidateName:      iv.CandidateName,
		FormatInstructions: inference.FormatInstructions(),
		Transcript:         iv.Transcript(),
	}); err != nil {
		return "", fmt.Errorf("prompt.Execute() > %w", err)
	}
	return buf.String(), nil
}

type hashedRequest struct {
	Model string `json:"model"`
	inference.SummarizeInterviewRequest
}

// RequestHash identifies a request to a model for caching; equal requests to the same model hash equally.
func RequestHash(model string, request inference.SummarizeInterviewRequest) string {
	b, _ := json.Marshal(hashedRequest{Model: model, SummarizeInterviewRequest: request})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Analyze summarizes the interview, serving from the cache when possible and
// saving the result when a repository is configured.
func (a *Analyzer) Analyze(ctx context.Context, iv interview.Interview) (Result, error) {
	if len(iv.QNA) == 0 {
		return Result{}, ErrEmptyInterview
	}
	if err := iv.Validate(); err != nil {
		return Result{}, err
	}

	text, err := BuildPrompt(iv)
	if err != nil {
		return Result{}, err
	}
	request := inference.SummarizeInterviewRequest{
		Prompt:          text,
		Temperature:     a.temperature,
		MaxOutputTokens: a.maxOutputTokens,
	}
	requestHash := RequestHash(a.model, request)
	logger := slog.Default().With("candidate", iv.CandidateName, "requestHash", requestHash)

	response, cached := a.lookup(ctx, requestHash)
	if !cached {
		got, err := a.client.SummarizeInterview(ctx, request)
		if err != nil {
			return Result{}, fmt.Errorf("client.SummarizeInterview() > %w", err)
		}
		if missing := got.Summary.MissingFields(); len(missing) > 0 {
			return Result{}, fmt.Errorf("%w: missing %s", inference.ErrIncompleteSummary, strings.Join(missing, ", "))
		}
		response = got

		if a.cache != nil {
			if err := a.cache.Set(ctx, requestHash, response); err != nil {
				logger.Warn("failed to cache a summary", "error", err)
			}
		}
	}
	logger.Debug("interview analyzed", "model", response.Model, "cached", cached)

	result := Result{
		Summary: response.Summary,
		Model:   response.Model,
		Cached:  cached,
	}
	if a.repository == nil {
		return result, nil
	}

	record := summary.Record{
		CandidateName: iv.CandidateName,
		JobTitle:      iv.JobTitle,
		CompanyName:   iv.CompanyName,
		Transcript:    iv.Transcript(),
		RequestHash:   requestHash,
		Summary:       response.Summary,
		Model:         response.Model,
	}
	if err := a.repository.Create(ctx, &record); err != nil {
		return Result{}, fmt.Errorf("repository.Create() > %w", err)
	}
	result.RecordID = record.ID
	return result, nil
}

func (a *Analyzer) lookup(ctx context.Context, requestHash string) (inference.SummarizeInterviewResponse, bool) {
	if a.cache == nil {
		return inference.SummarizeInterviewResponse{}, false
	}
	response, err := a.cache.Get(ctx, requestHash)
	if err != nil {
		slog.Default().Warn("failed to read the summary cache", "requestHash", requestHash, "error", err)
		return inference.SummarizeInterviewResponse{}, false
	}
	if response == nil {
		return inference.SummarizeInterviewResponse{}, false
	}
	return *response, true
}
