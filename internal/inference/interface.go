package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for AI inference operations
type Client interface {
	SummarizeInterview(ctx context.Context, params SummarizeInterviewRequest) (SummarizeInterviewResponse, error)
}

// SummarizeInterviewRequest holds a rendered prompt and sampling parameters
type SummarizeInterviewRequest struct {
	Prompt          string  `json:"prompt"`
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

type SummarizeInterviewResponse struct {
	Summary Summary
	Model   string
}

// Summary is the structured assessment of a candidate
type Summary struct {
	Name                    string `json:"name" yaml:"name"`
	OverallImpression       string `json:"overall_impression" yaml:"overall_impression"`
	ChanceOfGettingTheJob   string `json:"chance_of_getting_the_job" yaml:"chance_of_getting_the_job"`
	MostRelevantPosition    string `json:"most_relevant_position" yaml:"most_relevant_position"`
	PersonalCapability      string `json:"personal_capability" yaml:"personal_capability"`
	PsychologicalCapability string `json:"psychological_capability" yaml:"psychological_capability"`
	TechnicalCapability     string `json:"technical_capability" yaml:"technical_capability"`
	FinalThoughts           string `json:"final_thoughts" yaml:"final_thoughts"`
}

const (
	DefaultMaxRetryAttempts = 3
	DefaultTemperature      = 0.3
	DefaultMaxOutputTokens  = 1000
)

// SystemPrompt is sent as the system instruction by every client
const SystemPrompt = `You are an experienced HR interviewer and technical recruiter.
You read interview transcripts and write fair, evidence-based assessments of candidates.
Respond with a single JSON object and no text outside it.`
