// Package genai summarizes interviews with Gemini, either through the Gemini API
// or through Vertex AI.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/at-ishikawa/qasummary/internal/inference"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"

	DefaultModel = "gemini-2.0-flash"
)

// generator is the part of genai.Models the client needs
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	Backend  string
	APIKey   string
	Project  string
	Location string
	Model    string
}

type Client struct {
	models           generator
	model            string
	maxRetryAttempts uint
}

// NewClient creates a client for the configured backend
func NewClient(ctx context.Context, cfg Config, retryAttempts uint) (*Client, error) {
	clientConfig := &genai.ClientConfig{}
	switch cfg.Backend {
	case BackendGemini, "":
		if cfg.APIKey == "" {
			return nil, errors.New("a Gemini API key is required")
		}
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = cfg.APIKey
	case BackendVertex:
		if cfg.Project == "" || cfg.Location == "" {
			return nil, errors.New("a Google Cloud project and location are required for Vertex AI")
		}
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Location
	default:
		return nil, fmt.Errorf("unknown genai backend %q", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient() > %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		models:           client.Models,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}, nil
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

// SummarizeInterview implements the inference.Client interface
func (client *Client) SummarizeInterview(
	ctx context.Context,
	params inference.SummarizeInterviewRequest,
) (inference.SummarizeInterviewResponse, error) {
	return inference.Retry(ctx, client.maxRetryAttempts, func() (inference.SummarizeInterviewResponse, error) {
		return client.summarizeInterview(ctx, params)
	})
}

func (client *Client) summarizeInterview(
	ctx context.Context,
	params inference.SummarizeInterviewRequest,
) (inference.SummarizeInterviewResponse, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(inference.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(params.Temperature),
		ResponseMIMEType:  "application/json",
	}
	if params.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxOutputTokens)
	}

	response, err := client.models.GenerateContent(ctx, client.model, genai.Text(params.Prompt), config)
	if err != nil {
		if code, ok := apiErrorCode(err); ok {
			return inference.SummarizeInterviewResponse{}, fmt.Errorf("response error %d: %w", code, err)
		}
		return inference.SummarizeInterviewResponse{}, fmt.Errorf("models.GenerateContent > %w", err)
	}
	if response == nil || len(response.Candidates) == 0 {
		return inference.SummarizeInterviewResponse{}, errors.New("empty response candidates")
	}

	content := response.Text()
	if content == "" {
		return inference.SummarizeInterviewResponse{}, fmt.Errorf("empty response content: finish reason %s", response.Candidates[0].FinishReason)
	}
	slog.Default().Debug("genai response content",
		"model", client.model,
		"content", content,
	)

	summary, err := inference.DecodeSummary(content)
	if err != nil {
		slog.Default().Error("Failed to parse Gemini response as a summary",
			"model", client.model,
			"error", err)
		return inference.SummarizeInterviewResponse{}, err
	}

	model := response.ModelVersion
	if model == "" {
		model = client.model
	}
	return inference.SummarizeInterviewResponse{Summary: summary, Model: model}, nil
}

// apiErrorCode extracts the HTTP status of a genai API error
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
