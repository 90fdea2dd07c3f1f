package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/qasummary/internal/inference"
	"resty.dev/v3"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, apiKey, model, retryAttempts)
}

// NewClientWithBaseURL creates a client for an OpenAI compatible endpoint
func NewClientWithBaseURL(baseURL, apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
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

func (client *Client) getRequestBody(params inference.SummarizeInterviewRequest) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model: client.model,
		Messages: []Message{
			{Role: RoleSystem, Content: inference.SystemPrompt},
			{Role: RoleUser, Content: params.Prompt},
		},
		Temperature:    params.Temperature,
		MaxTokens:      params.MaxOutputTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}
}

func (client *Client) summarizeInterview(
	ctx context.Context,
	params inference.SummarizeInterviewRequest,
) (inference.SummarizeInterviewResponse, error) {
	requestBody := client.getRequestBody(params)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.SummarizeInterviewResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.SummarizeInterviewResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.SummarizeInterviewResponse{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.SummarizeInterviewResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"request", requestBody,
		"response", responseBody,
	)

	summary, err := inference.DecodeSummary(content)
	if err != nil {
		slog.Default().Error("Failed to parse OpenAI response as a summary",
			"model", responseBody.Model,
			"finishReason", responseBody.Choices[0].FinishReason,
			"error", err)
		return inference.SummarizeInterviewResponse{}, err
	}

	model := responseBody.Model
	if model == "" {
		model = client.model
	}
	return inference.SummarizeInterviewResponse{Summary: summary, Model: model}, nil
}
