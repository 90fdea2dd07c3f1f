// Package provider creates the inference client selected in the configuration.
package provider

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/qasummary/internal/config"
	"github.com/at-ishikawa/qasummary/internal/inference"
	"github.com/at-ishikawa/qasummary/internal/inference/genai"
	"github.com/at-ishikawa/qasummary/internal/inference/openai"
)

func New(ctx context.Context, cfg *config.Config) (inference.Client, error) {
	switch cfg.Analyzer.Provider {
	case config.ProviderOpenAI:
		baseURL := cfg.OpenAI.BaseURL
		if baseURL == "" {
			baseURL = openai.DefaultBaseURL
		}
		return openai.NewClientWithBaseURL(baseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.Analyzer.MaxRetryAttempts), nil
	case config.ProviderGenAI:
		client, err := genai.NewClient(ctx, genai.Config{
			Backend:  cfg.GenAI.Backend,
			APIKey:   cfg.GenAI.APIKey,
			Project:  cfg.GenAI.Project,
			Location: cfg.GenAI.Location,
			Model:    cfg.GenAI.Model,
		}, cfg.Analyzer.MaxRetryAttempts)
		if err != nil {
			return nil, fmt.Errorf("genai.NewClient() > %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown inference provider: %s", cfg.Analyzer.Provider)
}

// ModelName returns "provider/model" for the configured client.
func ModelName(cfg *config.Config) string {
	switch cfg.Analyzer.Provider {
	case config.ProviderOpenAI:
		return cfg.Analyzer.Provider + "/" + cfg.OpenAI.Model
	case config.ProviderGenAI:
		return cfg.Analyzer.Provider + "/" + cfg.GenAI.Backend + "/" + cfg.GenAI.Model
	}
	return cfg.Analyzer.Provider
}
