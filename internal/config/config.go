package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGenAI  = "genai"
)

type Config struct {
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Server    ServerConfig    `mapstructure:"server"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Outputs   OutputsConfig   `mapstructure:"outputs"`
}

type AnalyzerConfig struct {
	Provider         string  `mapstructure:"provider" validate:"oneof=openai genai"`
	Temperature      float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens  int     `mapstructure:"max_output_tokens" validate:"gt=0"`
	MaxRetryAttempts uint    `mapstructure:"max_retry_attempts"`
	Concurrency      int     `mapstructure:"concurrency" validate:"gte=1"`
	// Strict rejects transcripts with unanswered or misnumbered questions
	Strict bool `mapstructure:"strict"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

type GenAIConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=gemini vertex"`
	APIKey   string `mapstructure:"api_key"`
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
	Model    string `mapstructure:"model" validate:"required"`
}

type DatabaseConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	Host            string            `mapstructure:"host" validate:"required_if=Enabled true"`
	Port            int               `mapstructure:"port" validate:"required_if=Enabled true"`
	Database        string            `mapstructure:"database" validate:"required_if=Enabled true"`
	Username        string            `mapstructure:"username" validate:"required_if=Enabled true"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Addr       string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr" validate:"required"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type TemplatesConfig struct {
	// MarkdownFile overrides the embedded report template
	MarkdownFile string `mapstructure:"markdown_file" validate:"omitempty,file"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/qasummary")
	}

	v.SetDefault("analyzer.provider", ProviderOpenAI)
	v.SetDefault("analyzer.temperature", 0.3)
	v.SetDefault("analyzer.max_output_tokens", 1000)
	v.SetDefault("analyzer.max_retry_attempts", 3)
	v.SetDefault("analyzer.concurrency", 4)
	v.SetDefault("analyzer.strict", false)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("genai.backend", "gemini")
	v.SetDefault("genai.model", "gemini-2.0-flash")
	v.SetDefault("genai.location", "us-central1")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.ttl_seconds", 86400)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))

	// Secrets are bound to environment variables so they can stay out of config files
	envBindings := map[string]string{
		"openai.api_key":    "OPENAI_API_KEY",
		"openai.model":      "OPENAI_MODEL",
		"genai.api_key":     "GEMINI_API_KEY",
		"genai.project":     "GOOGLE_CLOUD_PROJECT",
		"genai.location":    "GOOGLE_CLOUD_LOCATION",
		"database.password": "DATABASE_PASSWORD",
		"redis.password":    "REDIS_PASSWORD",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	return &cfg, nil
}
