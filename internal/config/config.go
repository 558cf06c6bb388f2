// Package config loads configuration from environment variables with an
// optional YAML file overlay.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM / embedding backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Embeddings
	EmbedProvider  Provider `yaml:"embed_provider"`
	EmbedModel     string   `yaml:"embed_model"`
	EmbedDimension int      `yaml:"embed_dimension"`

	// Chat completion. LLMModels is an ordered candidate list: the first
	// entry is the primary model, the rest are fallbacks.
	LLMProvider    Provider      `yaml:"llm_provider"`
	LLMModels      []string      `yaml:"llm_models"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	TurnBudget     time.Duration `yaml:"turn_budget"`

	// Provider credentials
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	OllamaHost      string `yaml:"ollama_host"`
	AWSRegion       string `yaml:"aws_region"`

	// WhatsApp Business API
	WhatsAppToken       string   `yaml:"-"`
	WhatsAppPhoneID     string   `yaml:"whatsapp_phone_id"`
	WhatsAppVerifyToken string   `yaml:"-"`
	AgentNumbers        []string `yaml:"agent_numbers"`

	// Server
	ServerPort string `yaml:"server_port"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables. If CHATCORE_CONFIG
// points at a YAML file, its values are applied first and environment
// variables override them.
func Load() (Config, error) {
	cfg := Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "chatcore",
		SurrealDBDatabase:  "content",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		EmbedProvider:  ProviderOllama,
		EmbedModel:     "nomic-embed-text",
		EmbedDimension: 768,

		LLMProvider:    ProviderOpenAI,
		LLMModels:      []string{"gpt-4o-mini", "gpt-3.5-turbo"},
		AttemptTimeout: 25 * time.Second,
		TurnBudget:     60 * time.Second,

		OllamaHost: "http://localhost:11434",
		ServerPort: "8090",
		LogLevel:   slog.LevelInfo,
	}

	if path := os.Getenv("CHATCORE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if cfg.EmbedDimension <= 0 {
		return Config{}, fmt.Errorf("embed dimension must be positive, got %d", cfg.EmbedDimension)
	}
	if len(cfg.LLMModels) == 0 {
		return Config{}, fmt.Errorf("at least one LLM model required")
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.SurrealDBURL, "SURREALDB_URL")
	setEnv(&cfg.SurrealDBNamespace, "SURREALDB_NAMESPACE")
	setEnv(&cfg.SurrealDBDatabase, "SURREALDB_DATABASE")
	setEnv(&cfg.SurrealDBUser, "SURREALDB_USER")
	setEnv(&cfg.SurrealDBPass, "SURREALDB_PASS")
	setEnv(&cfg.SurrealDBAuthLevel, "SURREALDB_AUTH_LEVEL")

	if v := os.Getenv("CHATCORE_EMBED_PROVIDER"); v != "" {
		cfg.EmbedProvider = Provider(v)
	}
	setEnv(&cfg.EmbedModel, "CHATCORE_EMBED_MODEL")
	if v := os.Getenv("CHATCORE_EMBED_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EmbedDimension = n
		}
	}

	if v := os.Getenv("CHATCORE_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = Provider(v)
	}
	if v := os.Getenv("CHATCORE_LLM_MODELS"); v != "" {
		cfg.LLMModels = splitList(v)
	}
	if v := os.Getenv("CHATCORE_ATTEMPT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AttemptTimeout = d
		}
	}
	if v := os.Getenv("CHATCORE_TURN_BUDGET"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TurnBudget = d
		}
	}

	setEnv(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setEnv(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setEnv(&cfg.OllamaHost, "OLLAMA_HOST")
	setEnv(&cfg.AWSRegion, "AWS_REGION")

	setEnv(&cfg.WhatsAppToken, "WHATSAPP_ACCESS_TOKEN")
	setEnv(&cfg.WhatsAppPhoneID, "WHATSAPP_PHONE_NUMBER_ID")
	setEnv(&cfg.WhatsAppVerifyToken, "WHATSAPP_VERIFY_TOKEN")
	if v := os.Getenv("CHATCORE_AGENT_NUMBERS"); v != "" {
		cfg.AgentNumbers = splitList(v)
	}

	setEnv(&cfg.ServerPort, "CHATCORE_SERVER_PORT")
	setEnv(&cfg.LogFile, "CHATCORE_LOG_FILE")
	if v := os.Getenv("CHATCORE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
