package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SurrealDBURL != "ws://localhost:8000/rpc" {
		t.Errorf("SurrealDBURL = %q, want default", cfg.SurrealDBURL)
	}
	if cfg.EmbedDimension != 768 {
		t.Errorf("EmbedDimension = %d, want 768", cfg.EmbedDimension)
	}
	if len(cfg.LLMModels) != 2 {
		t.Errorf("LLMModels = %v, want primary + fallback", cfg.LLMModels)
	}
	if cfg.TurnBudget != 60*time.Second {
		t.Errorf("TurnBudget = %v, want 60s", cfg.TurnBudget)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHATCORE_LLM_MODELS", "claude-sonnet-4, claude-haiku-3 ,")
	t.Setenv("CHATCORE_LLM_PROVIDER", "anthropic")
	t.Setenv("CHATCORE_AGENT_NUMBERS", "4367712345678")
	t.Setenv("CHATCORE_ATTEMPT_TIMEOUT", "10s")
	t.Setenv("CHATCORE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LLMProvider != ProviderAnthropic {
		t.Errorf("LLMProvider = %q, want anthropic", cfg.LLMProvider)
	}
	want := []string{"claude-sonnet-4", "claude-haiku-3"}
	if len(cfg.LLMModels) != len(want) {
		t.Fatalf("LLMModels = %v, want %v", cfg.LLMModels, want)
	}
	for i, m := range want {
		if cfg.LLMModels[i] != m {
			t.Errorf("LLMModels[%d] = %q, want %q", i, cfg.LLMModels[i], m)
		}
	}
	if len(cfg.AgentNumbers) != 1 || cfg.AgentNumbers[0] != "4367712345678" {
		t.Errorf("AgentNumbers = %v", cfg.AgentNumbers)
	}
	if cfg.AttemptTimeout != 10*time.Second {
		t.Errorf("AttemptTimeout = %v, want 10s", cfg.AttemptTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatcore.yaml")
	content := `
surrealdb_namespace: staging
embed_dimension: 384
llm_models:
  - gpt-4o
server_port: "9000"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHATCORE_CONFIG", path)
	// Env still wins over the file.
	t.Setenv("CHATCORE_SERVER_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SurrealDBNamespace != "staging" {
		t.Errorf("SurrealDBNamespace = %q, want staging", cfg.SurrealDBNamespace)
	}
	if cfg.EmbedDimension != 384 {
		t.Errorf("EmbedDimension = %d, want 384", cfg.EmbedDimension)
	}
	if cfg.ServerPort != "9100" {
		t.Errorf("ServerPort = %q, want env override 9100", cfg.ServerPort)
	}
}

func TestLoadRejectsEmptyModelList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatcore.yaml")
	if err := os.WriteFile(path, []byte("llm_models: []\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHATCORE_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("expected error for empty model list")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
