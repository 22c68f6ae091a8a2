package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DBPath != "db.sqlite" {
		t.Fatalf("unexpected DB path: %q", cfg.DBPath)
	}
	if cfg.AIProvider != ProviderOpenAI {
		t.Fatalf("unexpected provider: %q", cfg.AIProvider)
	}
	if cfg.City != "Nashville, Tennessee" {
		t.Fatalf("unexpected city: %q", cfg.City)
	}
	if cfg.AITimeout != 90*time.Second {
		t.Fatalf("unexpected AI timeout: %v", cfg.AITimeout)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session TTL: %v", cfg.SessionTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.Model() != defaultOpenAIModel {
		t.Fatalf("unexpected model: %q", cfg.Model())
	}
}

func TestLoadMissingCredentialIsFatal(t *testing.T) {
	t.Setenv("TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "  ")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error when OPENAI_API_KEY is blank")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected error to name the variable, got %v", err)
	}
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when TOKEN is empty")
	}
}

func TestLoadOllamaDoesNotNeedKey(t *testing.T) {
	t.Setenv("TOKEN", "123:abc")
	t.Setenv("AI_PROVIDER", " Ollama ")
	t.Setenv("ALLOWED_USERS", "1,2")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AIProvider != ProviderOllama {
		t.Fatalf("expected normalized provider, got %q", cfg.AIProvider)
	}
	if cfg.Model() != defaultOllamaModel {
		t.Fatalf("unexpected model: %q", cfg.Model())
	}
	if len(cfg.AllowedUsers) != 2 || cfg.AllowedUsers[1] != 2 {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Config{
		AIProvider: "gemini",
		City:       "Nashville",
		AITimeout:  time.Second,
		SessionTTL: time.Hour,
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown provider to be rejected")
	}
}

func TestModelOverride(t *testing.T) {
	cfg := Config{AIProvider: ProviderOpenAI, AIModel: " gpt-4o "}

	if got := cfg.Model(); got != "gpt-4o" {
		t.Fatalf("unexpected model: %q", got)
	}
}
