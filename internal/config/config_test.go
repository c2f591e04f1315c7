package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ricirt/problem-interpretation/internal/config"
)

// isolate points ENV_FILE at a missing file so a developer's .env never leaks
// into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8000" || cfg.Host != "0.0.0.0" {
		t.Fatalf("unexpected listen defaults %s:%s", cfg.Host, cfg.HTTPPort)
	}
	if cfg.StoreDriver != config.StoreMemory {
		t.Fatalf("expected memory store by default, got %s", cfg.StoreDriver)
	}
	if cfg.LLMModel != "gpt-4-turbo-preview" || cfg.LLMMaxTokens != 4096 {
		t.Fatalf("unexpected llm defaults %s/%d", cfg.LLMModel, cfg.LLMMaxTokens)
	}
	if cfg.DefaultWaterActivity != 0.99 || cfg.DefaultPH != 7 {
		t.Fatal("unexpected conservative defaults")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORS default %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Fatalf("unexpected addr %s", cfg.Addr())
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("COMBASE_TIMEOUT", "10s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "9090" || !cfg.Debug || cfg.LLMTemperature != 0.7 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ComBaseTimeout != 10*time.Second {
		t.Fatalf("expected 10s, got %s", cfg.ComBaseTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("APP_NAME=from-file\nHTTP_PORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("HTTP_PORT", "7100")
	// godotenv writes into the process environment; t.Setenv restores
	// APP_NAME afterwards and Unsetenv lets the file supply it.
	t.Setenv("APP_NAME", "")
	os.Unsetenv("APP_NAME")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "7100" {
		t.Fatalf("expected the real environment to win, got %s", cfg.HTTPPort)
	}
	if cfg.AppName != "from-file" {
		t.Fatalf("expected APP_NAME from file, got %q", cfg.AppName)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"temperature", "LLM_TEMPERATURE", "2.5", "LLM_TEMPERATURE"},
		{"max tokens", "LLM_MAX_TOKENS", "50", "LLM_MAX_TOKENS"},
		{"combase timeout", "COMBASE_TIMEOUT", "2s", "COMBASE_TIMEOUT"},
		{"zero llm timeout", "LLM_TIMEOUT", "0s", "LLM_TIMEOUT"},
		{"negative llm timeout", "LLM_TIMEOUT", "-5s", "LLM_TIMEOUT"},
		{"ph", "DEFAULT_PH", "15", "DEFAULT_PH"},
		{"water activity", "DEFAULT_WATER_ACTIVITY", "1.5", "DEFAULT_WATER_ACTIVITY"},
		{"store driver", "STORE_DRIVER", "mongo", "STORE_DRIVER"},
		{"postgres without url", "STORE_DRIVER", "postgres", "DATABASE_URL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("DATABASE_URL", "")
			t.Setenv(tc.key, tc.value)

			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
