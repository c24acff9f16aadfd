package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"GEMINI_API_KEY", "GEMINI_MODEL", "MAX_UPLOAD_MB", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Gemini.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Gemini.Model, DefaultModel)
	}
	if cfg.Upload.MaxBytes != 32<<20 {
		t.Errorf("MaxBytes = %d, want 32MiB", cfg.Upload.MaxBytes)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logger.Level)
	}

	// Load never enforces the API key; callers fail fast instead.
	if cfg.Gemini.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.Gemini.APIKey)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_WRITE_TIMEOUT", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.Gemini.Model)
	}
	if cfg.Upload.MaxBytes != 8<<20 {
		t.Errorf("MaxBytes = %d", cfg.Upload.MaxBytes)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logger.Level)
	}
	if cfg.Server.WriteTimeout != 120*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
}
