package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:    8080,
			Address: "127.0.0.1",
		},
		Speech: SpeechConfig{
			BaseURL:      "https://api.deepgram.com",
			DefaultModel: "nova-3",
			DefaultVoice: "aura-asteria-en",
			TokenTTL:     3600,
			TokenScopes:  []string{"usage:write"},
			Timeout:      60,
		},
		Capture: CaptureConfig{
			RecorderCommand:   "sox",
			DefaultSampleRate: 16000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "invalid server port",
			mutate:      func(c *Config) { c.Server.Port = 70000 },
			expectError: true,
		},
		{
			name:        "empty server address",
			mutate:      func(c *Config) { c.Server.Address = "" },
			expectError: true,
		},
		{
			name:        "empty base url",
			mutate:      func(c *Config) { c.Speech.BaseURL = "" },
			expectError: true,
		},
		{
			name:        "zero token ttl",
			mutate:      func(c *Config) { c.Speech.TokenTTL = 0 },
			expectError: true,
		},
		{
			name:        "empty token scopes",
			mutate:      func(c *Config) { c.Speech.TokenScopes = nil },
			expectError: true,
		},
		{
			name:        "zero timeout",
			mutate:      func(c *Config) { c.Speech.Timeout = 0 },
			expectError: true,
		},
		{
			name:        "empty recorder command",
			mutate:      func(c *Config) { c.Capture.RecorderCommand = "" },
			expectError: true,
		},
		{
			name:        "sample rate too low",
			mutate:      func(c *Config) { c.Capture.DefaultSampleRate = 4000 },
			expectError: true,
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected validation error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no validation error but got: %v", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{Port: 8080, Address: "127.0.0.1"},
		Speech: SpeechConfig{BaseURL: "https://api.deepgram.com"},
	}

	cfg.ApplyDefaults()

	if cfg.Speech.DefaultModel != "nova-3" {
		t.Errorf("Expected default model nova-3, got %s", cfg.Speech.DefaultModel)
	}

	if cfg.Speech.TokenTTL != 3600 {
		t.Errorf("Expected default token TTL 3600, got %d", cfg.Speech.TokenTTL)
	}

	if len(cfg.Speech.TokenScopes) != 1 || cfg.Speech.TokenScopes[0] != "usage:write" {
		t.Errorf("Expected default scopes [usage:write], got %v", cfg.Speech.TokenScopes)
	}

	if cfg.Capture.DefaultSampleRate != 16000 {
		t.Errorf("Expected default sample rate 16000, got %d", cfg.Capture.DefaultSampleRate)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Config with defaults should validate, got: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  port: 9090
  address: "0.0.0.0"
speech:
  base_url: "https://api.deepgram.com"
  default_model: "nova-3"
  token_ttl: 1800
  token_scopes: ["usage:write"]
  timeout: 30
capture:
  recorder_command: "arecord"
  default_sample_rate: 44100
logging:
  level: "debug"
  format: "json"
  output: "stdout"
`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}

	if cfg.Speech.GetTokenTTLDuration() != 30*time.Minute {
		t.Errorf("Expected token TTL 30m, got %v", cfg.Speech.GetTokenTTLDuration())
	}

	if cfg.Speech.GetTimeoutDuration() != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Speech.GetTimeoutDuration())
	}

	if cfg.Capture.RecorderCommand != "arecord" {
		t.Errorf("Expected recorder command arecord, got %s", cfg.Capture.RecorderCommand)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error loading missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error loading invalid YAML")
	}
}
