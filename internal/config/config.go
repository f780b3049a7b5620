package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Speech  SpeechConfig  `yaml:"speech"`
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP/panel server configuration
type ServerConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
}

// SpeechConfig contains speech provider API configuration
type SpeechConfig struct {
	BaseURL      string   `yaml:"base_url"`
	APIKey       string   `yaml:"api_key"`       // optional, the panel can set it at runtime
	DefaultModel string   `yaml:"default_model"` // used when a transcribe command omits the model
	DefaultVoice string   `yaml:"default_voice"`
	TokenTTL     int      `yaml:"token_ttl"`    // seconds, short-lived token lifetime
	TokenScopes  []string `yaml:"token_scopes"` // scopes requested on token grant
	Timeout      int      `yaml:"timeout"`      // seconds, per-request HTTP timeout
}

// CaptureConfig contains audio capture configuration
type CaptureConfig struct {
	RecorderCommand   string `yaml:"recorder_command"`    // system recorder binary, e.g. "sox" or "arecord"
	DefaultSampleRate int    `yaml:"default_sample_rate"` // Hz, used when startRecording omits a rate
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// ApplyDefaults fills in values the configuration file may omit
func (c *Config) ApplyDefaults() {
	if c.Speech.DefaultModel == "" {
		c.Speech.DefaultModel = "nova-3"
	}
	if c.Speech.DefaultVoice == "" {
		c.Speech.DefaultVoice = "aura-asteria-en"
	}
	if c.Speech.TokenTTL == 0 {
		c.Speech.TokenTTL = 3600
	}
	if len(c.Speech.TokenScopes) == 0 {
		c.Speech.TokenScopes = []string{"usage:write"}
	}
	if c.Speech.Timeout == 0 {
		c.Speech.Timeout = 60
	}
	if c.Capture.RecorderCommand == "" {
		c.Capture.RecorderCommand = "sox"
	}
	if c.Capture.DefaultSampleRate == 0 {
		c.Capture.DefaultSampleRate = 16000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Speech.Validate(); err != nil {
		return fmt.Errorf("speech config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}

	if s.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	return nil
}

// Validate validates speech provider configuration
func (s *SpeechConfig) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	if s.DefaultModel == "" {
		return fmt.Errorf("default_model cannot be empty")
	}

	if s.TokenTTL < 1 {
		return fmt.Errorf("token_ttl must be at least 1 second, got %d", s.TokenTTL)
	}

	if len(s.TokenScopes) == 0 {
		return fmt.Errorf("token_scopes cannot be empty")
	}

	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}

	return nil
}

// Validate validates capture configuration
func (c *CaptureConfig) Validate() error {
	if c.RecorderCommand == "" {
		return fmt.Errorf("recorder_command cannot be empty")
	}

	if c.DefaultSampleRate < 8000 || c.DefaultSampleRate > 48000 {
		return fmt.Errorf("default_sample_rate must be between 8000 and 48000 Hz, got %d", c.DefaultSampleRate)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeoutDuration returns the speech request timeout as a time.Duration
func (s *SpeechConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetTokenTTLDuration returns the short-lived token lifetime as a time.Duration
func (s *SpeechConfig) GetTokenTTLDuration() time.Duration {
	return time.Duration(s.TokenTTL) * time.Second
}
