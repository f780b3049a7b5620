// Package config provides configuration loading and validation for the panel audio service.
// It handles YAML-based configuration with struct validation covering the HTTP server,
// the speech provider client, audio capture, and logging.
package config
