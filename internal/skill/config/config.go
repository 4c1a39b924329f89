// Package config defines the skill's runtime configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables. Environment variables always win so that
// container deployments can override a checked-in config file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voicebridge/actionable/common/environment"
)

// Config is the root runtime configuration for the skill backend.
type Config struct {
	// HomeAssistant configures the connection to the Home Assistant instance.
	HomeAssistant HomeAssistant `yaml:"home_assistant"`

	// HTTP configures the inbound skill endpoint.
	HTTP HTTP `yaml:"http,omitempty"`

	// Database configures the optional event audit log.
	Database Database `yaml:"database,omitempty"`

	// Log configures structured logging.
	Log Log `yaml:"log,omitempty"`
}

// HomeAssistant holds connection settings for the Home Assistant REST API.
type HomeAssistant struct {
	// URL is the base URL of the Home Assistant instance, e.g.
	// "https://ha.example.org:8123". Required.
	URL string `yaml:"url"`

	// Token is the long-lived access token used when the inbound request
	// carries no account-linking token of its own.
	Token string `yaml:"token,omitempty"`

	// VerifySSL controls TLS certificate verification. Defaults to true.
	VerifySSL *bool `yaml:"verify_ssl,omitempty"`

	// Timeout bounds each request to Home Assistant. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// HTTP holds settings for the inbound skill endpoint.
type HTTP struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr,omitempty"`
}

// Database holds settings for the sqlite audit log.
type Database struct {
	// Path is the sqlite database file. Empty disables the audit log.
	Path string `yaml:"path,omitempty"`
}

// Log holds structured logging settings.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `yaml:"format,omitempty"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	verify := true
	return &Config{
		HomeAssistant: HomeAssistant{
			VerifySSL: &verify,
			Timeout:   10 * time.Second,
		},
		HTTP: HTTP{Addr: ":8080"},
		Log:  Log{Level: "info", Format: "text"},
	}
}

// Parse decodes a YAML document over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if path is non-empty), then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config parse: %w", err)
		}
	}
	cfg.ApplyEnv()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config. Unset variables
// leave the existing values untouched.
func (c *Config) ApplyEnv() {
	if v := environment.StringOr("HOME_ASSISTANT_URL", ""); v != "" {
		c.HomeAssistant.URL = v
	}
	if v := environment.StringOr("HOME_ASSISTANT_TOKEN", ""); v != "" {
		c.HomeAssistant.Token = v
	}
	if _, ok := os.LookupEnv("VERIFY_SSL"); ok {
		verify := environment.BoolOr("VERIFY_SSL", true)
		c.HomeAssistant.VerifySSL = &verify
	}
	if _, ok := os.LookupEnv("HOME_ASSISTANT_TIMEOUT"); ok {
		c.HomeAssistant.Timeout = environment.DurationOr("HOME_ASSISTANT_TIMEOUT", c.HomeAssistant.Timeout)
	}
	if v := environment.StringOr("HTTP_ADDR", ""); v != "" {
		c.HTTP.Addr = v
	}
	if v := environment.StringOr("DATABASE_PATH", ""); v != "" {
		c.Database.Path = v
	}
	if v := environment.StringOr("LOG_LEVEL", ""); v != "" {
		c.Log.Level = v
	}
	if v := environment.StringOr("LOG_FORMAT", ""); v != "" {
		c.Log.Format = v
	}
}

// Validate checks the config for structural correctness. It returns the first
// validation error encountered, or nil if the config is valid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config must not be nil")
	}

	if strings.TrimSpace(cfg.HomeAssistant.URL) == "" {
		return fmt.Errorf("home_assistant.url must not be empty")
	}
	u, err := url.Parse(cfg.HomeAssistant.URL)
	if err != nil {
		return fmt.Errorf("home_assistant.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("home_assistant.url must use http or https, got %q", u.Scheme)
	}

	if cfg.HomeAssistant.Timeout < 0 {
		return fmt.Errorf("home_assistant.timeout must not be negative")
	}

	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr must not be empty")
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", cfg.Log.Format)
	}

	return nil
}
