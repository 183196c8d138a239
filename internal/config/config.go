// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the httpnode configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-httpnodes/internal/log"
	"github.com/tombee/conductor-httpnodes/internal/tracing"
	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
	"github.com/tombee/conductor-httpnodes/pkg/httpclient"
	"github.com/tombee/conductor-httpnodes/pkg/secrets"
)

// Config is the root of config.yaml.
type Config struct {
	Log     LogConfig      `yaml:"log"`
	HTTP    HTTPConfig     `yaml:"http"`
	Secrets SecretsConfig  `yaml:"secrets"`
	Tracing tracing.Config `yaml:"tracing"`

	// Credentials are inline credential records keyed by credential type.
	// Intended for development; prefer the keychain.
	Credentials map[string]map[string]any `yaml:"credentials,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is trace, debug, info, warn or error.
	// Environment: HTTPNODE_LOG_LEVEL, LOG_LEVEL
	// Default: info
	Level string `yaml:"level"`

	// Format is json or text.
	// Environment: LOG_FORMAT
	// Default: text
	Format string `yaml:"format"`

	AddSource bool `yaml:"add_source"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	// Environment: HTTPNODE_HTTP_TIMEOUT
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// RetryAttempts is the number of retries after the first attempt.
	// Default: 2
	RetryAttempts *int `yaml:"retry_attempts,omitempty"`

	RetryBackoff time.Duration `yaml:"retry_backoff"`
	MaxBackoff   time.Duration `yaml:"max_backoff"`

	// Environment: HTTPNODE_USER_AGENT
	UserAgent string `yaml:"user_agent"`

	// RateLimit is requests per second; 0 disables limiting.
	// Environment: HTTPNODE_RATE_LIMIT
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`

	// AllowNonIdempotentRetry enables retries of POST and PATCH.
	AllowNonIdempotentRetry bool `yaml:"allow_non_idempotent_retry"`
}

// SecretsConfig selects credential backends.
type SecretsConfig struct {
	// DisableKeychain skips the OS keychain backend.
	DisableKeychain bool `yaml:"disable_keychain"`
}

// Default returns the built-in configuration.
func Default() *Config {
	hc := httpclient.DefaultConfig()
	retries := hc.RetryAttempts
	return &Config{
		Log: LogConfig{Level: "info", Format: string(log.FormatText)},
		HTTP: HTTPConfig{
			Timeout:       hc.Timeout,
			RetryAttempts: &retries,
			RetryBackoff:  hc.RetryBackoff,
			MaxBackoff:    hc.MaxBackoff,
			UserAgent:     hc.UserAgent,
		},
		Tracing: tracing.Config{Exporter: tracing.ExporterNone},
	}
}

// Load reads path, applies defaults to unset values, overlays environment
// overrides and validates the result. A missing file at the default
// location is not an error; an empty path means the default location.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, &nodeerrors.ConfigError{Key: "config_file", Reason: "cannot locate config directory", Cause: err}
		}
		path = p
	}

	cfg := &Config{}
	if err := cfg.loadFromFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, &nodeerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	if err := cfg.loadFromEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyDefaults fills zero values so partial files work.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = d.HTTP.Timeout
	}
	if c.HTTP.RetryAttempts == nil {
		c.HTTP.RetryAttempts = d.HTTP.RetryAttempts
	}
	if c.HTTP.RetryBackoff == 0 {
		c.HTTP.RetryBackoff = d.HTTP.RetryBackoff
	}
	if c.HTTP.MaxBackoff == 0 {
		c.HTTP.MaxBackoff = d.HTTP.MaxBackoff
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = d.HTTP.UserAgent
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = d.Tracing.Exporter
	}
}

func (c *Config) loadFromEnv(getenv func(string) string) error {
	if val := getenv("HTTPNODE_HTTP_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return &nodeerrors.ConfigError{Key: "HTTPNODE_HTTP_TIMEOUT", Reason: "invalid duration", Cause: err}
		}
		c.HTTP.Timeout = d
	}
	if val := getenv("HTTPNODE_USER_AGENT"); val != "" {
		c.HTTP.UserAgent = val
	}
	if val := getenv("HTTPNODE_RATE_LIMIT"); val != "" {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return &nodeerrors.ConfigError{Key: "HTTPNODE_RATE_LIMIT", Reason: "invalid number", Cause: err}
		}
		c.HTTP.RateLimit = rps
	}
	if val := getenv("HTTPNODE_TRACING_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	if f := log.Format(strings.ToLower(c.Log.Format)); f != log.FormatJSON && f != log.FormatText {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	hc := c.HTTP.Client()
	if err := hc.Validate(); err != nil {
		errs = append(errs, "http."+err.Error())
	}

	switch c.Tracing.Exporter {
	case tracing.ExporterNone, tracing.ExporterConsole, tracing.ExporterOTLPHTTP:
	default:
		errs = append(errs, fmt.Sprintf("tracing.exporter must be one of [none, console, otlp-http], got %q", c.Tracing.Exporter))
	}

	for credType, rec := range c.Credentials {
		if len(rec) == 0 {
			errs = append(errs, fmt.Sprintf("credentials.%s is empty", credType))
		}
	}

	if len(errs) > 0 {
		return &nodeerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed:\n  - " + strings.Join(errs, "\n  - "),
		}
	}
	return nil
}

// Client converts the section into an httpclient.Config.
func (h HTTPConfig) Client() httpclient.Config {
	cfg := httpclient.Config{
		Timeout:                 h.Timeout,
		RetryBackoff:            h.RetryBackoff,
		MaxBackoff:              h.MaxBackoff,
		UserAgent:               h.UserAgent,
		AllowNonIdempotentRetry: h.AllowNonIdempotentRetry,
		RateLimit:               h.RateLimit,
		Burst:                   h.Burst,
	}
	if h.RetryAttempts != nil {
		cfg.RetryAttempts = *h.RetryAttempts
	}
	return cfg
}

// Logger converts the section into a log.Config writing to out.
func (l LogConfig) Logger(out io.Writer, masker *secrets.Masker) *log.Config {
	return &log.Config{
		Level:     l.Level,
		Format:    log.Format(strings.ToLower(l.Format)),
		AddSource: l.AddSource,
		Output:    out,
		Masker:    masker,
	}
}

// Write saves cfg to path as YAML with owner-only permissions.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
