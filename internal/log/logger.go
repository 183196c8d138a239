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

// Package log configures the slog logger used by the CLI and node execution.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tombee/conductor-httpnodes/pkg/secrets"
)

// Format is the handler output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// LevelTrace sits below Debug and enables request body logging.
const LevelTrace = slog.Level(-8)

// Field keys shared by every log record.
const (
	RunIDKey         = "run_id"
	NodeKey          = "node"
	ItemKey          = "item"
	CorrelationIDKey = "correlation_id"
	ComponentKey     = "component"
	DurationKey      = "duration_ms"
)

// Config holds the logger settings.
type Config struct {
	// Level is one of trace, debug, info, warn or error. Default info.
	Level string `yaml:"level"`

	// Format is json or text. Default text.
	Format Format `yaml:"format"`

	AddSource bool `yaml:"add_source"`

	// Output defaults to os.Stderr.
	Output io.Writer `yaml:"-"`

	// Masker, when set, masks registered secret values in every record.
	Masker *secrets.Masker `yaml:"-"`
}

// DefaultConfig returns text output at info level on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// ApplyEnv overlays environment settings onto cfg:
//   - HTTPNODE_DEBUG: true or 1 forces debug level with source locations
//   - HTTPNODE_LOG_LEVEL, then LOG_LEVEL: level
//   - LOG_FORMAT: json or text
//   - LOG_SOURCE: 1 adds source locations
func ApplyEnv(cfg *Config) *Config {
	return applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *Config, getenv func(string) string) *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	debug := getenv("HTTPNODE_DEBUG")
	switch {
	case debug == "true" || debug == "1":
		cfg.Level = "debug"
		cfg.AddSource = true
	case getenv("HTTPNODE_LOG_LEVEL") != "":
		cfg.Level = strings.ToLower(getenv("HTTPNODE_LOG_LEVEL"))
	case getenv("LOG_LEVEL") != "":
		cfg.Level = strings.ToLower(getenv("LOG_LEVEL"))
	}
	if f := getenv("LOG_FORMAT"); f != "" {
		cfg.Format = Format(strings.ToLower(f))
	}
	if getenv("LOG_SOURCE") == "1" {
		cfg.AddSource = true
	}
	return cfg
}

// New builds a logger from cfg.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}

	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	if cfg.Masker != nil {
		h = cfg.Masker.Handler(h)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRunContext tags logger with the run and node being executed.
func WithRunContext(logger *slog.Logger, runID, node string) *slog.Logger {
	return logger.With(slog.String(RunIDKey, runID), slog.String(NodeKey, node))
}

// WithComponent tags logger with the subsystem that emits records.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String(ComponentKey, component))
}
