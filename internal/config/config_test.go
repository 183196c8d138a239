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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

func noEnv(string) string { return "" }

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	hc := cfg.HTTP.Client()
	assert.Equal(t, 30*time.Second, hc.Timeout)
	assert.Equal(t, 2, hc.RetryAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestLoad_PartialFile(t *testing.T) {
	path := writeFile(t, `
http:
  timeout: 5s
  retry_attempts: 0
  rate_limit: 2.5
log:
  format: json
credentials:
  httpbinApi:
    token: dev-token
`)
	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	hc := cfg.HTTP.Client()
	assert.Equal(t, 5*time.Second, hc.Timeout)
	assert.Equal(t, 0, hc.RetryAttempts)
	assert.Equal(t, 2.5, hc.RateLimit)
	assert.Equal(t, "conductor-httpnodes/1.0", hc.UserAgent)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "dev-token", cfg.Credentials["httpbinApi"]["token"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	env := map[string]string{
		"HTTPNODE_HTTP_TIMEOUT":     "2s",
		"HTTPNODE_USER_AGENT":       "custom/2",
		"HTTPNODE_RATE_LIMIT":       "10",
		"HTTPNODE_TRACING_EXPORTER": "Console",
	}
	cfg, err := load(writeFile(t, "{}"), func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "custom/2", cfg.HTTP.UserAgent)
	assert.Equal(t, 10.0, cfg.HTTP.RateLimit)
	assert.Equal(t, "console", cfg.Tracing.Exporter)
}

func TestLoad_InvalidEnv(t *testing.T) {
	_, err := load(writeFile(t, "{}"), func(k string) string {
		if k == "HTTPNODE_HTTP_TIMEOUT" {
			return "soon"
		}
		return ""
	})
	var ce *nodeerrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "HTTPNODE_HTTP_TIMEOUT", ce.Key)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	var ce *nodeerrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "config_file", ce.Key)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP.Timeout, cfg.HTTP.Timeout)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := load(writeFile(t, "http: [unterminated"), noEnv)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		errText string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "loud" }, errText: "log.level"},
		{name: "bad format", modify: func(c *Config) { c.Log.Format = "xml" }, errText: "log.format"},
		{name: "negative timeout", modify: func(c *Config) { c.HTTP.Timeout = -time.Second }, errText: "http.timeout"},
		{name: "negative rate", modify: func(c *Config) { c.HTTP.RateLimit = -1 }, errText: "rate_limit"},
		{name: "bad exporter", modify: func(c *Config) { c.Tracing.Exporter = "jaeger" }, errText: "tracing.exporter"},
		{name: "empty credential", modify: func(c *Config) {
			c.Credentials = map[string]map[string]any{"httpbinApi": {}}
		}, errText: "credentials.httpbinApi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errText == "" {
				assert.NoError(t, err)
				return
			}
			var ce *nodeerrors.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, AppName), dir)

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, AppName, "config.yaml"), path)

	_, err = EnsureDir()
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.HTTP.UserAgent = "written/1"
	require.NoError(t, Write(path, cfg))

	loaded, err := load(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "written/1", loaded.HTTP.UserAgent)
}
