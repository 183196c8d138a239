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

package httpclient

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-httpnodes/internal/tracing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "timeout"},
		{name: "negative retries", mutate: func(c *Config) { c.RetryAttempts = -1 }, wantErr: "retry_attempts"},
		{name: "zero backoff", mutate: func(c *Config) { c.RetryBackoff = 0 }, wantErr: "retry_backoff"},
		{name: "max below base", mutate: func(c *Config) { c.MaxBackoff = time.Nanosecond }, wantErr: "max_backoff"},
		{name: "no user agent", mutate: func(c *Config) { c.UserAgent = "" }, wantErr: "user_agent"},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: "rate_limit"},
		{name: "no retries ignores backoff", mutate: func(c *Config) { c.RetryAttempts = 0; c.RetryBackoff = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestClient_SetsUserAgentAndCorrelationID(t *testing.T) {
	var gotUA, gotCorr string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCorr = r.Header.Get(tracing.HeaderCorrelationID)
	}))
	defer srv.Close()

	client, err := New(testConfig())
	require.NoError(t, err)

	id := tracing.NewCorrelationID()
	req, err := http.NewRequestWithContext(tracing.ToContext(context.Background(), id), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "conductor-httpnodes/1.0", gotUA)
	assert.Equal(t, id.String(), gotCorr)
	assert.Empty(t, req.Header.Get("User-Agent"), "caller request must not be modified")
	assert.Empty(t, req.Header.Get(tracing.HeaderCorrelationID))
}

func TestClient_LogsToConfiguredLogger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, buf.String(), "status=404")
	assert.Contains(t, buf.String(), "/missing")
}

func TestClient_KeepsCallerUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client, err := New(testConfig())
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom/2")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom/2", gotUA)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := New(testConfig())
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RetryAttempts = 1
	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := New(testConfig())
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_NonIdempotentRetry(t *testing.T) {
	var calls atomic.Int32
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	t.Run("disabled by default", func(t *testing.T) {
		calls.Store(0)
		client, err := New(testConfig())
		require.NoError(t, err)

		resp, err := client.Post(srv.URL, "text/plain", strings.NewReader("payload"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("enabled replays body", func(t *testing.T) {
		calls.Store(0)
		bodies = nil
		cfg := testConfig()
		cfg.AllowNonIdempotentRetry = true
		client, err := New(cfg)
		require.NoError(t, err)

		resp, err := client.Post(srv.URL, "text/plain", strings.NewReader("payload"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"payload", "payload"}, bodies)
	})
}

func TestClient_RetryStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RetryBackoff = time.Second
	cfg.MaxBackoff = time.Second
	client, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)

	_, err = client.Do(req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_HTTPSOnlyRefusesDowngradeRedirect(t *testing.T) {
	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer plain.Close()

	secure := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, plain.URL, http.StatusFound)
	}))
	defer secure.Close()

	cfg := testConfig()
	cfg.HTTPSOnly = true
	cfg.RetryAttempts = 0
	client, err := New(cfg)
	require.NoError(t, err)
	client.Transport = newRoundTripper(secure.Client().Transport, cfg)

	_, err = client.Get(secure.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsecureRedirect)
}

func TestClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RateLimit = 20
	cfg.Burst = 1
	client, err := New(cfg)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Zero(t, retryAfter(resp))
	assert.Zero(t, retryAfter(nil))

	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, retryAfter(resp))

	resp.Header.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	assert.Greater(t, retryAfter(resp), 59*time.Minute)

	resp.Header.Set("Retry-After", "soon")
	assert.Zero(t, retryAfter(resp))
}

func TestSanitizeURL(t *testing.T) {
	u, _ := url.Parse("https://user:pw@api.example.com/v1?api_key=secret&page=2&Access_Token=t")
	got := sanitizeURL(u)

	assert.NotContains(t, got, "secret")
	assert.NotContains(t, got, "pw@")
	assert.NotContains(t, got, "=t")
	assert.Contains(t, got, "page=2")
	assert.Contains(t, got, "REDACTED")

	assert.Equal(t, "https://api.example.com", redactURL(u))
	assert.Equal(t, "", sanitizeURL(nil))
}
