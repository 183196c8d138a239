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
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/conductor-httpnodes/internal/tracing"
)

// loggingTransport sets default headers and logs each attempt.
type loggingTransport struct {
	base       http.RoundTripper
	userAgent  string
	redactURLs bool
	logger     *slog.Logger
}

func newLoggingTransport(base http.RoundTripper, cfg Config) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{
		base:       base,
		userAgent:  cfg.UserAgent,
		redactURLs: cfg.RedactURLs,
		logger:     cfg.logger(),
	}
}

// RoundTrip implements http.RoundTripper. The caller's request is left
// untouched; headers are set on a clone. Header values are never logged.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	tracing.InjectIntoRequest(req.Context(), req)

	resp, err := t.base.RoundTrip(req)

	attrs := []any{
		"method", req.Method,
		"url", t.logURL(req),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		t.logger.WarnContext(req.Context(), "http request failed", append(attrs, "error", t.logError(err))...)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Log(req.Context(), level, "http request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

func (t *loggingTransport) logURL(req *http.Request) string {
	if t.redactURLs {
		return redactURL(req.URL)
	}
	return sanitizeURL(req.URL)
}

func (t *loggingTransport) logError(err error) string {
	if t.redactURLs {
		return "[REDACTED]"
	}
	return err.Error()
}
