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
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"
)

// retryTransport retries transient failures with capped exponential backoff.
type retryTransport struct {
	base          http.RoundTripper
	attempts      int
	backoff       time.Duration
	maxBackoff    time.Duration
	nonIdempotent bool
	logger        *slog.Logger
}

func newRetryTransport(base http.RoundTripper, cfg Config) *retryTransport {
	return &retryTransport{
		base:          base,
		attempts:      cfg.RetryAttempts + 1,
		backoff:       cfg.RetryBackoff,
		maxBackoff:    cfg.MaxBackoff,
		nonIdempotent: cfg.AllowNonIdempotentRetry,
		logger:        cfg.logger(),
	}
}

// RoundTrip implements http.RoundTripper. Requests with a body are only
// retried when the body can be replayed through GetBody.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.retryable(req) {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; attempt < t.attempts; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, t.delay(attempt, resp)); err != nil {
				return nil, err
			}
			drain(resp)
			if req, err = rewind(req); err != nil {
				return nil, err
			}
			t.logger.DebugContext(ctx, "retrying http request", "method", req.Method, "attempt", attempt+1)
		}

		resp, err = t.base.RoundTrip(req)
		if err != nil {
			if !retryableError(err) {
				return nil, err
			}
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
	}
	return resp, err
}

func (t *retryTransport) retryable(req *http.Request) bool {
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return false
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return t.nonIdempotent
}

// delay returns the wait before the given attempt. A shorter Retry-After on
// the previous response wins over the computed backoff.
func (t *retryTransport) delay(attempt int, prev *http.Response) time.Duration {
	d := float64(t.backoff) * math.Pow(2, float64(attempt-1))
	if d > float64(t.maxBackoff) {
		d = float64(t.maxBackoff)
	}
	d += d * 0.2 * rand.Float64()
	delay := time.Duration(d)

	if ra := retryAfter(prev); ra > 0 && ra < delay {
		return ra
	}
	return delay
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func rewind(req *http.Request) (*http.Request, error) {
	if req.GetBody == nil {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}

func retryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "read"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary
	}
	return false
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
