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

// Package transport dispatches request descriptors and classifies failures.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
	"github.com/tombee/conductor-httpnodes/pkg/request"
)

// Transport sends one request. Non-2xx responses are returned as *Error
// with Response set.
type Transport interface {
	Do(ctx context.Context, d *request.Descriptor) (*Response, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, d *request.Descriptor) (*Response, error)

// Do implements Transport.
func (f Func) Do(ctx context.Context, d *request.Descriptor) (*Response, error) {
	return f(ctx, d)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Value decodes the body: an empty body is an empty object, a JSON body is
// its decoded value and anything else is the body as a string.
func (r *Response) Value() any {
	if len(r.Body) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return string(r.Body)
	}
	return v
}

// ErrorType classifies transport failures.
type ErrorType string

const (
	ErrorTypeConnection ErrorType = "connection"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeInvalidReq ErrorType = "invalid_request"
	ErrorTypeRedirect   ErrorType = "redirect"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeClient     ErrorType = "client"
	ErrorTypeServer     ErrorType = "server"
)

// Error is a failed dispatch.
type Error struct {
	Type ErrorType

	// Message is safe to show to users; it never includes credentials.
	Message string

	// Response is set when the server answered with a non-2xx status.
	Response *Response

	// HTTPCode is a status reported without a response, e.g. by a proxy
	// or a canned failure in tests.
	HTTPCode int

	Cause error

	stack nodeerrors.Stack
}

// NewError returns an Error with the caller's stack captured.
func NewError(typ ErrorType, message string, cause error) *Error {
	return &Error{Type: typ, Message: message, Cause: cause, stack: nodeerrors.Callers(1)}
}

// StatusError returns the Error for a non-2xx response.
func StatusError(resp *Response) *Error {
	return &Error{
		Type:     statusType(resp.StatusCode),
		Message:  fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
		Response: resp,
		stack:    nodeerrors.Callers(1),
	}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// StatusCode returns the response status, falling back to HTTPCode.
func (e *Error) StatusCode() (int, bool) {
	if e.Response != nil && e.Response.StatusCode > 0 {
		return e.Response.StatusCode, true
	}
	if e.HTTPCode > 0 {
		return e.HTTPCode, true
	}
	return 0, false
}

// ErrorType implements errors.ErrorClassifier.
func (e *Error) ErrorType() string { return string(e.Type) }

// IsRetryable implements errors.ErrorClassifier.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeConnection, ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeServer:
		return true
	}
	return false
}

// StackTrace implements errors.StackTracer.
func (e *Error) StackTrace() string { return e.stack.String() }

func statusType(code int) ErrorType {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorTypeAuth
	case code == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case code >= 500:
		return ErrorTypeServer
	default:
		return ErrorTypeClient
	}
}
