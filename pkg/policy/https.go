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

// Package policy enforces transport restrictions on outbound URLs.
package policy

import (
	"fmt"
	"net/url"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

// MalformedURLError is returned when a URL cannot be parsed as an absolute
// request URI.
type MalformedURLError struct {
	URL   string
	Cause error

	stack nodeerrors.Stack
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed URL %q: %v", e.URL, e.Cause)
}

func (e *MalformedURLError) Unwrap() error      { return e.Cause }
func (e *MalformedURLError) StackTrace() string { return e.stack.String() }
func (e *MalformedURLError) ErrorType() string  { return "malformed_url" }
func (e *MalformedURLError) IsRetryable() bool  { return false }

// SchemeError is returned when a well-formed URL uses a scheme other than https.
type SchemeError struct {
	Scheme string
	Host   string

	stack nodeerrors.Stack
}

func (e *SchemeError) Error() string {
	return fmt.Sprintf("insecure scheme %q for host %s: only https is allowed for HIPAA compliance", e.Scheme, e.Host)
}

func (e *SchemeError) StackTrace() string { return e.stack.String() }
func (e *SchemeError) ErrorType() string  { return "insecure_scheme" }
func (e *SchemeError) IsRetryable() bool  { return false }

// AssertHTTPS returns nil when raw is an absolute URL with the https scheme.
// Scheme comparison is case-insensitive since URL parsing normalises it.
func AssertHTTPS(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return &MalformedURLError{URL: raw, Cause: err, stack: nodeerrors.Callers(0)}
	}
	if u.Host == "" {
		return &MalformedURLError{URL: raw, Cause: fmt.Errorf("missing host"), stack: nodeerrors.Callers(0)}
	}
	if u.Scheme != "https" {
		return &SchemeError{Scheme: u.Scheme, Host: u.Host, stack: nodeerrors.Callers(0)}
	}
	return nil
}
