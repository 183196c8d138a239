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

package errors_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *nodeerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &nodeerrors.ValidationError{
				Field:   "url",
				Message: "required field is missing",
				Hint:    "Set the url parameter",
			},
			wantMsg: "validation failed on url: required field is missing",
		},
		{
			name:    "without field",
			err:     &nodeerrors.ValidationError{Message: "invalid format"},
			wantMsg: "validation failed: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestValidationError_UserVisible(t *testing.T) {
	var err error = &nodeerrors.ValidationError{Field: "operation", Message: "unsupported", Hint: "use get"}

	var uv nodeerrors.UserVisibleError
	if !errors.As(err, &uv) {
		t.Fatal("ValidationError should implement UserVisibleError")
	}
	if uv.Suggestion() != "use get" {
		t.Errorf("Suggestion() = %q, want %q", uv.Suggestion(), "use get")
	}
	if nodeerrors.IsRetryable(err) {
		t.Error("validation errors must not be retryable")
	}
}

func TestNotFoundError_Error(t *testing.T) {
	err := &nodeerrors.NotFoundError{Resource: "node", ID: "ftpRequest"}
	if got := err.Error(); got != "node not found: ftpRequest" {
		t.Errorf("NotFoundError.Error() = %q", got)
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("file read error")
	tests := []struct {
		name    string
		err     *nodeerrors.ConfigError
		wantMsg string
	}{
		{
			name:    "with key",
			err:     &nodeerrors.ConfigError{Key: "http.timeout", Reason: "must be > 0"},
			wantMsg: "config error at http.timeout: must be > 0",
		},
		{
			name:    "without key",
			err:     &nodeerrors.ConfigError{Reason: "file not found"},
			wantMsg: "config error: file not found",
		},
		{
			name:    "with cause",
			err:     &nodeerrors.ConfigError{Key: "config_file", Reason: "failed to load", Cause: cause},
			wantMsg: "config error at config_file: failed to load: file read error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ConfigError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	wrapped := &nodeerrors.ConfigError{Reason: "x", Cause: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}
}

func TestTimeoutError(t *testing.T) {
	err := &nodeerrors.TimeoutError{Operation: "GET https://api.example.com", Duration: 5 * time.Second}
	if !strings.Contains(err.Error(), "timed out after 5s") {
		t.Errorf("TimeoutError.Error() = %q", err.Error())
	}
	if !nodeerrors.IsRetryable(err) {
		t.Error("timeouts should be retryable")
	}
}
