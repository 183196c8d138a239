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

package node

import (
	"encoding/json"
	"errors"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

// HIPAARedactedMessage replaces every failure message in HIPAA mode.
const HIPAARedactedMessage = "Request failed. Details are hidden for HIPAA compliance."

// Result is one output record: a success value or a Failure.
type Result struct {
	JSON    any
	Failure *Failure
}

// Failure is the error record of a failed item.
type Failure struct {
	Error          string `json:"error"`
	StatusCode     *int   `json:"statusCode,omitempty"`
	Stack          string `json:"stack,omitempty"`
	HIPAACompliant bool   `json:"hipaaCompliant,omitempty"`
}

// Success wraps v as a successful result.
func Success(v any) Result {
	return Result{JSON: v}
}

// Failed reports whether r is an error record.
func (r Result) Failed() bool { return r.Failure != nil }

// Value returns the payload downstream nodes read as "json".
func (r Result) Value() any {
	if r.Failure != nil {
		return r.Failure
	}
	return r.JSON
}

// MarshalJSON encodes r as {"json": <payload>}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		JSON any `json:"json"`
	}{JSON: r.Value()})
}

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() (int, bool)
}

// StatusCodeOf returns the first status code found in err's chain.
func StatusCodeOf(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0, false
}

// Present converts err into a failure record. With hipaaMode the message
// is replaced by HIPAARedactedMessage and only the status code survives;
// otherwise the message and captured stack are kept.
func Present(err error, hipaaMode bool) Result {
	f := &Failure{}
	if code, ok := StatusCodeOf(err); ok {
		f.StatusCode = &code
	}
	if hipaaMode {
		f.Error = HIPAARedactedMessage
		f.HIPAACompliant = true
		return Result{Failure: f}
	}
	f.Error = err.Error()
	f.Stack = nodeerrors.StackOf(err)
	return Result{Failure: f}
}
