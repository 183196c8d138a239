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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

type statusErr struct {
	code int
	ok   bool
}

func (e *statusErr) Error() string           { return fmt.Sprintf("status %d with secret body", e.code) }
func (e *statusErr) StatusCode() (int, bool) { return e.code, e.ok }

func TestPresent_HIPAA(t *testing.T) {
	err := nodeerrors.WithStack(&statusErr{code: 404, ok: true})

	res := Present(err, true)
	require.True(t, res.Failed())

	data, mErr := json.Marshal(res)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{"json":{"error":"Request failed. Details are hidden for HIPAA compliance.","statusCode":404,"hipaaCompliant":true}}`, string(data))
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "stack")
}

func TestPresent_HIPAAWithoutStatus(t *testing.T) {
	res := Present(errors.New("dial tcp: connection refused"), true)

	data, err := json.Marshal(res.Value())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Request failed. Details are hidden for HIPAA compliance.","hipaaCompliant":true}`, string(data))
}

func TestPresent_Diagnostic(t *testing.T) {
	err := nodeerrors.WithStack(&statusErr{code: 500, ok: true})

	res := Present(err, false)
	require.NotNil(t, res.Failure)
	assert.Equal(t, "status 500 with secret body", res.Failure.Error)
	require.NotNil(t, res.Failure.StatusCode)
	assert.Equal(t, 500, *res.Failure.StatusCode)
	assert.Contains(t, res.Failure.Stack, "TestPresent_Diagnostic")
	assert.False(t, res.Failure.HIPAACompliant)
}

func TestPresent_StatusNotReported(t *testing.T) {
	res := Present(&statusErr{code: 0, ok: false}, false)
	assert.Nil(t, res.Failure.StatusCode)
	assert.Empty(t, res.Failure.Stack)
}

func TestResultMarshal(t *testing.T) {
	data, err := json.Marshal([]Result{Success(map[string]any{"a": 1}), Success("text")})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"json":{"a":1}},{"json":"text"}]`, string(data))
}

func TestStatusCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", &statusErr{code: 429, ok: true})
	code, ok := StatusCodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, 429, code)

	_, ok = StatusCodeOf(errors.New("plain"))
	assert.False(t, ok)
}
