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

package describe

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-httpnodes/internal/commands/shared"
)

func TestDescribe_NodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDescribe(&buf, "hipaaHttpRequest", false))

	var desc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &desc))
	assert.Equal(t, "hipaaHttpRequest", desc["name"])
	assert.NotEmpty(t, desc["properties"])
}

func TestDescribe_Schema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDescribe(&buf, "httpRequest", true))

	var schema map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "url")
	assert.Contains(t, props, "hipaaErrorMode")
	assert.Contains(t, schema["required"], "url")
}

func TestDescribe_Credential(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDescribe(&buf, "genericHttpAuthApi", false))
	assert.Contains(t, buf.String(), "bearerToken")

	err := runDescribe(&buf, "genericHttpAuthApi", true)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCode(err))
}

func TestDescribe_Unknown(t *testing.T) {
	err := runDescribe(&bytes.Buffer{}, "nope", false)
	assert.Equal(t, shared.ExitNotFound, shared.ExitCode(err))
}

func TestNodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runNodes(&buf))
	out := buf.String()
	assert.Contains(t, out, "httpRequest")
	assert.Contains(t, out, "hipaaHttpRequest")
	assert.Contains(t, out, "httpbinApi")
	assert.Contains(t, out, "credential")
}
