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

package secrets

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMasker_Mask(t *testing.T) {
	m := NewMasker()
	m.AddSecret("tok-123", "", "tok-123-extended")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no secrets", input: "hello", want: "hello"},
		{name: "single", input: "Bearer tok-123", want: "Bearer ***"},
		{name: "longest first", input: "key=tok-123-extended", want: "key=***"},
		{name: "repeated", input: "tok-123 tok-123", want: "*** ***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Mask(tt.input))
		})
	}
}

func TestMasker_MaskRecord(t *testing.T) {
	m := NewMasker()
	m.AddSecret("hdr-secret")

	rec := map[string]any{
		"authType":    "custom",
		"bearerToken": "abc",
		"apiKey":      "k",
		"apiKeyName":  "X-API-Key",
		"username":    "alice",
		"password":    "pw",
		"empty":       "",
		"customHeaders": map[string]any{
			"keyvalue": []any{
				map[string]any{"name": "X-Token", "value": "hdr-secret"},
			},
		},
	}

	got := m.MaskRecord(rec)

	assert.Equal(t, "custom", got["authType"])
	assert.Equal(t, Placeholder, got["bearerToken"])
	assert.Equal(t, Placeholder, got["apiKey"])
	assert.Equal(t, "X-API-Key", got["apiKeyName"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, Placeholder, got["password"])
	assert.Equal(t, "", got["empty"])

	headers := got["customHeaders"].(map[string]any)["keyvalue"].([]any)
	assert.Equal(t, Placeholder, headers[0].(map[string]any)["value"])
	assert.Equal(t, "X-Token", headers[0].(map[string]any)["name"])

	assert.Equal(t, "abc", rec["bearerToken"], "input must not be modified")
}

func TestMasker_Handler(t *testing.T) {
	m := NewMasker()
	m.AddSecret("s3cr3t")

	var buf bytes.Buffer
	logger := slog.New(m.Handler(slog.NewTextHandler(&buf, nil))).With("preset", "x-s3cr3t")

	logger.Info("sending s3cr3t", "header", "Bearer s3cr3t", "count", 2, slog.Group("req", "auth", "s3cr3t"))

	out := buf.String()
	assert.NotContains(t, out, "s3cr3t")
	assert.Contains(t, out, "count=2")
	assert.Contains(t, out, "req.auth=***")
	assert.Contains(t, out, "preset=x-***")
}
