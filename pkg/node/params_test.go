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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

func TestMapParams_Value(t *testing.T) {
	items := []Item{
		{"id": 7, "name": "ada", "tags": []any{"a", "b"}},
		{"id": 8, "name": "bob"},
	}
	p := NewMapParams(map[string]any{
		"url":       "=https://api.example.com/users/{{ json.id }}",
		"id":        "={{ json.id }}",
		"upper":     "={{ upper(json.name) }}",
		"literal":   "https://example.com/{{ not evaluated }}",
		"flag":      true,
		"index":     "={{ $itemIndex + 1 }}",
		"missing":   "={{ json.nope }}",
		"sum":       "=total {{ json.id * 2 }} of {{ len(json.tags ?? []) }}",
		"headers":   map[string]any{"keyvalue": []any{map[string]any{"name": "X-User", "value": "={{ $json.name }}"}}},
		"untouched": 3.5,
	}, items)

	tests := []struct {
		name  string
		param string
		item  int
		want  any
	}{
		{name: "interpolated string", param: "url", item: 0, want: "https://api.example.com/users/7"},
		{name: "typed expression", param: "id", item: 1, want: 8},
		{name: "builtin", param: "upper", item: 0, want: "ADA"},
		{name: "no prefix is literal", param: "literal", item: 0, want: "https://example.com/{{ not evaluated }}"},
		{name: "non-string", param: "flag", item: 0, want: true},
		{name: "item index alias", param: "index", item: 1, want: 2},
		{name: "missing field is nil", param: "missing", item: 0, want: nil},
		{name: "multiple segments", param: "sum", item: 0, want: "total 14 of 2"},
		{name: "number", param: "untouched", item: 0, want: 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Value(tt.param, tt.item, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("nested collection", func(t *testing.T) {
		got, err := p.Value("headers", 1, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"keyvalue": []any{map[string]any{"name": "X-User", "value": "bob"}}}, got)
	})

	t.Run("default when unset", func(t *testing.T) {
		got, err := p.Value("operation", 0, "get")
		require.NoError(t, err)
		assert.Equal(t, "get", got)
	})
}

func TestMapParams_Errors(t *testing.T) {
	p := NewMapParams(map[string]any{
		"bad":    "={{ json.id + }}",
		"broken": "=x {{ json.name.first.second }}",
	}, []Item{{"id": 1, "name": "a"}})

	_, err := p.Value("bad", 0, nil)
	require.Error(t, err)
	var verr *nodeerrors.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), `parameter "bad"`)

	_, err = p.Value("broken", 0, nil)
	assert.Error(t, err)

	_, err = p.Values(0)
	assert.Error(t, err)
}

func TestMapParams_Values(t *testing.T) {
	p := NewMapParams(map[string]any{"a": "={{ json.v }}", "b": "plain"}, []Item{{"v": 1}, {"v": 2}})

	v0, err := p.Values(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "plain"}, v0)

	v1, err := p.Values(1)
	require.NoError(t, err)
	assert.Equal(t, 2, v1["a"])

	out, err := p.Values(5)
	require.NoError(t, err)
	assert.Nil(t, out["a"], "out of range item evaluates against an empty object")
}

func TestMapParams_CachesPrograms(t *testing.T) {
	p := NewMapParams(map[string]any{"a": "={{ json.v }}"}, []Item{{"v": 1}, {"v": 2}})
	_, _ = p.Value("a", 0, nil)
	_, _ = p.Value("a", 1, nil)
	assert.Len(t, p.cache, 1)
}
