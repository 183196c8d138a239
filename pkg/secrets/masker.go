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

// Package secrets masks credential values in log output and printed records.
package secrets

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Placeholder replaces every masked value.
const Placeholder = "***"

// Masker replaces registered secret values and secret-named fields.
// It is safe for concurrent use.
type Masker struct {
	mu      sync.RWMutex
	values  map[string]struct{}
	ordered []string

	// fieldSuffixes mark record fields whose values are always masked.
	fieldSuffixes []string
}

// NewMasker returns a masker that treats fields ending in token, key,
// password or secret (case-insensitive) as secret.
func NewMasker() *Masker {
	return &Masker{
		values:        make(map[string]struct{}),
		fieldSuffixes: []string{"token", "key", "password", "secret"},
	}
}

// AddSecret registers values to be masked. Empty strings are ignored.
func (m *Masker) AddSecret(values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := m.values[v]; ok {
			continue
		}
		m.values[v] = struct{}{}
		m.ordered = append(m.ordered, v)
	}
	// Longest first so a secret containing another is replaced whole.
	sort.SliceStable(m.ordered, func(i, j int) bool { return len(m.ordered[i]) > len(m.ordered[j]) })
}

// IsSecretField reports whether a record field name denotes a secret.
func (m *Masker) IsSecretField(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range m.fieldSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Mask replaces every registered value in s.
func (m *Masker) Mask(s string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.ordered {
		if strings.Contains(s, v) {
			s = strings.ReplaceAll(s, v, Placeholder)
		}
	}
	return s
}

// MaskRecord returns a copy of data with secret-named string fields
// replaced and registered values masked everywhere else. Nested maps and
// slices are walked.
func (m *Masker) MaskRecord(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok && s != "" && m.IsSecretField(k) {
			out[k] = Placeholder
			continue
		}
		out[k] = m.maskValue(v)
	}
	return out
}

func (m *Masker) maskValue(v any) any {
	switch val := v.(type) {
	case string:
		return m.Mask(val)
	case map[string]any:
		return m.MaskRecord(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.maskValue(item)
		}
		return out
	default:
		return v
	}
}

// Handler wraps next so that string attribute values and messages pass
// through the masker before they are written.
func (m *Masker) Handler(next slog.Handler) slog.Handler {
	return &maskingHandler{next: next, masker: m}
}

type maskingHandler struct {
	next   slog.Handler
	masker *Masker
}

func (h *maskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskingHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, h.masker.Mask(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.next.Handle(ctx, masked)
}

func (h *maskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.maskAttr(a)
	}
	return &maskingHandler{next: h.next.WithAttrs(masked), masker: h.masker}
}

func (h *maskingHandler) WithGroup(name string) slog.Handler {
	return &maskingHandler{next: h.next.WithGroup(name), masker: h.masker}
}

func (h *maskingHandler) maskAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.masker.Mask(v.String()))
	case slog.KindGroup:
		group := v.Group()
		masked := make([]any, len(group))
		for i, g := range group {
			masked[i] = h.maskAttr(g)
		}
		return slog.Group(a.Key, masked...)
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}
