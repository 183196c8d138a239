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
	"context"
	"fmt"
	"sync"
)

// MemoryBackend keeps secrets in a map. It backs config file records
// (read-only) and tests.
type MemoryBackend struct {
	name     string
	priority int
	readOnly bool

	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns an empty writable backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{name: "memory", priority: MemoryBackendPriority, values: map[string]string{}}
}

// NewConfigBackend returns a read-only backend over values loaded from the
// config file.
func NewConfigBackend(values map[string]string) *MemoryBackend {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MemoryBackend{name: "config", priority: ConfigBackendPriority, readOnly: true, values: copied}
}

func (m *MemoryBackend) Name() string    { return m.name }
func (m *MemoryBackend) Available() bool { return true }
func (m *MemoryBackend) Priority() int   { return m.priority }
func (m *MemoryBackend) ReadOnly() bool  { return m.readOnly }

// Get implements SecretBackend.
func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	return v, nil
}

// Set implements SecretBackend.
func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	if m.readOnly {
		return ErrReadOnlyBackend
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements SecretBackend.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	if m.readOnly {
		return ErrReadOnlyBackend
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	delete(m.values, key)
	return nil
}
