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
	"errors"
	"fmt"
	"sort"
)

// Resolver queries a chain of backends in priority order.
type Resolver struct {
	backends []SecretBackend
}

// NewResolver keeps the available backends, sorted by descending priority.
// Backends with equal priority keep their argument order.
func NewResolver(backends ...SecretBackend) *Resolver {
	available := make([]SecretBackend, 0, len(backends))
	for _, b := range backends {
		if b != nil && b.Available() {
			available = append(available, b)
		}
	}
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Priority() > available[j].Priority()
	})
	return &Resolver{backends: available}
}

// Backends returns the names of the active backends in query order.
func (r *Resolver) Backends() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Get returns the value from the first backend that has key. When no
// backend has it the error wraps ErrSecretNotFound, unless a backend
// failed for another reason, in which case that failure is returned.
func (r *Resolver) Get(ctx context.Context, key string) (string, error) {
	if len(r.backends) == 0 {
		return "", fmt.Errorf("%w: no backends configured", ErrBackendUnavailable)
	}
	var lastErr error
	for _, b := range r.backends {
		v, err := b.Get(ctx, key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			lastErr = fmt.Errorf("%s: %w", b.Name(), err)
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("get secret %q: %w", key, lastErr)
	}
	return "", fmt.Errorf("%w: %q", ErrSecretNotFound, key)
}

// Set writes to the named backend, or to the highest priority writable
// backend when backend is empty.
func (r *Resolver) Set(ctx context.Context, key, value, backend string) error {
	b, err := r.writable(backend)
	if err != nil {
		return err
	}
	if err := b.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set secret in %s: %w", b.Name(), err)
	}
	return nil
}

// Delete removes key from the named backend, or from every writable
// backend that holds it when backend is empty.
func (r *Resolver) Delete(ctx context.Context, key, backend string) error {
	if backend != "" {
		b, err := r.writable(backend)
		if err != nil {
			return err
		}
		if err := b.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete secret from %s: %w", b.Name(), err)
		}
		return nil
	}

	deleted := false
	for _, b := range r.backends {
		if isReadOnly(b) {
			continue
		}
		err := b.Delete(ctx, key)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrSecretNotFound), errors.Is(err, ErrReadOnlyBackend):
		default:
			return fmt.Errorf("delete secret from %s: %w", b.Name(), err)
		}
	}
	if !deleted {
		return fmt.Errorf("%w: %q", ErrSecretNotFound, key)
	}
	return nil
}

func (r *Resolver) writable(name string) (SecretBackend, error) {
	for _, b := range r.backends {
		if name != "" && b.Name() != name {
			continue
		}
		if isReadOnly(b) {
			if name != "" {
				return nil, fmt.Errorf("%s: %w", name, ErrReadOnlyBackend)
			}
			continue
		}
		return b, nil
	}
	if name != "" {
		return nil, fmt.Errorf("%w: %q", ErrBackendUnavailable, name)
	}
	return nil, errors.New("no writable secret backend available")
}
