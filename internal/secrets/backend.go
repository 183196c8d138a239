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

// Package secrets stores and resolves credential records.
//
// Secrets live in a chain of SecretBackends queried in priority order:
// environment variables (HTTPNODE_SECRET_*), records from the config file,
// the OS keychain, and an in-memory backend for tests. CredentialStore
// layers JSON credential records on top of the chain and satisfies
// credential.Store.
package secrets

import (
	"context"
	"errors"
)

var (
	// ErrSecretNotFound is returned when no backend holds the key.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable is returned when a backend cannot be used here.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrReadOnlyBackend is returned by writes to a read-only backend.
	ErrReadOnlyBackend = errors.New("backend is read-only")
)

// Standard backend priorities. Higher is queried first.
const (
	EnvBackendPriority      = 100
	ConfigBackendPriority   = 75
	KeychainBackendPriority = 50
	MemoryBackendPriority   = 25
)

// SecretBackend is one storage mechanism for secret strings.
type SecretBackend interface {
	// Name identifies the backend, e.g. "env" or "keychain".
	Name() string

	// Get returns ErrSecretNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set returns ErrReadOnlyBackend when writes are unsupported.
	Set(ctx context.Context, key, value string) error

	// Delete returns ErrSecretNotFound when key is absent.
	Delete(ctx context.Context, key string) error

	// Available reports whether the backend works in this environment.
	Available() bool

	Priority() int
}

// ReadOnlyBackend marks backends that reject writes.
type ReadOnlyBackend interface {
	SecretBackend
	ReadOnly() bool
}

func isReadOnly(b SecretBackend) bool {
	ro, ok := b.(ReadOnlyBackend)
	return ok && ro.ReadOnly()
}
