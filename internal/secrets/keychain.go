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
	"strings"

	"github.com/zalando/go-keyring"
)

// KeychainService is the service name under which entries are stored.
const KeychainService = "conductor-httpnodes"

// KeychainBackend stores secrets in the OS keychain: Keychain Access on
// macOS, the Secret Service API on Linux and Credential Manager on Windows.
type KeychainBackend struct {
	available bool
}

// NewKeychainBackend probes the keychain once and reports unavailable if
// the probe fails for any reason other than a missing entry.
func NewKeychainBackend() *KeychainBackend {
	_, err := keyring.Get(KeychainService, "__availability_probe__")
	return &KeychainBackend{available: err == nil || errors.Is(err, keyring.ErrNotFound)}
}

func (k *KeychainBackend) Name() string    { return "keychain" }
func (k *KeychainBackend) Available() bool { return k.available }
func (k *KeychainBackend) Priority() int   { return KeychainBackendPriority }

// Get implements SecretBackend.
func (k *KeychainBackend) Get(_ context.Context, key string) (string, error) {
	if !k.available {
		return "", fmt.Errorf("%w: keychain", ErrBackendUnavailable)
	}
	v, err := keyring.Get(KeychainService, key)
	if err != nil {
		return "", keychainError(key, err)
	}
	return v, nil
}

// Set implements SecretBackend.
func (k *KeychainBackend) Set(_ context.Context, key, value string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain", ErrBackendUnavailable)
	}
	if err := keyring.Set(KeychainService, key, value); err != nil {
		return keychainError(key, err)
	}
	return nil
}

// Delete implements SecretBackend.
func (k *KeychainBackend) Delete(_ context.Context, key string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain", ErrBackendUnavailable)
	}
	if err := keyring.Delete(KeychainService, key); err != nil {
		return keychainError(key, err)
	}
	return nil
}

func keychainError(key string, err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"locked", "dbus", "secret service", "not available", "access denied"} {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	return fmt.Errorf("keychain: %w", err)
}
