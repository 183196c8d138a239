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
	"encoding/json"
	"fmt"
	"strings"
)

// CredentialKeyPrefix namespaces credential records in the backends.
const CredentialKeyPrefix = "credentials/"

// CredentialKey returns the secret key holding records of credType.
func CredentialKey(credType string) string {
	return CredentialKeyPrefix + credType
}

// CredentialStore reads and writes credential records as JSON documents.
type CredentialStore struct {
	resolver *Resolver
}

// NewCredentialStore returns a store over r.
func NewCredentialStore(r *Resolver) *CredentialStore {
	return &CredentialStore{resolver: r}
}

// Credential returns the record stored for credType. It implements
// credential.Store.
func (s *CredentialStore) Credential(ctx context.Context, credType string) (map[string]any, error) {
	if strings.TrimSpace(credType) == "" {
		return nil, fmt.Errorf("%w: empty credential type", ErrSecretNotFound)
	}
	raw, err := s.resolver.Get(ctx, CredentialKey(credType))
	if err != nil {
		return nil, err
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode credential %s: %w", credType, err)
	}
	return rec, nil
}

// Save stores rec for credType in the named backend, or the highest
// priority writable one when backend is empty.
func (s *CredentialStore) Save(ctx context.Context, credType string, rec map[string]any, backend string) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode credential %s: %w", credType, err)
	}
	return s.resolver.Set(ctx, CredentialKey(credType), string(data), backend)
}

// Delete removes the record for credType.
func (s *CredentialStore) Delete(ctx context.Context, credType, backend string) error {
	return s.resolver.Delete(ctx, CredentialKey(credType), backend)
}

// ConfigRecords converts inline credential records from the config file
// into JSON values keyed for NewConfigBackend.
func ConfigRecords(records map[string]map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(records))
	for credType, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode credential %s: %w", credType, err)
		}
		out[CredentialKey(credType)] = string(data)
	}
	return out, nil
}
