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

package credential

import (
	"context"
	"fmt"
	"log/slog"
)

// Store looks up the raw record stored for a credential type.
type Store interface {
	Credential(ctx context.Context, credType string) (map[string]any, error)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, credType string) (map[string]any, error)

// Credential implements Store.
func (f StoreFunc) Credential(ctx context.Context, credType string) (map[string]any, error) {
	return f(ctx, credType)
}

// Resolve returns the credential selected by the authentication parameter.
//
// Resolve never fails. "none", a nil store, a lookup error (missing or
// misconfigured credential), a panicking store and a record that does not
// match its type all resolve to None, and the request goes out
// unauthenticated.
func Resolve(ctx context.Context, store Store, authentication string) (cred Credential) {
	if authentication == "" || authentication == AuthenticationNone || store == nil {
		return None{}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.WarnContext(ctx, "credential store panicked, continuing unauthenticated",
				"credential_type", authentication,
				"panic", fmt.Sprint(r),
			)
			cred = None{}
		}
	}()

	raw, err := store.Credential(ctx, authentication)
	if err != nil {
		slog.DebugContext(ctx, "credential unavailable, continuing unauthenticated",
			"credential_type", authentication,
			"error", err.Error(),
		)
		return None{}
	}

	return FromRecord(authentication, raw)
}
