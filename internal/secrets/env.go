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
	"os"
	"strings"
)

// EnvSecretPrefix prefixes every environment variable the env backend reads.
const EnvSecretPrefix = "HTTPNODE_SECRET_"

// EnvBackend reads secrets from environment variables. A key such as
// "credentials/httpbinApi" maps to HTTPNODE_SECRET_CREDENTIALS_HTTPBINAPI.
type EnvBackend struct {
	lookup func(string) (string, bool)
}

// NewEnvBackend returns a backend over the process environment.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{lookup: os.LookupEnv}
}

func (e *EnvBackend) Name() string    { return "env" }
func (e *EnvBackend) Available() bool { return true }
func (e *EnvBackend) Priority() int   { return EnvBackendPriority }
func (e *EnvBackend) ReadOnly() bool  { return true }

// Get returns the value of the variable for key. Empty values count as unset.
func (e *EnvBackend) Get(_ context.Context, key string) (string, error) {
	name := EnvVarName(key)
	if v, ok := e.lookup(name); ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s not set", ErrSecretNotFound, name)
}

func (e *EnvBackend) Set(context.Context, string, string) error { return ErrReadOnlyBackend }
func (e *EnvBackend) Delete(context.Context, string) error      { return ErrReadOnlyBackend }

// EnvVarName returns the environment variable consulted for key.
func EnvVarName(key string) string {
	r := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return EnvSecretPrefix + strings.ToUpper(r.Replace(key))
}
