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
	"fmt"
	"sort"
	"sync"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

// Factory constructs a node instance.
type Factory func() (Node, error)

// Registry maps node and credential type names to their implementations.
type Registry struct {
	mu          sync.RWMutex
	nodes       map[string]registered
	credentials map[string]*CredentialType
}

type registered struct {
	desc    *Description
	factory Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes:       make(map[string]registered),
		credentials: make(map[string]*CredentialType),
	}
}

// Register adds a node under desc.Name. Duplicate names are rejected.
func (r *Registry) Register(desc *Description, factory Factory) error {
	if desc == nil || desc.Name == "" {
		return &nodeerrors.ValidationError{Field: "name", Message: "node description requires a name"}
	}
	if factory == nil {
		return &nodeerrors.ValidationError{Field: "factory", Message: fmt.Sprintf("node %q has no factory", desc.Name)}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[desc.Name]; ok {
		return fmt.Errorf("node %q already registered", desc.Name)
	}
	r.nodes[desc.Name] = registered{desc: desc, factory: factory}
	return nil
}

// RegisterCredential adds a credential type. Duplicate names are rejected.
func (r *Registry) RegisterCredential(ct *CredentialType) error {
	if ct == nil || ct.Name == "" {
		return &nodeerrors.ValidationError{Field: "name", Message: "credential type requires a name"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.credentials[ct.Name]; ok {
		return fmt.Errorf("credential type %q already registered", ct.Name)
	}
	r.credentials[ct.Name] = ct
	return nil
}

// Create instantiates the named node.
func (r *Registry) Create(name string) (Node, error) {
	r.mu.RLock()
	reg, ok := r.nodes[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &nodeerrors.NotFoundError{Resource: "node", ID: name}
	}
	return reg.factory()
}

// Describe returns the descriptor of the named node.
func (r *Registry) Describe(name string) (*Description, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.nodes[name]
	if !ok {
		return nil, &nodeerrors.NotFoundError{Resource: "node", ID: name}
	}
	return reg.desc, nil
}

// Credential returns the named credential type.
func (r *Registry) Credential(name string) (*CredentialType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.credentials[name]
	if !ok {
		return nil, &nodeerrors.NotFoundError{Resource: "credential type", ID: name}
	}
	return ct, nil
}

// Names returns the registered node names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.nodes)
}

// CredentialNames returns the registered credential type names, sorted.
func (r *Registry) CredentialNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.credentials)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
