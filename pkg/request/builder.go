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

package request

import (
	"github.com/tombee/conductor-httpnodes/pkg/credential"
)

const (
	// DefaultAPIKeyHeader is the header used for header-placed API keys
	// when the credential does not name one.
	DefaultAPIKeyHeader = "X-API-Key"

	// DefaultAPIKeyQuery is the query parameter used for query-placed API
	// keys when the credential does not name one.
	DefaultAPIKeyQuery = "api_key"

	contentTypeForm = "application/x-www-form-urlencoded"
)

// Defaults holds the values the builder seeds into every request.
type Defaults struct {
	// Headers are applied before caller headers, in order.
	Headers []Pair

	APIKeyHeader string
	APIKeyQuery  string
}

// DefaultDefaults returns the stock defaults: JSON Accept and Content-Type
// headers and the X-API-Key / api_key key names.
func DefaultDefaults() Defaults {
	return Defaults{
		Headers: []Pair{
			{Name: "Accept", Value: "application/json"},
			{Name: "Content-Type", Value: "application/json"},
		},
		APIKeyHeader: DefaultAPIKeyHeader,
		APIKeyQuery:  DefaultAPIKeyQuery,
	}
}

// Spec is the caller input to Build.
type Spec struct {
	Method  Method
	URL     string
	Headers []Pair
	Query   []Pair
	Body    Body
}

// Builder composes request descriptors. The zero value is not useful;
// use NewBuilder.
type Builder struct {
	defaults Defaults
}

// NewBuilder returns a builder seeded with d. Empty API key names fall back
// to the package defaults.
func NewBuilder(d Defaults) *Builder {
	if d.APIKeyHeader == "" {
		d.APIKeyHeader = DefaultAPIKeyHeader
	}
	if d.APIKeyQuery == "" {
		d.APIKeyQuery = DefaultAPIKeyQuery
	}
	return &Builder{defaults: d}
}

// Build produces the descriptor for spec with cred applied.
//
// Header precedence, lowest first: defaults, the content type implied by a
// form or raw body, caller headers, then credential headers. At most one
// authentication mechanism is applied.
func (b *Builder) Build(spec Spec, cred credential.Credential) *Descriptor {
	d := &Descriptor{
		Method:  spec.Method,
		URL:     spec.URL,
		Headers: make(map[string]string, len(b.defaults.Headers)+len(spec.Headers)+1),
		Query:   make(map[string]string, len(spec.Query)),
		Body:    spec.Body,
	}

	for _, h := range b.defaults.Headers {
		d.Headers[h.Name] = h.Value
	}
	switch spec.Body.Kind {
	case BodyForm:
		d.Headers["Content-Type"] = contentTypeForm
	case BodyRaw:
		if spec.Body.ContentType != "" {
			d.Headers["Content-Type"] = spec.Body.ContentType
		}
	}
	for _, h := range spec.Headers {
		d.Headers[h.Name] = h.Value
	}
	for _, q := range spec.Query {
		d.Query[q.Name] = q.Value
	}

	b.applyCredential(d, cred)
	return d
}

func (b *Builder) applyCredential(d *Descriptor, cred credential.Credential) {
	switch c := cred.(type) {
	case credential.Bearer:
		if c.Token != "" {
			d.Headers["Authorization"] = "Bearer " + c.Token
		}
	case credential.Basic:
		if c.Username != "" && c.Password != "" {
			d.Auth = &BasicAuth{Username: c.Username, Password: c.Password}
		}
	case credential.APIKey:
		if c.Key == "" {
			return
		}
		switch c.Location {
		case credential.LocationHeader:
			d.Headers[orDefault(c.Name, b.defaults.APIKeyHeader)] = c.Key
		case credential.LocationQuery:
			d.Query[orDefault(c.Name, b.defaults.APIKeyQuery)] = c.Key
		}
	case credential.Custom:
		for _, h := range c.Headers {
			d.Headers[h.Name] = h.Value
		}
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
