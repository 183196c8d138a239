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

// Package credential models the authentication payloads an HTTP node can
// apply to an outbound request.
//
// A Credential is a closed sum type: one of None, Bearer, APIKey, Basic or
// Custom. Exactly one variant is ever attached to a request, so callers
// switch on the concrete type rather than probing optional fields:
//
//	switch c := cred.(type) {
//	case credential.Bearer:
//	    headers["Authorization"] = "Bearer " + c.Token
//	case credential.Basic:
//	    ...
//	}
package credential

// AuthMode is the tag that selects a Credential variant.
type AuthMode string

const (
	ModeNone   AuthMode = "none"
	ModeBearer AuthMode = "bearer"
	ModeAPIKey AuthMode = "apiKey"
	ModeBasic  AuthMode = "basic"
	ModeCustom AuthMode = "custom"
)

// Valid reports whether m is one of the known tags.
func (m AuthMode) Valid() bool {
	switch m {
	case ModeNone, ModeBearer, ModeAPIKey, ModeBasic, ModeCustom:
		return true
	}
	return false
}

// Credential is implemented only by the variants in this package.
type Credential interface {
	// Mode returns the tag of this variant.
	Mode() AuthMode

	// Secrets returns the sensitive values carried by the credential,
	// for registration with a log masker.
	Secrets() []string

	sealed()
}

// None applies no authentication.
type None struct{}

func (None) Mode() AuthMode    { return ModeNone }
func (None) Secrets() []string { return nil }
func (None) sealed()           {}

// Bearer sends "Authorization: Bearer <Token>".
type Bearer struct {
	Token string
}

func (Bearer) Mode() AuthMode { return ModeBearer }
func (b Bearer) Secrets() []string {
	return nonEmpty(b.Token)
}
func (Bearer) sealed() {}

// APIKeyLocation selects where an API key is sent.
type APIKeyLocation string

const (
	LocationHeader APIKeyLocation = "header"
	LocationQuery  APIKeyLocation = "query"
)

// APIKey sends Key in a header or query parameter called Name.
// An empty Name means the request builder's default for Location.
type APIKey struct {
	Key      string
	Location APIKeyLocation
	Name     string
}

func (APIKey) Mode() AuthMode { return ModeAPIKey }
func (a APIKey) Secrets() []string {
	return nonEmpty(a.Key)
}
func (APIKey) sealed() {}

// Basic sends HTTP basic authentication.
type Basic struct {
	Username string
	Password string
}

func (Basic) Mode() AuthMode { return ModeBasic }
func (b Basic) Secrets() []string {
	return nonEmpty(b.Password)
}
func (Basic) sealed() {}

// Header is a single name/value pair. Order is preserved.
type Header struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Value string `json:"value" yaml:"value" mapstructure:"value"`
}

// Custom overlays an ordered list of headers onto the request.
type Custom struct {
	Headers []Header
}

func (Custom) Mode() AuthMode { return ModeCustom }
func (c Custom) Secrets() []string {
	out := make([]string, 0, len(c.Headers))
	for _, h := range c.Headers {
		out = append(out, nonEmpty(h.Value)...)
	}
	return out
}
func (Custom) sealed() {}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
