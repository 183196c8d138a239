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

// Package request builds outbound HTTP request descriptors from node
// parameters and a resolved credential.
//
// Build is pure: it never performs I/O and never fails. Converting a
// Descriptor into an *http.Request is left to the transport.
package request

import (
	"strings"
)

// Method is an upper-case HTTP method.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
	MethodHead   Method = "HEAD"
)

// ParseMethod upper-cases an operation tag such as "get" into a Method.
// It returns false for tags outside the supported set.
func ParseMethod(operation string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(operation)))
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead:
		return m, true
	}
	return m, false
}

// AllowsBody reports whether requests with this method may carry a body.
func (m Method) AllowsBody() bool {
	return m != MethodGet && m != MethodHead
}

// Pair is an ordered name/value entry used for headers and query parameters.
type Pair struct {
	Name  string
	Value string
}

// BodyKind identifies which body representation is active.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyForm
	BodyRaw
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyForm:
		return "form-urlencoded"
	case BodyRaw:
		return "raw"
	default:
		return "none"
	}
}

// Body is the request payload. Only the field matching Kind is meaningful.
type Body struct {
	Kind BodyKind

	// JSON is any value that encoding/json can marshal.
	JSON any

	// Form holds url-encoded fields in insertion order.
	Form []Pair

	// Raw is sent verbatim with ContentType.
	Raw         string
	ContentType string
}

// JSONBody returns a JSON body.
func JSONBody(v any) Body {
	return Body{Kind: BodyJSON, JSON: v}
}

// FormBody returns a form-urlencoded body.
func FormBody(fields ...Pair) Body {
	return Body{Kind: BodyForm, Form: fields}
}

// RawBody returns a raw string body sent with the given content type.
func RawBody(raw, contentType string) Body {
	return Body{Kind: BodyRaw, Raw: raw, ContentType: contentType}
}

// BasicAuth is a username/password pair applied by the transport.
type BasicAuth struct {
	Username string
	Password string
}

// Descriptor is the fully resolved request to send.
type Descriptor struct {
	Method Method
	URL    string

	// Headers keys are case-sensitive; the last write wins.
	Headers map[string]string

	// Query parameters appended to URL by the transport.
	Query map[string]string

	Body Body

	// Auth, when set, is sent as HTTP basic authentication. The builder
	// never sets it together with an Authorization header.
	Auth *BasicAuth
}

// Header returns the value for name, matching the key exactly.
func (d *Descriptor) Header(name string) (string, bool) {
	v, ok := d.Headers[name]
	return v, ok
}
