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
	"reflect"
)

// PropertyType is the widget kind of a parameter.
type PropertyType string

const (
	TypeString          PropertyType = "string"
	TypeNumber          PropertyType = "number"
	TypeBoolean         PropertyType = "boolean"
	TypeSelect          PropertyType = "options"
	TypeJSON            PropertyType = "json"
	TypeFixedCollection PropertyType = "fixedCollection"
	TypeNotice          PropertyType = "notice"
)

// Description is the static, declarative descriptor of a node.
type Description struct {
	DisplayName string           `json:"displayName" yaml:"displayName"`
	Name        string           `json:"name" yaml:"name"`
	Icon        string           `json:"icon,omitempty" yaml:"icon,omitempty"`
	Group       []string         `json:"group" yaml:"group"`
	Version     int              `json:"version" yaml:"version"`
	Subtitle    string           `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Description string           `json:"description" yaml:"description"`
	Defaults    map[string]any   `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Inputs      []string         `json:"inputs" yaml:"inputs"`
	Outputs     []string         `json:"outputs" yaml:"outputs"`
	Credentials []CredentialSlot `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	RequestDefaults *RequestDefaults `json:"requestDefaults,omitempty" yaml:"requestDefaults,omitempty"`

	Properties []Property `json:"properties" yaml:"properties"`
}

// RequestDefaults are applied to every request the node builds.
type RequestDefaults struct {
	BaseURL string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// CredentialSlot declares a credential type the node may use.
type CredentialSlot struct {
	Name           string          `json:"name" yaml:"name"`
	Required       bool            `json:"required" yaml:"required"`
	DisplayOptions *DisplayOptions `json:"displayOptions,omitempty" yaml:"displayOptions,omitempty"`
}

// Property describes one parameter.
type Property struct {
	DisplayName    string          `json:"displayName" yaml:"displayName"`
	Name           string          `json:"name" yaml:"name"`
	Type           PropertyType    `json:"type" yaml:"type"`
	Default        any             `json:"default" yaml:"default"`
	Required       bool            `json:"required,omitempty" yaml:"required,omitempty"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder    string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options        []Option        `json:"options,omitempty" yaml:"options,omitempty"`
	TypeOptions    *TypeOptions    `json:"typeOptions,omitempty" yaml:"typeOptions,omitempty"`
	DisplayOptions *DisplayOptions `json:"displayOptions,omitempty" yaml:"displayOptions,omitempty"`
}

// Option is a choice of an options property, or a group of a
// fixedCollection when Values is set.
type Option struct {
	Name        string     `json:"name" yaml:"name"`
	Value       any        `json:"value,omitempty" yaml:"value,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Action      string     `json:"action,omitempty" yaml:"action,omitempty"`
	DisplayName string     `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Values      []Property `json:"values,omitempty" yaml:"values,omitempty"`
}

// TypeOptions tune how a property is edited.
type TypeOptions struct {
	MultipleValues bool `json:"multipleValues,omitempty" yaml:"multipleValues,omitempty"`
	Password       bool `json:"password,omitempty" yaml:"password,omitempty"`
	Rows           int  `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// DisplayOptions make a property conditional on sibling values. Every
// Show entry must match and no Hide entry may match.
type DisplayOptions struct {
	Show map[string][]any `json:"show,omitempty" yaml:"show,omitempty"`
	Hide map[string][]any `json:"hide,omitempty" yaml:"hide,omitempty"`
}

// Visible evaluates the display conditions against values.
func (d *DisplayOptions) Visible(values map[string]any) bool {
	if d == nil {
		return true
	}
	for name, allowed := range d.Show {
		if !matchesAny(values[name], allowed) {
			return false
		}
	}
	for name, hidden := range d.Hide {
		if matchesAny(values[name], hidden) {
			return false
		}
	}
	return true
}

// Visible reports whether p is shown for values.
func (p *Property) Visible(values map[string]any) bool {
	return p.DisplayOptions.Visible(values)
}

// DefaultValues returns the default of every top-level property. When a
// name is declared more than once the first declaration wins.
func (d *Description) DefaultValues() map[string]any {
	out := make(map[string]any, len(d.Properties))
	for _, p := range d.Properties {
		if _, ok := out[p.Name]; !ok && p.Type != TypeNotice {
			out[p.Name] = p.Default
		}
	}
	return out
}

// VisibleProperties returns the properties shown for values, with
// property defaults filling unset names.
func (d *Description) VisibleProperties(values map[string]any) []Property {
	merged := d.DefaultValues()
	for k, v := range values {
		merged[k] = v
	}
	var out []Property
	for _, p := range d.Properties {
		if p.Visible(merged) {
			out = append(out, p)
		}
	}
	return out
}

// Property returns the first property named name regardless of display
// conditions.
func (d *Description) Property(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// CredentialType describes a stored credential record.
type CredentialType struct {
	Name             string          `json:"name" yaml:"name"`
	DisplayName      string          `json:"displayName" yaml:"displayName"`
	DocumentationURL string          `json:"documentationUrl,omitempty" yaml:"documentationUrl,omitempty"`
	Properties       []Property      `json:"properties" yaml:"properties"`
	Test             *CredentialTest `json:"test,omitempty" yaml:"test,omitempty"`
}

// CredentialTest is the request a host may send to verify a credential.
type CredentialTest struct {
	Method string `json:"method" yaml:"method"`
	URL    string `json:"url" yaml:"url"`
}

// SecretFields returns the names of password-typed properties.
func (c *CredentialType) SecretFields() []string {
	var out []string
	for _, p := range c.Properties {
		if p.TypeOptions != nil && p.TypeOptions.Password {
			out = append(out, p.Name)
		}
	}
	return out
}

func matchesAny(v any, candidates []any) bool {
	for _, c := range candidates {
		if reflect.DeepEqual(v, c) {
			return true
		}
	}
	return false
}
