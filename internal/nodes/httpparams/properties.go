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

package httpparams

import (
	"github.com/tombee/conductor-httpnodes/pkg/credential"
	"github.com/tombee/conductor-httpnodes/pkg/node"
)

var bodyMethods = []any{"post", "put", "patch", "delete"}

// Properties returns the parameter descriptors shared by the HTTP nodes.
// With hipaa set the output and error-mode toggles are included.
func Properties(hipaa bool) []node.Property {
	urlDesc := "The URL to make the request to"
	if hipaa {
		urlDesc = "The HTTPS URL to make the request to. Plain HTTP is refused."
	}

	props := []node.Property{
		{
			DisplayName: "Authentication",
			Name:        "authentication",
			Type:        node.TypeSelect,
			Default:     credential.AuthenticationNone,
			Description: "Credential type used to authenticate the request",
			Options: []node.Option{
				{Name: "None", Value: credential.AuthenticationNone},
				{Name: "Generic HTTP Auth", Value: credential.TypeGenericHTTPAuth},
				{Name: "HttpBin API", Value: credential.TypeHTTPBin},
			},
		},
		{
			DisplayName: "Operation",
			Name:        "operation",
			Type:        node.TypeSelect,
			Default:     "get",
			Options: []node.Option{
				{Name: "DELETE", Value: "delete", Action: "Perform a DELETE request"},
				{Name: "GET", Value: "get", Action: "Perform a GET request"},
				{Name: "HEAD", Value: "head", Action: "Perform a HEAD request"},
				{Name: "PATCH", Value: "patch", Action: "Perform a PATCH request"},
				{Name: "POST", Value: "post", Action: "Perform a POST request"},
				{Name: "PUT", Value: "put", Action: "Perform a PUT request"},
			},
		},
		{
			DisplayName: "URL",
			Name:        "url",
			Type:        node.TypeString,
			Default:     "",
			Required:    true,
			Placeholder: "https://api.example.com/endpoint",
			Description: urlDesc,
		},
		pairCollection("Headers", "headers", "Header", "name", "Content-Type", "Headers sent with the request", nil),
		{
			DisplayName: "Type of Data",
			Name:        "typeofData",
			Type:        node.TypeSelect,
			Default:     DataQueryParameter,
			Description: "GET and HEAD requests only send query parameters",
			Options:     []node.Option{{Name: "Query", Value: DataQueryParameter}},
			DisplayOptions: &node.DisplayOptions{
				Show: map[string][]any{"operation": {"get", "head"}},
			},
		},
		{
			DisplayName: "Type of Data",
			Name:        "typeofData",
			Type:        node.TypeSelect,
			Default:     DataJSON,
			Options: []node.Option{
				{Name: "Query", Value: DataQueryParameter},
				{Name: "JSON", Value: DataJSON},
			},
			DisplayOptions: &node.DisplayOptions{
				Show: map[string][]any{"operation": bodyMethods},
			},
		},
		pairCollection("Query Parameters", "arguments", "Key:Value", "key", "", "The request's query parameters",
			&node.DisplayOptions{Show: map[string][]any{"typeofData": {DataQueryParameter}}}),
		pairCollection("JSON Object", "arguments", "Key:Value", "key", "", "Fields of the JSON request body",
			&node.DisplayOptions{Show: map[string][]any{"typeofData": {DataJSON}}}),
		{
			DisplayName: "Send Body",
			Name:        "sendBody",
			Type:        node.TypeBoolean,
			Default:     false,
			Description: "Send an explicit body. Takes precedence over JSON Object.",
			DisplayOptions: &node.DisplayOptions{
				Show: map[string][]any{"operation": bodyMethods},
			},
		},
		{
			DisplayName: "Body Content Type",
			Name:        "contentType",
			Type:        node.TypeSelect,
			Default:     ContentJSON,
			Options: []node.Option{
				{Name: "JSON", Value: ContentJSON},
				{Name: "Form Urlencoded", Value: ContentForm},
				{Name: "Raw", Value: ContentRaw},
			},
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{"sendBody": {true}}},
		},
		{
			DisplayName: "Specify Body",
			Name:        "specifyBody",
			Type:        node.TypeSelect,
			Default:     SpecifyKeypair,
			Options: []node.Option{
				{Name: "Using Fields Below", Value: SpecifyKeypair},
				{Name: "Using JSON", Value: SpecifyJSON},
			},
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{
				"sendBody":    {true},
				"contentType": {ContentJSON, ContentForm},
			}},
		},
		pairCollection("Body Parameters", "bodyParameters", "Parameter", "name", "", "",
			&node.DisplayOptions{Show: map[string][]any{
				"sendBody":    {true},
				"specifyBody": {SpecifyKeypair},
			}, Hide: map[string][]any{"contentType": {ContentRaw}}}),
		{
			DisplayName: "JSON",
			Name:        "jsonBody",
			Type:        node.TypeJSON,
			Default:     "",
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{
				"sendBody":    {true},
				"specifyBody": {SpecifyJSON},
			}, Hide: map[string][]any{"contentType": {ContentRaw}}},
		},
		{
			DisplayName: "Content Type",
			Name:        "rawContentType",
			Type:        node.TypeString,
			Default:     "text/plain",
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{
				"sendBody":    {true},
				"contentType": {ContentRaw},
			}},
		},
		{
			DisplayName: "Body",
			Name:        "body",
			Type:        node.TypeString,
			Default:     "",
			TypeOptions: &node.TypeOptions{Rows: 5},
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{
				"sendBody":    {true},
				"contentType": {ContentRaw},
			}},
		},
	}

	if !hipaa {
		return props
	}
	return append(props,
		node.Property{
			DisplayName: "Output Response",
			Name:        "outputResponse",
			Type:        node.TypeBoolean,
			Default:     true,
			Description: "Whether the response body is output. When off only the status code is returned.",
		},
		node.Property{
			DisplayName: "HIPAA Error Mode",
			Name:        "hipaaErrorMode",
			Type:        node.TypeBoolean,
			Default:     true,
			Description: "Replace error details with a generic message",
		},
		node.Property{
			DisplayName: "Only HTTPS URLs are accepted. Request and error details are kept out of logs and output.",
			Name:        "hipaaNotice",
			Type:        node.TypeNotice,
			Default:     "",
		},
	)
}

// CredentialSlots returns the credential slots of the HTTP nodes, each
// shown when its authentication option is selected.
func CredentialSlots() []node.CredentialSlot {
	slot := func(name string) node.CredentialSlot {
		return node.CredentialSlot{
			Name: name,
			DisplayOptions: &node.DisplayOptions{
				Show: map[string][]any{"authentication": {name}},
			},
		}
	}
	return []node.CredentialSlot{slot(credential.TypeGenericHTTPAuth), slot(credential.TypeHTTPBin)}
}

func pairCollection(display, name, group, keyField, placeholder, desc string, show *node.DisplayOptions) node.Property {
	keyDisplay := "Key"
	if keyField == "name" {
		keyDisplay = "Name"
	}
	return node.Property{
		DisplayName:    display,
		Name:           name,
		Type:           node.TypeFixedCollection,
		Default:        map[string]any{},
		Description:    desc,
		Placeholder:    "Add " + group,
		TypeOptions:    &node.TypeOptions{MultipleValues: true},
		DisplayOptions: show,
		Options: []node.Option{{
			Name:        collectionKey(name),
			DisplayName: group,
			Values: []node.Property{
				{DisplayName: keyDisplay, Name: keyField, Type: node.TypeString, Default: "", Required: true, Placeholder: placeholder},
				{DisplayName: "Value", Name: "value", Type: node.TypeString, Default: ""},
			},
		}},
	}
}

func collectionKey(name string) string {
	if name == "bodyParameters" {
		return "parameters"
	}
	return "keyvalue"
}
