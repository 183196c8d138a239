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

func showAuth(modes ...credential.AuthMode) *node.DisplayOptions {
	vals := make([]any, len(modes))
	for i, m := range modes {
		vals[i] = string(m)
	}
	return &node.DisplayOptions{Show: map[string][]any{"authType": vals}}
}

var secret = &node.TypeOptions{Password: true}

// GenericHTTPAuth describes the genericHttpAuthApi credential record.
func GenericHTTPAuth() *node.CredentialType {
	return &node.CredentialType{
		Name:        credential.TypeGenericHTTPAuth,
		DisplayName: "Generic HTTP Authentication API",
		Properties: []node.Property{
			{
				DisplayName: "Authentication Type",
				Name:        "authType",
				Type:        node.TypeSelect,
				Default:     string(credential.ModeBearer),
				Options: []node.Option{
					{Name: "Bearer Token", Value: string(credential.ModeBearer), Description: "Bearer token authentication"},
					{Name: "API Key", Value: string(credential.ModeAPIKey), Description: "API key authentication"},
					{Name: "Basic Auth", Value: string(credential.ModeBasic), Description: "Basic username/password authentication"},
					{Name: "Custom Headers", Value: string(credential.ModeCustom), Description: "Custom authentication headers"},
				},
			},
			{
				DisplayName:    "Bearer Token",
				Name:           "bearerToken",
				Type:           node.TypeString,
				Default:        "",
				TypeOptions:    secret,
				DisplayOptions: showAuth(credential.ModeBearer),
			},
			{
				DisplayName:    "API Key",
				Name:           "apiKey",
				Type:           node.TypeString,
				Default:        "",
				TypeOptions:    secret,
				DisplayOptions: showAuth(credential.ModeAPIKey),
			},
			{
				DisplayName: "API Key Location",
				Name:        "apiKeyLocation",
				Type:        node.TypeSelect,
				Default:     string(credential.LocationHeader),
				Options: []node.Option{
					{Name: "Header", Value: string(credential.LocationHeader), Description: "Send API key in request headers"},
					{Name: "Query Parameter", Value: string(credential.LocationQuery), Description: "Send API key as query parameter"},
				},
				DisplayOptions: showAuth(credential.ModeAPIKey),
			},
			{
				DisplayName:    "API Key Name",
				Name:           "apiKeyName",
				Type:           node.TypeString,
				Default:        "",
				Placeholder:    "X-API-Key",
				Description:    "Header or query parameter name. Defaults to X-API-Key or api_key.",
				DisplayOptions: showAuth(credential.ModeAPIKey),
			},
			{
				DisplayName:    "Username",
				Name:           "username",
				Type:           node.TypeString,
				Default:        "",
				DisplayOptions: showAuth(credential.ModeBasic),
			},
			{
				DisplayName:    "Password",
				Name:           "password",
				Type:           node.TypeString,
				Default:        "",
				TypeOptions:    secret,
				DisplayOptions: showAuth(credential.ModeBasic),
			},
			{
				DisplayName: "Custom Headers",
				Name:        "customHeaders",
				Type:        node.TypeFixedCollection,
				Default:     map[string]any{},
				Placeholder: "Add Custom Header",
				TypeOptions: &node.TypeOptions{MultipleValues: true},
				Options: []node.Option{{
					Name:        "keyvalue",
					DisplayName: "Header",
					Values: []node.Property{
						{DisplayName: "Name", Name: "name", Type: node.TypeString, Default: "", Required: true, Placeholder: "Authorization"},
						{DisplayName: "Value", Name: "value", Type: node.TypeString, Default: "", Required: true, TypeOptions: secret},
					},
				}},
				DisplayOptions: showAuth(credential.ModeCustom),
			},
		},
		Test: &node.CredentialTest{Method: "GET", URL: "https://httpbin.org/bearer"},
	}
}

// HTTPBin describes the httpbinApi credential record.
func HTTPBin() *node.CredentialType {
	return &node.CredentialType{
		Name:        credential.TypeHTTPBin,
		DisplayName: "HttpBin API",
		Properties: []node.Property{{
			DisplayName: "Token",
			Name:        "token",
			Type:        node.TypeString,
			Default:     "",
			TypeOptions: secret,
		}},
		Test: &node.CredentialTest{Method: "GET", URL: "https://httpbin.org/bearer"},
	}
}
