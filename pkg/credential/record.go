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
	"github.com/mitchellh/mapstructure"
)

// Credential type names, as selected by a node's "authentication" parameter.
const (
	// TypeGenericHTTPAuth is a record whose authType field picks the variant.
	TypeGenericHTTPAuth = "genericHttpAuthApi"

	// TypeHTTPBin is a record holding a single bearer token.
	TypeHTTPBin = "httpbinApi"

	// AuthenticationNone disables credential lookup entirely.
	AuthenticationNone = "none"
)

// genericRecord is the stored shape of a genericHttpAuthApi credential.
type genericRecord struct {
	AuthType       string `mapstructure:"authType"`
	BearerToken    string `mapstructure:"bearerToken"`
	APIKey         string `mapstructure:"apiKey"`
	APIKeyLocation string `mapstructure:"apiKeyLocation"`
	APIKeyName     string `mapstructure:"apiKeyName"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	CustomHeaders  struct {
		KeyValue []Header `mapstructure:"keyvalue"`
	} `mapstructure:"customHeaders"`
}

// httpbinRecord is the stored shape of an httpbinApi credential.
type httpbinRecord struct {
	Token string `mapstructure:"token"`
}

// FromRecord converts a raw stored record of the given credential type into
// a Credential. Empty records, unknown types, unknown authType tags and
// records that do not decode all yield None.
func FromRecord(credType string, raw map[string]any) Credential {
	if len(raw) == 0 {
		return None{}
	}

	switch credType {
	case TypeGenericHTTPAuth:
		var rec genericRecord
		if err := mapstructure.WeakDecode(raw, &rec); err != nil {
			return None{}
		}
		return rec.credential()
	case TypeHTTPBin:
		var rec httpbinRecord
		if err := mapstructure.WeakDecode(raw, &rec); err != nil {
			return None{}
		}
		return Bearer{Token: rec.Token}
	default:
		return None{}
	}
}

func (r genericRecord) credential() Credential {
	mode := AuthMode(r.AuthType)
	if r.AuthType == "" {
		mode = ModeBearer
	}

	switch mode {
	case ModeBearer:
		return Bearer{Token: r.BearerToken}
	case ModeAPIKey:
		loc := APIKeyLocation(r.APIKeyLocation)
		if loc == "" {
			loc = LocationHeader
		}
		return APIKey{Key: r.APIKey, Location: loc, Name: r.APIKeyName}
	case ModeBasic:
		return Basic{Username: r.Username, Password: r.Password}
	case ModeCustom:
		return Custom{Headers: r.CustomHeaders.KeyValue}
	default:
		return None{}
	}
}
