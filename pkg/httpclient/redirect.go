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

package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInsecureRedirect is returned when an https-only client is redirected
// away from https.
var ErrInsecureRedirect = errors.New("redirect to non-https URL refused")

const maxRedirects = 10

func redirectPolicy(cfg Config) func(*http.Request, []*http.Request) error {
	if !cfg.HTTPSOnly {
		return nil
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if req.URL.Scheme != "https" {
			return fmt.Errorf("%w: %s://%s", ErrInsecureRedirect, req.URL.Scheme, req.URL.Host)
		}
		return nil
	}
}
