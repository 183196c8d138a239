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

// Package httpclient builds the *http.Client that HTTP nodes dispatch through.
//
// Every client is layered the same way, outermost first:
//
//	retry -> rate limit -> logging -> http.Transport
//
// The logging layer sets User-Agent, forwards the correlation ID from the
// request context as X-Correlation-ID and emits one slog record per attempt
// with sensitive query parameters redacted. With Config.RedactURLs set, only
// the scheme and host are logged.
//
// Clients built with Config.HTTPSOnly refuse to follow redirects to any
// scheme other than https, so a guarded https URL cannot be bounced onto
// plain http.
//
//	cfg := httpclient.DefaultConfig()
//	cfg.HTTPSOnly = true
//	client, err := httpclient.New(cfg)
package httpclient
