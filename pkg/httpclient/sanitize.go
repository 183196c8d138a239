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
	"net/url"
	"strings"
)

// sensitiveParams are substrings that mark a query parameter as secret.
var sensitiveParams = []string{
	"key",
	"token",
	"secret",
	"password",
	"passwd",
	"auth",
	"signature",
	"credential",
}

const redacted = "[REDACTED]"

// sanitizeURL returns u with the values of sensitive query parameters and
// any userinfo password replaced.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	safe := *u
	if safe.User != nil {
		if _, ok := safe.User.Password(); ok {
			safe.User = url.UserPassword(safe.User.Username(), redacted)
		}
	}
	q := safe.Query()
	for name := range q {
		if isSensitiveParam(name) {
			q.Set(name, redacted)
		}
	}
	safe.RawQuery = q.Encode()
	return safe.String()
}

// redactURL keeps only the scheme and host.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func isSensitiveParam(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveParams {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
