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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

// HTTPRequest converts the descriptor into an *http.Request bound to ctx.
// Query parameters are merged with any already present in URL.
func (d *Descriptor) HTTPRequest(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, nodeerrors.Wrap(err, "parse url")
	}
	if len(d.Query) > 0 {
		q := u.Query()
		for k, v := range d.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	body, err := d.Body.reader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, string(d.Method), u.String(), body)
	if err != nil {
		return nil, nodeerrors.Wrap(err, "create request")
	}

	// Assign directly so header keys keep the caller's casing.
	for k, v := range d.Headers {
		req.Header[k] = []string{v}
	}
	if d.Auth != nil {
		req.SetBasicAuth(d.Auth.Username, d.Auth.Password)
	}
	return req, nil
}

func (b Body) reader() (io.Reader, error) {
	switch b.Kind {
	case BodyJSON:
		data, err := json.Marshal(b.JSON)
		if err != nil {
			return nil, nodeerrors.Wrap(err, "encode json body")
		}
		return bytes.NewReader(data), nil
	case BodyForm:
		var sb strings.Builder
		for i, f := range b.Form {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(f.Name))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(f.Value))
		}
		return strings.NewReader(sb.String()), nil
	case BodyRaw:
		return strings.NewReader(b.Raw), nil
	default:
		return nil, nil
	}
}
