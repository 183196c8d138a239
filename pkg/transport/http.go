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

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
	"github.com/tombee/conductor-httpnodes/pkg/httpclient"
	"github.com/tombee/conductor-httpnodes/pkg/request"
)

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 10 << 20

// HTTPTransport sends descriptors through an *http.Client.
type HTTPTransport struct {
	client      *http.Client
	maxBodySize int64
}

// NewHTTPTransport returns a transport over client. A nil client is
// replaced by one built from httpclient.DefaultConfig, or by
// http.DefaultClient if that cannot be built.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		c, err := httpclient.New(httpclient.DefaultConfig())
		if err != nil {
			c = http.DefaultClient
		}
		client = c
	}
	return &HTTPTransport{client: client, maxBodySize: DefaultMaxBodySize}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, d *request.Descriptor) (*Response, error) {
	req, err := d.HTTPRequest(ctx)
	if err != nil {
		return nil, NewError(ErrorTypeInvalidReq, fmt.Sprintf("invalid request: %v", err), err)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classify(ctx, req, start, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize+1))
	if err != nil {
		return nil, classify(ctx, req, start, err)
	}
	if int64(len(body)) > t.maxBodySize {
		return nil, NewError(ErrorTypeClient, fmt.Sprintf("response body exceeds %d bytes", t.maxBodySize), nil)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, StatusError(out)
	}
	return out, nil
}

func classify(ctx context.Context, req *http.Request, start time.Time, err error) *Error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return NewError(ErrorTypeCancelled, "request cancelled", err)
	case errors.Is(err, httpclient.ErrInsecureRedirect):
		return NewError(ErrorTypeRedirect, "redirect to non-https URL refused", err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		// Host only: the full URL may carry query credentials.
		te := &nodeerrors.TimeoutError{
			Operation: req.Method + " " + req.URL.Host,
			Duration:  time.Since(start).Round(time.Millisecond),
			Cause:     err,
		}
		return NewError(ErrorTypeTimeout, te.Error(), te)
	}
	return NewError(ErrorTypeConnection, fmt.Sprintf("request failed: %v", unwrapURLError(err)), err)
}

// unwrapURLError drops the "Get \"url\":" prefix net/http adds, since the
// URL may carry query credentials.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
