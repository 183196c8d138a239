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

// Package hipaarequest implements the hipaaHttpRequest node. It behaves like
// httpRequest but refuses plain HTTP, keeps request details out of logs and
// by default replaces error details with a fixed message.
package hipaarequest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tombee/conductor-httpnodes/internal/log"
	"github.com/tombee/conductor-httpnodes/internal/nodes/httpparams"
	"github.com/tombee/conductor-httpnodes/pkg/credential"
	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
	"github.com/tombee/conductor-httpnodes/pkg/httpclient"
	"github.com/tombee/conductor-httpnodes/pkg/node"
	"github.com/tombee/conductor-httpnodes/pkg/policy"
	"github.com/tombee/conductor-httpnodes/pkg/request"
	"github.com/tombee/conductor-httpnodes/pkg/secrets"
	"github.com/tombee/conductor-httpnodes/pkg/transport"
)

// Name is the registered node name.
const Name = "hipaaHttpRequest"

// Node is the HIPAA HTTP request node.
type Node struct {
	builder   *request.Builder
	transport transport.Transport
	masker    *secrets.Masker
	clientCfg httpclient.Config
}

// Option configures a Node.
type Option func(*Node)

// WithTransport replaces the HTTP transport. The HTTPS guard still runs
// before every request.
func WithTransport(t transport.Transport) Option {
	return func(n *Node) { n.transport = t }
}

// WithClientConfig sets the configuration of the default HTTP client.
// HTTPSOnly and RedactURLs are always forced on.
func WithClientConfig(cfg httpclient.Config) Option {
	return func(n *Node) { n.clientCfg = cfg }
}

// WithMasker registers resolved credential values with m.
func WithMasker(m *secrets.Masker) Option {
	return func(n *Node) { n.masker = m }
}

// WithDefaults replaces the request defaults.
func WithDefaults(d request.Defaults) Option {
	return func(n *Node) { n.builder = request.NewBuilder(d) }
}

// New creates a Node.
func New(opts ...Option) (*Node, error) {
	n := &Node{
		builder:   request.NewBuilder(request.DefaultDefaults()),
		clientCfg: httpclient.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.transport == nil {
		cfg := n.clientCfg
		cfg.HTTPSOnly = true
		cfg.RedactURLs = true
		client, err := httpclient.New(cfg)
		if err != nil {
			return nil, err
		}
		n.transport = transport.NewHTTPTransport(client)
	}
	return n, nil
}

// Describe returns the static descriptor of the node.
func Describe() *node.Description {
	return &node.Description{
		DisplayName: "HIPAA HTTP Request",
		Name:        Name,
		Group:       []string{"transform"},
		Version:     1,
		Subtitle:    `={{$parameter["operation"]}}`,
		Description: "Make HTTPS requests with HIPAA-safe logging and error output",
		Defaults:    map[string]any{"name": "HIPAA HTTP Request"},
		Inputs:      []string{"main"},
		Outputs:     []string{"main"},
		Credentials: httpparams.CredentialSlots(),
		RequestDefaults: &node.RequestDefaults{
			Headers: map[string]string{
				"Accept":       "application/json",
				"Content-Type": "application/json",
			},
		},
		Properties: httpparams.Properties(true),
	}
}

// Description implements node.Node.
func (n *Node) Description() *node.Description { return Describe() }

// Execute implements node.Node.
//
// For every item the URL is checked before any credential is resolved or
// request built. Failure records honour the item's hipaaErrorMode, which
// stays on when the parameters could not be decoded.
func (n *Node) Execute(ctx context.Context, ec *node.ExecuteContext) ([]node.Result, error) {
	hipaaMode := make(map[int]bool, len(ec.Items))

	exec := &node.Executor{
		Node:           Name,
		ContinueOnFail: ec.ContinueOnFail,
		Present: func(i int, err error) node.Result {
			mode, ok := hipaaMode[i]
			return node.Present(err, mode || !ok)
		},
		LogFailure: logFailure,
		Logger:     log.WithRunContext(ec.Log(), ec.RunID, Name),
		Metrics:    ec.Metrics,
	}
	results, err := exec.Run(ctx, ec.Items, func(ctx context.Context, i int, _ node.Item) (any, error) {
		p, err := httpparams.ForItem(ec, i)
		if err != nil {
			return nil, err
		}
		hipaaMode[i] = p.HIPAAErrorMode

		if err := policy.AssertHTTPS(strings.TrimSpace(p.URL)); err != nil {
			return nil, err
		}
		spec, err := p.Spec()
		if err != nil {
			return nil, err
		}

		cred := credential.Resolve(ctx, ec.Credentials, p.Authentication)
		if n.masker != nil {
			n.masker.AddSecret(cred.Secrets()...)
		}

		resp, err := n.transport.Do(ctx, n.builder.Build(spec, cred))
		if err != nil {
			return nil, err
		}
		if !p.OutputResponse {
			return map[string]any{"statusCode": resp.StatusCode, "success": true}, nil
		}
		return resp.Value(), nil
	})

	var itemErr *node.ItemError
	if errors.As(err, &itemErr) {
		if mode, ok := hipaaMode[itemErr.Index]; mode || !ok {
			itemErr.Err = &redactedError{cause: itemErr.Err}
		}
	}
	return results, err
}

// redactedError hides an abort cause from anything that prints it while
// keeping it reachable through errors.As.
type redactedError struct {
	cause error
}

func (e *redactedError) Error() string { return node.HIPAARedactedMessage }

func (e *redactedError) Unwrap() error { return e.cause }

// logFailure logs the error kind and status only. Messages may embed URLs,
// headers or response bodies.
func logFailure(logger *slog.Logger, i int, err error) {
	attrs := []any{
		slog.Int(log.ItemKey, i),
		slog.String("kind", errorKind(err)),
		slog.Bool("retryable", nodeerrors.IsRetryable(err)),
	}
	if code, ok := node.StatusCodeOf(err); ok {
		attrs = append(attrs, slog.Int("status", code))
	}
	logger.Warn("item failed", attrs...)
}

func errorKind(err error) string {
	var c nodeerrors.ErrorClassifier
	if nodeerrors.As(err, &c) {
		return c.ErrorType()
	}
	return "unknown"
}
