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

// Package httprequest implements the generic httpRequest node: one HTTP call
// per input item, authenticated with an optional stored credential.
package httprequest

import (
	"context"

	"github.com/tombee/conductor-httpnodes/internal/log"
	"github.com/tombee/conductor-httpnodes/internal/nodes/httpparams"
	"github.com/tombee/conductor-httpnodes/pkg/credential"
	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
	"github.com/tombee/conductor-httpnodes/pkg/httpclient"
	"github.com/tombee/conductor-httpnodes/pkg/node"
	"github.com/tombee/conductor-httpnodes/pkg/request"
	"github.com/tombee/conductor-httpnodes/pkg/secrets"
	"github.com/tombee/conductor-httpnodes/pkg/transport"
)

// Name is the registered node name.
const Name = "httpRequest"

// Node is the generic HTTP request node.
type Node struct {
	builder   *request.Builder
	transport transport.Transport
	masker    *secrets.Masker
	clientCfg httpclient.Config
}

// Option configures a Node.
type Option func(*Node)

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(n *Node) { n.transport = t }
}

// WithClientConfig sets the configuration of the default HTTP client.
// It is ignored when WithTransport is given.
func WithClientConfig(cfg httpclient.Config) Option {
	return func(n *Node) { n.clientCfg = cfg }
}

// WithMasker registers resolved credential values with m so they are
// masked in logs.
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
		client, err := httpclient.New(n.clientCfg)
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
		DisplayName: "HTTP Request",
		Name:        Name,
		Group:       []string{"transform"},
		Version:     1,
		Subtitle:    `={{$parameter["operation"]}}`,
		Description: "Make HTTP requests to any API with flexible authentication",
		Defaults:    map[string]any{"name": "HTTP Request"},
		Inputs:      []string{"main"},
		Outputs:     []string{"main"},
		Credentials: httpparams.CredentialSlots(),
		RequestDefaults: &node.RequestDefaults{
			Headers: map[string]string{
				"Accept":       "application/json",
				"Content-Type": "application/json",
			},
		},
		Properties: httpparams.Properties(false),
	}
}

// Description implements node.Node.
func (n *Node) Description() *node.Description { return Describe() }

// Execute implements node.Node. Failures are recorded with their message
// and stack when continueOnFail is set for the item.
func (n *Node) Execute(ctx context.Context, ec *node.ExecuteContext) ([]node.Result, error) {
	exec := &node.Executor{
		Node:           Name,
		ContinueOnFail: ec.ContinueOnFail,
		Logger:         log.WithRunContext(ec.Log(), ec.RunID, Name),
		Metrics:        ec.Metrics,
	}
	return exec.Run(ctx, ec.Items, func(ctx context.Context, i int, _ node.Item) (any, error) {
		p, err := httpparams.ForItem(ec, i)
		if err != nil {
			return nil, nodeerrors.WithStack(err)
		}
		spec, err := p.Spec()
		if err != nil {
			return nil, nodeerrors.WithStack(err)
		}

		cred := credential.Resolve(ctx, ec.Credentials, p.Authentication)
		if n.masker != nil {
			n.masker.AddSecret(cred.Secrets()...)
		}

		resp, err := n.transport.Do(ctx, n.builder.Build(spec, cred))
		if err != nil {
			return nil, err
		}
		return resp.Value(), nil
	})
}
