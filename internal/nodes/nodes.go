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

// Package nodes registers the built-in HTTP nodes and their credential
// types.
package nodes

import (
	"github.com/tombee/conductor-httpnodes/internal/nodes/hipaarequest"
	"github.com/tombee/conductor-httpnodes/internal/nodes/httpparams"
	"github.com/tombee/conductor-httpnodes/internal/nodes/httprequest"
	"github.com/tombee/conductor-httpnodes/pkg/httpclient"
	"github.com/tombee/conductor-httpnodes/pkg/node"
	"github.com/tombee/conductor-httpnodes/pkg/secrets"
)

// Options are shared by every registered node.
type Options struct {
	HTTP   httpclient.Config
	Masker *secrets.Masker
}

// Register adds the HTTP nodes and credential types to reg.
func Register(reg *node.Registry, opts Options) error {
	if err := reg.Register(httprequest.Describe(), func() (node.Node, error) {
		return httprequest.New(
			httprequest.WithClientConfig(opts.HTTP),
			httprequest.WithMasker(opts.Masker),
		)
	}); err != nil {
		return err
	}

	if err := reg.Register(hipaarequest.Describe(), func() (node.Node, error) {
		return hipaarequest.New(
			hipaarequest.WithClientConfig(opts.HTTP),
			hipaarequest.WithMasker(opts.Masker),
		)
	}); err != nil {
		return err
	}

	for _, ct := range []*node.CredentialType{httpparams.GenericHTTPAuth(), httpparams.HTTPBin()} {
		if err := reg.RegisterCredential(ct); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in nodes.
func NewRegistry(opts Options) (*node.Registry, error) {
	reg := node.NewRegistry()
	if err := Register(reg, opts); err != nil {
		return nil, err
	}
	return reg, nil
}
