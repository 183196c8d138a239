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

// Package describe implements "httpnode describe" and "httpnode nodes".
package describe

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-httpnodes/internal/commands/shared"
	"github.com/tombee/conductor-httpnodes/internal/nodes"
	"github.com/tombee/conductor-httpnodes/internal/nodes/httpparams"
	"github.com/tombee/conductor-httpnodes/pkg/httpclient"
	"github.com/tombee/conductor-httpnodes/pkg/node"
)

// NewCommand creates the describe command
func NewCommand() *cobra.Command {
	var schema bool
	cmd := &cobra.Command{
		Use:   "describe <node|credential>",
		Short: "Show a node or credential type descriptor",
		Long: `Print the descriptor of a node or credential type as YAML, or JSON
with --json.

With --schema the JSON Schema of the node parameters is printed instead.

Examples:
  httpnode describe httpRequest
  httpnode describe hipaaHttpRequest --schema
  httpnode describe genericHttpAuthApi --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd.OutOrStdout(), args[0], schema)
		},
	}
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the parameter JSON Schema")
	return cmd
}

// NewNodesCommand creates the nodes command
func NewNodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List available nodes and credential types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNodes(cmd.OutOrStdout())
		},
	}
}

// registry describes nodes without loading configuration; descriptors do
// not depend on it.
func registry() (*node.Registry, error) {
	return nodes.NewRegistry(nodes.Options{HTTP: httpclient.DefaultConfig()})
}

func runDescribe(w io.Writer, name string, schema bool) error {
	reg, err := registry()
	if err != nil {
		return err
	}

	var v any
	if desc, err := reg.Describe(name); err == nil {
		v = desc
		if schema {
			v = node.Schema(&httpparams.Parameters{})
		}
	} else if ct, cerr := reg.Credential(name); cerr == nil {
		if schema {
			return shared.NewInvalidInputError("--schema applies to nodes only", nil)
		}
		v = ct
	} else {
		return shared.NewNotFoundError(fmt.Sprintf("no node or credential type named %q", name), err)
	}

	if schema || shared.GetJSON() {
		return shared.EmitJSON(w, v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

type listEntry struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

func runNodes(w io.Writer) error {
	reg, err := registry()
	if err != nil {
		return err
	}

	var entries []listEntry
	for _, name := range reg.Names() {
		desc, err := reg.Describe(name)
		if err != nil {
			return err
		}
		entries = append(entries, listEntry{Name: name, Kind: "node", DisplayName: desc.DisplayName, Description: desc.Description})
	}
	for _, name := range reg.CredentialNames() {
		ct, err := reg.Credential(name)
		if err != nil {
			return err
		}
		entries = append(entries, listEntry{Name: name, Kind: "credential", DisplayName: ct.DisplayName})
	}

	if shared.GetJSON() {
		return shared.EmitJSON(w, entries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDISPLAY NAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Kind, e.DisplayName)
	}
	return tw.Flush()
}
