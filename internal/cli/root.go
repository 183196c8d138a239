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

// Package cli builds the httpnode root command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/conductor-httpnodes/internal/commands/credentials"
	"github.com/tombee/conductor-httpnodes/internal/commands/describe"
	"github.com/tombee/conductor-httpnodes/internal/commands/run"
	"github.com/tombee/conductor-httpnodes/internal/commands/shared"
	versioncmd "github.com/tombee/conductor-httpnodes/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "httpnode",
		Short: "Run HTTP request workflow nodes",
		Long: `httpnode runs the httpRequest and hipaaHttpRequest workflow nodes
against a list of input items and prints one result per item.

Run 'httpnode nodes' to list the available nodes.
Run 'httpnode describe <node>' to see a node's parameters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/conductor-httpnodes/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(run.NewCommand())
	cmd.AddCommand(describe.NewCommand())
	cmd.AddCommand(describe.NewNodesCommand())
	cmd.AddCommand(credentials.NewCommand())
	cmd.AddCommand(versioncmd.NewVersionCommand())

	return cmd
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
