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

// Package run implements "httpnode run".
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-httpnodes/internal/commands/shared"
	"github.com/tombee/conductor-httpnodes/internal/jq"
	"github.com/tombee/conductor-httpnodes/internal/tracing"
	"github.com/tombee/conductor-httpnodes/pkg/node"
)

type options struct {
	paramsFile     string
	inputFile      string
	continueOnFail bool
	runID          string
	metricsFile    string
	timeout        time.Duration
	query          string
}

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "run <node>",
		Short: "Run a node over input items",
		Long: `Run a node once per input item and print the results as a JSON array.

Parameters are read from a YAML or JSON file. String values starting with
"=" are templates: {{ expr }} segments are evaluated against the current
item as json and its position as itemIndex.

Items are a JSON array of objects read from --input, or stdin with
"--input -". Without --input a single empty item is used.

Examples:
  httpnode run httpRequest --params get.yaml
  httpnode run hipaaHttpRequest --params p.yaml --input items.json --continue-on-fail
  httpnode run httpRequest --params get.yaml --query 'map(.json.id)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.paramsFile, "params", "p", "", "Parameter file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.inputFile, "input", "i", "", "Items file (JSON array), - for stdin")
	cmd.Flags().BoolVar(&opts.continueOnFail, "continue-on-fail", false, "Record failed items instead of aborting")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "Run identifier for logs (default: random UUID)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the run after this duration")
	cmd.Flags().StringVar(&opts.query, "query", "", "jq expression applied to the result array before printing")
	_ = cmd.MarkFlagRequired("params")

	return cmd
}

func runNode(cmd *cobra.Command, name string, opts *options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var query *jq.Query
	if opts.query != "" {
		q, err := jq.Compile(opts.query, 0)
		if err != nil {
			return shared.NewInvalidInputError("invalid --query", err)
		}
		query = q
	}

	params, err := readParams(opts.paramsFile)
	if err != nil {
		return shared.NewInvalidInputError("failed to read parameters", err)
	}
	items, err := readItems(cmd.InOrStdin(), opts.inputFile)
	if err != nil {
		return shared.NewInvalidInputError("failed to read items", err)
	}

	rt, err := shared.NewRuntime(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	n, err := rt.Registry.Create(name)
	if err != nil {
		return shared.NewNotFoundError(fmt.Sprintf("unknown node %q", name), err)
	}

	runID := opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx, corrID := tracing.EnsureContext(ctx)
	rt.Logger.Debug("starting run", "run_id", runID, "node", name, "items", len(items), "correlation_id", corrID.String())

	results, runErr := n.Execute(ctx, &node.ExecuteContext{
		RunID:       runID,
		Items:       items,
		Params:      node.NewMapParams(params, items),
		Credentials: rt.Credentials,
		Settings:    node.Settings{ContinueOnFail: opts.continueOnFail},
		Logger:      rt.Logger,
		Metrics:     rt.Metrics,
	})

	if opts.metricsFile != "" {
		if err := writeMetrics(opts.metricsFile, rt.Gatherer); err != nil {
			rt.Logger.Warn("failed to write metrics", "error", err)
		}
	}

	var filtered any
	if query != nil && len(results) > 0 {
		filtered, err = query.Run(ctx, results)
		if err != nil {
			return shared.NewInvalidInputError("query failed", err)
		}
	}

	if err := emit(cmd.OutOrStdout(), name, runID, results, filtered, query != nil, runErr); err != nil {
		return err
	}
	if runErr != nil {
		return shared.NewExecutionError("run aborted", runErr)
	}
	return nil
}

// runOutput is the --json envelope of a run.
type runOutput struct {
	shared.JSONResponse
	RunID   string             `json:"run_id"`
	Node    string             `json:"node"`
	Results []node.Result      `json:"results"`
	Output  any                `json:"output,omitempty"`
	Errors  []shared.JSONError `json:"errors,omitempty"`
}

func emit(w io.Writer, name, runID string, results []node.Result, filtered any, queried bool, runErr error) error {
	if results == nil {
		results = []node.Result{}
	}
	if !shared.GetJSON() {
		if queried {
			return shared.EmitJSON(w, filtered)
		}
		return shared.EmitJSON(w, results)
	}

	out := runOutput{
		JSONResponse: shared.NewJSONResponse("run", runErr == nil),
		RunID:        runID,
		Node:         name,
		Results:      results,
		Output:       filtered,
	}
	if runErr != nil {
		je := shared.JSONError{Code: "RUN_ABORTED", Message: runErr.Error()}
		var itemErr *node.ItemError
		if errors.As(runErr, &itemErr) {
			idx := itemErr.Index
			je.Item = &idx
		}
		out.Errors = []shared.JSONError{je}
	}
	return shared.EmitJSON(w, out)
}

func readParams(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	params := map[string]any{}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return params, nil
}

func readItems(stdin io.Reader, path string) ([]node.Item, error) {
	if path == "" {
		return []node.Item{{}}, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var items []node.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("items must be a JSON array of objects: %w", err)
	}
	for i, item := range items {
		if item == nil {
			items[i] = node.Item{}
		}
	}
	return items, nil
}

func writeMetrics(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
