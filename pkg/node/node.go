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

// Package node defines the contract between a workflow host and the HTTP
// nodes: input items, parameters, result records and the per-item executor
// loop.
package node

import (
	"context"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/tombee/conductor-httpnodes/pkg/credential"
)

// Item is one input JSON object.
type Item = map[string]any

// Node is an executable workflow node.
type Node interface {
	// Description returns the node's static descriptor.
	Description() *Description

	// Execute runs the node over ec.Items and returns one result per item.
	// On abort it returns the results completed so far along with the error.
	Execute(ctx context.Context, ec *ExecuteContext) ([]Result, error)
}

// Settings are node-level options set by the host.
type Settings struct {
	// ContinueOnFail records per-item failures instead of aborting. A
	// "continueOnFail" parameter overrides it per item.
	ContinueOnFail bool
}

// ExecuteContext carries the host collaborators for one execution.
type ExecuteContext struct {
	RunID       string
	Items       []Item
	Params      Params
	Credentials credential.Store
	Settings    Settings
	Logger      *slog.Logger
	Metrics     *Metrics
}

// ContinueOnFail reports whether a failure of item i should be recorded
// rather than abort the run.
func (ec *ExecuteContext) ContinueOnFail(i int) bool {
	if ec.Params == nil {
		return ec.Settings.ContinueOnFail
	}
	v, err := ec.Params.Value(ParamContinueOnFail, i, ec.Settings.ContinueOnFail)
	if err != nil {
		return ec.Settings.ContinueOnFail
	}
	var b bool
	if err := mapstructure.WeakDecode(v, &b); err != nil {
		return ec.Settings.ContinueOnFail
	}
	return b
}

// Log returns the execution logger, or the default logger when unset.
func (ec *ExecuteContext) Log() *slog.Logger {
	if ec.Logger != nil {
		return ec.Logger
	}
	return slog.Default()
}

// ParamContinueOnFail is the per-item override of Settings.ContinueOnFail.
const ParamContinueOnFail = "continueOnFail"
