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

package node

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/conductor-httpnodes/internal/tracing"
	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

// Step processes one item and returns its success value.
type Step func(ctx context.Context, index int, item Item) (any, error)

// ItemError is returned when an item fails and the run aborts.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Executor runs a Step over items strictly in order.
type Executor struct {
	// Node names the node in logs, spans and metrics.
	Node string

	// ContinueOnFail is consulted after each failure. Nil means abort.
	ContinueOnFail func(index int) bool

	// Present turns a failure into a result record. Defaults to
	// Present(err, false).
	Present func(index int, err error) Result

	// LogFailure logs a failed item. Defaults to logging the error text.
	LogFailure func(logger *slog.Logger, index int, err error)

	Logger  *slog.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
}

// Run applies step to every item. It returns one result per item in input
// order. When an item fails without ContinueOnFail, Run stops and returns
// the results completed so far with an *ItemError.
func (e *Executor) Run(ctx context.Context, items []Item, step Step) ([]Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := e.Tracer
	if tracer == nil {
		tracer = tracing.Tracer()
	}

	results := make([]Result, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			e.Metrics.observeRun(e.Node, OutcomeAborted)
			return results, &ItemError{Index: i, Err: err}
		}

		res, err := e.runItem(ctx, tracer, logger, i, item, step)
		if err != nil {
			e.Metrics.observeRun(e.Node, OutcomeAborted)
			return results, &ItemError{Index: i, Err: err}
		}
		results = append(results, res)
	}

	e.Metrics.observeRun(e.Node, OutcomeSuccess)
	return results, nil
}

func (e *Executor) runItem(ctx context.Context, tracer trace.Tracer, logger *slog.Logger, i int, item Item, step Step) (Result, error) {
	ctx, span := tracer.Start(ctx, "node.item", trace.WithAttributes(
		attribute.String("node.name", e.Node),
		attribute.Int("node.item_index", i),
	))
	defer span.End()

	start := time.Now()
	value, err := step(ctx, i, item)
	elapsed := time.Since(start)

	if err == nil {
		span.SetAttributes(attribute.String("node.outcome", OutcomeSuccess))
		e.Metrics.observeItem(e.Node, OutcomeSuccess, elapsed)
		logger.DebugContext(ctx, "item completed", "item", i, "duration_ms", elapsed.Milliseconds())
		return Success(value), nil
	}

	span.SetStatus(codes.Error, "item failed")
	if e.LogFailure != nil {
		e.LogFailure(logger, i, err)
	} else {
		span.RecordError(err)
		logger.WarnContext(ctx, "item failed", "item", i, "error", err.Error(), "retryable", nodeerrors.IsRetryable(err))
	}

	if e.ContinueOnFail == nil || !e.ContinueOnFail(i) {
		span.SetAttributes(attribute.String("node.outcome", OutcomeAborted))
		e.Metrics.observeItem(e.Node, OutcomeAborted, elapsed)
		return Result{}, err
	}

	span.SetAttributes(attribute.String("node.outcome", OutcomeFailed))
	e.Metrics.observeItem(e.Node, OutcomeFailed, elapsed)
	if e.Present != nil {
		return e.Present(i, err), nil
	}
	return Present(err, false), nil
}
