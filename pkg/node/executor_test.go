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
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestExecutor(t *testing.T, continueOnFail func(int) bool) (*Executor, *tracetest.SpanRecorder, *Metrics) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	metrics := NewMetrics(prometheus.NewRegistry())
	return &Executor{
		Node:           "testNode",
		ContinueOnFail: continueOnFail,
		Metrics:        metrics,
		Tracer:         tp.Tracer("test"),
	}, rec, metrics
}

func failOdd(_ context.Context, i int, item Item) (any, error) {
	if i%2 == 1 {
		return nil, fmt.Errorf("item %v failed", item["id"])
	}
	return map[string]any{"id": item["id"]}, nil
}

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{"id": i}
	}
	return out
}

func TestExecutor_AllSucceed(t *testing.T) {
	e, rec, metrics := newTestExecutor(t, nil)

	results, err := e.Run(context.Background(), items(3), func(_ context.Context, i int, item Item) (any, error) {
		return item["id"], nil
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.JSON)
	}

	spans := rec.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "node.item", spans[0].Name())
	assert.Contains(t, spans[2].Attributes(), attribute.Int("node.item_index", 2))
	assert.Contains(t, spans[2].Attributes(), attribute.String("node.outcome", OutcomeSuccess))

	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.items.WithLabelValues("testNode", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.runs.WithLabelValues("testNode", OutcomeSuccess)))
}

func TestExecutor_ContinueOnFail(t *testing.T) {
	e, rec, metrics := newTestExecutor(t, func(int) bool { return true })

	results, err := e.Run(context.Background(), items(4), failOdd)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Equal(t, "item 1 failed", results[1].Failure.Error)
	assert.False(t, results[2].Failed())
	assert.True(t, results[3].Failed())

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.items.WithLabelValues("testNode", OutcomeFailed)))
	assert.Len(t, rec.Ended()[1].Events(), 1, "error recorded on span")
}

func TestExecutor_AbortReturnsCompleted(t *testing.T) {
	e, _, metrics := newTestExecutor(t, func(int) bool { return false })

	results, err := e.Run(context.Background(), items(4), failOdd)
	require.Error(t, err)

	var itemErr *ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, 1, itemErr.Index)
	assert.EqualError(t, itemErr.Err, "item 1 failed")

	require.Len(t, results, 1)
	assert.Equal(t, map[string]any{"id": 0}, results[0].JSON)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.runs.WithLabelValues("testNode", OutcomeAborted)))
}

func TestExecutor_PerItemContinueOnFail(t *testing.T) {
	e, _, _ := newTestExecutor(t, func(i int) bool { return i == 1 })

	results, err := e.Run(context.Background(), items(4), failOdd)
	var itemErr *ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, 3, itemErr.Index)
	require.Len(t, results, 3)
	assert.True(t, results[1].Failed())
}

func TestExecutor_CustomPresenter(t *testing.T) {
	e, _, _ := newTestExecutor(t, func(int) bool { return true })
	e.Present = func(_ int, err error) Result { return Present(err, true) }

	results, err := e.Run(context.Background(), items(2), failOdd)
	require.NoError(t, err)
	assert.Equal(t, HIPAARedactedMessage, results[1].Failure.Error)
}

func TestExecutor_Cancelled(t *testing.T) {
	e, _, _ := newTestExecutor(t, func(int) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())

	results, err := e.Run(ctx, items(3), func(_ context.Context, i int, _ Item) (any, error) {
		if i == 0 {
			cancel()
		}
		return i, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
}

func TestExecutor_NoItems(t *testing.T) {
	e, _, _ := newTestExecutor(t, nil)
	results, err := e.Run(context.Background(), nil, failOdd)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExecutor_NilMetricsAndTracer(t *testing.T) {
	e := &Executor{Node: "bare"}
	results, err := e.Run(context.Background(), items(1), failOdd)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestExecuteContext_ContinueOnFail(t *testing.T) {
	ec := &ExecuteContext{Settings: Settings{ContinueOnFail: true}}
	assert.True(t, ec.ContinueOnFail(0))

	ec.Params = NewMapParams(map[string]any{"continueOnFail": "={{ itemIndex == 1 }}"}, items(2))
	assert.False(t, ec.ContinueOnFail(0))
	assert.True(t, ec.ContinueOnFail(1))

	ec.Params = NewMapParams(map[string]any{"continueOnFail": "yes"}, nil)
	assert.True(t, ec.ContinueOnFail(0), "unparsable value falls back to settings")

	ec.Params = NewMapParams(map[string]any{"continueOnFail": "false"}, nil)
	assert.False(t, ec.ContinueOnFail(0))

	ec.Settings.ContinueOnFail = false
	ec.Params = NewMapParams(map[string]any{"continueOnFail": "true"}, nil)
	assert.True(t, ec.ContinueOnFail(0))
	ec.Params = NewMapParams(map[string]any{"continueOnFail": 1}, nil)
	assert.True(t, ec.ContinueOnFail(0))
}
