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

package tracing

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestCorrelationID(t *testing.T) {
	id := NewCorrelationID()
	assert.True(t, id.IsValid())
	assert.Len(t, id.String(), 36)
	assert.NotEqual(t, id, NewCorrelationID())

	assert.False(t, CorrelationID("").IsValid())
	assert.False(t, CorrelationID("not-a-uuid").IsValid())
	assert.False(t, CorrelationID("urn:uuid:123e4567-e89b-12d3-a456-426614174000").IsValid())
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FromContext(ctx))

	id := NewCorrelationID()
	ctx = ToContext(ctx, id)
	assert.Equal(t, id, FromContext(ctx))

	same, got := EnsureContext(ctx)
	assert.Equal(t, id, got)
	assert.Equal(t, id, FromContext(same))
}

func TestEnsureContext_Generates(t *testing.T) {
	ctx, id := EnsureContext(context.Background())
	assert.True(t, id.IsValid())
	assert.Equal(t, id, FromContext(ctx))
}

func TestInjectIntoRequest(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	InjectIntoRequest(context.Background(), req)
	assert.Empty(t, req.Header.Get(HeaderCorrelationID))

	id := NewCorrelationID()
	InjectIntoRequest(ToContext(context.Background(), id), req)
	assert.Equal(t, id.String(), req.Header.Get(HeaderCorrelationID))
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	shutdown, err := Setup(ctx, Config{Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))

	_, err = Setup(ctx, Config{Exporter: "zipkin"})
	assert.ErrorContains(t, err, "unknown trace exporter")

	var buf bytes.Buffer
	shutdown, err = Setup(ctx, Config{Exporter: ExporterConsole, Writer: &buf, ServiceVersion: "test"})
	require.NoError(t, err)

	_, span := Tracer().Start(ctx, "probe")
	span.End()
	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), "probe")
}
