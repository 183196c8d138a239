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

// Package tracing carries run and correlation identifiers through a context
// and configures the OpenTelemetry tracer provider used by node execution.
package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderCorrelationID is the outbound header carrying the correlation ID.
const HeaderCorrelationID = "X-Correlation-ID"

// CorrelationID identifies one node execution across logs and outbound requests.
type CorrelationID string

type correlationKey struct{}

// NewCorrelationID returns a random UUID.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.NewString())
}

func (c CorrelationID) String() string { return string(c) }

// IsValid reports whether c is a canonical 36 character UUID.
func (c CorrelationID) IsValid() bool {
	if len(c) != 36 {
		return false
	}
	_, err := uuid.Parse(string(c))
	return err == nil
}

// ToContext returns a copy of ctx carrying id.
func ToContext(ctx context.Context, id CorrelationID) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// FromContext returns the correlation ID in ctx, or "" if there is none.
func FromContext(ctx context.Context) CorrelationID {
	id, _ := ctx.Value(correlationKey{}).(CorrelationID)
	return id
}

// EnsureContext returns ctx unchanged when it already carries a valid
// correlation ID, otherwise a copy with a fresh one.
func EnsureContext(ctx context.Context) (context.Context, CorrelationID) {
	if id := FromContext(ctx); id.IsValid() {
		return ctx, id
	}
	id := NewCorrelationID()
	return ToContext(ctx, id), id
}

// InjectIntoRequest copies the correlation ID from ctx onto req.
func InjectIntoRequest(ctx context.Context, req *http.Request) {
	if id := FromContext(ctx); id.IsValid() {
		req.Header.Set(HeaderCorrelationID, id.String())
	}
}
