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

// Package jq filters run output with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

// DefaultTimeout bounds a single query evaluation.
const DefaultTimeout = time.Second

// Query is a compiled jq expression.
type Query struct {
	expr    string
	code    *gojq.Code
	timeout time.Duration
}

// Compile parses and compiles expr. A zero timeout means DefaultTimeout.
func Compile(expr string, timeout time.Duration) (*Query, error) {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Query{expr: expr, code: code, timeout: timeout}, nil
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expr
}

// Run evaluates the query against v. v is first converted to plain JSON
// values, so structs with json tags are accepted. No output yields nil,
// one output is returned as is and several are collected into a slice.
func (q *Query) Run(ctx context.Context, v any) (any, error) {
	input, err := normalize(v)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	var out []any
	iter := q.code.RunWithContext(ctx, input)
	for {
		next, ok := iter.Next()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("jq query timed out after %v", q.timeout)
		}
		if err, isErr := next.(error); isErr {
			return nil, err
		}
		out = append(out, next)
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], nil
	default:
		return out, nil
	}
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode query input: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode query input: %w", err)
	}
	return out, nil
}
