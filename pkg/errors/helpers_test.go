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

package errors_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, nodeerrors.Wrap(nil, "context"))

	base := errors.New("boom")
	err := nodeerrors.Wrap(base, "sending request")
	assert.Equal(t, "sending request: boom", err.Error())
	assert.True(t, errors.Is(err, base))

	err = nodeerrors.Wrapf(base, "item %d", 2)
	assert.Equal(t, "item 2: boom", err.Error())
}

func TestAs(t *testing.T) {
	err := nodeerrors.Wrap(&nodeerrors.NotFoundError{Resource: "credential", ID: "httpbinApi"}, "resolve")

	var nf *nodeerrors.NotFoundError
	require.True(t, nodeerrors.As(err, &nf))
	assert.Equal(t, "httpbinApi", nf.ID)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, nodeerrors.IsRetryable(nodeerrors.Wrap(&nodeerrors.TimeoutError{Operation: "GET example.com"}, "send")))
	assert.False(t, nodeerrors.IsRetryable(&nodeerrors.ValidationError{Field: "url"}))
	assert.False(t, nodeerrors.IsRetryable(errors.New("plain")))
}

func captureHere() error {
	return nodeerrors.WithStack(errors.New("captured"))
}

func TestWithStack(t *testing.T) {
	assert.Nil(t, nodeerrors.WithStack(nil))

	err := captureHere()
	assert.Equal(t, "captured", err.Error())

	stack := nodeerrors.StackOf(err)
	require.NotEmpty(t, stack)
	assert.True(t, strings.Contains(stack, "captureHere"), "stack should name the capturing function:\n%s", stack)

	again := nodeerrors.WithStack(err)
	assert.Same(t, err, again, "existing stack should be kept")

	wrapped := nodeerrors.Wrap(err, "outer")
	assert.Equal(t, stack, nodeerrors.StackOf(wrapped))
}

func TestStackOf_NoStack(t *testing.T) {
	assert.Empty(t, nodeerrors.StackOf(errors.New("plain")))
	assert.Empty(t, nodeerrors.StackOf(nil))
}
