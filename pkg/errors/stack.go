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

package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// maxStackDepth bounds the number of frames captured per error.
const maxStackDepth = 32

// Stack is a captured call stack.
type Stack []uintptr

// Callers captures the stack of the calling function, skipping skip
// additional frames above it.
func Callers(skip int) Stack {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	return Stack(pcs[:n])
}

// String renders the stack in the same layout as a goroutine trace:
// function name on one line, tab-indented file:line on the next.
func (s Stack) String() string {
	if len(s) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(s)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// withStack annotates an error with the stack at the point WithStack was called.
type withStack struct {
	err   error
	stack Stack
}

func (w *withStack) Error() string      { return w.err.Error() }
func (w *withStack) Unwrap() error      { return w.err }
func (w *withStack) StackTrace() string { return w.stack.String() }

// WithStack records the caller's stack on err. If err is nil, returns nil.
// If err already carries a stack, it is returned unchanged.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	var st StackTracer
	if errors.As(err, &st) {
		return err
	}
	return &withStack{err: err, stack: Callers(1)}
}

// StackOf returns the stack recorded by the first StackTracer in err's chain,
// or an empty string when none was captured.
func StackOf(err error) string {
	var st StackTracer
	if errors.As(err, &st) {
		return st.StackTrace()
	}
	return ""
}
