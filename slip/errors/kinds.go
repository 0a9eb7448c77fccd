// Copyright 2018 The CUE Authors
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
	"fmt"

	"github.com/chrsbats/slip/slip/token"
)

// Kind names one of the error kinds from spec §7. Names are the
// host-facing strings; they appear verbatim in formatted error output
// and in the `outcome.value` text produced by the top-level driver.
type Kind string

const (
	KindParseError        Kind = "ParseError"
	KindPathNotFound      Kind = "PathNotFound"
	KindTypeError         Kind = "TypeError"
	KindRuntimeError      Kind = "RuntimeError"
	KindIsADirectoryError Kind = "IsADirectoryError"
	KindCancellationError Kind = "CancellationError"
)

// SlipError is the concrete Error implementation used throughout the
// evaluator. It pairs a Kind with a path-valued location (the SLIP Path
// being evaluated, not the Go call path) and an optional frame chain that
// Annotated renders (spec §7: "an annotated message including source
// line, caret pointer, frame chain, and the offending expression").
// Frames is filled only through PushFrame, which the evaluator does not
// call, so errors raised by the evaluator carry no frames.
type SlipError struct {
	Kind   Kind
	pos    token.Pos
	path   []string
	Frames []Frame
	Message
	wrapped error
}

// Frame is one entry of the evaluator's call stack at the point an error
// was raised: the callee name, its evaluated arguments (already
// formatted, so this package need not depend on the value package), and
// the source location of the call.
type Frame struct {
	Name     string
	Callee   string
	Args     []string
	Loc      token.Pos
	SourceLn string
}

var _ Error = (*SlipError)(nil)

// NewfKind creates a new SlipError of the given kind.
func NewfKind(kind Kind, p token.Pos, format string, args ...interface{}) *SlipError {
	return &SlipError{Kind: kind, pos: p, Message: NewMessagef(format, args...)}
}

func (e *SlipError) Position() token.Pos         { return e.pos }
func (e *SlipError) InputPositions() []token.Pos { return nil }
func (e *SlipError) Path() []string              { return e.path }
func (e *SlipError) Unwrap() error                { return e.wrapped }

func (e *SlipError) Error() string {
	format, args := e.Msg()
	msg := fmt.Sprintf(format, args...)
	if e.wrapped != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.wrapped)
	}
	return msg
}

// WithPath attaches a SLIP Path (rendered via pformat) to the error for
// diagnostic purposes.
func (e *SlipError) WithPath(path []string) *SlipError {
	e.path = path
	return e
}

// PushFrame records a call-stack frame; Annotated treats the last frame
// pushed as the innermost call. No code in this module calls it.
func (e *SlipError) PushFrame(f Frame) *SlipError {
	e.Frames = append(e.Frames, f)
	return e
}

// Annotated renders the full spec §7 diagnostic: source line, caret, and
// frame chain, innermost frame first.
func (e *SlipError) Annotated() string {
	var b []byte
	b = append(b, []byte(fmt.Sprintf("%s: %s\n", e.Kind, e.Error()))...)
	for i := len(e.Frames) - 1; i >= 0; i-- {
		f := e.Frames[i]
		b = append(b, []byte(fmt.Sprintf("  in %s (%s) at %s\n", f.Name, f.Callee, f.Loc))...)
		if f.SourceLn != "" {
			b = append(b, []byte(fmt.Sprintf("    %s\n", f.SourceLn))...)
			if col := f.Loc.Column(); col > 0 {
				b = append(b, []byte(fmt.Sprintf("    %*s^\n", col-1, ""))...)
			}
		}
	}
	return string(b)
}

// PathNotFound builds the spec §7 PathNotFound(key) error.
func PathNotFound(p token.Pos, key string) *SlipError {
	return NewfKind(KindPathNotFound, p, "path not found: %s", key)
}

// TypeErrorf builds a TypeError with a formatted message (invalid-args,
// wrong-kind, unexpected-term, trailing-segments-not-allowed,
// no-matching-method, ambiguous-method-call, and similar).
func TypeErrorf(p token.Pos, format string, args ...interface{}) *SlipError {
	return NewfKind(KindTypeError, p, format, args...)
}

// RuntimeErrorf builds a RuntimeError (division-by-zero,
// operator-resolution-cycle, wrapped I/O failure).
func RuntimeErrorf(p token.Pos, format string, args ...interface{}) *SlipError {
	return NewfKind(KindRuntimeError, p, format, args...)
}

// IsADirectory builds the IsADirectoryError raised when a file/fs adapter
// is asked to delete a directory.
func IsADirectory(p token.Pos, url string) *SlipError {
	return NewfKind(KindIsADirectoryError, p, "is a directory: %s", url)
}

// Cancelled builds the CancellationError a task observes at its next
// suspension point after cancel-tasks.
func Cancelled(p token.Pos, taskID string) *SlipError {
	return NewfKind(KindCancellationError, p, "task %s cancelled", taskID)
}
