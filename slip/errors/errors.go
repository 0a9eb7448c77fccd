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

// Package errors defines the error-reporting infrastructure SLIP's
// evaluator builds its diagnostics on (spec §7): an Error interface
// carrying a position, an input-position set, and a path into the data
// tree, which SlipError (kinds.go) is the sole implementation of.
//
// Unlike cue/errors, which accumulates a worklist of constraint
// violations and so needs a List type to report several at once, SLIP's
// tree-walking evaluator halts at the first runtime error (spec §7:
// "an annotated message including source line, caret pointer, frame
// chain, and the offending expression" - singular). Print/Details/String
// here work directly off of one Error's Unwrap chain rather than a list.
package errors

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chrsbats/slip/slip/token"
)

// A Message implements the error interface as well as Message to allow
// internationalized messages. SlipError embeds one so that its
// Kind-tagged constructors (kinds.go) don't duplicate the printf-args
// bookkeeping.
type Message struct {
	format string
	args   []interface{}
}

// NewMessagef creates an error message for human consumption. The
// arguments are kept unformatted, allowing the message to be localized
// at a later time. The passed argument list should not be modified.
func NewMessagef(format string, args ...interface{}) Message {
	if false {
		// Let go vet know that we're expecting printf-like arguments.
		_ = fmt.Sprintf(format, args...)
	}
	return Message{format: format, args: args}
}

// Msg returns a printf-style format string and its arguments for human
// consumption.
func (m *Message) Msg() (format string, args []interface{}) {
	return m.format, m.args
}

func (m *Message) Error() string {
	return fmt.Sprintf(m.format, m.args...)
}

// Error is the interface every SLIP error satisfies. SlipError (kinds.go)
// is the only type in this module that implements it.
type Error interface {
	// Position returns the primary position of an error.
	Position() token.Pos

	// InputPositions reports positions that contributed to an error, in
	// addition to the primary one.
	InputPositions() []token.Pos

	// Error reports the error message without position information.
	Error() string

	// Path returns the path into the data tree where the error occurred,
	// or nil if the error is not associated with one.
	Path() []string

	// Msg returns the unformatted error message and its arguments.
	Msg() (format string, args []interface{})
}

// Positions returns every position contributed to err (walking its
// Unwrap chain if needed), sorted by relevance with duplicates removed.
func Positions(err error) []token.Pos {
	e := Error(nil)
	if !errors.As(err, &e) {
		return nil
	}

	a := make([]token.Pos, 0, 3)
	pos := e.Position()
	if pos.IsValid() {
		a = append(a, pos)
	}
	sortOffset := len(a)
	for _, p := range e.InputPositions() {
		if p.IsValid() && p != pos {
			a = append(a, p)
		}
	}
	slices.SortFunc(a[sortOffset:], comparePosWithNoPosFirst)
	return slices.Compact(a)
}

// comparePosWithNoPosFirst wraps token.Pos.Compare to place token.NoPos
// first, required for Positions to sort correctly.
func comparePosWithNoPosFirst(a, b token.Pos) int {
	switch {
	case a == b:
		return 0
	case a == token.NoPos:
		return -1
	case b == token.NoPos:
		return +1
	default:
		return token.Pos.Compare(a, b)
	}
}

// A Config defines parameters for printing.
type Config struct {
	// Format formats the given string and arguments and writes it to w.
	// It is used for all printing.
	Format func(w io.Writer, format string, args ...interface{})

	// Cwd is the current working directory. Filename positions are taken
	// relative to this path.
	Cwd string

	// ToSlash sets whether to use Unix paths. Mostly used for testing.
	ToSlash bool
}

var zeroConfig = &Config{}

// Print writes err's formatted diagnostic to w (spec §7): the message
// chain followed through Unwrap, then every position it carries, one per
// line. A non-Error is printed with its plain %v text - the top-level
// driver (cmd/slip) may hand this a cobra/astjson error as readily as a
// SlipError.
func Print(w io.Writer, err error, cfg *Config) {
	if err == nil {
		return
	}
	if cfg == nil {
		cfg = zeroConfig
	}
	printError(w, err, cfg)
}

// Details is a convenience wrapper for Print to return the error text as
// a string, used by the top-level driver's `stderr` effect and `outcome`
// binding (spec §7) when the host needs the formatted text rather than a
// Portable struct.
func Details(err error, cfg *Config) string {
	var b strings.Builder
	Print(&b, err, cfg)
	return b.String()
}

// String generates a short message from a given Error, used by
// ToPortable (portable.go) for the host-facing Msg field.
func String(err Error) string {
	var b strings.Builder
	writeErr(&b, err, zeroConfig)
	return b.String()
}

func writeErr(w io.Writer, err Error, cfg *Config) {
	if path := strings.Join(err.Path(), "."); path != "" {
		_, _ = io.WriteString(w, path)
		_, _ = io.WriteString(w, ": ")
	}

	for {
		u := errors.Unwrap(err)

		msg, args := err.Msg()

		// Make sure that any position formatting arguments print as
		// relative paths, like printError does when printing one
		// position per line.
		didCopy := false
		for i, arg := range args {
			var pos token.Position
			switch arg := arg.(type) {
			case token.Pos:
				pos = arg.Position()
			case token.Position:
				pos = arg
			default:
				continue
			}
			if !didCopy {
				args = slices.Clone(args)
				didCopy = true
			}
			pos.Filename = relPath(pos.Filename, cfg)
			args[i] = pos
		}

		n, _ := fmt.Fprintf(w, msg, args...)

		if u == nil {
			break
		}
		if n > 0 {
			_, _ = io.WriteString(w, ": ")
		}
		err, _ = u.(Error)
		if err == nil {
			fmt.Fprint(w, u)
			break
		}
	}
}

func defaultFprintf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

func printError(w io.Writer, err error, cfg *Config) {
	if err == nil {
		return
	}
	fprintf := cfg.Format
	if fprintf == nil {
		fprintf = defaultFprintf
	}

	if e, ok := err.(Error); ok {
		writeErr(w, e, cfg)
	} else {
		fprintf(w, "%v", err)
	}

	positions := Positions(err)
	if len(positions) == 0 {
		fprintf(w, "\n")
		return
	}
	fprintf(w, ":\n")
	for _, p := range positions {
		pos := p.Position()
		path := relPath(pos.Filename, cfg)
		fprintf(w, "    %s", path)
		if pos.IsValid() {
			if path != "" {
				fprintf(w, ":")
			}
			fprintf(w, "%d:%d", pos.Line, pos.Column)
		}
		fprintf(w, "\n")
	}
}

func relPath(path string, cfg *Config) string {
	if cfg.Cwd != "" {
		if p, err := filepath.Rel(cfg.Cwd, path); err == nil {
			path = p
			// Some IDEs (e.g. VSCode) only recognize a path if it starts
			// with a dot. This also helps to distinguish between local
			// files and builtin packages.
			if !strings.HasPrefix(path, ".") {
				path = fmt.Sprintf(".%c%s", filepath.Separator, path)
			}
		}
	}
	if cfg.ToSlash {
		path = filepath.ToSlash(path)
	}
	return path
}
