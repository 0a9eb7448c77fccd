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

package stdlib

import (
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// registerControl binds the non-macro control-flow helpers: `when`,
// `loop`, `for`, and `cond` all take already-captured Code blocks and run
// them via the Code's own Closure, unlike `if`/`while`/`foreach`, which
// the evaluator special-forms directly because they need to re-evaluate
// their condition expression against the CALLER's live scope each pass
// (spec §4.3 item 2).
func registerControl(g *value.Scope, rt Runtime) {
	native(g, "when", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if !value.Truthy(args[0]) {
			return value.None, nil
		}
		code, ok := args[1].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "when requires a code block")
		}
		vals, err := rt.EvalEach(code)
		if err != nil {
			return nil, err
		}
		return lastOrNone(vals), nil
	})

	native(g, "loop", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "loop requires a code block")
		}
		var last value.Value = value.None
		for {
			vals, err := rt.EvalEach(code)
			if err != nil {
				if brk, ok := err.(BreakSignal); ok {
					return brk.Value, nil
				}
				return nil, err
			}
			last = lastOrNone(vals)
			_ = last
		}
	})

	native(g, "for", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[0].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "for requires a list")
		}
		code, ok := args[1].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "for requires a code block")
		}
		var last value.Value = value.None
		for _, item := range lst.Elems {
			child := value.NewScope()
			_ = child.Inherit(code.Closure)
			child.OwnSet("it", item)
			vals, err := rt.EvalEach(&value.Code{Body: code.Body, Closure: child})
			if err != nil {
				return nil, err
			}
			last = lastOrNone(vals)
		}
		return last, nil
	})

	native(g, "cond", -1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		for i := 0; i+1 < len(args); i += 2 {
			if value.Truthy(args[i]) {
				code, ok := args[i+1].(*value.Code)
				if !ok {
					return nil, slerr.TypeErrorf(token.NoPos, "cond branches must be code blocks")
				}
				vals, err := rt.EvalEach(code)
				if err != nil {
					return nil, err
				}
				return lastOrNone(vals), nil
			}
		}
		if len(args)%2 == 1 {
			code, ok := args[len(args)-1].(*value.Code)
			if !ok {
				return nil, slerr.TypeErrorf(token.NoPos, "cond's else branch must be a code block")
			}
			vals, err := rt.EvalEach(code)
			if err != nil {
				return nil, err
			}
			return lastOrNone(vals), nil
		}
		return value.None, nil
	})
}

func lastOrNone(vals []value.Value) value.Value {
	if len(vals) == 0 {
		return value.None
	}
	return vals[len(vals)-1]
}

// BreakSignal is the error shape `loop` (and internal/eval's `while` and
// `foreach` macros) treat as an early exit carrying Value. No primitive
// in this module raises it: no `break` primitive is registered.
type BreakSignal struct{ Value value.Value }

func (BreakSignal) Error() string { return "break" }
