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

// schemaRoot is the prototype every `schema` block inherits from, letting
// `is-schema?` distinguish a schema scope from an ordinary `scope`/`dict`
// literal without relying on naming convention (spec §4.5: "schema
// produces a Scope... distinguishable from create's instances").
var schemaRoot = value.NewScope()

func registerContainers(g *value.Scope, rt Runtime) {
	native(g, "list", -1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) == 1 {
			if code, ok := args[0].(*value.Code); ok {
				elems, err := rt.EvalEach(code)
				if err != nil {
					return nil, err
				}
				return value.NewList(elems...), nil
			}
		}
		return value.NewList(args...), nil
	})

	native(g, "dict", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "dict requires a code block")
		}
		scope, err := rt.RunInChild(code, nil)
		if err != nil {
			return nil, err
		}
		out := value.NewDict()
		for _, k := range scope.Keys() {
			v, _ := scope.OwnGet(k)
			out.Set(k, v)
		}
		return out, nil
	})

	native(g, "scope", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "scope requires a code block")
		}
		return rt.RunInChild(code, nil)
	})

	native(g, "schema", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "schema requires a code block")
		}
		s, err := rt.RunInChild(code, schemaRoot)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	native(g, "is-schema?", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, ok := args[0].(*value.Scope)
		if !ok {
			return value.Boolean(false), nil
		}
		return value.Boolean(s.HasInFamily(schemaRoot)), nil
	})

	// inherit/mixin/create/with/current-scope are registered directly by
	// internal/eval: they need the caller's live lexical scope, which the
	// Runtime callbacks (EvalEach/RunInChild run against a Code's own
	// closure, not the call site) don't expose.
}
