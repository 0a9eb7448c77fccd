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

// Package eval implements spec §4.3/§4.4: the evaluator core and the
// multi-method dispatcher's wiring into it. It is the one package that
// imports internal/dispatch, internal/pathresolver, internal/stdlib, and
// internal/task and ties them together; those packages stay leaves (no
// cycle back here) by taking this package's callbacks instead of its
// types, the same "evaluator behind an interface" shape cue/cue.go and
// cue/internal/core/adt use to keep their own runtime/value packages from
// importing back into the evaluator.
package eval

import (
	"context"
	"sync"

	"github.com/chrsbats/slip/internal/pathresolver"
	"github.com/chrsbats/slip/internal/stdlib"
	"github.com/chrsbats/slip/internal/task"
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/ast"
)

// Engine holds the wiring shared by every Evaluator spawned against one
// running program: the global Root scope, registered Locators, and the
// single task Scheduler (spec §4.6: "single-threaded cooperative tasks
// over one event loop" - one Scheduler per Engine, many Evaluators).
type Engine struct {
	Root      *value.Scope
	Locators  map[string]pathresolver.Locator
	Scheduler *task.Scheduler

	importMu    sync.Mutex
	importCache map[string]value.Value

	effectsMu sync.Mutex
	effects   []*value.Dict
}

// NewEngine builds a fresh global scope, bootstraps the standard
// library and built-in primitives into it, and wires a task Scheduler
// whose Runner is this Engine's own RunCode.
func NewEngine(ctx context.Context) *Engine {
	e := &Engine{
		Root:        value.NewScope(),
		Locators:    map[string]pathresolver.Locator{},
		importCache: map[string]value.Value{},
	}
	e.Scheduler = task.NewScheduler(ctx, e.taskRunner)
	e.bootstrap()
	return e
}

// taskRunner adapts Engine.RunCode to task.Runner's shape, used by the
// Scheduler to execute a spawned task's body in its own child scope.
func (e *Engine) taskRunner(ctx context.Context, scope *value.Scope, code *value.Code) (value.Value, error) {
	ev := e.NewEvaluator(ctx)
	ev.taskDepth = 1
	return ev.RunCode(scope, code)
}

// NewEvaluator builds a fresh per-call-chain Evaluator sharing this
// Engine's Root/Locators/Scheduler but carrying its own ctx, frame
// stack, and Resolver (the Engine/Evaluator split ctx's absence from
// pathresolver.Evaluator's interface requires: ctx must ride along as
// Evaluator state, not a per-call parameter).
func (e *Engine) NewEvaluator(ctx context.Context) *Evaluator {
	ev := &Evaluator{Engine: e, ctx: ctx}
	ev.Resolver = pathresolver.New(e.Root, ev)
	ev.Resolver.Locators = e.Locators
	return ev
}

// Evaluator is the per-call-chain state spec §4.3's evaluator needs:
// the ambient context (for locator I/O and task suspension points), the
// error frame stack (spec §7), and a task-context depth counter that
// gates auto-yield inside loop bodies (spec §4.6).
type Evaluator struct {
	Engine   *Engine
	ctx      context.Context
	Resolver *pathresolver.Resolver

	frames    []slerr.Frame
	taskDepth int
}

// clone produces a new Evaluator sharing Engine but with its own ctx and
// Resolver, the shape a spawned task's evaluator needs (spec §4.6: tasks
// run concurrently, so they must not share frame-stack or ctx state).
func (ev *Evaluator) clone(ctx context.Context) *Evaluator {
	return ev.Engine.NewEvaluator(ctx)
}

// RunCode evaluates every expression of code.Body in scope, returning
// the last result (spec §4.3: "evaluating a Code value yields the Code
// itself" for the value itself, but running it evaluates its body).
func (ev *Evaluator) RunCode(scope *value.Scope, code *value.Code) (value.Value, error) {
	return ev.runExprs(scope, code.Body.Exprs)
}

func (ev *Evaluator) runExprs(scope *value.Scope, exprs []ast.Expr) (value.Value, error) {
	var last value.Value = value.None
	for _, expr := range exprs {
		if innerExpr, ok := spliceStmt(expr); ok {
			v, err := ev.Eval(scope, innerExpr)
			if err != nil {
				return nil, err
			}
			switch spliced := v.(type) {
			case *value.Code:
				v, err = ev.runExprs(scope, spliced.Body.Exprs)
				if err != nil {
					return nil, err
				}
			case *value.List:
				if len(spliced.Elems) > 0 {
					v = spliced.Elems[len(spliced.Elems)-1]
				} else {
					v = value.None
				}
			}
			if r, ok := v.(*value.Response); ok && r.IsReturn() {
				return v, nil
			}
			last = v
			continue
		}
		v, err := ev.Eval(scope, expr)
		if err != nil {
			return nil, err
		}
		if r, ok := v.(*value.Response); ok && r.IsReturn() {
			return v, nil
		}
		last = v
	}
	return last, nil
}

// spliceStmt reports whether expr is a bare `(splice X)` used as a whole
// statement - the statement-level counterpart to spliceArg, letting a
// spliced Code's expressions run as sibling statements rather than a
// single argument value (spec's supplemented template-expansion feature).
func spliceStmt(expr ast.Expr) (ast.Expr, bool) {
	if len(expr.Terms) != 1 {
		return ast.Expr{}, false
	}
	return spliceArg(expr.Terms[0])
}
