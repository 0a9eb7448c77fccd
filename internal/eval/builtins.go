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

package eval

import (
	"context"
	"fmt"

	"github.com/chrsbats/slip/internal/stdlib"
	"github.com/chrsbats/slip/internal/task"
	"github.com/chrsbats/slip/internal/value"
	"github.com/chrsbats/slip/slip/ast"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// bootstrap builds the background Evaluator stdlib's Runtime callbacks
// run against, registers the mandatory primitive subset (spec §4.5), and
// then layers on the primitives that need direct access to Engine state
// (effects, import cache, scheduler) or to the evaluator itself rather
// than just already-evaluated arguments.
func (e *Engine) bootstrap() {
	bg := e.NewEvaluator(context.Background())

	rt := stdlib.Runtime{
		Invoke: bg.invoke,
		EvalEach: func(code *value.Code) ([]value.Value, error) {
			return bg.evalAll(code.Closure, code.Body.Exprs)
		},
		RunInChild: func(code *value.Code, proto *value.Scope) (*value.Scope, error) {
			child := value.NewScope()
			if proto != nil {
				_ = child.Inherit(proto)
			}
			if _, err := bg.runExprs(child, code.Body.Exprs); err != nil {
				return nil, err
			}
			return child, nil
		},
	}
	stdlib.Register(e.Root, rt)

	e.registerObjectSystem(bg)
	e.registerEffects()
	e.registerMetaprogramming(bg)
	e.registerConcurrency(bg)
}

// evalAll runs every expr of exprs in scope and returns each result in
// order, stopping early (with the Response included) on a `return` signal
// - the shape stdlib.Runtime.EvalEach needs (spec §4.5: "evaluates a
// Code's assignments", "evaluates a Code to a list of values").
func (ev *Evaluator) evalAll(scope *value.Scope, exprs []ast.Expr) ([]value.Value, error) {
	out := make([]value.Value, 0, len(exprs))
	for _, expr := range exprs {
		v, err := ev.Eval(scope, expr)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if r, ok := v.(*value.Response); ok && r.IsReturn() {
			return out, nil
		}
	}
	return out, nil
}

func bnative(g *value.Scope, name string, fn func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)) {
	g.OwnSet(name, value.NewNative(name, -1, fn))
}

// ---------------------------------------------------------------------------
// Object system: inherit, mixin, create, with, current-scope (spec §4.5).
// current-scope is handled inline in eval.go's evalTerm, since it needs
// the caller's live lexical scope, not just evaluated arguments.

func (e *Engine) registerObjectSystem(bg *Evaluator) {
	g := e.Root

	bnative(g, "inherit", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		child, ok := args[0].(*value.Scope)
		parent, okP := args[1].(*value.Scope)
		if !ok || !okP {
			return nil, slerr.TypeErrorf(token.NoPos, "inherit requires two scopes")
		}
		if err := child.Inherit(parent); err != nil {
			return nil, slerr.RuntimeErrorf(token.NoPos, "%s", err)
		}
		return child, nil
	})

	bnative(g, "mixin", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		target, ok := args[0].(*value.Scope)
		m, okM := args[1].(*value.Scope)
		if !ok || !okM {
			return nil, slerr.TypeErrorf(token.NoPos, "mixin requires two scopes")
		}
		target.AddMixin(m)
		return target, nil
	})

	// create builds a fresh Scope, optionally inheriting a prototype and
	// running a configuration Code block directly against the new object
	// (so the block's assignments land as the object's own fields, the
	// same convention `dict`/`scope` use for their Code argument).
	bnative(g, "create", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		var proto *value.Scope
		var code *value.Code
		i := 0
		if i < len(args) {
			if p, ok := args[i].(*value.Scope); ok {
				proto = p
				i++
			}
		}
		if i < len(args) {
			c, ok := args[i].(*value.Code)
			if !ok {
				return nil, slerr.TypeErrorf(token.NoPos, "create's configuration argument must be a code block")
			}
			code = c
			i++
		}
		if i != len(args) {
			return nil, slerr.TypeErrorf(token.NoPos, "create accepts at most a prototype and a configuration block")
		}
		child := value.NewScope()
		if proto != nil {
			if err := child.Inherit(proto); err != nil {
				return nil, slerr.RuntimeErrorf(token.NoPos, "%s", err)
			}
		}
		if code != nil {
			if _, err := bg.runExprs(child, code.Body.Exprs); err != nil {
				return nil, err
			}
		}
		return child, nil
	})

	// with runs code's body directly against obj (field writes land on
	// obj itself) and returns obj (spec §4.5: "runs a block against an
	// object and returns the object").
	bnative(g, "with", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, slerr.TypeErrorf(token.NoPos, "with requires an object and a code block")
		}
		obj, ok := args[0].(*value.Scope)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "with requires a scope")
		}
		code, ok := args[1].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "with requires a code block")
		}
		if _, err := bg.runExprs(obj, code.Body.Exprs); err != nil {
			return nil, err
		}
		return obj, nil
	})
}

// ---------------------------------------------------------------------------
// Effects & responses (spec §4.5, §6).

func (e *Engine) registerEffects() {
	g := e.Root

	for _, status := range []string{"ok", "err", "not-found", "invalid", "return"} {
		g.OwnSet(status, value.String(status))
	}

	bnative(g, "emit", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, slerr.TypeErrorf(token.NoPos, "emit requires topics and a message")
		}
		var topics *value.List
		switch t := args[0].(type) {
		case *value.List:
			topics = t
		case value.String:
			topics = value.NewList(t)
		default:
			return nil, slerr.TypeErrorf(token.NoPos, "emit's topics must be a string or a list of strings")
		}
		e.Emit(topics, args[1])
		return value.None, nil
	})

	respond := func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, slerr.TypeErrorf(token.NoPos, "respond requires a status and a value")
		}
		s, ok := args[0].(value.String)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "respond's status must be a string")
		}
		return &value.Response{Status: string(s), Val: args[1]}, nil
	}
	bnative(g, "respond", respond)
	bnative(g, "response", respond)
}

// Emit appends a {topics, message} effect record to the ordered list the
// host drains after evaluation (spec §6).
func (e *Engine) Emit(topics *value.List, message value.Value) {
	d := value.NewDict()
	d.Set("topics", topics)
	d.Set("message", message)
	e.effectsMu.Lock()
	e.effects = append(e.effects, d)
	e.effectsMu.Unlock()
}

// DrainEffects returns and clears every effect emitted so far.
func (e *Engine) DrainEffects() []*value.Dict {
	e.effectsMu.Lock()
	defer e.effectsMu.Unlock()
	out := e.effects
	e.effects = nil
	return out
}

func (e *Engine) effectsSince(mark int) []value.Value {
	e.effectsMu.Lock()
	defer e.effectsMu.Unlock()
	if mark >= len(e.effects) {
		return nil
	}
	out := make([]value.Value, len(e.effects)-mark)
	for i, d := range e.effects[mark:] {
		out[i] = d
	}
	return out
}

func (e *Engine) effectsLen() int {
	e.effectsMu.Lock()
	defer e.effectsMu.Unlock()
	return len(e.effects)
}

// ---------------------------------------------------------------------------
// Metaprogramming (spec §4.5).

func (e *Engine) registerMetaprogramming(bg *Evaluator) {
	g := e.Root

	identity := func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, slerr.TypeErrorf(token.NoPos, "expects exactly one argument")
		}
		return args[0], nil
	}
	// The live run-time recognition in evalArgs/evalListLit handles
	// `(splice X)` and auto-inject-on-call before either name would ever
	// reach a NativeFunction; these bindings only cover the degenerate
	// case of calling them directly as ordinary functions.
	bnative(g, "inject", identity)
	bnative(g, "splice", identity)

	bnative(g, "run", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "run requires a code block")
		}
		v, err := bg.runExprs(code.Closure, code.Body.Exprs)
		if err != nil {
			return nil, err
		}
		if r, ok := v.(*value.Response); ok && r.IsReturn() {
			return r.Val, nil
		}
		return v, nil
	})

	bnative(g, "run-with", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "run-with requires a code block")
		}
		scope, ok := args[1].(*value.Scope)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "run-with requires a scope")
		}
		v, err := bg.runExprs(scope, code.Body.Exprs)
		if err != nil {
			return nil, err
		}
		if r, ok := v.(*value.Response); ok && r.IsReturn() {
			return r.Val, nil
		}
		return v, nil
	})

	bnative(g, "get-body", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		fn, ok := args[0].(*value.SlipFunction)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "get-body requires a function")
		}
		return &value.Code{Body: fn.Body, Closure: fn.Closure}, nil
	})

	// example models the `|example {...}` annotation as a plain Dict of
	// parameter bindings plus a reserved "result" key - without a
	// concrete grammar/parser (explicitly out of scope) there is no
	// arrow-literal syntax to target instead; see DESIGN.md.
	bnative(g, "example", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		fn, ok := args[0].(*value.SlipFunction)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "example requires a function")
		}
		d, ok := args[1].(*value.Dict)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "example requires a dict of bindings")
		}
		result, hasResult := d.Get("result")
		if !hasResult {
			result = value.None
		}
		bindings := map[string]value.Value{}
		for _, k := range d.Keys() {
			if k == "result" {
				continue
			}
			v, _ := d.Get(k)
			bindings[k] = v
		}
		fn.Examples = append(fn.Examples, value.Example{Bindings: bindings, Result: result})
		return fn, nil
	})

	bnative(g, "guard", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		fn, ok := args[0].(*value.SlipFunction)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "guard requires a function")
		}
		code, ok := args[1].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "guard requires a code block")
		}
		fn.Guards = append(fn.Guards, code)
		return fn, nil
	})

	bnative(g, "do", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "do requires a code block")
		}
		return Outcome{}.run(bg, code).toScope(), nil
	})

	bnative(g, "with-log", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "with-log requires a code block")
		}
		mark := e.effectsLen()
		oc := Outcome{}.run(bg, code)
		oc.Effects = e.effectsSince(mark)
		return oc.toScope(), nil
	})

	bnative(g, "test", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, slerr.TypeErrorf(token.NoPos, "test requires a name and a code block")
		}
		name, ok := args[0].(value.String)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "test's name must be a string")
		}
		code, ok := args[1].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "test requires a code block")
		}
		result := value.NewScope()
		result.OwnSet("name", name)
		v, err := bg.runExprs(code.Closure, code.Body.Exprs)
		switch {
		case err != nil:
			result.OwnSet("status", value.String("fail"))
			result.OwnSet("value", value.String(err.Error()))
		default:
			if r, ok := v.(*value.Response); ok && r.Status != "ok" && r.Status != "return" {
				result.OwnSet("status", value.String("fail"))
				result.OwnSet("value", r.Val)
			} else if value.Truthy(v) {
				result.OwnSet("status", value.String("pass"))
				result.OwnSet("value", v)
			} else {
				result.OwnSet("status", value.String("fail"))
				result.OwnSet("value", v)
			}
		}
		return result, nil
	})

	bnative(g, "test-all", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[0].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "test-all requires a list of test results")
		}
		var passed, failed int64
		for _, item := range lst.Elems {
			s, ok := item.(*value.Scope)
			if !ok {
				continue
			}
			st, _ := s.Get("status")
			if ss, ok := st.(value.String); ok && string(ss) == "pass" {
				passed++
			} else {
				failed++
			}
		}
		summary := value.NewScope()
		summary.OwnSet("passed", value.NewInt(passed))
		summary.OwnSet("failed", value.NewInt(failed))
		summary.OwnSet("total", value.NewInt(passed+failed))
		summary.OwnSet("results", lst)
		return summary, nil
	})

	bnative(g, "import", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, slerr.TypeErrorf(token.NoPos, "import requires a locator")
		}
		key, err := importKey(args[0])
		if err != nil {
			return nil, err
		}

		e.importMu.Lock()
		if v, ok := e.importCache[key]; ok {
			e.importMu.Unlock()
			return v, nil
		}
		e.importMu.Unlock()

		p := &value.Path{Form: value.FormGet, Segments: []ast.Segment{&ast.NameSeg{Text: key}}}
		v, err := bg.Resolver.Get(bg.ctx, p, e.Root)
		if err != nil {
			return nil, err
		}

		e.importMu.Lock()
		e.importCache[key] = v
		e.importMu.Unlock()
		return v, nil
	})
}

// Outcome is `do`/`with-log`'s result shape (status, value, and for
// with-log the emit records captured during the run), surfaced to SLIP
// code as a Scope rather than a bare Response.
type Outcome struct {
	Status  string
	Value   value.Value
	Effects []value.Value
}

// run captures code's result into an Outcome: a raised error becomes an
// "err" status, an explicit Response's own status/value pass through
// unchanged, and a plain value is wrapped as "ok".
func (Outcome) run(bg *Evaluator, code *value.Code) Outcome {
	v, err := bg.runExprs(code.Closure, code.Body.Exprs)
	if err != nil {
		return Outcome{Status: statusOf(err), Value: value.String(err.Error())}
	}
	if r, ok := v.(*value.Response); ok {
		return Outcome{Status: r.Status, Value: r.Val}
	}
	return Outcome{Status: "ok", Value: v}
}

func (oc Outcome) toScope() *value.Scope {
	s := value.NewScope()
	s.OwnSet("status", value.String(oc.Status))
	s.OwnSet("value", oc.Value)
	if oc.Effects != nil {
		s.OwnSet("effects", value.NewList(oc.Effects...))
	}
	return s
}

func statusOf(err error) string {
	se, ok := err.(*slerr.SlipError)
	if !ok {
		return "err"
	}
	switch se.Kind {
	case slerr.KindPathNotFound:
		return "not-found"
	case slerr.KindTypeError:
		return "invalid"
	default:
		return "err"
	}
}

// importKey reports the string a literal `import` argument resolves to:
// a bare string, or a literal GetPath naming a single segment (spec §4.5:
// "import caches by the PathLiteral string key").
func importKey(v value.Value) (string, error) {
	switch x := v.(type) {
	case value.String:
		return string(x), nil
	case *value.Path:
		if x.Form == value.FormGet && len(x.Segments) == 1 {
			if ns, ok := x.Segments[0].(*ast.NameSeg); ok {
				return ns.Text, nil
			}
		}
	}
	return "", slerr.TypeErrorf(token.NoPos, "import requires a string or path literal locator")
}

// ---------------------------------------------------------------------------
// Concurrency (spec §4.6): task, make-channel, sleep, send, receive,
// cancel-tasks. Channel.Method already exposes `send`/`receive` so
// property-chain dispatch (`ch.send v`) works unassisted; these are the
// convenient head-form/operator spellings the worked scenarios use
// (`send ch n`).

func (e *Engine) registerConcurrency(bg *Evaluator) {
	g := e.Root

	bnative(g, "task", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		code, ok := args[0].(*value.Code)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "task requires a code block")
		}
		t := e.Scheduler.Spawn(code.Closure, code)
		return &TaskHandle{t: t}, nil
	})

	g.OwnSet("make-channel", value.NewNative("make-channel", 0, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return task.NewChannel(e.Scheduler.Done()), nil
	}))

	bnative(g, "sleep", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		secs, err := asSeconds(args)
		if err != nil {
			return nil, err
		}
		if err := e.Scheduler.Sleep(bg.ctx, secs); err != nil {
			return nil, err
		}
		return value.None, nil
	})

	bnative(g, "send", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		ch, ok := args[0].(*task.Channel)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "send requires a channel")
		}
		ch.Send(args[1])
		return value.None, nil
	})

	bnative(g, "receive", func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		ch, ok := args[0].(*task.Channel)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "receive requires a channel")
		}
		return ch.Receive(bg.ctx)
	})

	g.OwnSet("cancel-tasks", value.NewNative("cancel-tasks", 0, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		e.Scheduler.CancelTasks()
		return value.None, nil
	}))
}

func asSeconds(args []value.Value) (float64, error) {
	if len(args) != 1 {
		return 0, slerr.TypeErrorf(token.NoPos, "sleep requires a single duration")
	}
	switch n := args[0].(type) {
	case value.Int:
		i, _ := n.Int64()
		return float64(i), nil
	case value.Float:
		return n.Float64(), nil
	default:
		return 0, slerr.TypeErrorf(token.NoPos, "sleep requires a number")
	}
}

// TaskHandle is the HostObject returned by `task <Code>` (spec §4.6:
// "tasks are returned as handles to preserve concurrency"), exposing
// `status` and `wait` as methods rather than auto-awaiting.
type TaskHandle struct {
	t *task.Task
}

func (*TaskHandle) Kind() value.Kind { return value.KindHostObject }
func (h *TaskHandle) Pformat() string { return fmt.Sprintf("task<%s>", h.t.ID) }

func (h *TaskHandle) Get(string) (value.Value, bool) { return nil, false }
func (h *TaskHandle) Set(key string, _ value.Value) error {
	return fmt.Errorf("task has no field %q", key)
}
func (h *TaskHandle) Delete(key string) error {
	return fmt.Errorf("task has no field %q", key)
}

func (h *TaskHandle) Method(name string) (value.Callable, bool) {
	switch name {
	case "status":
		return value.NewNative("status", 0, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.String(taskStatusName(h.t.Status())), nil
		}), true
	case "wait":
		return value.NewNative("wait", 0, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return h.t.Wait(context.Background())
		}), true
	}
	return nil, false
}

func taskStatusName(s task.Status) string {
	switch s {
	case task.StatusRunning:
		return "running"
	case task.StatusDone:
		return "done"
	case task.StatusError:
		return "error"
	case task.StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
