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
	"github.com/chrsbats/slip/internal/stdlib"
	"github.com/chrsbats/slip/internal/task"
	"github.com/chrsbats/slip/internal/value"
	"github.com/chrsbats/slip/slip/ast"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// freshChild returns a new Scope inheriting parent, the per-iteration
// binding scope every loop macro below hands its body (spec §4.3's
// macros re-evaluate their condition against the caller's live scope,
// but each pass still gets its own local bindings).
func freshChild(parent *value.Scope) *value.Scope {
	child := value.NewScope()
	_ = child.Inherit(parent)
	return child
}

// maybeYield implements spec §4.6's auto-yield: once per loop iteration,
// when running inside a task, give the scheduler a chance to interleave.
func (ev *Evaluator) maybeYield() error {
	if ev.taskDepth <= 0 {
		return nil
	}
	return task.Yield(ev.ctx)
}

// runBody runs body's expressions in a fresh child of parent, same as
// runSlipFunction's closure handling but without the function-call
// return-unwrap (callers that need early-exit propagation check the
// Response themselves).
func (ev *Evaluator) runBody(parent *value.Scope, body *ast.Code) (value.Value, error) {
	return ev.runExprs(freshChild(parent), body.Exprs)
}

// macroIf implements `if cond then-block else-block?` (spec §4.3 item 2,
// §4.5): the first CodeLit term in args marks the end of the condition
// sub-expression; an optional second CodeLit is the else branch.
func macroIf(ev *Evaluator, scope *value.Scope, args []ast.Term) (value.Value, error) {
	idx := -1
	for i, t := range args {
		if _, ok := t.(*ast.CodeLit); ok {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, slerr.TypeErrorf(macroPos(args), "if requires a then-block")
	}
	cond, err := ev.evalExprFrom(scope, args[:idx], nil, false)
	if err != nil {
		return nil, err
	}
	thenLit := args[idx].(*ast.CodeLit)
	var elseLit *ast.CodeLit
	if idx+1 < len(args) {
		el, ok := args[idx+1].(*ast.CodeLit)
		if !ok {
			return nil, slerr.TypeErrorf(args[idx+1].Pos(), "if's else branch must be a code block")
		}
		elseLit = el
	}
	if value.Truthy(cond) {
		return ev.runBody(scope, thenLit.Body)
	}
	if elseLit != nil {
		return ev.runBody(scope, elseLit.Body)
	}
	return value.None, nil
}

// macroFn implements `fn {params} [ body ]` (spec §3/§4.3): a bare
// positional parameter list (no keyword annotations, no rest, no return
// annotation) yields an untyped SlipFunction keyed off Params; anything
// richer evaluates the full Sig.
func macroFn(ev *Evaluator, scope *value.Scope, args []ast.Term) (value.Value, error) {
	if len(args) != 2 {
		return nil, slerr.TypeErrorf(macroPos(args), "fn requires a parameter list and a body")
	}
	sigLit, ok := args[0].(*ast.SigLit)
	if !ok {
		return nil, slerr.TypeErrorf(args[0].Pos(), "fn's first argument must be a parameter list")
	}
	bodyLit, ok := args[1].(*ast.CodeLit)
	if !ok {
		return nil, slerr.TypeErrorf(args[1].Pos(), "fn's second argument must be a code block")
	}
	fn := &value.SlipFunction{Closure: scope, Body: bodyLit.Body}
	if len(sigLit.Keywords) == 0 && sigLit.Rest == "" && len(sigLit.Return.Terms) == 0 {
		fn.Params = append([]string(nil), sigLit.Positional...)
		return fn, nil
	}
	sig, err := ev.evalSigLit(scope, sigLit)
	if err != nil {
		return nil, err
	}
	fn.Sig = sig
	return fn, nil
}

// macroWhile implements `while cond body` (spec §4.3/§4.5): cond is
// re-evaluated against the live caller scope before every pass, which is
// exactly why this is a head-form macro rather than a plain native
// taking an already-evaluated Code.
func macroWhile(ev *Evaluator, scope *value.Scope, args []ast.Term) (value.Value, error) {
	idx := -1
	for i, t := range args {
		if _, ok := t.(*ast.CodeLit); ok {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, slerr.TypeErrorf(macroPos(args), "while requires a body block")
	}
	body := args[idx].(*ast.CodeLit)
	condTerms := args[:idx]

	var last value.Value = value.None
	for {
		cond, err := ev.evalExprFrom(scope, condTerms, nil, false)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(cond) {
			return last, nil
		}
		v, err := ev.runBody(scope, body.Body)
		if err != nil {
			if brk, ok := err.(stdlib.BreakSignal); ok {
				return brk.Value, nil
			}
			return nil, err
		}
		if r, ok := v.(*value.Response); ok && r.IsReturn() {
			return v, nil
		}
		last = v
		if err := ev.maybeYield(); err != nil {
			return nil, err
		}
	}
}

// macroForeach implements `foreach var container body` (list form) and
// `foreach key val container body` (dict/scope form), distinguished by
// how many terms separate the head from the trailing body block (spec
// §4.3/§4.5: "foreach supports lists (binding one variable), dicts and
// scopes (binding one key or two: key, value)").
func macroForeach(ev *Evaluator, scope *value.Scope, args []ast.Term) (value.Value, error) {
	if len(args) < 3 {
		return nil, slerr.TypeErrorf(macroPos(args), "foreach requires a binding, a container, and a body")
	}
	body, ok := args[len(args)-1].(*ast.CodeLit)
	if !ok {
		return nil, slerr.TypeErrorf(args[len(args)-1].Pos(), "foreach requires a code block body")
	}
	rest := args[:len(args)-1]

	var var1, var2 string
	var containerTerms []ast.Term
	switch {
	case len(rest) == 2:
		name, ok := bindingName(rest[0])
		if !ok {
			return nil, slerr.TypeErrorf(rest[0].Pos(), "foreach binding must be a bare name")
		}
		var1 = name
		containerTerms = rest[1:]
	case len(rest) == 3:
		n1, ok1 := bindingName(rest[0])
		n2, ok2 := bindingName(rest[1])
		if !ok1 || !ok2 {
			return nil, slerr.TypeErrorf(rest[0].Pos(), "foreach bindings must be bare names")
		}
		var1, var2 = n1, n2
		containerTerms = rest[2:]
	default:
		return nil, slerr.TypeErrorf(macroPos(args), "foreach: unrecognized binding form")
	}

	container, err := ev.evalExprFrom(scope, containerTerms, nil, false)
	if err != nil {
		return nil, err
	}

	// step runs one iteration; done signals the loop should stop (a
	// `break` or a `return` fired), with last already holding the value
	// to stop on.
	var last value.Value = value.None
	step := func(bind func(child *value.Scope)) (done bool, err error) {
		child := freshChild(scope)
		bind(child)
		v, err := ev.runExprs(child, body.Body.Exprs)
		if err != nil {
			if brk, ok := err.(stdlib.BreakSignal); ok {
				last = brk.Value
				return true, nil
			}
			return true, err
		}
		last = v
		if r, ok := v.(*value.Response); ok && r.IsReturn() {
			return true, nil
		}
		if err := ev.maybeYield(); err != nil {
			return true, err
		}
		return false, nil
	}

	switch c := container.(type) {
	case *value.List:
		for _, item := range c.Elems {
			if done, err := step(func(child *value.Scope) { child.OwnSet(var1, item) }); done {
				return last, err
			}
		}
	case *value.Dict:
		for _, k := range c.Keys() {
			v, _ := c.Get(k)
			if done, err := step(func(child *value.Scope) {
				child.OwnSet(var1, value.String(k))
				if var2 != "" {
					child.OwnSet(var2, v)
				}
			}); done {
				return last, err
			}
		}
	case *value.Scope:
		for _, k := range c.Keys() {
			v, _ := c.OwnGet(k)
			if done, err := step(func(child *value.Scope) {
				child.OwnSet(var1, value.String(k))
				if var2 != "" {
					child.OwnSet(var2, v)
				}
			}); done {
				return last, err
			}
		}
	default:
		return nil, slerr.TypeErrorf(macroPos(containerTerms), "foreach requires a list, dict, or scope, got %s", container.Kind())
	}
	return last, nil
}

// bindingName reports the bare name of a single-name, non-dotted GetPath
// term, the shape foreach's loop variables must take.
func bindingName(t ast.Term) (string, bool) {
	gp, ok := t.(*ast.GetPath)
	if !ok {
		return "", false
	}
	return singleName(gp)
}

func macroLogicalAnd(ev *Evaluator, scope *value.Scope, args []ast.Term) (value.Value, error) {
	return evalLogicalMacro(ev, scope, "and", args)
}

func macroLogicalOr(ev *Evaluator, scope *value.Scope, args []ast.Term) (value.Value, error) {
	return evalLogicalMacro(ev, scope, "or", args)
}

// evalLogicalMacro handles `and`/`or` used in head position (rather than
// infix as a piped operator, the usual form continueChain's isLogicalName
// branch covers): the first term is the LHS, the remainder the RHS.
func evalLogicalMacro(ev *Evaluator, scope *value.Scope, name string, args []ast.Term) (value.Value, error) {
	if len(args) == 0 {
		return nil, slerr.TypeErrorf(macroPos(args), "%s requires at least one operand", name)
	}
	lhs, err := ev.evalTerm(scope, args[0])
	if err != nil {
		return nil, err
	}
	return ev.evalLogical(scope, name, lhs, args[1:])
}

func macroPos(args []ast.Term) token.Pos {
	if len(args) == 0 {
		return token.NoPos
	}
	return args[0].Pos()
}
