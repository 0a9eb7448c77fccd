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
	"github.com/chrsbats/slip/internal/dispatch"
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// invoke calls any callable value with already-evaluated arguments (spec
// §4.3/§4.4). It is the one chokepoint every call path - head-form
// dispatch, operator application, stdlib's Runtime.Invoke, and
// dispatch.Invoke - funnels through.
func (ev *Evaluator) invoke(fn value.Value, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	switch f := fn.(type) {
	case *value.SlipFunction:
		return ev.runSlipFunction(f, args, kwargs)
	case *value.GenericFunction:
		return dispatch.Call(f, args, kwargs, ev, token.NoPos, ev.invokeSlip, ev.fallbackByName)
	case *value.NativeFunction:
		if f.Fn == nil {
			return nil, slerr.RuntimeErrorf(token.NoPos, "%s is not directly callable", f.FnName)
		}
		return f.Call(args, kwargs)
	default:
		return nil, slerr.TypeErrorf(token.NoPos, "cannot call a value of kind %s", fn.Kind())
	}
}

func (ev *Evaluator) invokeSlip(fn *value.SlipFunction, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return ev.runSlipFunction(fn, args, kwargs)
}

// fallbackByName implements dispatch.Fallback (spec §4.4 step 8): look up
// name (already prefixed "core-") in the root scope and call it if bound.
func (ev *Evaluator) fallbackByName(name string, args []value.Value, kwargs map[string]value.Value) (value.Value, bool, error) {
	v, ok := ev.Engine.Root.OwnGet(name)
	if !ok {
		return nil, false, nil
	}
	res, err := ev.invoke(v, args, kwargs)
	return res, true, err
}

// runSlipFunction binds args/kwargs into a fresh scope inheriting the
// function's closure and runs its body (spec §4.3's function-call
// semantics, §4.3's "return" early-exit unwrapped at the function
// boundary).
func (ev *Evaluator) runSlipFunction(f *value.SlipFunction, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	child := value.NewScope()
	_ = child.Inherit(f.Closure)

	names := f.Params
	if f.Sig != nil {
		names = f.Sig.ParamNames()
	}
	for i, n := range names {
		switch {
		case i < len(args):
			child.OwnSet(n, args[i])
		case kwargs != nil:
			if v, ok := kwargs[n]; ok {
				child.OwnSet(n, v)
				continue
			}
			child.OwnSet(n, value.None)
		default:
			child.OwnSet(n, value.None)
		}
	}
	if f.Sig != nil && f.Sig.IsVariadic() {
		consumed := len(names)
		var rest []value.Value
		if len(args) > consumed {
			rest = append(rest, args[consumed:]...)
		}
		child.OwnSet(f.Sig.Rest, value.NewList(rest...))
	}

	res, err := ev.runExprs(child, f.Body.Exprs)
	if err != nil {
		return nil, err
	}
	if r, ok := res.(*value.Response); ok && r.IsReturn() {
		return r.Val, nil
	}
	return res, nil
}

// EvalGuard implements dispatch.GuardEvaluator: bind args/kwargs per
// sig/params in a scope derived from closure and run guard's body,
// returning its truthiness (spec §4.4 step 3).
func (ev *Evaluator) EvalGuard(closure *value.Scope, guard value.Value, sig *value.Sig, params []string, args []value.Value, kwargs map[string]value.Value) (bool, error) {
	code, ok := guard.(*value.Code)
	if !ok {
		return value.Truthy(guard), nil
	}
	child := value.NewScope()
	_ = child.Inherit(closure)
	names := params
	if sig != nil {
		names = sig.ParamNames()
	}
	for i, n := range names {
		switch {
		case i < len(args):
			child.OwnSet(n, args[i])
		case kwargs != nil:
			if v, ok := kwargs[n]; ok {
				child.OwnSet(n, v)
				continue
			}
			child.OwnSet(n, value.None)
		default:
			child.OwnSet(n, value.None)
		}
	}
	res, err := ev.runExprs(child, code.Body.Exprs)
	if err != nil {
		return false, err
	}
	return value.Truthy(res), nil
}

// primitiveAnnotationNames are the bare-name annotations a Sig's keyword
// parameter may carry to mean "this argument's runtime Kind", rather than
// a Scope-family name (spec §4.4 step 6).
var primitiveAnnotationNames = map[string]value.Kind{
	"int": value.KindInt, "float": value.KindFloat, "boolean": value.KindBoolean,
	"none": value.KindNone, "string": value.KindString, "i-string": value.KindIString,
	"bytes": value.KindBytes, "list": value.KindList, "dict": value.KindDict,
	"scope": value.KindScope, "code": value.KindCode, "path": value.KindPath,
	"sig": value.KindSig, "function": value.KindFunction,
}

// Coverage implements dispatch.GuardEvaluator's scoring step (spec §4.4
// step 6): a primitive-name annotation matches by Kind; a Scope-valued or
// Scope-naming annotation matches by family membership, scored by how
// specific the match is (target family size / argument family size); a
// Sig annotation is treated as a union over its positional names; a
// `('and', [...])`/`('union', [...])` tuple combines sub-annotations.
func (ev *Evaluator) Coverage(closure *value.Scope, ann value.Value, arg value.Value) (float64, int, int, bool) {
	switch a := ann.(type) {
	case value.String:
		name := string(a)
		if kind, ok := primitiveAnnotationNames[name]; ok {
			if arg.Kind() == kind {
				return 1, 1, 1, true
			}
			return 0, 0, 0, false
		}
		if v, found := closure.Get(name); found {
			if target, ok := v.(*value.Scope); ok {
				return scopeCoverage(target, arg)
			}
		}
		return 0, 0, 0, false
	case *value.Scope:
		return scopeCoverage(a, arg)
	case *value.Sig:
		var bestScore float64
		var bestDetail, bestFamily int
		matched := false
		for _, name := range a.Positional {
			s, d, f, ok := ev.Coverage(closure, value.String(name), arg)
			if ok && (!matched || s > bestScore) {
				bestScore, bestDetail, bestFamily, matched = s, d, f, true
			}
		}
		return bestScore, bestDetail, bestFamily, matched
	case *value.List:
		return ev.combinatorCoverage(closure, a, arg)
	default:
		return 0, 0, 0, false
	}
}

func scopeCoverage(target *value.Scope, arg value.Value) (float64, int, int, bool) {
	argScope, ok := arg.(*value.Scope)
	if !ok || !argScope.HasInFamily(target) {
		return 0, 0, 0, false
	}
	argFamily := len(argScope.Family())
	targetFamily := len(target.Family())
	if argFamily == 0 {
		argFamily = 1
	}
	return float64(targetFamily) / float64(argFamily), 1, targetFamily, true
}

// combinatorCoverage handles the `('and', [ann,...])` / `('union',
// [ann,...])` tuple-marker annotations (spec §4.4 step 6): "and" sums
// every branch's coverage and requires all to match; "union" takes the
// best matching branch.
func (ev *Evaluator) combinatorCoverage(closure *value.Scope, lst *value.List, arg value.Value) (float64, int, int, bool) {
	if len(lst.Elems) != 2 {
		return 0, 0, 0, false
	}
	marker, ok := lst.Elems[0].(value.String)
	if !ok {
		return 0, 0, 0, false
	}
	items, ok := lst.Elems[1].(*value.List)
	if !ok {
		return 0, 0, 0, false
	}
	switch string(marker) {
	case "and":
		var score float64
		var detail, family int
		for _, it := range items.Elems {
			s, d, f, ok := ev.Coverage(closure, it, arg)
			if !ok {
				return 0, 0, 0, false
			}
			score += s
			detail += d
			family += f
		}
		return score, detail, family, true
	case "union":
		var bestScore float64
		var bestDetail, bestFamily int
		matched := false
		for _, it := range items.Elems {
			s, d, f, ok := ev.Coverage(closure, it, arg)
			if ok && (!matched || s > bestScore) {
				bestScore, bestDetail, bestFamily, matched = s, d, f, true
			}
		}
		return bestScore, bestDetail, bestFamily, matched
	default:
		return 0, 0, 0, false
	}
}
