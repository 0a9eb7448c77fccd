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
	"github.com/chrsbats/slip/slip/ast"
	slerr "github.com/chrsbats/slip/slip/errors"
)

// leadsWithPipe reports whether expr's first term is a piped operator,
// the shape spec §4.3 item 1 keys "update-style" assignment off.
func leadsWithPipe(expr ast.Expr) bool {
	if len(expr.Terms) == 0 {
		return false
	}
	_, ok := expr.Terms[0].(*ast.PipedPath)
	return ok
}

// evalSet implements spec §4.3 item 1's SetPath form: update-style
// seeding, alias write-through for a bare name, and function-binding
// merge into a GenericFunction when the RHS is a SlipFunction.
func (ev *Evaluator) evalSet(scope *value.Scope, sp *ast.SetPath, rhsExpr ast.Expr) (value.Value, error) {
	return ev.evalSetDepth(scope, sp, rhsExpr, 0)
}

func (ev *Evaluator) evalSetDepth(scope *value.Scope, sp *ast.SetPath, rhsExpr ast.Expr, depth int) (value.Value, error) {
	if depth > maxAliasDepth {
		return nil, slerr.RuntimeErrorf(sp.Pos(), "assignment through alias cycle")
	}
	if name, ok := segSingleName(sp.Segments, sp.Meta); ok {
		return ev.evalSetNameDepth(scope, name, rhsExpr, depth)
	}

	p := &value.Path{Form: value.FormSet, Segments: sp.Segments, Meta: sp.Meta}
	updateStyle := ev.detectUpdateStyle(scope, sp.Segments, sp.Meta, rhsExpr)
	return ev.Resolver.Set(ev.ctx, p, scope, rhsExpr, updateStyle, nil)
}

// evalSetNameDepth handles a bare single-segment SetPath target: the
// only shape that can be either an alias write-through or a function
// binding (spec §4.3 item 1's "simple name" cases).
func (ev *Evaluator) evalSetNameDepth(scope *value.Scope, name string, rhsExpr ast.Expr, depth int) (value.Value, error) {
	if cur, found := scope.Get(name); found {
		if aliasPath, ok := cur.(*value.Path); ok && !aliasPath.Literal && aliasPath.Form == value.FormGet {
			target := &ast.SetPath{Segments: aliasPath.Segments, Meta: aliasPath.Meta}
			return ev.evalSetDepth(scope, target, rhsExpr, depth+1)
		}
	}

	updateStyle := false
	var seed value.Value
	if cur, found := scope.Get(name); found {
		seed = cur
		if pv, ok := cur.(*value.Path); !ok || pv.Form != value.FormPiped {
			if leadsWithPipe(rhsExpr) {
				updateStyle = true
			}
		}
	}

	var rhs value.Value
	var err error
	if updateStyle {
		rhs, err = ev.EvalSeeded(seed, scope, rhsExpr)
	} else {
		rhs, err = ev.Eval(scope, rhsExpr)
	}
	if err != nil {
		return nil, err
	}

	if fn, ok := rhs.(*value.SlipFunction); ok {
		fn.Name = name
		rhs = ev.mergeFunctionBinding(scope, name, fn)
	}

	target := scope
	if updateStyle {
		if owner := scope.FindOwner(name); owner != nil {
			target = owner
		}
	}
	target.OwnSet(name, rhs)
	return rhs, nil
}

// detectUpdateStyle probes the LHS's current value, without forcing a
// second evaluation unless rhsExpr actually opens with a pipe (spec §4.3
// item 1). A probe that errors (e.g. path not found) means "no current
// value", which is simply not update-style.
func (ev *Evaluator) detectUpdateStyle(scope *value.Scope, segs []ast.Segment, meta *ast.Meta, rhsExpr ast.Expr) bool {
	if !leadsWithPipe(rhsExpr) {
		return false
	}
	getP := &value.Path{Form: value.FormGet, Segments: segs, Meta: meta}
	cur, err := ev.Resolver.Get(ev.ctx, getP, scope)
	if err != nil {
		return false
	}
	if pv, ok := cur.(*value.Path); ok && pv.Form == value.FormPiped {
		return false
	}
	return true
}

// mergeFunctionBinding implements spec §4.3 item 1's "function binding"
// and §4.4's example-driven synthesis: merge fn (or its typed clones,
// when it carries examples and no Sig of its own) into the
// GenericFunction already bound to name in scope, or a fresh one.
func (ev *Evaluator) mergeFunctionBinding(scope *value.Scope, name string, fn *value.SlipFunction) *value.GenericFunction {
	var gen *value.GenericFunction
	if cur, found := scope.Get(name); found {
		if g, ok := cur.(*value.GenericFunction); ok {
			gen = g
		}
	}
	if gen == nil {
		gen = value.NewGenericFunction(name)
	}
	if clones := dispatch.SynthesizeFromExamples(fn); len(clones) > 0 {
		for _, c := range clones {
			gen.Merge(c)
		}
	} else {
		gen.Merge(fn)
	}
	return gen
}

// evalMultiSet implements spec §4.3 item 1's MultiSetPath form:
// elementwise assignment of a length-matched list RHS across Targets.
func (ev *Evaluator) evalMultiSet(scope *value.Scope, msp *ast.MultiSetPath, rhsExpr ast.Expr) (value.Value, error) {
	rhs, err := ev.Eval(scope, rhsExpr)
	if err != nil {
		return nil, err
	}
	lst, ok := rhs.(*value.List)
	if !ok {
		return nil, slerr.TypeErrorf(msp.Pos(), "multi-set assignment requires a list value, got %s", rhs.Kind())
	}
	if len(lst.Elems) != len(msp.Targets) {
		return nil, slerr.TypeErrorf(msp.Pos(), "multi-set assignment requires %d values, got %d", len(msp.Targets), len(lst.Elems))
	}
	for i, tgt := range msp.Targets {
		p := &value.Path{Form: value.FormSet, Segments: tgt.Segments, Meta: tgt.Meta}
		if _, err := ev.Resolver.SetValue(ev.ctx, p, scope, lst.Elems[i]); err != nil {
			return nil, err
		}
	}
	return rhs, nil
}

// evalDelete implements spec §4.3 item 1's DelPath form: delete, then
// cascade-prune empty Scope ancestors, stopping at the caller's lexical
// top-level when the deleted name is lowercase (spec's pruning-policy
// open question, resolved in favor of preserving user variables).
func (ev *Evaluator) evalDelete(scope *value.Scope, dp *ast.DelPath) (value.Value, error) {
	getP := &value.Path{Form: value.FormGet, Segments: dp.Segments, Meta: dp.Meta}
	prior, _ := ev.Resolver.Get(ev.ctx, getP, scope)

	metaDict, err := ev.evalMeta(scope, dp.Meta)
	if err != nil {
		return nil, err
	}
	prune := true
	if metaDict != nil {
		if v, ok := metaDict.Get("prune"); ok {
			prune = value.Truthy(v)
		}
	}

	var floor *value.Scope
	if len(dp.Segments) > 0 && isLowerNameSeg(dp.Segments[len(dp.Segments)-1]) {
		floor = lexicalTop(scope)
	}

	p := &value.Path{Form: value.FormDel, Segments: dp.Segments, Meta: dp.Meta}
	if err := ev.Resolver.Delete(ev.ctx, p, scope, floor, prune); err != nil {
		return nil, err
	}
	if prior == nil {
		return value.None, nil
	}
	return prior, nil
}

// isLowerNameSeg reports whether seg is a plain Name segment starting
// with a lowercase letter (spec's pruning-floor heuristic: "stops at the
// caller's lexical top-level for lowercase names").
func isLowerNameSeg(seg ast.Segment) bool {
	ns, ok := seg.(*ast.NameSeg)
	if !ok || ns.Dotted || len(ns.Text) == 0 {
		return false
	}
	r := ns.Text[0]
	return r >= 'a' && r <= 'z'
}

// lexicalTop walks to the outermost scope reachable via Parent links
// from scope, the pruning floor for a lowercase top-level binding.
func lexicalTop(scope *value.Scope) *value.Scope {
	s := scope
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// evalPost implements spec §4.3 item 1's PostPath form: legal only over
// an http(s) locator.
func (ev *Evaluator) evalPost(scope *value.Scope, pp *ast.PostPath, rhsExpr ast.Expr) (value.Value, error) {
	rhs, err := ev.Eval(scope, rhsExpr)
	if err != nil {
		return nil, err
	}
	p := &value.Path{Form: value.FormPost, Segments: pp.Segments, Meta: pp.Meta}
	return ev.Resolver.Post(ev.ctx, p, scope, rhs)
}

// evalMeta evaluates a `#( ... )` meta group's assignments inside a
// fresh scope that still inherits the caller's lexical scope (unlike
// `#{ ... }` dict literals, which are deliberately isolated), returning
// the bindings as a Dict.
func (ev *Evaluator) evalMeta(scope *value.Scope, m *ast.Meta) (*value.Dict, error) {
	if m == nil {
		return nil, nil
	}
	child := freshChild(scope)
	if _, err := ev.runExprs(child, m.Exprs); err != nil {
		return nil, err
	}
	d := value.NewDict()
	for _, k := range child.Keys() {
		v, _ := child.OwnGet(k)
		d.Set(k, v)
	}
	return d, nil
}
