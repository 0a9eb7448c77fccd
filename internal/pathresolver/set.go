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

package pathresolver

import (
	"context"

	"github.com/chrsbats/slip/internal/value"
	"github.com/chrsbats/slip/slip/ast"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// Set resolves p to its parent container and writes the final segment
// (spec §4.2). rhsExpr is left unevaluated so that update-style writes
// (updateStyle true, decided by the evaluator's head-form dispatch per
// spec §4.3 item 1) can seed the RHS pipeline with the path's current
// value; ordinary writes evaluate rhsExpr exactly once.
//
// updateScope, when non-nil, is the exact Scope policy (b) ("owner-write")
// resolved to: a single-name path is then written there instead of
// introducing a new local shadow (spec §4.1). internal/eval always passes
// nil; it resolves the owner of a bare-name update itself and never calls
// Set for a bare name.
func (r *Resolver) Set(ctx context.Context, p *value.Path, scope *value.Scope, rhsExpr ast.Expr, updateStyle bool, updateScope *value.Scope) (value.Value, error) {
	scheme, locText, isURL, err := r.dispatchScheme(p.Segments)
	if err != nil {
		return nil, err
	}
	if isURL {
		l, err := r.locatorFor(scheme, pathPos(p))
		if err != nil {
			return nil, err
		}
		rhs, err := r.evalRHS(scope, rhsExpr, nil, updateStyle)
		if err != nil {
			return nil, err
		}
		meta, err := r.resolveMeta(scope, p)
		if err != nil {
			return nil, err
		}
		return nil, l.Set(ctx, locText, rhs, meta)
	}

	segs := effectiveSegments(p.Segments)
	if len(segs) == 0 {
		return nil, slerr.NewfKind(slerr.KindTypeError, pathPos(p), "cannot assign to an empty path")
	}

	if nameSeg, filterSeg, nameFirst, ok := vectorizedTail(segs); ok {
		container, err := r.walk(ctx, segs[:len(segs)-2], scope)
		if err != nil {
			return nil, err
		}
		lst, ok := container.(*value.List)
		if !ok {
			return nil, slerr.NewfKind(slerr.KindTypeError, pathPos(p), "vectorized write requires a list, got %s", container.Kind())
		}
		return nil, r.vectorizedSet(ctx, lst, nameSeg, filterSeg, nameFirst, scope, rhsExpr, updateStyle)
	}

	if updateScope != nil && len(segs) == 1 {
		if name, ok := segs[0].(*ast.NameSeg); ok {
			cur, _ := updateScope.OwnGet(name.Text)
			rhs, err := r.evalRHS(scope, rhsExpr, cur, updateStyle)
			if err != nil {
				return nil, err
			}
			updateScope.OwnSet(name.Text, rhs)
			return rhs, nil
		}
	}

	prefix, last := segs[:len(segs)-1], segs[len(segs)-1]
	container, err := r.walk(ctx, prefix, scope)
	if err != nil {
		return nil, err
	}

	cur, _ := r.step(ctx, container, last, scope)
	rhs, err := r.evalRHS(scope, rhsExpr, cur, updateStyle)
	if err != nil {
		return nil, err
	}
	if err := r.writeLast(container, last, rhs, scope); err != nil {
		return nil, err
	}
	return rhs, nil
}

// SetValue writes an already-evaluated rhs to p, without re-running
// update-style/vectorized detection. It backs MultiSetPath's elementwise
// assignment (spec §4.3: "RHS must evaluate to a list of equal length;
// elementwise assign"), where each target's value is already known up
// front rather than expressed as its own RHS expression.
func (r *Resolver) SetValue(ctx context.Context, p *value.Path, scope *value.Scope, rhs value.Value) (value.Value, error) {
	scheme, locText, isURL, err := r.dispatchScheme(p.Segments)
	if err != nil {
		return nil, err
	}
	if isURL {
		l, err := r.locatorFor(scheme, pathPos(p))
		if err != nil {
			return nil, err
		}
		meta, err := r.resolveMeta(scope, p)
		if err != nil {
			return nil, err
		}
		return nil, l.Set(ctx, locText, rhs, meta)
	}
	segs := effectiveSegments(p.Segments)
	if len(segs) == 0 {
		return nil, slerr.NewfKind(slerr.KindTypeError, pathPos(p), "cannot assign to an empty path")
	}
	prefix, last := segs[:len(segs)-1], segs[len(segs)-1]
	container, err := r.walk(ctx, prefix, scope)
	if err != nil {
		return nil, err
	}
	if err := r.writeLast(container, last, rhs, scope); err != nil {
		return nil, err
	}
	return rhs, nil
}

// walk applies segs in order starting from scope's natural start
// container, without the trailing-write special casing Get uses.
func (r *Resolver) walk(ctx context.Context, segs []ast.Segment, scope *value.Scope) (value.Value, error) {
	cur := r.startContainer(segs, scope)
	rest := effectiveSegments(segs)
	for _, seg := range rest {
		next, err := r.step(ctx, cur, seg, scope)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// evalRHS evaluates rhsExpr once, seeding with cur when updateStyle is
// set (spec §4.3: "seed the RHS pipeline with the current value").
func (r *Resolver) evalRHS(scope *value.Scope, rhsExpr ast.Expr, cur value.Value, updateStyle bool) (value.Value, error) {
	if updateStyle && cur != nil {
		return r.Eval.EvalSeeded(cur, scope, rhsExpr)
	}
	return r.Eval.Eval(scope, rhsExpr)
}

func (r *Resolver) writeLast(container value.Value, seg ast.Segment, rhs value.Value, scope *value.Scope) error {
	switch s := seg.(type) {
	case *ast.NameSeg:
		if lst, ok := container.(*value.List); ok {
			return assignAcrossList(lst, s.Text, rhs)
		}
		return setField(container, s.Text, rhs, s.Pos())
	case *ast.IndexSeg:
		key, err := r.Eval.Eval(scope, s.Index)
		if err != nil {
			return err
		}
		return indexSet(container, key, rhs, s.Pos())
	case *ast.GroupSeg:
		key, err := r.evalExprs(scope, s.Exprs)
		if err != nil {
			return err
		}
		return indexSet(container, key, rhs, s.Pos())
	default:
		return slerr.NewfKind(slerr.KindTypeError, seg.Pos(), "invalid assignment target")
	}
}

func setField(container value.Value, key string, v value.Value, pos token.Pos) error {
	switch c := container.(type) {
	case *value.Scope:
		c.OwnSet(key, v)
		return nil
	case *value.Dict:
		c.Set(key, v)
		return nil
	case value.HostObject:
		return c.Set(key, v)
	default:
		return slerr.NewfKind(slerr.KindTypeError, pos, "cannot assign field %q on %s", key, container.Kind())
	}
}

func indexSet(container value.Value, key value.Value, v value.Value, pos token.Pos) error {
	switch c := container.(type) {
	case *value.List:
		i, ok := key.(value.Int)
		if !ok {
			return slerr.NewfKind(slerr.KindTypeError, pos, "list index must be an integer, got %s", key.Kind())
		}
		n, _ := i.Int64()
		idx := normalizeIndex(n, len(c.Elems))
		if idx < 0 || idx >= len(c.Elems) {
			return slerr.NewfKind(slerr.KindPathNotFound, pos, "list index %d out of range", n)
		}
		c.Elems[idx] = v
		return nil
	case *value.Dict:
		c.Set(keyText(key), v)
		return nil
	case *value.Scope:
		c.OwnSet(keyText(key), v)
		return nil
	case value.HostObject:
		return c.Set(keyText(key), v)
	default:
		return slerr.NewfKind(slerr.KindTypeError, pos, "cannot index-assign on %s", container.Kind())
	}
}

// assignAcrossList implements the unfiltered vectorized write (Name
// segment directly on a List lvalue): broadcast a scalar RHS to every
// element's field, or assign elementwise when RHS is a length-matched
// List (spec §4.2).
func assignAcrossList(lst *value.List, key string, rhs value.Value) error {
	if rl, ok := rhs.(*value.List); ok && len(rl.Elems) == len(lst.Elems) {
		for i, elem := range lst.Elems {
			if err := setField(elem, key, rl.Elems[i], token.NoPos); err != nil {
				return err
			}
		}
		return nil
	}
	for _, elem := range lst.Elems {
		if err := setField(elem, key, rhs, token.NoPos); err != nil {
			return err
		}
	}
	return nil
}
