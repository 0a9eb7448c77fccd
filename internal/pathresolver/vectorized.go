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
)

// vectorizedTail reports whether the final two segments of segs form the
// `(Name, FilterQuery)` or `(FilterQuery, Name)` pair that the resolver
// treats as a single vectorized write over the preceding list container
// (spec §4.2).
func vectorizedTail(segs []ast.Segment) (name *ast.NameSeg, filter *ast.FilterQuerySeg, nameFirst bool, ok bool) {
	if len(segs) < 2 {
		return nil, nil, false, false
	}
	a, b := segs[len(segs)-2], segs[len(segs)-1]
	if n, isName := a.(*ast.NameSeg); isName {
		if f, isFilter := b.(*ast.FilterQuerySeg); isFilter {
			return n, f, true, true
		}
	}
	if f, isFilter := a.(*ast.FilterQuerySeg); isFilter {
		if n, isName := b.(*ast.NameSeg); isName {
			return n, f, false, true
		}
	}
	return nil, nil, false, false
}

// vectorizedSet implements the write side of spec §4.2's vectorized-write
// bullet: select the elements of lst that pass the filter, then either
// broadcast a scalar RHS, assign elementwise from a length-matched RHS
// list, or - when rhsExpr is itself a piped-update expression - apply it
// to each selected element's current field value.
//
// nameFirst distinguishes `list.field[predicate]` (predicate evaluated
// against the plucked field value, legacy-operator style) from
// `list[predicate].field` (predicate evaluated against the whole element,
// general overlay style).
func (r *Resolver) vectorizedSet(ctx context.Context, lst *value.List, name *ast.NameSeg, filter *ast.FilterQuerySeg, nameFirst bool, scope *value.Scope, rhsExpr ast.Expr, updateStyle bool) error {
	selected := make([]value.Value, 0, len(lst.Elems))
	for _, elem := range lst.Elems {
		truthy, err := r.vectorizedPredicate(elem, name, filter, nameFirst, scope)
		if err != nil {
			return err
		}
		if truthy {
			selected = append(selected, elem)
		}
	}

	if updateStyle {
		for _, elem := range selected {
			cur, _ := fieldOf(elem, name.Text)
			newVal, err := r.Eval.EvalSeeded(cur, scope, rhsExpr)
			if err != nil {
				return err
			}
			if err := setField(elem, name.Text, newVal, name.Pos()); err != nil {
				return err
			}
		}
		return nil
	}

	rhs, err := r.Eval.Eval(scope, rhsExpr)
	if err != nil {
		return err
	}
	if rl, ok := rhs.(*value.List); ok {
		if len(rl.Elems) != len(selected) {
			return slerr.NewfKind(slerr.KindTypeError, name.Pos(),
				"vectorized assignment length mismatch: %d selected, %d values", len(selected), len(rl.Elems))
		}
		for i, elem := range selected {
			if err := setField(elem, name.Text, rl.Elems[i], name.Pos()); err != nil {
				return err
			}
		}
		return nil
	}
	for _, elem := range selected {
		if err := setField(elem, name.Text, rhs, name.Pos()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) vectorizedPredicate(elem value.Value, name *ast.NameSeg, filter *ast.FilterQuerySeg, nameFirst bool, scope *value.Scope) (bool, error) {
	if nameFirst {
		// `.hp[< 50]`: predicate runs against the plucked field value.
		fv, _ := fieldOf(elem, name.Text)
		if filter.LegacyOperator {
			result, err := r.Eval.EvalSeeded(fv, scope, filter.Predicate)
			if err != nil {
				return false, err
			}
			return value.Truthy(result), nil
		}
		overlay := value.NewFilterOverlay(fv, scope)
		result, err := r.Eval.Eval(overlay, filter.Predicate)
		if err != nil {
			return false, err
		}
		return value.Truthy(result), nil
	}
	// `[.hp < 50].hp`: predicate runs against the whole element.
	return r.evalPredicate(elem, filter, scope)
}
