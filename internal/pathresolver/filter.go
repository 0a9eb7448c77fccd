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
)

// applyFilter implements `[ predicate ]` (spec §4.2). Applied to a List,
// it keeps the elements for which the predicate is truthy; applied to
// anything else it returns an opaque View placeholder rather than
// erroring, since a non-list container has no inherent order to select
// over but the query may still be materialized later (grounded on
// original_source/slip/slip_interpreter.py's `_apply_filter`, which
// returns `View(container, [segment])` in this case rather than
// raising).
func (r *Resolver) applyFilter(ctx context.Context, cur value.Value, seg *ast.FilterQuerySeg, scope *value.Scope) (value.Value, error) {
	lst, ok := cur.(*value.List)
	if !ok {
		return &value.View{Source: cur, Ops: []ast.Segment{seg}}, nil
	}
	kept := make([]value.Value, 0, len(lst.Elems))
	for _, item := range lst.Elems {
		truthy, err := r.evalPredicate(item, seg, scope)
		if err != nil {
			return nil, err
		}
		if truthy {
			kept = append(kept, item)
		}
	}
	return value.NewList(kept...), nil
}

// evalPredicate evaluates seg's predicate for one item. A legacy
// operator-only predicate (`[> 10]`) is desugared by seeding the
// expression with item itself as the implicit left operand, matching the
// general "operator resolution rule" (spec §4.3) a bare RHS path already
// gets in an update assignment. The general form (`[ .hp > 10 ]` or a
// bare-name reference to the enclosing scope) instead runs inside a
// filter overlay scope, so `.field` reaches into item and an unqualified
// name still reaches the caller's lexical scope (spec §4.2).
func (r *Resolver) evalPredicate(item value.Value, seg *ast.FilterQuerySeg, scope *value.Scope) (bool, error) {
	var result value.Value
	var err error
	if seg.LegacyOperator {
		result, err = r.Eval.EvalSeeded(item, scope, seg.Predicate)
	} else {
		overlay := value.NewFilterOverlay(item, scope)
		result, err = r.Eval.Eval(overlay, seg.Predicate)
	}
	if err != nil {
		return false, err
	}
	return value.Truthy(result), nil
}
