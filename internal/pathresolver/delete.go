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

// Delete resolves p to its parent container and removes the last key,
// then optionally cascades pruning of now-empty Scope ancestors upward
// along the write path (spec §4.2). floor bounds the prune walk: the
// caller's lexical top-level for a lowercase-name path, or nil to prune
// all the way to the resolver's Root. prune, evaluated from the path's
// `meta#(prune: ...)` option by the caller, disables the cascade entirely
// when false.
func (r *Resolver) Delete(ctx context.Context, p *value.Path, scope *value.Scope, floor *value.Scope, prune bool) error {
	scheme, locText, isURL, err := r.dispatchScheme(p.Segments)
	if err != nil {
		return err
	}
	if isURL {
		l, err := r.locatorFor(scheme, pathPos(p))
		if err != nil {
			return err
		}
		meta, err := r.resolveMeta(scope, p)
		if err != nil {
			return err
		}
		return l.Delete(ctx, locText, meta)
	}

	segs := effectiveSegments(p.Segments)
	if len(segs) == 0 {
		return slerr.NewfKind(slerr.KindTypeError, pathPos(p), "cannot delete an empty path")
	}
	prefix, last := segs[:len(segs)-1], segs[len(segs)-1]
	container, chain, err := r.walkChain(ctx, prefix, scope)
	if err != nil {
		return err
	}

	owner, key, err := r.deleteLast(container, last, scope)
	if err != nil {
		return err
	}
	if prune && owner != nil {
		r.cascadePrune(owner, chain, floor)
	}
	return nil
}

// scopeStep is one Scope-to-Scope hop recorded while walking toward the
// delete target: the Scope reached, and the key under which its *caller*
// (the previous element, or the starting scope for the first step) holds
// it. Only Scope containers matter here, since pruning only concerns
// Scope ancestors (spec §4.2); List/Dict containers break the chain.
type scopeStep struct {
	holder *value.Scope
	key    string
}

// walkChain is like walk but also returns, for every Scope-to-Scope Name
// hop along the way, the (holder, key) pair needed to prune that Scope
// back out of its holder once it becomes empty.
func (r *Resolver) walkChain(ctx context.Context, segs []ast.Segment, scope *value.Scope) (value.Value, []scopeStep, error) {
	cur := r.startContainer(segs, scope)
	rest := effectiveSegments(segs)
	var chain []scopeStep
	for _, seg := range rest {
		if n, ok := seg.(*ast.NameSeg); ok {
			if holder, ok := cur.(*value.Scope); ok {
				chain = append(chain, scopeStep{holder: holder, key: n.Text})
			}
		}
		next, err := r.step(ctx, cur, seg, scope)
		if err != nil {
			return nil, nil, err
		}
		cur = next
	}
	return cur, chain, nil
}

// deleteLast removes the keyed binding and, when the container is a
// Scope, returns it together with the deleted key so the caller can run
// the prune cascade.
func (r *Resolver) deleteLast(container value.Value, seg ast.Segment, scope *value.Scope) (owner *value.Scope, key string, err error) {
	switch s := seg.(type) {
	case *ast.NameSeg:
		return r.deleteKey(container, s.Text, s.Pos())
	case *ast.IndexSeg:
		k, err := r.Eval.Eval(scope, s.Index)
		if err != nil {
			return nil, "", err
		}
		return r.deleteKey(container, keyText(k), s.Pos())
	case *ast.GroupSeg:
		k, err := r.evalExprs(scope, s.Exprs)
		if err != nil {
			return nil, "", err
		}
		return r.deleteKey(container, keyText(k), s.Pos())
	default:
		return nil, "", slerr.NewfKind(slerr.KindTypeError, seg.Pos(), "invalid delete target")
	}
}

func (r *Resolver) deleteKey(container value.Value, key string, pos token.Pos) (*value.Scope, string, error) {
	switch c := container.(type) {
	case *value.Scope:
		c.OwnDelete(key)
		return c, key, nil
	case *value.Dict:
		c.Delete(key)
		return nil, "", nil
	case value.HostObject:
		return nil, "", c.Delete(key)
	default:
		return nil, "", slerr.TypeErrorf(pos, "cannot delete key %q from %s", key, container.Kind())
	}
}

// cascadePrune implements "removes empty Scope ancestors along the write
// path but stops at the caller's lexical top-level" (spec §4.2): after
// deleting the leaf key from owner, if owner is now empty and owner is
// not floor, remove owner from whichever Scope holds it (per chain,
// recorded innermost-last by walkChain), and repeat upward until a
// non-empty Scope, floor, or the start of the chain is reached.
func (r *Resolver) cascadePrune(owner *value.Scope, chain []scopeStep, floor *value.Scope) {
	cur := owner
	idx := len(chain) - 1
	for cur != nil && cur != floor && cur.Len() == 0 && idx >= 0 {
		step := chain[idx]
		step.holder.OwnDelete(step.key)
		cur = step.holder
		idx--
	}
}
