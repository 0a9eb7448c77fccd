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
	"fmt"

	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/ast"
	"github.com/chrsbats/slip/slip/token"
)

// Evaluator is the slice of internal/eval the resolver needs: running a
// predicate expression, a dynamic Group key expression, and (for
// legacy-operator filter predicates and vectorized piped-update RHS
// expressions) running an expression with an implicit seed value standing
// in for the missing left operand (spec §4.2, §4.3's "operator resolution
// rule").
type Evaluator interface {
	Eval(scope *value.Scope, expr ast.Expr) (value.Value, error)
	EvalSeeded(seed value.Value, scope *value.Scope, expr ast.Expr) (value.Value, error)
	// EvalMeta evaluates a path's `#( ... )` option group (spec §6) into a
	// Dict of recognized option keys, or returns nil for an absent group.
	EvalMeta(scope *value.Scope, m *ast.Meta) (*value.Dict, error)
}

// Resolver implements spec §4.2: it is the only component that walks a
// Path's segments against live data, whether that data is a Scope's
// prototype chain, a List/Dict, or an external Locator.
type Resolver struct {
	Root     *value.Scope
	Eval     Evaluator
	Locators map[string]Locator // scheme -> adapter, populated by cmd/slip at startup
}

func New(root *value.Scope, eval Evaluator) *Resolver {
	return &Resolver{Root: root, Eval: eval, Locators: map[string]Locator{}}
}

// startContainer returns the traversal root for segs given the calling
// scope: the resolver's global Root for an absolute path (first segment
// is RootSeg), the filter-overlay's item or enclosing scope when scope is
// a filter-query overlay (spec §4.2), otherwise the calling lexical scope
// itself.
func (r *Resolver) startContainer(segs []ast.Segment, scope *value.Scope) value.Value {
	if len(segs) > 0 {
		if _, ok := segs[0].(*ast.RootSeg); ok {
			return r.Root
		}
	}
	if scope != nil && scope.IsFilterOverlay {
		if len(segs) > 0 {
			if n, ok := segs[0].(*ast.NameSeg); ok {
				if n.Dotted {
					return scope.FilterItem
				}
				return scope.FilterParent
			}
		}
	}
	return scope
}

// locatorPrefix reports whether segs begins with a scheme-prefixed Name
// segment (spec §6), and if so validates that no SLIP segments trail it.
func (r *Resolver) locatorPrefix(segs []ast.Segment) (text string, ok bool, err error) {
	if len(segs) == 0 {
		return "", false, nil
	}
	n, isName := segs[0].(*ast.NameSeg)
	if !isName {
		return "", false, nil
	}
	if _, isScheme := schemeOf(n.Text); !isScheme {
		return "", false, nil
	}
	if len(segs) > 1 {
		return "", false, slerr.NewfKind(slerr.KindTypeError, n.Pos(),
			"trailing segments are not permitted after a locator URL")
	}
	return n.Text, true, nil
}

// resolveMeta evaluates p's `#( ... )` option group, if any, into the
// Meta a Locator call expects (spec §6). A path with no meta group
// evaluates to an empty Meta, matching the options' documented defaults.
func (r *Resolver) resolveMeta(scope *value.Scope, p *value.Path) (Meta, error) {
	d, err := r.Eval.EvalMeta(scope, p.Meta)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return Meta{}, nil
	}
	m := make(Meta, d.Len())
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		m[k] = v
	}
	return m, nil
}

func (r *Resolver) locatorFor(scheme string, pos token.Pos) (Locator, error) {
	l, ok := r.Locators[scheme]
	if !ok {
		return nil, slerr.NewfKind(slerr.KindRuntimeError, pos, "no locator registered for scheme %q", scheme)
	}
	return l, nil
}

// Get resolves p for a read (spec §4.2), following one level of alias
// dereferencing when the resolved value is itself a non-literal GetPath.
// ctx carries cancellation for any locator call along the way.
func (r *Resolver) Get(ctx context.Context, p *value.Path, scope *value.Scope) (value.Value, error) {
	v, err := r.rawGet(ctx, p, scope)
	if err != nil {
		return nil, err
	}
	return r.derefAlias(ctx, v, scope)
}

func (r *Resolver) rawGet(ctx context.Context, p *value.Path, scope *value.Scope) (value.Value, error) {
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
		return l.Get(ctx, locText, meta)
	}

	cur := r.startContainer(p.Segments, scope)
	segs := effectiveSegments(p.Segments)
	for _, seg := range segs {
		next, err := r.step(ctx, cur, seg, scope)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// dispatchScheme is the shared locator check of Get, Set, SetValue and
// Delete (Post calls locatorPrefix directly, since only http(s) is legal
// there).
func (r *Resolver) dispatchScheme(segs []ast.Segment) (scheme, text string, ok bool, err error) {
	text, ok, err = r.locatorPrefix(segs)
	if err != nil || !ok {
		return "", "", ok, err
	}
	scheme, _ = schemeOf(text)
	return scheme, text, true, nil
}

// effectiveSegments strips a leading RootSeg, which only selects the
// starting container and carries no further traversal step.
func effectiveSegments(segs []ast.Segment) []ast.Segment {
	if len(segs) > 0 {
		if _, ok := segs[0].(*ast.RootSeg); ok {
			return segs[1:]
		}
	}
	return segs
}

// step applies one segment to cur, returning the next container/value
// (spec §4.2). Name on a *List triggers vectorized pluck.
func (r *Resolver) step(ctx context.Context, cur value.Value, seg ast.Segment, scope *value.Scope) (value.Value, error) {
	switch s := seg.(type) {
	case *ast.RootSeg:
		return r.Root, nil
	case *ast.ParentSeg:
		sc, ok := cur.(*value.Scope)
		if !ok {
			return nil, slerr.NewfKind(slerr.KindTypeError, s.Pos(), "'..' requires a scope, got %s", cur.Kind())
		}
		if sc.Parent == nil {
			return nil, slerr.NewfKind(slerr.KindPathNotFound, s.Pos(), "scope has no parent")
		}
		return sc.Parent, nil
	case *ast.PwdSeg:
		return cur, nil
	case *ast.NameSeg:
		if lst, ok := cur.(*value.List); ok {
			return pluck(lst, s.Text), nil
		}
		v, ok := fieldOf(cur, s.Text)
		if !ok {
			return nil, slerr.PathNotFound(s.Pos(), s.Text)
		}
		return v, nil
	case *ast.IndexSeg:
		key, err := r.Eval.Eval(scope, s.Index)
		if err != nil {
			return nil, err
		}
		return indexInto(cur, key, s.Pos())
	case *ast.SliceSeg:
		return sliceInto(cur, s, scope, r.Eval)
	case *ast.GroupSeg:
		key, err := r.evalExprs(scope, s.Exprs)
		if err != nil {
			return nil, err
		}
		return indexInto(cur, key, s.Pos())
	case *ast.FilterQuerySeg:
		return r.applyFilter(ctx, cur, s, scope)
	default:
		return nil, fmt.Errorf("pathresolver: unhandled segment %T", seg)
	}
}

// pathPos returns the best available source position for diagnostics: the
// first segment's, or token.NoPos for an empty/synthetic Path.
func pathPos(p *value.Path) token.Pos {
	if len(p.Segments) > 0 {
		return p.Segments[0].Pos()
	}
	return token.NoPos
}

func (r *Resolver) evalExprs(scope *value.Scope, exprs []ast.Expr) (value.Value, error) {
	var last value.Value = value.None
	for _, e := range exprs {
		v, err := r.Eval.Eval(scope, e)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// fieldOf reads key off any of the container kinds that expose named
// fields: Scope (full prototype/mixin chain), Dict, and host objects.
func fieldOf(v value.Value, key string) (value.Value, bool) {
	switch x := v.(type) {
	case *value.Scope:
		return x.Get(key)
	case *value.Dict:
		return x.Get(key)
	case value.HostObject:
		if v, ok := x.Get(key); ok {
			return v, true
		}
		if m, ok := x.Method(key); ok {
			return m, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// pluck implements the vectorized-read rule: Name on a List yields a new
// List of that field from every element (spec §4.2).
func pluck(lst *value.List, key string) *value.List {
	out := make([]value.Value, len(lst.Elems))
	for i, e := range lst.Elems {
		v, ok := fieldOf(e, key)
		if !ok {
			v = value.None
		}
		out[i] = v
	}
	return value.NewList(out...)
}

func indexInto(cur value.Value, key value.Value, pos token.Pos) (value.Value, error) {
	switch c := cur.(type) {
	case *value.List:
		i, ok := key.(value.Int)
		if !ok {
			return nil, slerr.NewfKind(slerr.KindTypeError, pos, "list index must be an integer, got %s", key.Kind())
		}
		n, _ := i.Int64()
		idx := normalizeIndex(n, len(c.Elems))
		if idx < 0 || idx >= len(c.Elems) {
			return nil, slerr.NewfKind(slerr.KindPathNotFound, pos, "list index %d out of range", n)
		}
		return c.Elems[idx], nil
	case *value.Dict:
		k := keyText(key)
		v, ok := c.Get(k)
		if !ok {
			return nil, slerr.PathNotFound(pos, k)
		}
		return v, nil
	case *value.Scope:
		k := keyText(key)
		v, ok := c.Get(k)
		if !ok {
			return nil, slerr.PathNotFound(pos, k)
		}
		return v, nil
	case value.HostObject:
		k := keyText(key)
		v, ok := c.Get(k)
		if !ok {
			return nil, slerr.PathNotFound(pos, k)
		}
		return v, nil
	default:
		return nil, slerr.NewfKind(slerr.KindTypeError, pos, "cannot index into %s", cur.Kind())
	}
}

// normalizeIndex implements negative-index-from-end addressing (spec §3).
func normalizeIndex(n int64, length int) int {
	if n < 0 {
		return length + int(n)
	}
	return int(n)
}

func keyText(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return string(s)
	}
	return v.Pformat()
}

func sliceInto(cur value.Value, s *ast.SliceSeg, scope *value.Scope, ev Evaluator) (value.Value, error) {
	lst, ok := cur.(*value.List)
	if !ok {
		return nil, slerr.NewfKind(slerr.KindTypeError, s.Pos(), "slice requires a list, got %s", cur.Kind())
	}
	n := len(lst.Elems)
	start, end := 0, n
	if s.Start != nil {
		v, err := ev.Eval(scope, *s.Start)
		if err != nil {
			return nil, err
		}
		i, _ := v.(value.Int)
		iv, _ := i.Int64()
		start = normalizeIndex(iv, n)
	}
	if s.End != nil {
		v, err := ev.Eval(scope, *s.End)
		if err != nil {
			return nil, err
		}
		i, _ := v.(value.Int)
		iv, _ := i.Int64()
		end = normalizeIndex(iv, n)
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return value.NewList(), nil
	}
	out := make([]value.Value, end-start)
	copy(out, lst.Elems[start:end])
	return value.NewList(out...), nil
}
