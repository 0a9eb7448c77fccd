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

package pathresolver_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/chrsbats/slip/internal/pathresolver"
	"github.com/chrsbats/slip/internal/value"
	"github.com/chrsbats/slip/slip/ast"
	"github.com/go-quicktest/qt"
)

// stubEval is a minimal Evaluator good enough to exercise the resolver
// without depending on the (separately tested) expression evaluator: it
// sums any BasicLit integer terms, optionally seeded, and recognizes a
// lone BasicLit boolean term as a literal predicate result.
type stubEval struct{}

func (stubEval) Eval(scope *value.Scope, expr ast.Expr) (value.Value, error) {
	return evalExpr(nil, expr)
}

func (stubEval) EvalSeeded(seed value.Value, scope *value.Scope, expr ast.Expr) (value.Value, error) {
	return evalExpr(seed, expr)
}

func (stubEval) EvalMeta(scope *value.Scope, m *ast.Meta) (*value.Dict, error) {
	if m == nil {
		return nil, nil
	}
	d := value.NewDict()
	for _, e := range m.Exprs {
		v, err := evalExpr(nil, e)
		if err != nil {
			return nil, err
		}
		d.Set("value", v)
	}
	return d, nil
}

func evalExpr(seed value.Value, expr ast.Expr) (value.Value, error) {
	var total int64
	if i, ok := seed.(value.Int); ok {
		n, _ := i.Int64()
		total = n
	}
	for _, t := range expr.Terms {
		lit, ok := t.(*ast.BasicLit)
		if !ok {
			continue
		}
		if lit.Kind == ast.BOOL {
			return value.Boolean(lit.Value == "true"), nil
		}
		if lit.Kind == ast.INT {
			n, _ := strconv.ParseInt(lit.Value, 10, 64)
			total += n
		}
	}
	return value.NewInt(total), nil
}

func intLit(n int64) ast.Expr {
	return ast.Expr{Terms: []ast.Term{&ast.BasicLit{Kind: ast.INT, Value: strconv.FormatInt(n, 10)}}}
}

func boolLit(b bool) ast.Expr {
	v := "false"
	if b {
		v = "true"
	}
	return ast.Expr{Terms: []ast.Term{&ast.BasicLit{Kind: ast.BOOL, Value: v}}}
}

func newResolver() *pathresolver.Resolver {
	root := value.NewScope()
	return pathresolver.New(root, stubEval{})
}

func getPath(segs ...ast.Segment) *value.Path {
	return &value.Path{Form: value.FormGet, Segments: segs}
}

func TestGetPrototypeChain(t *testing.T) {
	r := newResolver()
	parent := value.NewScope()
	parent.OwnSet("greeting", value.String("hello"))
	child := value.NewScope()
	qt.Assert(t, qt.IsNil(child.Inherit(parent)))

	got, err := r.Get(context.Background(), getPath(&ast.NameSeg{Text: "greeting"}), child)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, value.Value(value.String("hello"))))
}

func TestGetVectorizedPluck(t *testing.T) {
	r := newResolver()
	a := value.NewScope()
	a.OwnSet("hp", value.NewInt(40))
	b := value.NewScope()
	b.OwnSet("hp", value.NewInt(60))
	lst := value.NewList(a, b)

	scope := value.NewScope()
	scope.OwnSet("players", lst)

	got, err := r.Get(context.Background(), getPath(&ast.NameSeg{Text: "players"}, &ast.NameSeg{Text: "hp"}), scope)
	qt.Assert(t, qt.IsNil(err))
	out, ok := got.(*value.List)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(out.Elems), 2))
	qt.Assert(t, qt.DeepEquals(out.Elems[0], value.Value(value.NewInt(40))))
}

func TestFilterQuerySelectsAll(t *testing.T) {
	r := newResolver()
	lst := value.NewList(value.NewInt(1), value.NewInt(2), value.NewInt(3))
	scope := value.NewScope()
	scope.OwnSet("nums", lst)

	path := getPath(&ast.NameSeg{Text: "nums"}, &ast.FilterQuerySeg{Predicate: boolLit(true)})
	got, err := r.Get(context.Background(), path, scope)
	qt.Assert(t, qt.IsNil(err))
	out := got.(*value.List)
	qt.Assert(t, qt.Equals(len(out.Elems), 3))
}

func TestFilterQuerySelectsNone(t *testing.T) {
	r := newResolver()
	lst := value.NewList(value.NewInt(1), value.NewInt(2))
	scope := value.NewScope()
	scope.OwnSet("nums", lst)

	path := getPath(&ast.NameSeg{Text: "nums"}, &ast.FilterQuerySeg{Predicate: boolLit(false)})
	got, err := r.Get(context.Background(), path, scope)
	qt.Assert(t, qt.IsNil(err))
	out := got.(*value.List)
	qt.Assert(t, qt.Equals(len(out.Elems), 0))
}

func TestFilterQueryOnNonListReturnsView(t *testing.T) {
	r := newResolver()
	dict := value.NewDict()
	dict.Set("hp", value.NewInt(10))
	scope := value.NewScope()
	scope.OwnSet("config", dict)

	path := getPath(&ast.NameSeg{Text: "config"}, &ast.FilterQuerySeg{Predicate: boolLit(true)})
	got, err := r.Get(context.Background(), path, scope)
	qt.Assert(t, qt.IsNil(err))

	view, ok := got.(*value.View)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(view.Source, value.Value(dict)))
	qt.Assert(t, qt.Equals(len(view.Ops), 1))
}

// mockLocator records the Meta it was called with, so tests can confirm a
// path's `#( ... )` option group actually reaches the locator (spec §6).
type mockLocator struct {
	gotMeta pathresolver.Meta
}

func (m *mockLocator) Get(ctx context.Context, locator string, meta pathresolver.Meta) (value.Value, error) {
	m.gotMeta = meta
	return value.None, nil
}

func (m *mockLocator) Set(ctx context.Context, locator string, v value.Value, meta pathresolver.Meta) error {
	m.gotMeta = meta
	return nil
}

func (m *mockLocator) Post(ctx context.Context, locator string, v value.Value, meta pathresolver.Meta) (value.Value, error) {
	m.gotMeta = meta
	return value.None, nil
}

func (m *mockLocator) Delete(ctx context.Context, locator string, meta pathresolver.Meta) error {
	m.gotMeta = meta
	return nil
}

func TestGetEvaluatesPathMetaForLocator(t *testing.T) {
	r := newResolver()
	lock := &mockLocator{}
	r.Locators["file"] = lock

	path := &value.Path{
		Form:     value.FormGet,
		Segments: []ast.Segment{&ast.NameSeg{Text: "file://config.json"}},
		Meta:     &ast.Meta{Exprs: []ast.Expr{intLit(7)}},
	}
	_, err := r.Get(context.Background(), path, value.NewScope())
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.IsNotNil(lock.gotMeta))
	v, ok := lock.gotMeta["value"]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(v, value.Value(value.NewInt(7))))
}

func TestSetPlainField(t *testing.T) {
	r := newResolver()
	scope := value.NewScope()

	_, err := r.Set(context.Background(), getPath(&ast.NameSeg{Text: "x"}), scope, intLit(5), false, nil)
	qt.Assert(t, qt.IsNil(err))

	got, ok := scope.OwnGet("x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(got, value.Value(value.NewInt(5))))
}

func TestSetUpdateStyleWritesToOwner(t *testing.T) {
	r := newResolver()
	parent := value.NewScope()
	parent.OwnSet("count", value.NewInt(1))
	child := value.NewScope()
	qt.Assert(t, qt.IsNil(child.Inherit(parent)))

	_, err := r.Set(context.Background(), getPath(&ast.NameSeg{Text: "count"}), child, intLit(1), true, parent)
	qt.Assert(t, qt.IsNil(err))

	got, ok := parent.OwnGet("count")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(got, value.Value(value.NewInt(2))))
	_, onChild := child.OwnGet("count")
	qt.Assert(t, qt.IsFalse(onChild))
}

func TestVectorizedWriteUpdateStyle(t *testing.T) {
	r := newResolver()
	a := value.NewScope()
	a.OwnSet("hp", value.NewInt(40))
	b := value.NewScope()
	b.OwnSet("hp", value.NewInt(60))
	lst := value.NewList(a, b)
	scope := value.NewScope()
	scope.OwnSet("players", lst)

	path := getPath(
		&ast.NameSeg{Text: "players"},
		&ast.NameSeg{Text: "hp"},
		&ast.FilterQuerySeg{Predicate: boolLit(true)},
	)
	_, err := r.Set(context.Background(), path, scope, intLit(10), true, nil)
	qt.Assert(t, qt.IsNil(err))

	hpA, _ := a.OwnGet("hp")
	hpB, _ := b.OwnGet("hp")
	qt.Assert(t, qt.DeepEquals(hpA, value.Value(value.NewInt(50))))
	qt.Assert(t, qt.DeepEquals(hpB, value.Value(value.NewInt(70))))
}

func TestVectorizedWriteBroadcast(t *testing.T) {
	r := newResolver()
	a := value.NewScope()
	a.OwnSet("hp", value.NewInt(40))
	b := value.NewScope()
	b.OwnSet("hp", value.NewInt(60))
	lst := value.NewList(a, b)
	scope := value.NewScope()
	scope.OwnSet("players", lst)

	path := getPath(
		&ast.NameSeg{Text: "players"},
		&ast.NameSeg{Text: "hp"},
		&ast.FilterQuerySeg{Predicate: boolLit(true)},
	)
	_, err := r.Set(context.Background(), path, scope, intLit(100), false, nil)
	qt.Assert(t, qt.IsNil(err))

	hpA, _ := a.OwnGet("hp")
	hpB, _ := b.OwnGet("hp")
	qt.Assert(t, qt.DeepEquals(hpA, value.Value(value.NewInt(100))))
	qt.Assert(t, qt.DeepEquals(hpB, value.Value(value.NewInt(100))))
}

func TestDeleteCascadePrune(t *testing.T) {
	r := newResolver()
	root := value.NewScope()
	mid := value.NewScope()
	root.OwnSet("mid", mid)
	leaf := value.NewScope()
	mid.OwnSet("leaf", leaf)
	leaf.OwnSet("x", value.NewInt(1))

	path := getPath(&ast.NameSeg{Text: "mid"}, &ast.NameSeg{Text: "leaf"}, &ast.NameSeg{Text: "x"})
	err := r.Delete(context.Background(), path, root, nil, true)
	qt.Assert(t, qt.IsNil(err))

	_, leafStillOwned := mid.OwnGet("leaf")
	qt.Assert(t, qt.IsFalse(leafStillOwned))
	_, midStillOwned := root.OwnGet("mid")
	qt.Assert(t, qt.IsFalse(midStillOwned))
}

func TestDeleteCascadeStopsAtFloor(t *testing.T) {
	r := newResolver()
	root := value.NewScope()
	mid := value.NewScope()
	root.OwnSet("mid", mid)
	leaf := value.NewScope()
	mid.OwnSet("leaf", leaf)
	leaf.OwnSet("x", value.NewInt(1))

	path := getPath(&ast.NameSeg{Text: "mid"}, &ast.NameSeg{Text: "leaf"}, &ast.NameSeg{Text: "x"})
	err := r.Delete(context.Background(), path, root, mid, true)
	qt.Assert(t, qt.IsNil(err))

	_, leafStillOwned := mid.OwnGet("leaf")
	qt.Assert(t, qt.IsFalse(leafStillOwned))
	_, midStillOwned := root.OwnGet("mid")
	qt.Assert(t, qt.IsTrue(midStillOwned))
}
