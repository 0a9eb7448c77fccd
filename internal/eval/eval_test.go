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

// These tests hand-construct the ast.Expr/ast.Term trees a Transformer
// would otherwise produce, since no concrete grammar/parser exists (spec
// §1 places it out of scope); see internal/astjson for the JSON
// encoding cmd/slip reads instead.
package eval_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"github.com/chrsbats/slip/internal/eval"
	"github.com/chrsbats/slip/internal/task"
	"github.com/chrsbats/slip/internal/value"
	"github.com/chrsbats/slip/slip/ast"
)

func namePath(n string) *ast.GetPath {
	return &ast.GetPath{Segments: []ast.Segment{&ast.NameSeg{Text: n}}}
}

func dottedPath(n string) *ast.GetPath {
	return &ast.GetPath{Segments: []ast.Segment{&ast.NameSeg{Text: n, Dotted: true}}}
}

func setName(n string) *ast.SetPath {
	return &ast.SetPath{Segments: []ast.Segment{&ast.NameSeg{Text: n}}}
}

func expr(terms ...ast.Term) ast.Expr { return ast.Expr{Terms: terms} }

func intLit(n int64) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.INT, Value: strconv.FormatInt(n, 10)}
}

func strLit(s string) *ast.BasicLit { return &ast.BasicLit{Kind: ast.STRING, Value: s} }

func codeLit(exprs ...ast.Expr) *ast.CodeLit {
	return &ast.CodeLit{Body: &ast.Code{Exprs: exprs}}
}

func run(ev *eval.Evaluator, scope *value.Scope, exprs ...ast.Expr) (value.Value, error) {
	return ev.RunCode(scope, &value.Code{Body: &ast.Code{Exprs: exprs}})
}

// TestPrototypeChainFieldLookup covers spec §8's worked scenario:
// `Player: create(Character)` then reading a field `create` didn't copy,
// resolved by walking the prototype chain.
func TestPrototypeChainFieldLookup(t *testing.T) {
	e := eval.NewEngine(context.Background())
	ev := e.NewEvaluator(context.Background())

	character := value.NewScope()
	character.OwnSet("hp", value.NewInt(100))

	scope := value.NewScope()
	qt.Assert(t, qt.IsNil(scope.Inherit(e.Root)))
	scope.OwnSet("Character", character)

	got, err := run(ev, scope,
		expr(setName("Player"), namePath("create"), namePath("Character")),
		expr(namePath("Player"), dottedPath("hp")),
	)
	qt.Assert(t, qt.IsNil(err))

	hp, ok := got.(value.Int)
	qt.Assert(t, qt.IsTrue(ok))
	n, _ := hp.Int64()
	qt.Assert(t, qt.Equals(n, int64(100)))

	playerVal, _ := scope.Get("Player")
	player, ok := playerVal.(*value.Scope)
	qt.Assert(t, qt.IsTrue(ok))
	_, ownHP := player.OwnGet("hp")
	qt.Assert(t, qt.IsTrue(!ownHP))
}

// TestTaskChannelSendReceiveOrdering covers spec §8's other worked
// scenario: a spawned task feeding a channel via foreach, drained in
// FIFO order by the spawning side.
func TestTaskChannelSendReceiveOrdering(t *testing.T) {
	e := eval.NewEngine(context.Background())
	ev := e.NewEvaluator(context.Background())

	scope := value.NewScope()
	qt.Assert(t, qt.IsNil(scope.Inherit(e.Root)))

	body := codeLit(expr(namePath("send"), namePath("ch"), namePath("n")))
	list := &ast.ListLit{Elts: []ast.Expr{
		expr(intLit(1)), expr(intLit(2)), expr(intLit(3)), expr(intLit(4)), expr(intLit(5)),
	}}
	foreachExpr := expr(namePath("foreach"), namePath("n"), list, body)
	taskBody := codeLit(foreachExpr)

	_, err := run(ev, scope,
		expr(setName("ch"), namePath("make-channel")),
		expr(setName("t"), namePath("task"), taskBody),
	)
	qt.Assert(t, qt.IsNil(err))

	chVal, _ := scope.Get("ch")
	ch, ok := chVal.(*task.Channel)
	qt.Assert(t, qt.IsTrue(ok))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := int64(1); i <= 5; i++ {
		v, err := ch.Receive(ctx)
		qt.Assert(t, qt.IsNil(err))
		got, ok := v.(value.Int)
		qt.Assert(t, qt.IsTrue(ok))
		n, _ := got.Int64()
		qt.Assert(t, qt.Equals(n, i))
	}
}

// TestDoOutcomeShape covers `do`'s Outcome-as-Scope result for a plain
// (non-error, non-Response) body.
func TestDoOutcomeShape(t *testing.T) {
	e := eval.NewEngine(context.Background())
	ev := e.NewEvaluator(context.Background())

	scope := value.NewScope()
	qt.Assert(t, qt.IsNil(scope.Inherit(e.Root)))

	got, err := run(ev, scope,
		expr(setName("out"), namePath("do"), codeLit(expr(intLit(42)))),
	)
	qt.Assert(t, qt.IsNil(err))

	out, ok := got.(*value.Scope)
	qt.Assert(t, qt.IsTrue(ok))

	status, _ := out.OwnGet("status")
	qt.Assert(t, qt.Equals(status, value.Value(value.String("ok"))))

	val, _ := out.OwnGet("value")
	n, ok := val.(value.Int)
	qt.Assert(t, qt.IsTrue(ok))
	i, _ := n.Int64()
	qt.Assert(t, qt.Equals(i, int64(42)))

	_, hasEffects := out.OwnGet("effects")
	qt.Assert(t, qt.IsTrue(!hasEffects))
}

// TestWithLogCapturesEffects covers with-log's extra "effects" field,
// populated from emits raised during the block's run.
func TestWithLogCapturesEffects(t *testing.T) {
	e := eval.NewEngine(context.Background())
	ev := e.NewEvaluator(context.Background())

	scope := value.NewScope()
	qt.Assert(t, qt.IsNil(scope.Inherit(e.Root)))

	body := codeLit(expr(namePath("emit"), strLit("topic"), intLit(7)))
	got, err := run(ev, scope, expr(setName("out"), namePath("with-log"), body))
	qt.Assert(t, qt.IsNil(err))

	out, ok := got.(*value.Scope)
	qt.Assert(t, qt.IsTrue(ok))

	effectsVal, hasEffects := out.OwnGet("effects")
	qt.Assert(t, qt.IsTrue(hasEffects))
	effects, ok := effectsVal.(*value.List)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(effects.Elems), 1))

	rec, ok := effects.Elems[0].(*value.Dict)
	qt.Assert(t, qt.IsTrue(ok))
	msg, _ := rec.Get("message")
	n, ok := msg.(value.Int)
	qt.Assert(t, qt.IsTrue(ok))
	i, _ := n.Int64()
	qt.Assert(t, qt.Equals(i, int64(7)))

	// with-log's own effect record must not leak into the engine's
	// ambient DrainEffects stream a second time.
	qt.Assert(t, qt.Equals(len(e.DrainEffects()), 0))
}

// TestTestAllAggregatesPassFail covers test/test-all's pass/fail
// bookkeeping across a small list of test results.
func TestTestAllAggregatesPassFail(t *testing.T) {
	e := eval.NewEngine(context.Background())
	ev := e.NewEvaluator(context.Background())

	scope := value.NewScope()
	qt.Assert(t, qt.IsNil(scope.Inherit(e.Root)))

	got, err := run(ev, scope,
		expr(setName("t1"), namePath("test"), strLit("passes"), codeLit(expr(&ast.BasicLit{Kind: ast.BOOL, Value: "true"}))),
		expr(setName("t2"), namePath("test"), strLit("fails"), codeLit(expr(&ast.BasicLit{Kind: ast.BOOL, Value: "false"}))),
		expr(setName("summary"), namePath("test-all"), &ast.ListLit{Elts: []ast.Expr{
			expr(namePath("t1")), expr(namePath("t2")),
		}}),
	)
	qt.Assert(t, qt.IsNil(err))

	summary, ok := got.(*value.Scope)
	qt.Assert(t, qt.IsTrue(ok))

	passed, _ := summary.OwnGet("passed")
	p, _ := passed.(value.Int).Int64()
	qt.Assert(t, qt.Equals(p, int64(1)))

	failed, _ := summary.OwnGet("failed")
	f, _ := failed.(value.Int).Int64()
	qt.Assert(t, qt.Equals(f, int64(1)))

	total, _ := summary.OwnGet("total")
	tot, _ := total.(value.Int).Int64()
	qt.Assert(t, qt.Equals(tot, int64(2)))
}

// TestImportCachesByKey covers import's cache-hit-skips-locator-call
// behavior: a second import by the same key returns the first
// resolution's value even after Root's binding has since changed.
func TestImportCachesByKey(t *testing.T) {
	e := eval.NewEngine(context.Background())
	ev := e.NewEvaluator(context.Background())

	e.Root.OwnSet("cfg", value.NewInt(1))

	scope := value.NewScope()
	qt.Assert(t, qt.IsNil(scope.Inherit(e.Root)))

	got, err := run(ev, scope,
		expr(setName("imported1"), namePath("import"), strLit("cfg")),
	)
	qt.Assert(t, qt.IsNil(err))
	first, _ := got.(value.Int).Int64()
	qt.Assert(t, qt.Equals(first, int64(1)))

	e.Root.OwnSet("cfg", value.NewInt(2))

	got2, err := run(ev, scope,
		expr(setName("imported2"), namePath("import"), strLit("cfg")),
	)
	qt.Assert(t, qt.IsNil(err))
	second, _ := got2.(value.Int).Int64()
	qt.Assert(t, qt.Equals(second, int64(1)))
}
