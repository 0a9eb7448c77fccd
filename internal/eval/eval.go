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
	"github.com/chrsbats/slip/internal/render"
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/ast"
	"github.com/chrsbats/slip/slip/token"
)

// macroTable holds the head-form special forms recognized by name when
// the head term is a single bare GetPath (spec §4.3 item 2).
var macroTable = map[string]func(ev *Evaluator, scope *value.Scope, args []ast.Term) (value.Value, error){
	"if":           macroIf,
	"fn":           macroFn,
	"while":        macroWhile,
	"foreach":      macroForeach,
	"logical-and":  macroLogicalAnd,
	"and":          macroLogicalAnd,
	"logical-or":   macroLogicalOr,
	"or":           macroLogicalOr,
}

// Eval evaluates expr in scope (spec §4.3). It satisfies
// pathresolver.Evaluator.
func (ev *Evaluator) Eval(scope *value.Scope, expr ast.Expr) (value.Value, error) {
	return ev.evalExprFrom(scope, expr.Terms, nil, false)
}

// EvalSeeded evaluates expr in scope with an implicit left operand seed
// standing in for a missing head (spec §4.2's vectorized/update-style RHS,
// spec §4.3's legacy operator filter predicates).
func (ev *Evaluator) EvalSeeded(seed value.Value, scope *value.Scope, expr ast.Expr) (value.Value, error) {
	return ev.evalExprFrom(scope, expr.Terms, seed, true)
}

// EvalMeta evaluates a path's `#( ... )` option group into a Dict (spec
// §6), the same conversion evalDelete already runs for `prune`.
func (ev *Evaluator) EvalMeta(scope *value.Scope, m *ast.Meta) (*value.Dict, error) {
	return ev.evalMeta(scope, m)
}

// evalExprFrom implements the head-form dispatch algorithm (spec §4.3):
//  1. assignment forms when the head is a Set/MultiSet/Post/Del path;
//  2. special-form macros, recognized by name on a single-name GetPath
//     head, consuming terms up to the first piped operator;
//  3. otherwise evaluate the head term and, if callable, greedily collect
//     a prefix argument run up to the first piped operator and invoke it;
//     then continue with any trailing pipe-operator chain.
func (ev *Evaluator) evalExprFrom(scope *value.Scope, terms []ast.Term, seed value.Value, seeded bool) (value.Value, error) {
	if len(terms) == 0 {
		if seeded {
			return seed, nil
		}
		return value.None, nil
	}

	if seeded {
		if _, isOp := terms[0].(*ast.PipedPath); isOp {
			return ev.continueChain(scope, terms, seed)
		}
	}

	head := terms[0]
	switch hp := head.(type) {
	case *ast.SetPath:
		if len(terms) < 2 {
			return nil, slerr.TypeErrorf(hp.Pos(), "assignment requires a value")
		}
		return ev.evalSet(scope, hp, ast.Expr{Terms: terms[1:]})
	case *ast.MultiSetPath:
		if len(terms) < 2 {
			return nil, slerr.TypeErrorf(hp.Pos(), "multi-set assignment requires a value")
		}
		return ev.evalMultiSet(scope, hp, ast.Expr{Terms: terms[1:]})
	case *ast.DelPath:
		return ev.evalDelete(scope, hp)
	case *ast.PostPath:
		if len(terms) < 2 {
			return nil, slerr.TypeErrorf(hp.Pos(), "post requires a value")
		}
		return ev.evalPost(scope, hp, ast.Expr{Terms: terms[1:]})
	case *ast.GetPath:
		if name, ok := singleName(hp); ok {
			if macro, isMacro := macroTable[name]; isMacro {
				if _, shadowed := scope.Get(name); !shadowed {
					rest, consumed := splitAtPipe(terms[1:])
					result, err := macro(ev, scope, rest)
					if err != nil {
						return nil, err
					}
					return ev.continueChain(scope, terms[1+consumed:], result)
				}
			}
		}
	}

	headVal, err := ev.evalTerm(scope, head)
	if err != nil {
		return nil, err
	}

	rest := terms[1:]
	if _, callable := asCallable(headVal); callable {
		argTerms, consumed := splitAtPipe(rest)
		args, kwargs, err := ev.evalArgs(scope, headVal, argTerms)
		if err != nil {
			return nil, err
		}
		if len(argTerms) > 0 || !zeroArityCallable(headVal) {
			result, err := ev.invoke(headVal, args, kwargs)
			if err != nil {
				return nil, err
			}
			return ev.continueChain(scope, rest[consumed:], result)
		}
		// no args at all and zero-arity: auto-invoke (spec §4.3).
		result, err := ev.invoke(headVal, nil, nil)
		if err != nil {
			return nil, err
		}
		return ev.continueChain(scope, rest, result)
	}

	// head is a plain value; property-chain folding may still apply
	// before we reach a pipe-operator chain.
	folded, restAfterFold, err := ev.foldProperties(scope, headVal, rest)
	if err != nil {
		return nil, err
	}
	return ev.continueChain(scope, restAfterFold, folded)
}

// zeroArityCallable reports whether v is callable with no arguments.
func zeroArityCallable(v value.Value) bool {
	c, ok := asCallable(v)
	return ok && c.IsZeroArity()
}

// asCallable narrows v to one of the three SLIP-level callable concrete
// types. HostObject values are excluded even though some (task.Channel)
// structurally satisfy value.Callable, since "invoke this bare" is never
// the right behavior for them - they're only called via a resolved
// Method (spec §4.6).
func asCallable(v value.Value) (value.Callable, bool) {
	switch v.(type) {
	case *value.SlipFunction, *value.GenericFunction, *value.NativeFunction:
		return v.(value.Callable), true
	}
	return nil, false
}

// isCallPrimitive reports whether v is the `call` native, the one
// receiver that suppresses argument auto-invocation (spec §4.3).
func isCallPrimitive(v value.Value) bool {
	nf, ok := v.(*value.NativeFunction)
	return ok && nf.FnName == "call"
}

// splitAtPipe returns the leading run of terms up to (not including) the
// first PipedPath, and how many terms were consumed by that run (which
// equals its length; callers index the remainder as terms[consumed:]).
func splitAtPipe(terms []ast.Term) ([]ast.Term, int) {
	for i, t := range terms {
		if _, ok := t.(*ast.PipedPath); ok {
			return terms[:i], i
		}
	}
	return terms, len(terms)
}

// continueChain consumes a pipe-operator chain left to right, resolving
// each operator per spec §4.3's operator resolution rule and applying it
// as a binary (or, with no RHS, unary) operation against the running
// result.
func (ev *Evaluator) continueChain(scope *value.Scope, terms []ast.Term, cur value.Value) (value.Value, error) {
	for len(terms) > 0 {
		pp, ok := terms[0].(*ast.PipedPath)
		if !ok {
			// A non-operator term immediately following a folded result
			// is a property-chain continuation.
			folded, rest, err := ev.foldProperties(scope, cur, terms)
			if err != nil {
				return nil, err
			}
			if rest == nil || len(rest) == len(terms) {
				return nil, slerr.TypeErrorf(terms[0].Pos(), "unexpected term in expression")
			}
			cur = folded
			terms = rest
			continue
		}

		name, _ := operatorName(pp)
		if isLogicalName(name) {
			argTerms, consumed := splitAtPipe(terms[1:])
			result, err := ev.evalLogical(scope, name, cur, argTerms)
			if err != nil {
				return nil, err
			}
			cur = result
			terms = terms[1+consumed:]
			continue
		}

		opVal, err := ev.resolveOperator(scope, pp)
		if err != nil {
			return nil, err
		}

		argTerms, consumed := splitAtPipe(terms[1:])
		args, kwargs, err := ev.evalArgs(scope, opVal, argTerms)
		if err != nil {
			return nil, err
		}
		allArgs := append([]value.Value{cur}, args...)
		result, err := ev.invoke(opVal, allArgs, kwargs)
		if err != nil {
			return nil, err
		}
		cur = result
		terms = terms[1+consumed:]
	}
	return cur, nil
}

// isLogicalName reports whether name is one of the short-circuiting
// logical operator spellings (spec §4.3 item 2).
func isLogicalName(name string) bool {
	switch name {
	case "and", "or", "logical-and", "logical-or":
		return true
	}
	return false
}

// evalLogical implements short-circuiting &&/|| (spec §4.3). rhsTerms is
// the run of terms up to the next piped operator, evaluated as one
// expression; a piped operator after that run is not part of the RHS and
// applies to the logical result instead (recorded in DESIGN.md).
func (ev *Evaluator) evalLogical(scope *value.Scope, name string, lhs value.Value, rhsTerms []ast.Term) (value.Value, error) {
	isAnd := name == "and" || name == "logical-and"
	if isAnd && !value.Truthy(lhs) {
		return value.Boolean(false), nil
	}
	if !isAnd && value.Truthy(lhs) {
		return value.Boolean(true), nil
	}
	if len(rhsTerms) == 0 {
		return value.Boolean(value.Truthy(lhs)), nil
	}
	rhs, err := ev.evalExprFrom(scope, rhsTerms, nil, false)
	if err != nil {
		return nil, err
	}
	return value.Boolean(value.Truthy(rhs)), nil
}

// resolveOperator evaluates an operator term in scope, follows GetPath
// aliases until a value is reached (spec §4.3's operator resolution
// rule), and normalizes a bare `/` to the root name.
func (ev *Evaluator) resolveOperator(scope *value.Scope, pp *ast.PipedPath) (value.Value, error) {
	p := &value.Path{Form: value.FormPiped, Segments: pp.Segments, Meta: pp.Meta}
	v, err := ev.Resolver.Get(ev.ctx, p, scope)
	if err != nil {
		return nil, err
	}
	return ev.derefOperatorAlias(scope, v, 0)
}

const maxAliasDepth = 64

func (ev *Evaluator) derefOperatorAlias(scope *value.Scope, v value.Value, depth int) (value.Value, error) {
	p, ok := v.(*value.Path)
	if !ok || p.Literal || p.Form != value.FormGet {
		return v, nil
	}
	if depth > maxAliasDepth {
		return nil, slerr.RuntimeErrorf(token.NoPos, "operator resolution cycle")
	}
	next, err := ev.Resolver.Get(ev.ctx, p, scope)
	if err != nil {
		return nil, err
	}
	return ev.derefOperatorAlias(scope, next, depth+1)
}

// evalArgs evaluates a run of argument terms, folding property-access
// dotted-name chains onto the preceding value and auto-invoking
// zero-arity callable arguments (spec §4.3), except when receiver is the
// `call` primitive.
func (ev *Evaluator) evalArgs(scope *value.Scope, receiver value.Value, terms []ast.Term) ([]value.Value, map[string]value.Value, error) {
	var args []value.Value
	i := 0
	for i < len(terms) {
		if innerExpr, ok := spliceArg(terms[i]); ok {
			v, err := ev.Eval(scope, innerExpr)
			if err != nil {
				return nil, nil, err
			}
			if lst, ok := v.(*value.List); ok {
				args = append(args, lst.Elems...)
			} else {
				args = append(args, v)
			}
			i++
			continue
		}

		v, err := ev.evalTerm(scope, terms[i])
		if err != nil {
			return nil, nil, err
		}
		i++

		// property-chain folding: consecutive dotted-name GetPaths fold
		// onto v via field application (spec §4.3).
		folded, rest, err := ev.foldProperties(scope, v, terms[i:])
		if err != nil {
			return nil, nil, err
		}
		v = folded
		i = len(terms) - len(rest)

		if zeroArityCallable(v) && !isCallPrimitive(receiver) {
			v, err = ev.invoke(v, nil, nil)
			if err != nil {
				return nil, nil, err
			}
		}
		args = append(args, v)
	}
	return args, nil, nil
}

// foldScope builds a transient filter-overlay scope so a dotted `.field`
// GetPath resolves against base rather than the lexical scope (reusing
// the same overlay machinery filter-query predicates use).
func foldScope(scope *value.Scope, base value.Value) *value.Scope {
	return value.NewFilterOverlay(base, scope)
}

// foldProperties applies any dotted-name property-chain terms at the
// front of terms onto base (spec §4.3), returning the folded value and
// the remaining terms. If terms does not start with a dotted GetPath, it
// returns base and terms unchanged.
func (ev *Evaluator) foldProperties(scope *value.Scope, base value.Value, terms []ast.Term) (value.Value, []ast.Term, error) {
	i := 0
	cur := base
	for i < len(terms) {
		gp, ok := terms[i].(*ast.GetPath)
		if !ok {
			break
		}
		if len(gp.Segments) == 0 {
			break
		}
		ns, ok := gp.Segments[0].(*ast.NameSeg)
		if !ok || !ns.Dotted {
			break
		}
		p := &value.Path{Form: value.FormGet, Segments: gp.Segments}
		next, err := ev.Resolver.Get(ev.ctx, p, foldScope(scope, cur))
		if err != nil {
			return nil, nil, err
		}
		cur = next
		i++
	}
	return cur, terms[i:], nil
}

// evalTerm evaluates a single term to a value (spec §3/§4.3), outside of
// head-form dispatch (callers that need head-form semantics go through
// evalExprFrom instead).
func (ev *Evaluator) evalTerm(scope *value.Scope, term ast.Term) (value.Value, error) {
	switch t := term.(type) {
	case *ast.BasicLit:
		return parseBasicLit(t)
	case *ast.Interpolation:
		lookup := ev.scopeLookup(scope)
		return value.IString(render.Render(t.Raw, lookup)), nil
	case *ast.Group:
		return ev.runExprs(scope, t.Exprs)
	case *ast.ListLit:
		return ev.evalListLit(scope, t)
	case *ast.DictLit:
		child := value.NewScope()
		if _, err := ev.runExprs(child, t.Exprs); err != nil {
			return nil, err
		}
		d := value.NewDict()
		for _, k := range child.Keys() {
			v, _ := child.OwnGet(k)
			d.Set(k, v)
		}
		return d, nil
	case *ast.CodeLit:
		return &value.Code{Body: t.Body, Closure: scope}, nil
	case *ast.ByteStreamLit:
		return ev.evalByteStream(scope, t)
	case *ast.SigLit:
		return ev.evalSigLit(scope, t)
	case *ast.PathLiteral:
		return pathLiteralValue(t)
	case *ast.GetPath:
		if name, ok := singleName(t); ok && name == "current-scope" {
			if _, shadowed := scope.Get(name); !shadowed {
				return scope, nil
			}
		}
		p := &value.Path{Form: value.FormGet, Segments: t.Segments, Meta: t.Meta}
		return ev.Resolver.Get(ev.ctx, p, scope)
	case *ast.PipedPath:
		return ev.resolveOperator(scope, t)
	case *ast.SetPath, *ast.DelPath, *ast.PostPath, *ast.MultiSetPath:
		return ev.evalExprFrom(scope, []ast.Term{term}, nil, false)
	default:
		return nil, slerr.TypeErrorf(term.Pos(), "unsupported term %T", term)
	}
}

func (ev *Evaluator) evalListLit(scope *value.Scope, t *ast.ListLit) (value.Value, error) {
	var vals []value.Value
	for _, e := range t.Elts {
		if len(e.Terms) == 1 {
			if innerExpr, ok := spliceArg(e.Terms[0]); ok {
				v, err := ev.Eval(scope, innerExpr)
				if err != nil {
					return nil, err
				}
				if lst, ok := v.(*value.List); ok {
					vals = append(vals, lst.Elems...)
					continue
				}
				vals = append(vals, v)
				continue
			}
		}
		v, err := ev.Eval(scope, e)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return value.NewList(vals...), nil
}

// scopeLookup flattens scope's ancestor chain (innermost first, per
// render.Flatten's child-overrides-parent contract) into a plain
// string->string map for IString rendering (spec §4.3).
func (ev *Evaluator) scopeLookup(scope *value.Scope) render.Lookup {
	var layers []map[string]string
	for s := scope; s != nil; s = s.Parent {
		m := map[string]string{}
		for _, k := range s.Keys() {
			v, _ := s.OwnGet(k)
			m[k] = stringOf(v)
		}
		layers = append(layers, m)
	}
	flat := render.Flatten(layers)
	return func(name string) (string, bool) {
		v, ok := flat[name]
		return v, ok
	}
}

func stringOf(v value.Value) string {
	switch s := v.(type) {
	case value.String:
		return string(s)
	case value.IString:
		return string(s)
	default:
		return v.Pformat()
	}
}

// spliceArg reports whether t is the `(splice X)` marker shape - a Group
// wrapping a single expression whose head is the bare name "splice" - and
// if so returns the expression for its remaining terms (spec's
// supplemented template-expansion feature, performed live at evaluation
// time rather than as a separate AST-mutating pre-pass; see DESIGN.md).
func spliceArg(t ast.Term) (ast.Expr, bool) {
	g, ok := t.(*ast.Group)
	if !ok || len(g.Exprs) != 1 {
		return ast.Expr{}, false
	}
	terms := g.Exprs[0].Terms
	if len(terms) < 2 {
		return ast.Expr{}, false
	}
	gp, ok := terms[0].(*ast.GetPath)
	if !ok {
		return ast.Expr{}, false
	}
	name, single := singleName(gp)
	if !single || name != "splice" {
		return ast.Expr{}, false
	}
	return ast.Expr{Terms: terms[1:]}, true
}
