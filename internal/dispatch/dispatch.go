// Package dispatch implements spec §4.4: multi-method resolution over a
// GenericFunction's ordered method list, and example-driven method
// synthesis. There is no single teacher file for this - CUE has no
// multi-method call form - so the tiering/scoring/tie-break structure is
// grounded on the disjunction-candidate algorithm in
// internal/core/adt/disjunct.go: partition into tiers, score surviving
// candidates, break ties by a fixed precedence, and treat remaining
// ambiguity as an error rather than picking arbitrarily.
package dispatch

import (
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// GuardEvaluator evaluates a guard/annotation Code value with the call's
// arguments already bound in a scope derived from the method's closure,
// and resolves a Sig annotation Value naming a Scope to that Scope
// (spec §4.4 step 6, "the method's closure resolves the annotation to a
// Scope target").
type GuardEvaluator interface {
	// EvalGuard runs guard against args bound per sig (or params, when
	// sig is nil) in closure, returning its truthiness.
	EvalGuard(closure *value.Scope, guard value.Value, sig *value.Sig, params []string, args []value.Value, kwargs map[string]value.Value) (bool, error)
	// Coverage scores how well arg satisfies ann (spec §4.4 step 6):
	// score is the coverage, detail the number of atomic annotation items
	// matched, and family the family size used for tie-breaking. ok is
	// false if the argument's kind does not satisfy ann at all.
	Coverage(closure *value.Scope, ann value.Value, arg value.Value) (score float64, detail int, family int, ok bool)
}

// Invoke calls a resolved SlipFunction with already-evaluated arguments.
type Invoke func(fn *value.SlipFunction, args []value.Value, kwargs map[string]value.Value) (value.Value, error)

// Fallback looks up and calls `core-<name>` for step 8's by-name
// fallback. ok is false if no such function exists.
type Fallback func(name string, args []value.Value, kwargs map[string]value.Value) (value.Value, bool, error)

// Call dispatches one call of g with positional args and keyword kwargs,
// per spec §4.4 steps 1-8. Only one tier is tried initially - exact if it
// has any arity-matching methods, else variadic, else untyped - with a
// single limited retry from exact into variadic when the exact tier
// produced no candidate; dispatch never falls from a chosen variadic or
// untyped tier into a later one, and never reaches untyped once exact or
// variadic had any arity-matching methods to try.
func Call(g *value.GenericFunction, args []value.Value, kwargs map[string]value.Value, ge GuardEvaluator, pos token.Pos, invoke Invoke, fallback Fallback) (value.Value, error) {
	n := len(args) + len(kwargs)
	exact, variadic, untyped := partition(g.Methods, n)

	tier, isExact := primaryTier(exact, variadic, untyped)
	fn, err := resolveTier(tier, args, kwargs, ge, pos)
	if err != nil {
		return nil, err
	}
	if fn == nil && isExact && len(variadic) > 0 {
		fn, err = resolveTier(variadic, args, kwargs, ge, pos)
		if err != nil {
			return nil, err
		}
	}
	if fn != nil {
		return invoke(fn, args, kwargs)
	}

	// step 5: lenient exact match, truncating extra positional args.
	if fn, ok := lenientExact(g.Methods, args, kwargs); ok {
		return invoke(fn, trimArgs(fn, args, kwargs), kwargs)
	}

	// step 8: fallback by name.
	if g.Name != "" && fallback != nil {
		if result, ok, err := fallback("core-"+g.Name, args, kwargs); ok || err != nil {
			return result, err
		}
	}
	return nil, slerr.TypeErrorf(pos, "no matching method for %q with %d argument(s)", g.Name, n)
}

// primaryTier picks the single tier step 1 starts from: exact when it has
// any arity-matching methods, else variadic, else untyped. isExact
// reports whether the chosen tier was exact, the only case that retries.
func primaryTier(exact, variadic, untyped []*value.SlipFunction) (tier []*value.SlipFunction, isExact bool) {
	switch {
	case len(exact) > 0:
		return exact, true
	case len(variadic) > 0:
		return variadic, false
	default:
		return untyped, false
	}
}

// partition implements spec §4.4 step 1.
func partition(methods []*value.SlipFunction, n int) (exact, variadic, untyped []*value.SlipFunction) {
	for _, m := range methods {
		switch {
		case m.Sig == nil:
			untyped = append(untyped, m)
		case m.Sig.IsVariadic():
			if n >= m.Sig.Arity() {
				variadic = append(variadic, m)
			}
		case m.Sig.Arity() == n:
			exact = append(exact, m)
		}
	}
	return exact, variadic, untyped
}

// lenientExact implements step 5's "lenient exact match that truncates
// extra arguments from the right": among non-variadic typed methods
// whose Sig arity is below the number of args supplied, pick the first.
func lenientExact(methods []*value.SlipFunction, args []value.Value, kwargs map[string]value.Value) (*value.SlipFunction, bool) {
	for _, m := range methods {
		if m.Sig == nil || m.Sig.IsVariadic() {
			continue
		}
		if m.Sig.Arity() < len(args)+len(kwargs) {
			return m, true
		}
	}
	return nil, false
}

func trimArgs(fn *value.SlipFunction, args []value.Value, kwargs map[string]value.Value) []value.Value {
	n := fn.Sig.Arity() - len(kwargs)
	if n < 0 {
		n = 0
	}
	if n > len(args) {
		n = len(args)
	}
	return args[:n]
}

// candidate is one tier member that passed its guards, with the scoring
// inputs from spec §4.4 steps 6-7.
type candidate struct {
	fn      *value.SlipFunction
	guarded bool
	score   float64
	detail  int
	family  int
}

// resolveTier runs steps 3-7 within one tier. A nil fn with a nil error
// means "no candidate in this tier, try the next"; a non-nil error means
// ambiguity, which stops the fallthrough to later tiers.
func resolveTier(methods []*value.SlipFunction, args []value.Value, kwargs map[string]value.Value, ge GuardEvaluator, pos token.Pos) (*value.SlipFunction, error) {
	if len(methods) == 0 {
		return nil, nil
	}
	var cands []candidate
	for _, m := range methods {
		guarded, ok, err := checkGuards(m, args, kwargs, ge)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		score, detail, family, matched := scoreMethod(m, args, kwargs, ge)
		if !matched {
			continue
		}
		cands = append(cands, candidate{fn: m, guarded: guarded, score: score, detail: detail, family: family})
	}
	if len(cands) == 0 {
		return nil, nil
	}

	best := cands[0]
	ambiguous := false
	for _, c := range cands[1:] {
		switch compareCandidates(c, best) {
		case 1:
			best = c
			ambiguous = false
		case 0:
			ambiguous = true
		}
	}
	if ambiguous {
		return nil, slerr.TypeErrorf(pos, "ambiguous method call")
	}
	return best.fn, nil
}

// compareCandidates implements step 7's tie-break order: higher total
// coverage; then guarded over unguarded; then higher detail count; then
// higher family size. Returns 1 if b beats a, -1 if a beats b, 0 if tied.
func compareCandidates(b, a candidate) int {
	if b.score != a.score {
		if b.score > a.score {
			return 1
		}
		return -1
	}
	if b.guarded != a.guarded {
		if b.guarded {
			return 1
		}
		return -1
	}
	if b.detail != a.detail {
		if b.detail > a.detail {
			return 1
		}
		return -1
	}
	if b.family != a.family {
		if b.family > a.family {
			return 1
		}
		return -1
	}
	return 0
}

func checkGuards(m *value.SlipFunction, args []value.Value, kwargs map[string]value.Value, ge GuardEvaluator) (guarded bool, ok bool, err error) {
	if len(m.Guards) == 0 {
		return false, true, nil
	}
	for _, g := range m.Guards {
		truthy, err := ge.EvalGuard(m.Closure, g, m.Sig, m.Params, args, kwargs)
		if err != nil {
			return true, false, err
		}
		if !truthy {
			return true, false, nil
		}
	}
	return true, true, nil
}

// scoreMethod implements step 6: sum each bound argument's coverage of
// its annotation. A single non-matching annotated argument disqualifies
// the whole method from this tier (matched=false); an argument with no
// keyword annotation (a plain positional parameter) contributes nothing.
func scoreMethod(m *value.SlipFunction, args []value.Value, kwargs map[string]value.Value, ge GuardEvaluator) (score float64, detail int, family int, matched bool) {
	if m.Sig == nil {
		return 0, 0, 0, true
	}
	bind := bindArgs(m.Sig, args, kwargs)
	for name, arg := range bind {
		ann, ok := m.Sig.Keywords[name]
		if !ok {
			continue
		}
		s, d, f, ok := ge.Coverage(m.Closure, ann, arg)
		if !ok {
			return 0, 0, 0, false
		}
		score += s
		detail += d
		family += f
	}
	return score, detail, family, true
}

// bindArgs maps each bound parameter name to its argument value,
// positional-then-keyword, per the Sig's ParamNames order.
func bindArgs(sig *value.Sig, args []value.Value, kwargs map[string]value.Value) map[string]value.Value {
	out := map[string]value.Value{}
	names := sig.ParamNames()
	for i, v := range args {
		if i < len(names) {
			out[names[i]] = v
		}
	}
	for k, v := range kwargs {
		out[k] = v
	}
	return out
}
