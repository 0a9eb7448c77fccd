package dispatch_test

import (
	"testing"

	"github.com/chrsbats/slip/internal/dispatch"
	"github.com/chrsbats/slip/internal/value"
	"github.com/chrsbats/slip/slip/token"
	"github.com/go-quicktest/qt"
)

// primitiveGE is a GuardEvaluator that only understands primitive
// annotations matching by Kind name equality, enough to exercise the
// example-driven dispatch scenario (spec §8 scenario 4) without
// depending on the separately-tested expression evaluator.
type primitiveGE struct{}

func (primitiveGE) EvalGuard(*value.Scope, value.Value, *value.Sig, []string, []value.Value, map[string]value.Value) (bool, error) {
	return true, nil
}

func (primitiveGE) Coverage(_ *value.Scope, ann value.Value, arg value.Value) (float64, int, int, bool) {
	s, ok := ann.(value.String)
	if !ok {
		return 0, 0, 0, false
	}
	if string(s) != string(arg.Kind()) {
		return 0, 0, 0, false
	}
	return 1, 1, 0, true
}

func addFn() *value.SlipFunction {
	return &value.SlipFunction{
		Name:   "add",
		Params: []string{"a", "b"},
		Examples: []value.Example{
			{Bindings: map[string]value.Value{"a": value.NewInt(2), "b": value.NewInt(3)}, Result: value.NewInt(5)},
			{Bindings: map[string]value.Value{"a": value.NewFloat(2.5), "b": value.NewFloat(3.5)}, Result: value.NewFloat(6.0)},
		},
	}
}

func TestExampleDrivenDispatch(t *testing.T) {
	base := addFn()
	clones := dispatch.SynthesizeFromExamples(base)
	qt.Assert(t, qt.Equals(len(clones), 2))

	g := value.NewGenericFunction("add")
	for _, c := range clones {
		g.Merge(c)
	}

	invoke := func(fn *value.SlipFunction, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		a := args[0].(value.Int)
		b := args[1].(value.Int)
		an, _ := a.Int64()
		bn, _ := b.Int64()
		return value.NewInt(an + bn), nil
	}

	got, err := dispatch.Call(g, []value.Value{value.NewInt(2), value.NewInt(3)}, nil, primitiveGE{}, token.NoPos, invoke, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(got, value.Value(value.NewInt(5))))
}

func TestNoMatchingMethodFallback(t *testing.T) {
	g := value.NewGenericFunction("frobnicate")
	g.Merge(&value.SlipFunction{
		Name: "frobnicate",
		Sig:  &value.Sig{KeywordKey: []string{"x"}, Keywords: map[string]value.Value{"x": value.String("int")}},
	})

	invoke := func(fn *value.SlipFunction, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return value.None, nil
	}
	_, err := dispatch.Call(g, []value.Value{value.String("nope")}, nil, primitiveGE{}, token.NoPos, invoke, nil)
	qt.Assert(t, qt.IsNotNil(err))
}
