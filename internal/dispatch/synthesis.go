package dispatch

import "github.com/chrsbats/slip/internal/value"

// SynthesizeFromExamples implements spec §4.4's example-driven synthesis:
// "When a SlipFunction has meta.examples and no typed Sig, the evaluator
// derives typed clones at assignment time... tag the clone with a typed
// keyword Sig using the inferred primitive names. Clones inherit guards."
//
// fn.Examples must already have each example's bindings evaluated (the
// sample-value expressions are evaluated by the caller, in the
// function's closure then the caller scope, before this runs - spec
// §4.4); this function only does the type inference and Sig synthesis.
func SynthesizeFromExamples(fn *value.SlipFunction) []*value.SlipFunction {
	if fn.Sig != nil || len(fn.Examples) == 0 {
		return nil
	}
	clones := make([]*value.SlipFunction, 0, len(fn.Examples))
	for _, ex := range fn.Examples {
		sig := sigFromExample(fn.Params, ex)
		clone := &value.SlipFunction{
			Closure:  fn.Closure,
			Sig:      sig,
			Body:     fn.Body,
			Name:     fn.Name,
			Guards:   append([]value.Value(nil), fn.Guards...),
			Examples: []value.Example{ex},
		}
		clones = append(clones, clone)
	}
	return clones
}

// sigFromExample builds a typed keyword Sig from one example's bindings,
// in the function's declared parameter order, using each bound value's
// primitive Kind as its annotation.
func sigFromExample(params []string, ex value.Example) *value.Sig {
	sig := &value.Sig{Keywords: map[string]value.Value{}}
	for _, p := range params {
		v, ok := ex.Bindings[p]
		if !ok {
			continue
		}
		sig.KeywordKey = append(sig.KeywordKey, p)
		sig.Keywords[p] = value.String(v.Kind())
	}
	return sig
}
