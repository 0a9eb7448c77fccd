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

package value

import (
	"fmt"

	"github.com/chrsbats/slip/slip/ast"
)

// Sig is a signature value: ordered positional parameter names, an
// insertion-ordered mapping of typed keyword parameters to annotation
// values, an optional rest parameter name, and an optional return
// annotation (spec §3).
type Sig struct {
	Positional []string
	KeywordKey []string         // insertion order
	Keywords   map[string]Value // name -> annotation value (already evaluated)
	Rest       string
	Return     Value
}

func (*Sig) Kind() Kind { return KindSig }

func (s *Sig) Pformat() string {
	return fmt.Sprintf("sig(%v,%v,rest=%q)", s.Positional, s.KeywordKey, s.Rest)
}

// Arity returns the number of named parameters (positional + keyword),
// used by the dispatcher's tier partition (spec §4.4).
func (s *Sig) Arity() int {
	if s == nil {
		return 0
	}
	return len(s.Positional) + len(s.KeywordKey)
}

func (s *Sig) IsVariadic() bool { return s != nil && s.Rest != "" }

// ParamNames returns positional names followed by keyword names, in
// call-binding order.
func (s *Sig) ParamNames() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Positional)+len(s.KeywordKey))
	out = append(out, s.Positional...)
	out = append(out, s.KeywordKey...)
	return out
}

// SlipFunction is a closure: captured lexical scope, parameter list
// (either a Sig or a list of bare parameter names), a body Code, and the
// function's `examples` and `guards` (spec §3).
type SlipFunction struct {
	Closure *Scope
	Sig     *Sig     // nil if untyped (bare parameter name list)
	Params  []string // used when Sig is nil
	Body    *ast.Code
	Name    string // function name, used for the dispatcher's by-name fallback (spec §4.4 step 8)

	Examples []Example
	Guards   []Value // guard expressions (Code), evaluated with the bound arguments
}

// Example is one `|example { ... -> ... }` annotation used for
// example-driven method synthesis (spec §4.4).
type Example struct {
	Bindings map[string]Value // parameter name -> sample value
	Result   Value
}

func (*SlipFunction) Kind() Kind { return KindFunction }

func (f *SlipFunction) Pformat() string {
	return fmt.Sprintf("fn<%s>", f.Name)
}

func (f *SlipFunction) IsZeroArity() bool {
	if f.Sig != nil {
		return f.Sig.Arity() == 0 && !f.Sig.IsVariadic()
	}
	return len(f.Params) == 0
}

// GenericFunction holds an ordered list of methods sharing one name,
// dispatched by arity/type/guard (spec §4.4).
type GenericFunction struct {
	Name     string
	Methods  []*SlipFunction
	Examples []Example // examples bag attached directly to the GenericFunction itself
}

func NewGenericFunction(name string) *GenericFunction {
	return &GenericFunction{Name: name}
}

func (*GenericFunction) Kind() Kind { return KindFunction }

func (g *GenericFunction) Pformat() string {
	return fmt.Sprintf("generic-fn<%s,%d methods>", g.Name, len(g.Methods))
}

func (g *GenericFunction) IsZeroArity() bool {
	for _, m := range g.Methods {
		if m.IsZeroArity() {
			return true
		}
	}
	return false
}

// Merge adds fn as a method, folding example sets together when fn has
// the same signature as an existing method (spec §4.4: "clones with the
// same signature merge their examples into the existing method instead
// of duplicating it").
func (g *GenericFunction) Merge(fn *SlipFunction) {
	for _, existing := range g.Methods {
		if sameSignature(existing.Sig, fn.Sig) {
			existing.Examples = append(existing.Examples, fn.Examples...)
			return
		}
	}
	g.Methods = append(g.Methods, fn)
}

// NativeFunction wraps a Go closure as a callable SLIP value, the shape
// every stdlib primitive and host-exposed method takes (spec §3's
// HostObject "optionally exposing decorated methods as functions", and
// the whole of spec §4.5's standard primitives).
type NativeFunction struct {
	FnName  string
	Arity   int  // -1 means variadic/unchecked
	Fn      func(args []Value, kwargs map[string]Value) (Value, error)
}

func NewNative(name string, arity int, fn func(args []Value, kwargs map[string]Value) (Value, error)) *NativeFunction {
	return &NativeFunction{FnName: name, Arity: arity, Fn: fn}
}

func (*NativeFunction) Kind() Kind { return KindFunction }

func (n *NativeFunction) Pformat() string { return fmt.Sprintf("native-fn<%s>", n.FnName) }

func (n *NativeFunction) IsZeroArity() bool { return n.Arity == 0 }

func (n *NativeFunction) Call(args []Value, kwargs map[string]Value) (Value, error) {
	return n.Fn(args, kwargs)
}

func sameSignature(a, b *Sig) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Positional) != len(b.Positional) || len(a.KeywordKey) != len(b.KeywordKey) || a.Rest != b.Rest {
		return false
	}
	for i := range a.KeywordKey {
		if a.KeywordKey[i] != b.KeywordKey[i] {
			return false
		}
	}
	return true
}
