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

// Package value implements the SLIP data model (spec §3): the tagged
// union of runtime values, with reference semantics for the mutable
// container kinds (List, Dict, Scope, Function) and value semantics for
// everything else.
//
// The numeric representation is grounded on cue/value.go's numLit, which
// backs both CUE's int and float kinds with a single apd.Decimal plus a
// kind tag; SLIP's Integer and Float do the same, which is what lets
// "64-bit with overflow-to-big" (spec §3) fall out for free: apd.Decimal
// already has unbounded precision, and Int64()/Float64() give the fast
// path when a value fits.
package value

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Kind names a runtime value's primitive family, used throughout
// introspection (`type-of`) and multi-method dispatch (spec §4.4).
type Kind string

const (
	KindInt        Kind = "int"
	KindFloat      Kind = "float"
	KindBoolean    Kind = "boolean"
	KindNone       Kind = "none"
	KindString     Kind = "string"
	KindIString    Kind = "i-string"
	KindBytes      Kind = "bytes"
	KindList       Kind = "list"
	KindDict       Kind = "dict"
	KindScope      Kind = "scope"
	KindCode       Kind = "code"
	KindPath       Kind = "path"
	KindSig        Kind = "sig"
	KindFunction   Kind = "function"
	KindResponse   Kind = "response"
	KindHostObject Kind = "host-object"
	KindView       Kind = "view"
)

// Value is the sum type every SLIP runtime value satisfies.
type Value interface {
	Kind() Kind
	// Pformat renders the value's canonical textual form. Path equality
	// and hashing (spec §3 invariants) are defined in terms of it.
	Pformat() string
}

// apdCtx is the decimal context used for all arithmetic. 64-bit integers
// comfortably fit within this precision; it only grows when a
// computation actually needs more digits (spec §3: "arbitrary-precision
// is permitted").
var apdCtx = apd.BaseContext.WithPrecision(100)

// APDContext exposes the shared decimal context to stdlib arithmetic.
func APDContext() *apd.Context { return apdCtx }

// Int is SLIP's Integer. It is a value type: two Ints with equal
// decimals compare and hash equal.
type Int struct{ V apd.Decimal }

func NewInt(i int64) Int {
	var d apd.Decimal
	d.SetInt64(i)
	return Int{d}
}

func (Int) Kind() Kind { return KindInt }

func (i Int) Pformat() string { return i.V.String() }

// Int64 returns the value as an int64, and false if it overflows.
func (i Int) Int64() (int64, bool) {
	n, err := i.V.Int64()
	return n, err == nil
}

// Float is SLIP's Float (IEEE-754 double surfaced through a decimal so
// that mixed int/float arithmetic can share one code path).
type Float struct{ V apd.Decimal }

func NewFloat(f float64) Float {
	var d apd.Decimal
	d.SetFloat64(f)
	return Float{d}
}

func (Float) Kind() Kind { return KindFloat }

func (f Float) Pformat() string {
	s := f.V.Text('f')
	return s
}

func (f Float) Float64() float64 {
	v, _ := f.V.Float64()
	return v
}

// Boolean is SLIP's Boolean.
type Boolean bool

func (Boolean) Kind() Kind        { return KindBoolean }
func (b Boolean) Pformat() string { return fmt.Sprintf("%t", bool(b)) }

// Null is SLIP's singleton null/none value.
type Null struct{}

func (Null) Kind() Kind      { return KindNone }
func (Null) Pformat() string { return "null" }

// None is the canonical Null value.
var None = Null{}

// String is SLIP's raw string.
type String string

func (String) Kind() Kind        { return KindString }
func (s String) Pformat() string { return fmt.Sprintf("%q", string(s)) }

// IString is an interpolated template string, a string subtype (spec §3).
type IString string

func (IString) Kind() Kind        { return KindIString }
func (s IString) Pformat() string { return fmt.Sprintf("%q", string(s)) }

// Bytes is SLIP's immutable byte vector.
type Bytes []byte

func (Bytes) Kind() Kind        { return KindBytes }
func (b Bytes) Pformat() string { return fmt.Sprintf("%x", []byte(b)) }

// Truthy implements SLIP's truthiness rule used by `if`/`while`/logical
// short-circuiting and filter-query predicates: everything is truthy
// except false and null.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Boolean:
		return bool(x)
	case Null:
		return false
	case nil:
		return false
	default:
		return true
	}
}

// Equal implements value equality. List/Dict/Scope/Function compare by
// reference identity (spec §3: "reference semantics"); everything else
// compares by canonical form.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *List:
		y, ok := b.(*List)
		return ok && x == y
	case *Dict:
		y, ok := b.(*Dict)
		return ok && x == y
	case *Scope:
		y, ok := b.(*Scope)
		return ok && x == y
	case *GenericFunction:
		y, ok := b.(*GenericFunction)
		return ok && x == y
	case *SlipFunction:
		y, ok := b.(*SlipFunction)
		return ok && x == y
	case *NativeFunction:
		y, ok := b.(*NativeFunction)
		return ok && x == y
	default:
		if a.Kind() != b.Kind() {
			return false
		}
		return a.Pformat() == b.Pformat()
	}
}
