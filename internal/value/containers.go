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
	"strings"
)

// List is SLIP's mutable ordered sequence. It is always referenced
// through a pointer so that assignments to a shared list are observed
// everywhere (spec §3: "Mutations are observed through shared identity").
type List struct {
	Elems []Value
}

func NewList(elems ...Value) *List { return &List{Elems: elems} }

func (*List) Kind() Kind { return KindList }

func (l *List) Pformat() string {
	var b strings.Builder
	b.WriteString("#[")
	for i, e := range l.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Pformat())
	}
	b.WriteString("]")
	return b.String()
}

// Copy returns a shallow copy (spec §8: "List `[:]` returns a shallow
// copy").
func (l *List) Copy() *List {
	out := make([]Value, len(l.Elems))
	copy(out, l.Elems)
	return &List{Elems: out}
}

// Dict is SLIP's insertion-ordered string-keyed mapping.
type Dict struct {
	keys   []string
	values map[string]Value
}

func NewDict() *Dict {
	return &Dict{values: map[string]Value{}}
}

func (*Dict) Kind() Kind { return KindDict }

func (d *Dict) Pformat() string {
	var b strings.Builder
	b.WriteString("#{")
	for i, k := range d.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", k, d.values[k].Pformat())
	}
	b.WriteString("}")
	return b.String()
}

func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) Set(key string, v Value) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Dict) Delete(key string) {
	if _, exists := d.values[key]; !exists {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Dict) Len() int { return len(d.keys) }

// Response is a (status, value) pair (spec §3). A `return`-status
// Response is a control-flow signal, unwrapped at function boundaries.
type Response struct {
	Status string // the path-literal text naming the status, e.g. "ok", "err", "return"
	Val    Value
}

func (*Response) Kind() Kind { return KindResponse }

func (r *Response) Pformat() string {
	return fmt.Sprintf("response %s %s", r.Status, r.Val.Pformat())
}

// IsReturn reports whether r is the early-exit control-flow signal.
func (r *Response) IsReturn() bool { return r != nil && r.Status == "return" }

// HostObject is an opaque reference satisfying a get/set/delete-by-key
// mapping contract, optionally exposing decorated methods as callables
// (spec §3, §9: "model HostObject behind a trait/interface").
type HostObject interface {
	Value
	Get(key string) (Value, bool)
	Set(key string, v Value) error
	Delete(key string) error
	// Method looks up a host method exposed as a callable, if any.
	Method(name string) (Callable, bool)
}

// Callable is satisfied by anything the evaluator can invoke with
// already-evaluated positional and keyword arguments: SlipFunction,
// GenericFunction, and host-exposed methods alike.
type Callable interface {
	Value
	// IsZeroArity reports whether this callable accepts zero arguments
	// without a rest parameter, used by the auto-invocation rule
	// (spec §4.3).
	IsZeroArity() bool
}
