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
	"sync/atomic"
)

// typeIDCounter is the process-wide monotonically increasing counter
// backing Scope christening (spec §3 invariants). original_source's
// slip_datatypes.py keeps this as a plain incrementing int, not a UUID -
// preserved here, since cross-process uniqueness was never part of the
// contract (see SPEC_FULL.md §C.7).
var typeIDCounter int64

// Scope is SLIP's mutable, insertion-ordered, string-keyed object and
// namespace primitive, with an optional prototype parent and an ordered
// list of mixins (spec §3, §4.1).
type Scope struct {
	keys   []string
	values map[string]Value

	Parent *Scope
	Mixins []*Scope

	Name   string // set once by christening
	TypeID int64  // set once by christening; 0 means "not yet christened"
	Prune  bool   // meta#(prune:) override; true unless explicitly disabled

	familyOK bool
	family   []*Scope // cached transitive closure under {parent, mixins}

	Meta *Dict // free-form meta bag for user-visible meta.* fields

	// Filter-query overlay support (spec §4.2). When IsFilterOverlay is
	// set, a leading-dot Name segment resolves against FilterItem's
	// fields and a bare Name segment is resolved against FilterParent
	// instead of this scope's own bindings - the "a bare Name is
	// rewritten to reference the enclosing lexical scope" / "a leading-
	// dot name .field is rewritten to reference the current item's
	// field" rule. The resolver builds one of these per predicate
	// evaluation; it is never christened and never part of a user
	// prototype chain.
	IsFilterOverlay bool
	FilterItem      Value
	FilterParent    *Scope
}

func NewScope() *Scope {
	return &Scope{values: map[string]Value{}, Prune: true, Meta: NewDict()}
}

// NewFilterOverlay builds the transient per-item scope a filter query
// (`[ predicate ]`) evaluates its predicate against (spec §4.2).
func NewFilterOverlay(item Value, caller *Scope) *Scope {
	return &Scope{
		values:          map[string]Value{},
		IsFilterOverlay: true,
		FilterItem:      item,
		FilterParent:    caller,
	}
}

func (*Scope) Kind() Kind { return KindScope }

func (s *Scope) Pformat() string {
	var b strings.Builder
	b.WriteString("scope #{")
	for i, k := range s.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", k, s.values[k].Pformat())
	}
	b.WriteString("}")
	return b.String()
}

// ---------------------------------------------------------------------------
// Own bindings

// OwnGet returns the binding for key on s alone, not consulting mixins or
// parent.
func (s *Scope) OwnGet(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// OwnSet writes key directly on s, running christening if applicable
// (spec §4.1 policy (a), "local-by-default").
func (s *Scope) OwnSet(key string, v Value) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
	if child, ok := v.(*Scope); ok {
		child.christen(key)
	}
}

// OwnDelete removes key from s's own bindings only (spec §4.1: "does not
// affect ancestors").
func (s *Scope) OwnDelete(key string) {
	if _, exists := s.values[key]; !exists {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns s's own binding names, insertion order preserved.
func (s *Scope) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Scope) Len() int { return len(s.keys) }

// christen performs the one-time naming described in spec §3: "the first
// assignment that writes a Scope value under a string key on a Scope
// owner sets that Scope's meta.name to that key and assigns a globally-
// unique, monotonically-increasing type_id. Christening happens at most
// once per Scope."
func (s *Scope) christen(name string) {
	if s.TypeID != 0 {
		return
	}
	s.Name = name
	s.TypeID = atomic.AddInt64(&typeIDCounter, 1)
}

// ---------------------------------------------------------------------------
// Prototype / mixin lookup (spec §4.1)

// Get implements the chain lookup: own bindings; then each mixin in
// insertion order (recursively on their own mixins and parents); then
// parent (recursively). ok is false if key is nowhere in the chain.
func (s *Scope) Get(key string) (Value, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	for _, m := range s.Mixins {
		if v, ok := m.Get(key); ok {
			return v, true
		}
	}
	if s.Parent != nil {
		return s.Parent.Get(key)
	}
	return nil, false
}

// FindOwner returns the nearest Scope in own+parent chain that owns key
// (spec §4.1: find_owner does not search mixins, only the direct
// inheritance chain used for "owner-write" update semantics).
func (s *Scope) FindOwner(key string) *Scope {
	if _, ok := s.values[key]; ok {
		return s
	}
	if s.Parent != nil {
		return s.Parent.FindOwner(key)
	}
	return nil
}

// Inherit sets s's prototype parent. A Scope may inherit at most one
// parent; a second call errors (spec §4.1).
func (s *Scope) Inherit(parent *Scope) error {
	if s.Parent != nil {
		return fmt.Errorf("scope already has a parent")
	}
	if parent == s {
		return fmt.Errorf("scope cannot inherit itself")
	}
	s.Parent = parent
	s.invalidateFamily()
	return nil
}

// AddMixin appends m to s's mixin list, deduplicated by identity, and
// preserving insertion order (spec §4.1).
func (s *Scope) AddMixin(m *Scope) {
	for _, existing := range s.Mixins {
		if existing == m {
			return
		}
	}
	s.Mixins = append(s.Mixins, m)
	s.invalidateFamily()
}

func (s *Scope) invalidateFamily() {
	s.familyOK = false
	s.family = nil
}

// Family returns the transitive closure of s under {parent, mixins},
// cached until the next structural change (spec §4.1: "cached in
// meta._family and invalidated on structural change").
func (s *Scope) Family() []*Scope {
	if s.familyOK {
		return s.family
	}
	seen := map[*Scope]bool{}
	var order []*Scope
	var walk func(*Scope)
	walk = func(cur *Scope) {
		if cur == nil || seen[cur] {
			return
		}
		seen[cur] = true
		order = append(order, cur)
		for _, m := range cur.Mixins {
			walk(m)
		}
		walk(cur.Parent)
	}
	walk(s)
	s.family = order
	s.familyOK = true
	return order
}

// HasInFamily reports whether target is s or one of s's transitive
// parents/mixins.
func (s *Scope) HasInFamily(target *Scope) bool {
	for _, f := range s.Family() {
		if f == target {
			return true
		}
	}
	return false
}
