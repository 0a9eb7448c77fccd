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

// Package ast declares the semantic AST that a Transformer hands to the
// evaluator (spec §6): Code, the Path family, Sig, and ByteStream. The
// node shapes and the Node/Expr marker-interface pattern are adapted from
// cue/ast, whose job is the analogous one for CUE: a syntax tree the
// evaluator/exporter walks without caring how it was parsed.
//
// Unlike cue/ast, this package carries no comment-group or
// round-trip-formatting machinery: spec §1 places the concrete grammar,
// the parser, and the pretty-printer out of scope, so nodes only need
// enough shape to be evaluated, not reprinted byte-for-byte.
package ast

import "github.com/chrsbats/slip/slip/token"

// A Node is any node of the semantic AST. Every node knows its own
// source extent so the evaluator's frame stack (spec §7) can point at it.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// A Term is any single element of an expression (spec §4.3: "an
// expression is a sequence of terms").
type Term interface {
	Node
	termNode()
}

func (*BasicLit) termNode()      {}
func (*Interpolation) termNode() {}
func (*Group) termNode()         {}
func (*ListLit) termNode()       {}
func (*ByteStreamLit) termNode() {}
func (*SigLit) termNode()        {}
func (*GetPath) termNode()       {}
func (*SetPath) termNode()       {}
func (*DelPath) termNode()       {}
func (*PipedPath) termNode()     {}
func (*PostPath) termNode()      {}
func (*PathLiteral) termNode()   {}
func (*MultiSetPath) termNode()  {}
func (*DictLit) termNode()       {}
func (*CodeLit) termNode()       {}

// A Segment is one step of a Path (spec §3: Name, Index, Slice, Group,
// FilterQuery, and the singletons Root, Parent, Pwd).
type Segment interface {
	Node
	segmentNode()
}

func (*NameSeg) segmentNode()        {}
func (*IndexSeg) segmentNode()       {}
func (*SliceSeg) segmentNode()       {}
func (*GroupSeg) segmentNode()       {}
func (*FilterQuerySeg) segmentNode() {}
func (*RootSeg) segmentNode()        {}
func (*ParentSeg) segmentNode()      {}
func (*PwdSeg) segmentNode()         {}

type baseNode struct {
	From, To token.Pos
}

func (b *baseNode) Pos() token.Pos { return b.From }
func (b *baseNode) End() token.Pos { return b.To }

// ---------------------------------------------------------------------------
// Literals

// LitKind distinguishes the primitive literal kinds of spec §3.
type LitKind int

const (
	INT LitKind = iota
	FLOAT
	BOOL
	NULL
	STRING
	BYTES
)

// A BasicLit is an Integer, Float, Boolean, Null, or raw String literal.
type BasicLit struct {
	baseNode
	Kind  LitKind
	Value string // the literal's source text, e.g. "3.14", "true"
}

// An Interpolation is an IString: a raw template with {{name}} holes,
// rendered against the lexical scope at evaluation time (spec §4.3).
type Interpolation struct {
	baseNode
	Raw string
}

// A Group is a parenthesized sub-expression, `(...)`, which forces
// evaluation regardless of head-form dispatch (spec §4.3).
type Group struct {
	baseNode
	Exprs []Expr
}

// A ListLit is a `#[ ... ]` list literal: each element is an expression.
type ListLit struct {
	baseNode
	Elts []Expr
}

// A DictLit is the `('dict', exprs)` tuple marker from spec §6: the
// evaluator runs Exprs as assignments inside a fresh isolated scope whose
// bindings become the dict (spec §4.5's `dict` constructor operates on
// this node when written literally as `#{ ... }`).
type DictLit struct {
	baseNode
	Exprs []Expr
}

// A CodeLit is an unevaluated Code value written inline, e.g. the body
// of `fn { } [ ... ]` or a `run`-able block. Spec §3: "Code is an
// unevaluated value; it carries an `expanded` marker once definition-time
// template expansion has run."
type CodeLit struct {
	baseNode
	Body     *Code
	Expanded bool
}

// A ByteStreamLit is a typed packer literal (spec §3).
type ByteStreamLit struct {
	baseNode
	ElemType string // one of u8,i8,u16,i16,u32,i32,u64,i64,f32,f64,b1
	Elts     []Expr
}

// A SigLit is a signature literal (spec §3).
type SigLit struct {
	baseNode
	Positional []string
	Keywords   []KeywordParam // insertion order preserved
	Rest       string         // "" if no rest parameter
	Return     Expr           // nil if no return annotation
}

// KeywordParam is one typed keyword parameter of a Sig.
type KeywordParam struct {
	Name       string
	Annotation Expr
}

// ---------------------------------------------------------------------------
// Segments

type NameSeg struct {
	baseNode
	Text string
	// Dotted is true for a leading-dot name (`.field`) used inside a
	// filter-query predicate (spec §4.2).
	Dotted bool
}

type IndexSeg struct {
	baseNode
	Index Expr
}

type SliceSeg struct {
	baseNode
	Start, End *Expr // either may be nil
}

type GroupSeg struct {
	baseNode
	Exprs []Expr
}

type FilterQuerySeg struct {
	baseNode
	Predicate Expr
	// LegacyOperator is set when this segment was written as the sugared
	// operator-only form `[> 10]` (spec §4.2), so the resolver knows it
	// still needs desugaring into `[ > 10 ]`.
	LegacyOperator bool
}

type RootSeg struct{ baseNode }
type ParentSeg struct{ baseNode }
type PwdSeg struct{ baseNode }

// ---------------------------------------------------------------------------
// Path meta

// Meta is the `#( ... )` expression group evaluated to a dict of
// recognized options (spec §6): timeout, retries, backoff, headers,
// params, content-type, encoding, prune, response-mode.
type Meta struct {
	baseNode
	Exprs []Expr
}

// ---------------------------------------------------------------------------
// Paths

// PathKind identifies which path family member a generic walker is
// looking at; most code instead type-switches on the concrete Go type.
type PathKind int

const (
	PathGet PathKind = iota
	PathSet
	PathDel
	PathPiped
	PathPost
	PathMultiSet
)

// A GetPath reads a value.
type GetPath struct {
	baseNode
	Segments []Segment
	Meta     *Meta // nil if absent
}

// A SetPath assigns a value.
type SetPath struct {
	baseNode
	Segments []Segment
	Meta     *Meta
}

// A DelPath deletes a value. Spec §4.3: "standalone only; cannot appear
// in a larger expression."
type DelPath struct {
	baseNode
	Segments []Segment
	Meta     *Meta
}

// A PipedPath is an operator/pipe-target path, e.g. the `+` in `1 + 2` or
// the `|inherit Character` stage of a pipeline.
type PipedPath struct {
	baseNode
	Segments []Segment
	Meta     *Meta
}

// A PostPath performs an HTTP POST (spec §4.3); legal only over
// http(s) locators.
type PostPath struct {
	baseNode
	Segments []Segment
	Meta     *Meta
}

// A MultiSetPath is the `('multi-set', [SetPath,...])` tuple marker:
// elementwise assignment of a list RHS across several SetPaths.
type MultiSetPath struct {
	baseNode
	Targets []*SetPath
}

// A PathLiteral wraps any of the above so it can be passed around as a
// first-class value without being resolved (spec §3).
type PathLiteral struct {
	baseNode
	Path Node // one of GetPath, SetPath, DelPath, PipedPath, PostPath, MultiSetPath
}

// ---------------------------------------------------------------------------
// Program structure

// Expr is one expression: an ordered sequence of terms, evaluated
// left-to-right with no operator precedence (spec §4.3).
type Expr struct {
	Terms []Term
}

func (e Expr) Pos() token.Pos {
	if len(e.Terms) == 0 {
		return token.NoPos
	}
	return e.Terms[0].Pos()
}

func (e Expr) End() token.Pos {
	if len(e.Terms) == 0 {
		return token.NoPos
	}
	return e.Terms[len(e.Terms)-1].End()
}

// Code is an ordered sequence of expressions - the semantic AST contract
// that a Transformer must produce (spec §6), and itself a first-class
// value: "evaluating a Code value yields the Code itself."
type Code struct {
	baseNode
	Exprs    []Expr
	Expanded bool
}

func NewCode(exprs []Expr) *Code {
	return &Code{Exprs: exprs}
}
