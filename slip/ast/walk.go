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

package ast

// Walk traverses a Code value in depth-first order, calling before(n)
// before descending into n's children and after(n) once they have all
// been visited. If before returns false, n's children are skipped.
// Adapted from cue/ast's Walk, trimmed to SLIP's smaller node set (no
// comments, no declarations - just expressions, terms, and segments).
func Walk(code *Code, before func(Node) bool, after func(Node)) {
	if code == nil {
		return
	}
	if before == nil {
		before = func(Node) bool { return true }
	}
	if after == nil {
		after = func(Node) {}
	}
	walkCode(code, before, after)
}

func walkCode(c *Code, before func(Node) bool, after func(Node)) {
	if !before(c) {
		return
	}
	for _, e := range c.Exprs {
		walkExpr(e, before, after)
	}
	after(c)
}

func walkExpr(e Expr, before func(Node) bool, after func(Node)) {
	for _, t := range e.Terms {
		walkTerm(t, before, after)
	}
}

func walkTerm(t Term, before func(Node) bool, after func(Node)) {
	if !before(t) {
		return
	}
	switch n := t.(type) {
	case *Group:
		for _, e := range n.Exprs {
			walkExpr(e, before, after)
		}
	case *ListLit:
		for _, e := range n.Elts {
			walkExpr(e, before, after)
		}
	case *DictLit:
		for _, e := range n.Exprs {
			walkExpr(e, before, after)
		}
	case *CodeLit:
		walkCode(n.Body, before, after)
	case *ByteStreamLit:
		for _, e := range n.Elts {
			walkExpr(e, before, after)
		}
	case *GetPath:
		walkSegments(n.Segments, before, after)
	case *SetPath:
		walkSegments(n.Segments, before, after)
	case *DelPath:
		walkSegments(n.Segments, before, after)
	case *PipedPath:
		walkSegments(n.Segments, before, after)
	case *PostPath:
		walkSegments(n.Segments, before, after)
	case *MultiSetPath:
		for _, tgt := range n.Targets {
			walkTerm(tgt, before, after)
		}
	case *PathLiteral:
		if node, ok := n.Path.(Term); ok {
			walkTerm(node, before, after)
		}
	}
	after(t)
}

func walkSegments(segs []Segment, before func(Node) bool, after func(Node)) {
	for _, s := range segs {
		if !before(s) {
			continue
		}
		switch n := s.(type) {
		case *IndexSeg:
			walkExpr(n.Index, before, after)
		case *SliceSeg:
			if n.Start != nil {
				walkExpr(*n.Start, before, after)
			}
			if n.End != nil {
				walkExpr(*n.End, before, after)
			}
		case *GroupSeg:
			for _, e := range n.Exprs {
				walkExpr(e, before, after)
			}
		case *FilterQuerySeg:
			walkExpr(n.Predicate, before, after)
		}
		after(s)
	}
}
