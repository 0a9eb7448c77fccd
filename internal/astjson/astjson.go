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

// Package astjson decodes the JSON encoding of a slip/ast.Code that a
// Transformer hands cmd/slip (spec §6 names the semantic AST as the
// Transformer's contract but leaves the concrete grammar/parser out of
// scope; JSON is the neutral wire format cmd/slip reads that contract
// from, the same role a parser's output tree plays in cmd/cue before
// cue/ast takes over).
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/chrsbats/slip/slip/ast"
)

// Decode parses the JSON encoding of a top-level Code document.
func Decode(data []byte) (*ast.Code, error) {
	var raw jsonCode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	return raw.toAST()
}

type jsonCode struct {
	Exprs    []jsonExpr `json:"exprs"`
	Expanded bool       `json:"expanded"`
}

func (c jsonCode) toAST() (*ast.Code, error) {
	exprs, err := decodeExprs(c.Exprs)
	if err != nil {
		return nil, err
	}
	return &ast.Code{Exprs: exprs, Expanded: c.Expanded}, nil
}

type jsonExpr struct {
	Terms []json.RawMessage `json:"terms"`
}

func decodeExprs(in []jsonExpr) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(in))
	for _, e := range in {
		expr, err := e.toAST()
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func (e jsonExpr) toAST() (ast.Expr, error) {
	terms := make([]ast.Term, 0, len(e.Terms))
	for _, raw := range e.Terms {
		term, err := decodeTerm(raw)
		if err != nil {
			return ast.Expr{}, err
		}
		terms = append(terms, term)
	}
	return ast.Expr{Terms: terms}, nil
}

type tag struct {
	Term string `json:"term"`
	Seg  string `json:"seg"`
}

func decodeTerm(raw json.RawMessage) (ast.Term, error) {
	var t tag
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("astjson: term: %w", err)
	}
	switch t.Term {
	case "lit":
		var v struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		kind, err := litKind(v.Kind)
		if err != nil {
			return nil, err
		}
		return &ast.BasicLit{Kind: kind, Value: v.Value}, nil

	case "interp":
		var v struct {
			Raw string `json:"raw"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.Interpolation{Raw: v.Raw}, nil

	case "group":
		var v struct {
			Exprs []jsonExpr `json:"exprs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		exprs, err := decodeExprs(v.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.Group{Exprs: exprs}, nil

	case "list":
		var v struct {
			Elts []jsonExpr `json:"elts"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elts, err := decodeExprs(v.Elts)
		if err != nil {
			return nil, err
		}
		return &ast.ListLit{Elts: elts}, nil

	case "dict":
		var v struct {
			Exprs []jsonExpr `json:"exprs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		exprs, err := decodeExprs(v.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.DictLit{Exprs: exprs}, nil

	case "code":
		var v struct {
			Body     jsonCode `json:"body"`
			Expanded bool     `json:"expanded"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		body, err := v.Body.toAST()
		if err != nil {
			return nil, err
		}
		return &ast.CodeLit{Body: body, Expanded: v.Expanded}, nil

	case "bytestream":
		var v struct {
			ElemType string     `json:"elemtype"`
			Elts     []jsonExpr `json:"elts"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elts, err := decodeExprs(v.Elts)
		if err != nil {
			return nil, err
		}
		return &ast.ByteStreamLit{ElemType: v.ElemType, Elts: elts}, nil

	case "sig":
		var v struct {
			Positional []string `json:"positional"`
			Keywords   []struct {
				Name       string          `json:"name"`
				Annotation json.RawMessage `json:"annotation"`
			} `json:"keywords"`
			Rest   string          `json:"rest"`
			Return json.RawMessage `json:"return"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		sig := &ast.SigLit{Positional: v.Positional, Rest: v.Rest}
		for _, kw := range v.Keywords {
			var ann ast.Expr
			if len(kw.Annotation) > 0 {
				var je jsonExpr
				if err := json.Unmarshal(kw.Annotation, &je); err != nil {
					return nil, err
				}
				a, err := je.toAST()
				if err != nil {
					return nil, err
				}
				ann = a
			}
			sig.Keywords = append(sig.Keywords, ast.KeywordParam{Name: kw.Name, Annotation: ann})
		}
		if len(v.Return) > 0 {
			var je jsonExpr
			if err := json.Unmarshal(v.Return, &je); err != nil {
				return nil, err
			}
			ret, err := je.toAST()
			if err != nil {
				return nil, err
			}
			sig.Return = ret
		}
		return sig, nil

	case "getpath", "setpath", "delpath", "pipedpath", "postpath":
		segs, meta, err := decodePathBody(raw)
		if err != nil {
			return nil, err
		}
		switch t.Term {
		case "getpath":
			return &ast.GetPath{Segments: segs, Meta: meta}, nil
		case "setpath":
			return &ast.SetPath{Segments: segs, Meta: meta}, nil
		case "delpath":
			return &ast.DelPath{Segments: segs, Meta: meta}, nil
		case "pipedpath":
			return &ast.PipedPath{Segments: segs, Meta: meta}, nil
		default:
			return &ast.PostPath{Segments: segs, Meta: meta}, nil
		}

	case "multiset":
		var v struct {
			Targets []json.RawMessage `json:"targets"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		ms := &ast.MultiSetPath{}
		for _, tr := range v.Targets {
			term, err := decodeTerm(tr)
			if err != nil {
				return nil, err
			}
			sp, ok := term.(*ast.SetPath)
			if !ok {
				return nil, fmt.Errorf("astjson: multiset target must be a setpath")
			}
			ms.Targets = append(ms.Targets, sp)
		}
		return ms, nil

	case "pathliteral":
		var v struct {
			Path json.RawMessage `json:"path"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		inner, err := decodeTerm(v.Path)
		if err != nil {
			return nil, err
		}
		node, ok := inner.(ast.Node)
		if !ok {
			return nil, fmt.Errorf("astjson: pathliteral body must be a path node")
		}
		return &ast.PathLiteral{Path: node}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown term kind %q", t.Term)
	}
}

func decodePathBody(raw json.RawMessage) ([]ast.Segment, *ast.Meta, error) {
	var v struct {
		Segments []json.RawMessage `json:"segments"`
		Meta     []jsonExpr        `json:"meta"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, nil, err
	}
	segs := make([]ast.Segment, 0, len(v.Segments))
	for _, s := range v.Segments {
		seg, err := decodeSegment(s)
		if err != nil {
			return nil, nil, err
		}
		segs = append(segs, seg)
	}
	var meta *ast.Meta
	if v.Meta != nil {
		exprs, err := decodeExprs(v.Meta)
		if err != nil {
			return nil, nil, err
		}
		meta = &ast.Meta{Exprs: exprs}
	}
	return segs, meta, nil
}

func decodeSegment(raw json.RawMessage) (ast.Segment, error) {
	var t tag
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("astjson: segment: %w", err)
	}
	switch t.Seg {
	case "name":
		var v struct {
			Text   string `json:"text"`
			Dotted bool   `json:"dotted"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.NameSeg{Text: v.Text, Dotted: v.Dotted}, nil

	case "index":
		var v struct {
			Index jsonExpr `json:"index"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		idx, err := v.Index.toAST()
		if err != nil {
			return nil, err
		}
		return &ast.IndexSeg{Index: idx}, nil

	case "slice":
		var v struct {
			Start *jsonExpr `json:"start"`
			End   *jsonExpr `json:"end"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		seg := &ast.SliceSeg{}
		if v.Start != nil {
			e, err := v.Start.toAST()
			if err != nil {
				return nil, err
			}
			seg.Start = &e
		}
		if v.End != nil {
			e, err := v.End.toAST()
			if err != nil {
				return nil, err
			}
			seg.End = &e
		}
		return seg, nil

	case "group":
		var v struct {
			Exprs []jsonExpr `json:"exprs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		exprs, err := decodeExprs(v.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.GroupSeg{Exprs: exprs}, nil

	case "filter":
		var v struct {
			Predicate jsonExpr `json:"predicate"`
			Legacy    bool     `json:"legacy"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		pred, err := v.Predicate.toAST()
		if err != nil {
			return nil, err
		}
		return &ast.FilterQuerySeg{Predicate: pred, LegacyOperator: v.Legacy}, nil

	case "root":
		return &ast.RootSeg{}, nil
	case "parent":
		return &ast.ParentSeg{}, nil
	case "pwd":
		return &ast.PwdSeg{}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown segment kind %q", t.Seg)
	}
}

func litKind(s string) (ast.LitKind, error) {
	switch s {
	case "int":
		return ast.INT, nil
	case "float":
		return ast.FLOAT, nil
	case "bool":
		return ast.BOOL, nil
	case "null":
		return ast.NULL, nil
	case "string":
		return ast.STRING, nil
	case "bytes":
		return ast.BYTES, nil
	default:
		return 0, fmt.Errorf("astjson: unknown literal kind %q", s)
	}
}
