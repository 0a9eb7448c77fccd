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

package eval

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/cockroachdb/apd/v3"
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/ast"
	"github.com/chrsbats/slip/slip/token"
)

// parseBasicLit converts a literal's source text into its runtime Value
// (spec §3). Numbers go through apd.Decimal the same way cue/value.go's
// numLit does, so Int/Float share one arbitrary-precision representation.
func parseBasicLit(t *ast.BasicLit) (value.Value, error) {
	switch t.Kind {
	case ast.INT:
		var d apd.Decimal
		if _, _, err := d.SetString(t.Value); err != nil {
			return nil, slerr.RuntimeErrorf(t.Pos(), "invalid integer literal %q", t.Value)
		}
		return value.Int{V: d}, nil
	case ast.FLOAT:
		var d apd.Decimal
		if _, _, err := d.SetString(t.Value); err != nil {
			return nil, slerr.RuntimeErrorf(t.Pos(), "invalid float literal %q", t.Value)
		}
		return value.Float{V: d}, nil
	case ast.BOOL:
		return value.Boolean(t.Value == "true"), nil
	case ast.NULL:
		return value.None, nil
	case ast.STRING:
		return value.String(t.Value), nil
	case ast.BYTES:
		b, err := hex.DecodeString(t.Value)
		if err != nil {
			return nil, slerr.RuntimeErrorf(t.Pos(), "invalid bytes literal %q", t.Value)
		}
		return value.Bytes(b), nil
	default:
		return nil, slerr.TypeErrorf(t.Pos(), "unsupported literal kind %d", t.Kind)
	}
}

// evalSigLit builds a *value.Sig, evaluating each keyword's annotation
// and the optional return annotation in scope (spec §3: "Keywords is an
// insertion-ordered mapping of typed keyword parameters to annotation
// values").
func (ev *Evaluator) evalSigLit(scope *value.Scope, t *ast.SigLit) (*value.Sig, error) {
	sig := &value.Sig{
		Positional: append([]string(nil), t.Positional...),
		Rest:       t.Rest,
		Keywords:   map[string]value.Value{},
	}
	for _, kp := range t.Keywords {
		v, err := ev.Eval(scope, kp.Annotation)
		if err != nil {
			return nil, err
		}
		sig.KeywordKey = append(sig.KeywordKey, kp.Name)
		sig.Keywords[kp.Name] = v
	}
	if len(t.Return.Terms) > 0 {
		rv, err := ev.Eval(scope, t.Return)
		if err != nil {
			return nil, err
		}
		sig.Return = rv
	}
	return sig, nil
}

// evalByteStream packs each evaluated element as t.ElemType into a flat
// Bytes value (spec §3's typed packer literal).
func (ev *Evaluator) evalByteStream(scope *value.Scope, t *ast.ByteStreamLit) (value.Value, error) {
	out := make([]byte, 0, len(t.Elts)*8)
	for _, e := range t.Elts {
		v, err := ev.Eval(scope, e)
		if err != nil {
			return nil, err
		}
		packed, err := packElem(t.ElemType, v, t.Pos())
		if err != nil {
			return nil, err
		}
		out = append(out, packed...)
	}
	return value.Bytes(out), nil
}

func packElem(elemType string, v value.Value, pos token.Pos) ([]byte, error) {
	asInt := func() (int64, error) {
		i, ok := v.(value.Int)
		if !ok {
			return 0, slerr.TypeErrorf(pos, "byte stream element requires an integer, got %s", v.Kind())
		}
		n, _ := i.Int64()
		return n, nil
	}
	asFloat := func() (float64, error) {
		switch x := v.(type) {
		case value.Float:
			return x.Float64(), nil
		case value.Int:
			n, _ := x.Int64()
			return float64(n), nil
		default:
			return 0, slerr.TypeErrorf(pos, "byte stream element requires a number, got %s", v.Kind())
		}
	}
	switch elemType {
	case "u8", "i8":
		n, err := asInt()
		if err != nil {
			return nil, err
		}
		return []byte{byte(n)}, nil
	case "u16", "i16":
		n, err := asInt()
		if err != nil {
			return nil, err
		}
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(n))
		return b, nil
	case "u32", "i32":
		n, err := asInt()
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(n))
		return b, nil
	case "u64", "i64":
		n, err := asInt()
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(n))
		return b, nil
	case "f32":
		f, err := asFloat()
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
		return b, nil
	case "f64":
		f, err := asFloat()
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(f))
		return b, nil
	case "b1":
		if value.Truthy(v) {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	default:
		return nil, slerr.TypeErrorf(pos, "unknown byte stream element type %q", elemType)
	}
}

// pathLiteralValue wraps the underlying path node as a literal *value.Path
// (spec §3: "a PathLiteral wraps any [path] so it can be passed around as
// a first-class value without being resolved").
func pathLiteralValue(t *ast.PathLiteral) (value.Value, error) {
	switch n := t.Path.(type) {
	case *ast.GetPath:
		return &value.Path{Form: value.FormGet, Segments: n.Segments, Meta: n.Meta, Literal: true}, nil
	case *ast.SetPath:
		return &value.Path{Form: value.FormSet, Segments: n.Segments, Meta: n.Meta, Literal: true}, nil
	case *ast.DelPath:
		return &value.Path{Form: value.FormDel, Segments: n.Segments, Meta: n.Meta, Literal: true}, nil
	case *ast.PipedPath:
		return &value.Path{Form: value.FormPiped, Segments: n.Segments, Meta: n.Meta, Literal: true}, nil
	case *ast.PostPath:
		return &value.Path{Form: value.FormPost, Segments: n.Segments, Meta: n.Meta, Literal: true}, nil
	case *ast.MultiSetPath:
		p := &value.Path{Form: value.FormMultiSet, Literal: true}
		for _, tgt := range n.Targets {
			p.MultiTargets = append(p.MultiTargets, tgt.Segments)
		}
		return p, nil
	default:
		return nil, slerr.TypeErrorf(t.Pos(), "unsupported path literal %T", n)
	}
}

// singleName reports the bare name of gp when it is exactly one
// undotted NameSeg and no meta options are attached - the shape head-form
// macro recognition and status aliases key off (spec §4.3 item 2).
func singleName(gp *ast.GetPath) (string, bool) {
	return segSingleName(gp.Segments, gp.Meta)
}

// segSingleName is the segments+meta shape singleName checks, factored
// out so SetPath/DelPath/PostPath (which carry the same two fields but
// aren't GetPaths) can reuse it.
func segSingleName(segs []ast.Segment, meta *ast.Meta) (string, bool) {
	if meta != nil || len(segs) != 1 {
		return "", false
	}
	ns, ok := segs[0].(*ast.NameSeg)
	if !ok || ns.Dotted {
		return "", false
	}
	return ns.Text, true
}

// operatorName returns the bare name a piped-path operator term resolves
// to before alias-following, e.g. "+" in `1 + 2` or "inherit" in
// `|inherit Character`.
func operatorName(pp *ast.PipedPath) (string, bool) {
	if len(pp.Segments) != 1 {
		return "", false
	}
	ns, ok := pp.Segments[0].(*ast.NameSeg)
	if !ok {
		return "", false
	}
	return ns.Text, true
}
