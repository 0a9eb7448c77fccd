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

package stdlib

import (
	"sort"
	"strings"

	"github.com/chrsbats/slip/internal/value"
	"github.com/chrsbats/slip/slip/ast"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

func registerIntrospection(g *value.Scope, rt Runtime) {
	native(g, "type-of", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return value.String(args[0].Kind()), nil
	})

	kindPred := func(k value.Kind) func([]value.Value, map[string]value.Value) (value.Value, error) {
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.Boolean(args[0].Kind() == k), nil
		}
	}
	native(g, "is-number?", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		k := args[0].Kind()
		return value.Boolean(k == value.KindInt || k == value.KindFloat), nil
	})
	native(g, "is-string?", 1, kindPred(value.KindString))
	native(g, "is-boolean?", 1, kindPred(value.KindBoolean))
	native(g, "is-none?", 1, kindPred(value.KindNone))
	native(g, "is-path?", 1, kindPred(value.KindPath))
	native(g, "is-list?", 1, kindPred(value.KindList))
	native(g, "is-dict?", 1, kindPred(value.KindDict))
	native(g, "is-scope?", 1, kindPred(value.KindScope))
	native(g, "is-code?", 1, kindPred(value.KindCode))

	native(g, "is-a?", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, ok := args[0].(*value.Scope)
		target, okT := args[1].(*value.Scope)
		if !ok || !okT {
			return value.Boolean(false), nil
		}
		return value.Boolean(s.HasInFamily(target)), nil
	})

	native(g, "has-key?", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		key, ok := args[1].(value.String)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "has-key? requires a string key")
		}
		_, found := fieldGet(args[0], string(key))
		return value.Boolean(found), nil
	})

	native(g, "keys", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		ks, err := fieldKeys(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]value.Value, len(ks))
		for i, k := range ks {
			out[i] = value.String(k)
		}
		return value.NewList(out...), nil
	})
	native(g, "values", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		ks, err := fieldKeys(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]value.Value, len(ks))
		for i, k := range ks {
			v, _ := fieldGet(args[0], k)
			out[i] = v
		}
		return value.NewList(out...), nil
	})

	native(g, "len", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case *value.List:
			return value.NewInt(int64(len(x.Elems))), nil
		case *value.Dict:
			return value.NewInt(int64(x.Len())), nil
		case *value.Scope:
			return value.NewInt(int64(x.Len())), nil
		case value.String:
			return value.NewInt(int64(len(x))), nil
		case value.Bytes:
			return value.NewInt(int64(len(x))), nil
		default:
			return nil, slerr.TypeErrorf(token.NoPos, "len does not apply to %s", args[0].Kind())
		}
	})

	native(g, "copy", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return shallowCopy(args[0])
	})
	native(g, "clone", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return deepClone(args[0], map[value.Value]value.Value{})
	})

	native(g, "sort", -1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[0].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "sort requires a list")
		}
		out := lst.Copy()
		var sortErr error
		sort.SliceStable(out.Elems, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			if len(args) > 1 {
				r, err := rt.Invoke(args[1], []value.Value{out.Elems[i], out.Elems[j]}, nil)
				if err != nil {
					sortErr = err
					return false
				}
				return value.Truthy(r)
			}
			return naturalLess(out.Elems[i], out.Elems[j])
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return out, nil
	})

	native(g, "range", -1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		var start, end int64
		switch len(args) {
		case 1:
			n, ok := args[0].(value.Int)
			if !ok {
				return nil, slerr.TypeErrorf(token.NoPos, "range requires integers")
			}
			end, _ = n.Int64()
		case 2:
			a, aok := args[0].(value.Int)
			b, bok := args[1].(value.Int)
			if !aok || !bok {
				return nil, slerr.TypeErrorf(token.NoPos, "range requires integers")
			}
			start, _ = a.Int64()
			end, _ = b.Int64()
		default:
			return nil, slerr.TypeErrorf(token.NoPos, "range expects 1 or 2 arguments")
		}
		out := make([]value.Value, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, value.NewInt(i))
		}
		return value.NewList(out...), nil
	})

	native(g, "map", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[0].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "map requires a list")
		}
		out := make([]value.Value, len(lst.Elems))
		for i, e := range lst.Elems {
			v, err := rt.Invoke(args[1], []value.Value{e}, nil)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return value.NewList(out...), nil
	})

	native(g, "filter", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[0].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "filter requires a list")
		}
		var out []value.Value
		for _, e := range lst.Elems {
			v, err := rt.Invoke(args[1], []value.Value{e}, nil)
			if err != nil {
				return nil, err
			}
			if value.Truthy(v) {
				out = append(out, e)
			}
		}
		return value.NewList(out...), nil
	})

	native(g, "reduce", 3, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[0].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "reduce requires a list")
		}
		acc := args[2]
		for _, e := range lst.Elems {
			v, err := rt.Invoke(args[1], []value.Value{acc, e}, nil)
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	})

	native(g, "zip", -1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.NewList(), nil
		}
		lists := make([]*value.List, len(args))
		shortest := -1
		for i, a := range args {
			lst, ok := a.(*value.List)
			if !ok {
				return nil, slerr.TypeErrorf(token.NoPos, "zip requires lists")
			}
			lists[i] = lst
			if shortest < 0 || len(lst.Elems) < shortest {
				shortest = len(lst.Elems)
			}
		}
		out := make([]value.Value, shortest)
		for i := 0; i < shortest; i++ {
			row := make([]value.Value, len(lists))
			for j, lst := range lists {
				row[j] = lst.Elems[i]
			}
			out[i] = value.NewList(row...)
		}
		return value.NewList(out...), nil
	})

	native(g, "partial", -1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) == 0 {
			return nil, slerr.TypeErrorf(token.NoPos, "partial requires a function")
		}
		fn, bound := args[0], append([]value.Value(nil), args[1:]...)
		return value.NewNative("partial", -1, func(rest []value.Value, kwargs map[string]value.Value) (value.Value, error) {
			return rt.Invoke(fn, append(append([]value.Value(nil), bound...), rest...), kwargs)
		}), nil
	})

	native(g, "compose", -1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		fns := append([]value.Value(nil), args...)
		return value.NewNative("compose", -1, func(rest []value.Value, kwargs map[string]value.Value) (value.Value, error) {
			if len(fns) == 0 {
				if len(rest) == 1 {
					return rest[0], nil
				}
				return value.NewList(rest...), nil
			}
			result, err := rt.Invoke(fns[len(fns)-1], rest, kwargs)
			if err != nil {
				return nil, err
			}
			for i := len(fns) - 2; i >= 0; i-- {
				result, err = rt.Invoke(fns[i], []value.Value{result}, nil)
				if err != nil {
					return nil, err
				}
			}
			return result, nil
		}), nil
	})

	native(g, "call", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[1].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "call requires a list of arguments")
		}
		return rt.Invoke(args[0], lst.Elems, nil)
	})

	native(g, "to-int", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case value.Int:
			return x, nil
		case value.Float:
			n, _ := x.V.Int64()
			return value.NewInt(n), nil
		case value.String:
			var d value.Int
			if _, _, err := d.V.SetString(string(x)); err != nil {
				return nil, slerr.TypeErrorf(token.NoPos, "cannot convert %q to int", string(x))
			}
			return d, nil
		default:
			return nil, slerr.TypeErrorf(token.NoPos, "cannot convert %s to int", args[0].Kind())
		}
	})

	native(g, "to-float", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case value.Float:
			return x, nil
		case value.Int:
			f, _ := x.Int64()
			return value.NewFloat(float64(f)), nil
		case value.String:
			var d value.Float
			if _, _, err := d.V.SetString(string(x)); err != nil {
				return nil, slerr.TypeErrorf(token.NoPos, "cannot convert %q to float", string(x))
			}
			return d, nil
		default:
			return nil, slerr.TypeErrorf(token.NoPos, "cannot convert %s to float", args[0].Kind())
		}
	})

	native(g, "to-path", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "to-path requires a string")
		}
		segs := []ast.Segment{}
		for _, part := range strings.Split(string(s), ".") {
			if part == "" {
				continue
			}
			segs = append(segs, &ast.NameSeg{Text: part})
		}
		return &value.Path{Form: value.FormGet, Segments: segs, Literal: true}, nil
	})

	native(g, "to-str", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if s, ok := args[0].(value.String); ok {
			return s, nil
		}
		return value.String(args[0].Pformat()), nil
	})

	native(g, "join", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lst, ok := args[0].(*value.List)
		if !ok {
			return nil, slerr.TypeErrorf(token.NoPos, "join requires a list")
		}
		sep, _ := args[1].(value.String)
		parts := make([]string, len(lst.Elems))
		for i, e := range lst.Elems {
			if s, ok := e.(value.String); ok {
				parts[i] = string(s)
			} else {
				parts[i] = e.Pformat()
			}
		}
		return value.String(strings.Join(parts, string(sep))), nil
	})

	native(g, "split", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, ok := args[0].(value.String)
		sep, okSep := args[1].(value.String)
		if !ok || !okSep {
			return nil, slerr.TypeErrorf(token.NoPos, "split requires strings")
		}
		parts := strings.Split(string(s), string(sep))
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return value.NewList(out...), nil
	})

	native(g, "replace", 3, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, ok1 := args[0].(value.String)
		old, ok2 := args[1].(value.String)
		nw, ok3 := args[2].(value.String)
		if !ok1 || !ok2 || !ok3 {
			return nil, slerr.TypeErrorf(token.NoPos, "replace requires strings")
		}
		return value.String(strings.ReplaceAll(string(s), string(old), string(nw))), nil
	})

	native(g, "indent", 2, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, ok := args[0].(value.String)
		n, okN := args[1].(value.Int)
		if !ok || !okN {
			return nil, slerr.TypeErrorf(token.NoPos, "indent requires a string and an integer")
		}
		width, _ := n.Int64()
		pad := strings.Repeat(" ", int(width))
		lines := strings.Split(string(s), "\n")
		for i, l := range lines {
			if l != "" {
				lines[i] = pad + l
			}
		}
		return value.String(strings.Join(lines, "\n")), nil
	})
}

func fieldGet(v value.Value, key string) (value.Value, bool) {
	switch x := v.(type) {
	case *value.Scope:
		return x.Get(key)
	case *value.Dict:
		return x.Get(key)
	case value.HostObject:
		return x.Get(key)
	default:
		return nil, false
	}
}

func fieldKeys(v value.Value) ([]string, error) {
	switch x := v.(type) {
	case *value.Scope:
		return x.Keys(), nil
	case *value.Dict:
		return x.Keys(), nil
	default:
		return nil, slerr.TypeErrorf(token.NoPos, "keys/values requires a dict or scope, got %s", v.Kind())
	}
}

func naturalLess(a, b value.Value) bool {
	if x, ok := asDecimal(a); ok {
		if y, ok := asDecimal(b); ok {
			return x.Cmp(y) < 0
		}
	}
	if sa, ok := a.(value.String); ok {
		if sb, ok := b.(value.String); ok {
			return strings.Compare(string(sa), string(sb)) < 0
		}
	}
	return a.Pformat() < b.Pformat()
}

func shallowCopy(v value.Value) (value.Value, error) {
	switch x := v.(type) {
	case *value.List:
		return x.Copy(), nil
	case *value.Dict:
		out := value.NewDict()
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			out.Set(k, val)
		}
		return out, nil
	case *value.Scope:
		out := value.NewScope()
		for _, k := range x.Keys() {
			val, _ := x.OwnGet(k)
			out.OwnSet(k, val)
		}
		return out, nil
	default:
		return v, nil
	}
}

func deepClone(v value.Value, seen map[value.Value]value.Value) (value.Value, error) {
	if existing, ok := seen[v]; ok {
		return existing, nil
	}
	switch x := v.(type) {
	case *value.List:
		out := value.NewList()
		seen[v] = out
		out.Elems = make([]value.Value, len(x.Elems))
		for i, e := range x.Elems {
			c, err := deepClone(e, seen)
			if err != nil {
				return nil, err
			}
			out.Elems[i] = c
		}
		return out, nil
	case *value.Dict:
		out := value.NewDict()
		seen[v] = out
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			c, err := deepClone(val, seen)
			if err != nil {
				return nil, err
			}
			out.Set(k, c)
		}
		return out, nil
	case *value.Scope:
		out := value.NewScope()
		seen[v] = out
		for _, k := range x.Keys() {
			val, _ := x.OwnGet(k)
			c, err := deepClone(val, seen)
			if err != nil {
				return nil, err
			}
			out.OwnSet(k, c)
		}
		return out, nil
	default:
		return v, nil
	}
}
