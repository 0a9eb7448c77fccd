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

package serialize

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/chrsbats/slip/internal/value"
)

// toGeneric converts v into the plain Go tree (map[string]any, []any,
// string, bool, nil, int64, float64) the json/yaml/toml encoders all
// accept, the shared intermediate form every structured codec in this
// package marshals from.
func toGeneric(v value.Value) (any, error) {
	switch x := v.(type) {
	case nil, value.Null:
		return nil, nil
	case value.Boolean:
		return bool(x), nil
	case value.Int:
		if n, ok := x.Int64(); ok {
			return n, nil
		}
		return x.V.String(), nil
	case value.Float:
		return x.Float64(), nil
	case value.String:
		return string(x), nil
	case value.IString:
		return string(x), nil
	case *value.List:
		out := make([]any, len(x.Elems))
		for i, e := range x.Elems {
			g, err := toGeneric(e)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case *value.Dict:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			g, err := toGeneric(val)
			if err != nil {
				return nil, err
			}
			out[k] = g
		}
		return out, nil
	case *value.Scope:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.OwnGet(k)
			g, err := toGeneric(val)
			if err != nil {
				return nil, err
			}
			out[k] = g
		}
		return out, nil
	default:
		return nil, typeErrorf("cannot serialize a value of kind %s", v.Kind())
	}
}

// fromGeneric converts a decoded json/yaml/toml tree back into a Value:
// objects become Dicts (spec §6 deserializes into plain data, not live
// Scopes - prototype chains only exist for in-language objects), arrays
// become Lists, scalars map onto their matching primitive Kind.
func fromGeneric(x any) (value.Value, error) {
	switch v := x.(type) {
	case nil:
		return value.None, nil
	case bool:
		return value.Boolean(v), nil
	case string:
		return value.String(v), nil
	case int:
		return value.NewInt(int64(v)), nil
	case int64:
		return value.NewInt(v), nil
	case float64:
		return value.NewFloat(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return value.NewInt(n), nil
		}
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return nil, typeErrorf("invalid json number %q", v.String())
		}
		return value.NewFloat(f), nil
	case []any:
		elems := make([]value.Value, len(v))
		for i, e := range v {
			ev, err := fromGeneric(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return value.NewList(elems...), nil
	case map[string]any:
		d := value.NewDict()
		for _, k := range sortedKeys(v) {
			ev, err := fromGeneric(v[k])
			if err != nil {
				return nil, err
			}
			d.Set(k, ev)
		}
		return d, nil
	case map[any]any:
		// yaml v2-style generic maps; yaml.v3 normally produces
		// map[string]any already, but a non-string-keyed mapping still
		// decodes this way and must be stringified to fit Dict's keys.
		d := value.NewDict()
		for k, val := range v {
			ev, err := fromGeneric(val)
			if err != nil {
				return nil, err
			}
			d.Set(fmt.Sprint(k), ev)
		}
		return d, nil
	default:
		return nil, typeErrorf("cannot deserialize a value of Go type %T", x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion order isn't recoverable from a decoded map[string]any, so
	// keys are sorted for deterministic output instead.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
