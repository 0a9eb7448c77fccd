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
	"github.com/pelletier/go-toml/v2"

	"github.com/chrsbats/slip/internal/value"
)

func deserializeTOML(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return value.None, nil
	}
	var generic map[string]any
	if err := toml.Unmarshal(data, &generic); err != nil {
		return nil, typeErrorf("invalid toml: %s", err)
	}
	return fromGeneric(generic)
}

// serializeTOML requires a Dict/Scope value: TOML has no concept of a
// top-level scalar or array document.
func serializeTOML(v value.Value) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	if _, ok := generic.(map[string]any); !ok {
		return nil, typeErrorf("toml requires a dict or scope at the document root, got %s", v.Kind())
	}
	return toml.Marshal(generic)
}
