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
	"gopkg.in/yaml.v3"

	"github.com/chrsbats/slip/internal/value"
)

func deserializeYAML(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return value.None, nil
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, typeErrorf("invalid yaml: %s", err)
	}
	return fromGeneric(generic)
}

func serializeYAML(v value.Value) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}
