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

import "github.com/chrsbats/slip/internal/value"

// deserializeRaw passes unrecognized content straight through as a
// String (spec §6: "anything else -> raw text passthrough").
func deserializeRaw(data []byte) (value.Value, error) {
	return value.String(data), nil
}

func serializeRaw(v value.Value) ([]byte, error) {
	switch x := v.(type) {
	case value.String:
		return []byte(x), nil
	case value.IString:
		return []byte(x), nil
	case value.Bytes:
		return []byte(x), nil
	default:
		return []byte(v.Pformat()), nil
	}
}
