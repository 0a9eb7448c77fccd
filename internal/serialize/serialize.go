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

// Package serialize implements spec §6's content-type-driven (de)serialize
// contract: a Locator reads/writes raw bytes, and this package converts
// those bytes to and from a value.Value according to the extension or
// MIME type recorded alongside the locator (spec.md §6, SPEC_FULL.md §C.3).
// Extensions and MIME types each have their own table, and both map onto
// the same set of ContentTypes.
package serialize

import (
	"strings"

	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// ContentType names one of the codecs this package dispatches to.
type ContentType string

const (
	JSON ContentType = "json"
	YAML ContentType = "yaml"
	TOML ContentType = "toml"
	XML  ContentType = "xml"
	Raw  ContentType = "raw"
)

// extTable maps a lowercased file extension (including the leading dot)
// to its ContentType; anything absent from the table is Raw (spec §6:
// "anything else -> raw text passthrough").
var extTable = map[string]ContentType{
	".json": JSON,
	".yaml": YAML,
	".yml":  YAML,
	".toml": TOML,
	".xml":  XML,
}

// mimeTable maps a MIME type (without parameters) to its ContentType.
var mimeTable = map[string]ContentType{
	"application/json": JSON,
	"application/yaml":  YAML,
	"text/yaml":          YAML,
	"application/x-yaml": YAML,
	"application/toml":   TOML,
	"text/toml":          TOML,
	"application/xml":    XML,
	"text/xml":           XML,
}

// DetectByExtension resolves a locator path's extension to a ContentType,
// defaulting to Raw.
func DetectByExtension(path string) ContentType {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return Raw
	}
	ext := strings.ToLower(path[i:])
	if ct, ok := extTable[ext]; ok {
		return ct
	}
	return Raw
}

// DetectByMIME resolves a MIME content-type header value (parameters
// such as `; charset=utf-8` are ignored) to a ContentType, defaulting to
// Raw.
func DetectByMIME(contentType string) ContentType {
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	base = strings.ToLower(strings.TrimSpace(base))
	if ct, ok := mimeTable[base]; ok {
		return ct
	}
	return Raw
}

// Deserialize decodes raw bytes into a Value according to ct (spec §6:
// "file content is deserialized into a Value when read").
func Deserialize(ct ContentType, data []byte) (value.Value, error) {
	switch ct {
	case JSON:
		return deserializeJSON(data)
	case YAML:
		return deserializeYAML(data)
	case TOML:
		return deserializeTOML(data)
	case XML:
		return deserializeXML(data)
	default:
		return deserializeRaw(data)
	}
}

// Serialize encodes v into raw bytes according to ct (spec §6:
// "serialized from a Value when written").
func Serialize(ct ContentType, v value.Value) ([]byte, error) {
	switch ct {
	case JSON:
		return serializeJSON(v)
	case YAML:
		return serializeYAML(v)
	case TOML:
		return serializeTOML(v)
	case XML:
		return serializeXML(v)
	default:
		return serializeRaw(v)
	}
}

func typeErrorf(format string, args ...any) error {
	return slerr.TypeErrorf(token.NoPos, format, args...)
}
