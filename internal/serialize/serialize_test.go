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

package serialize_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/chrsbats/slip/internal/serialize"
	"github.com/chrsbats/slip/internal/value"
)

func TestDetectByExtension(t *testing.T) {
	cases := []struct {
		path string
		want serialize.ContentType
	}{
		{"config.json", serialize.JSON},
		{"config.yaml", serialize.YAML},
		{"config.yml", serialize.YAML},
		{"config.toml", serialize.TOML},
		{"config.xml", serialize.XML},
		{"config.txt", serialize.Raw},
		{"noext", serialize.Raw},
	}
	for _, c := range cases {
		qt.Assert(t, qt.Equals(serialize.DetectByExtension(c.path), c.want))
	}
}

func TestDetectByMIME(t *testing.T) {
	cases := []struct {
		header string
		want   serialize.ContentType
	}{
		{"application/json", serialize.JSON},
		{"application/json; charset=utf-8", serialize.JSON},
		{"application/yaml", serialize.YAML},
		{"text/yaml", serialize.YAML},
		{"application/toml", serialize.TOML},
		{"application/xml", serialize.XML},
		{"text/plain", serialize.Raw},
	}
	for _, c := range cases {
		qt.Assert(t, qt.Equals(serialize.DetectByMIME(c.header), c.want))
	}
}

func TestJSONRoundTripPreservesIntVsFloat(t *testing.T) {
	d := value.NewDict()
	d.Set("count", value.NewInt(3))
	d.Set("ratio", value.NewFloat(3.0))

	data, err := serialize.Serialize(serialize.JSON, d)
	qt.Assert(t, qt.IsNil(err))

	got, err := serialize.Deserialize(serialize.JSON, data)
	qt.Assert(t, qt.IsNil(err))

	gotDict, ok := got.(*value.Dict)
	qt.Assert(t, qt.IsTrue(ok))

	count, _ := gotDict.Get("count")
	_, isInt := count.(value.Int)
	qt.Assert(t, qt.IsTrue(isInt))

	ratio, _ := gotDict.Get("ratio")
	_, isFloat := ratio.(value.Float)
	qt.Assert(t, qt.IsTrue(isFloat))
}

func TestYAMLRoundTrip(t *testing.T) {
	d := value.NewDict()
	d.Set("name", value.String("widget"))
	lst := value.NewList(value.NewInt(1), value.NewInt(2), value.NewInt(3))
	d.Set("tags", lst)

	data, err := serialize.Serialize(serialize.YAML, d)
	qt.Assert(t, qt.IsNil(err))

	got, err := serialize.Deserialize(serialize.YAML, data)
	qt.Assert(t, qt.IsNil(err))

	gotDict, ok := got.(*value.Dict)
	qt.Assert(t, qt.IsTrue(ok))
	name, _ := gotDict.Get("name")
	qt.Assert(t, qt.Equals(name, value.Value(value.String("widget"))))
}

func TestTOMLRequiresTopLevelMap(t *testing.T) {
	_, err := serialize.Serialize(serialize.TOML, value.NewInt(5))
	qt.Assert(t, qt.IsNotNil(err))
}

func TestXMLRoundTrip(t *testing.T) {
	node := value.NewDict()
	node.Set("tag", value.String("root"))
	attrs := value.NewDict()
	attrs.Set("id", value.String("1"))
	node.Set("attrs", attrs)
	node.Set("text", value.String("hello"))
	node.Set("children", value.NewList())

	data, err := serialize.Serialize(serialize.XML, node)
	qt.Assert(t, qt.IsNil(err))

	got, err := serialize.Deserialize(serialize.XML, data)
	qt.Assert(t, qt.IsNil(err))

	gotDict, ok := got.(*value.Dict)
	qt.Assert(t, qt.IsTrue(ok))
	tag, _ := gotDict.Get("tag")
	qt.Assert(t, qt.Equals(tag, value.Value(value.String("root"))))
	text, _ := gotDict.Get("text")
	qt.Assert(t, qt.Equals(text, value.Value(value.String("hello"))))
}

func TestRawPassthrough(t *testing.T) {
	got, err := serialize.Deserialize(serialize.Raw, []byte("plain text"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, value.Value(value.String("plain text"))))

	data, err := serialize.Serialize(serialize.Raw, value.String("plain text"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(data), "plain text"))
}
