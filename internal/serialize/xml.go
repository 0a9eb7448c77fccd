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
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/chrsbats/slip/internal/value"
)

// XML has no JSON/YAML-style generic object shape (repeated sibling
// elements and attributes don't fit a plain map), so unlike the other
// codecs this one builds a Dict with a fixed `{tag, attrs, children,
// text}` shape per element rather than routing through toGeneric/
// fromGeneric - grounded on the same "element as node with children"
// idea every minimal Go XML-to-map library (e.g. clbanning/mxj, not in
// the pack) uses, expressed here directly on encoding/xml's token
// stream instead of a third-party dependency for it.
func deserializeXML(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return value.None, nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, typeErrorf("invalid xml: %s", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeXMLElement(dec, start)
		}
	}
}

func decodeXMLElement(dec *xml.Decoder, start xml.StartElement) (value.Value, error) {
	node := value.NewDict()
	node.Set("tag", value.String(start.Name.Local))

	attrs := value.NewDict()
	for _, a := range start.Attr {
		attrs.Set(a.Name.Local, value.String(a.Value))
	}
	node.Set("attrs", attrs)

	var children []value.Value
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, typeErrorf("invalid xml: %s", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeXMLElement(dec, t)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			node.Set("text", value.String(strings.TrimSpace(text.String())))
			node.Set("children", value.NewList(children...))
			return node, nil
		}
	}
}

// serializeXML requires the `{tag, attrs, children, text}` Dict shape
// deserializeXML produces (or compatible), keeping the codec a faithful
// round-trip rather than inventing a second object-to-XML mapping.
func serializeXML(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeXMLElement(enc, v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXMLElement(enc *xml.Encoder, v value.Value) error {
	d, ok := v.(*value.Dict)
	if !ok {
		return typeErrorf("xml requires a {tag, attrs, children, text} dict node, got %s", v.Kind())
	}
	tagV, _ := d.Get("tag")
	tag, ok := tagV.(value.String)
	if !ok {
		return typeErrorf("xml node is missing a string \"tag\" field")
	}

	start := xml.StartElement{Name: xml.Name{Local: string(tag)}}
	if attrsV, ok := d.Get("attrs"); ok {
		if attrs, ok := attrsV.(*value.Dict); ok {
			for _, k := range attrs.Keys() {
				av, _ := attrs.Get(k)
				start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: stringOfValue(av)})
			}
		}
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if childrenV, ok := d.Get("children"); ok {
		if children, ok := childrenV.(*value.List); ok {
			for _, c := range children.Elems {
				if err := encodeXMLElement(enc, c); err != nil {
					return err
				}
			}
		}
	}
	if textV, ok := d.Get("text"); ok {
		if s := stringOfValue(textV); s != "" {
			if err := enc.EncodeToken(xml.CharData(s)); err != nil {
				return err
			}
		}
	}

	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func stringOfValue(v value.Value) string {
	switch x := v.(type) {
	case value.String:
		return string(x)
	case value.IString:
		return string(x)
	default:
		if v == nil {
			return ""
		}
		return v.Pformat()
	}
}
