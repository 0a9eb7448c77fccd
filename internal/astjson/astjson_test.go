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

package astjson_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/chrsbats/slip/internal/astjson"
	"github.com/chrsbats/slip/slip/ast"
)

func TestDecodeBasicLit(t *testing.T) {
	doc := `{"exprs":[{"terms":[{"term":"lit","kind":"int","value":"42"}]}]}`
	code, err := astjson.Decode([]byte(doc))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(code.Exprs), 1))
	qt.Assert(t, qt.Equals(len(code.Exprs[0].Terms), 1))

	lit, ok := code.Exprs[0].Terms[0].(*ast.BasicLit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lit.Kind, ast.INT))
	qt.Assert(t, qt.Equals(lit.Value, "42"))
}

func TestDecodeGetPathWithNameSegments(t *testing.T) {
	doc := `{
		"exprs": [{
			"terms": [{
				"term": "getpath",
				"segments": [
					{"seg": "name", "text": "player"},
					{"seg": "name", "text": "hp"}
				]
			}]
		}]
	}`
	code, err := astjson.Decode([]byte(doc))
	qt.Assert(t, qt.IsNil(err))

	gp, ok := code.Exprs[0].Terms[0].(*ast.GetPath)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(gp.Segments), 2))

	first, ok := gp.Segments[0].(*ast.NameSeg)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(first.Text, "player"))

	second, ok := gp.Segments[1].(*ast.NameSeg)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(second.Text, "hp"))
}

func TestDecodeNestedCodeLit(t *testing.T) {
	doc := `{
		"exprs": [{
			"terms": [{
				"term": "code",
				"body": {
					"exprs": [{
						"terms": [{"term": "lit", "kind": "bool", "value": "true"}]
					}]
				}
			}]
		}]
	}`
	code, err := astjson.Decode([]byte(doc))
	qt.Assert(t, qt.IsNil(err))

	cl, ok := code.Exprs[0].Terms[0].(*ast.CodeLit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(cl.Body.Exprs), 1))

	lit, ok := cl.Body.Exprs[0].Terms[0].(*ast.BasicLit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lit.Kind, ast.BOOL))
}

func TestDecodeSigLitWithKeywords(t *testing.T) {
	doc := `{
		"exprs": [{
			"terms": [{
				"term": "sig",
				"positional": ["a"],
				"keywords": [{"name": "x", "annotation": {"terms": [{"term": "lit", "kind": "string", "value": "int"}]}}],
				"rest": "rest"
			}]
		}]
	}`
	code, err := astjson.Decode([]byte(doc))
	qt.Assert(t, qt.IsNil(err))

	sig, ok := code.Exprs[0].Terms[0].(*ast.SigLit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(sig.Positional, []string{"a"}))
	qt.Assert(t, qt.Equals(sig.Rest, "rest"))
	qt.Assert(t, qt.Equals(len(sig.Keywords), 1))
	qt.Assert(t, qt.Equals(sig.Keywords[0].Name, "x"))
}

func TestDecodeUnknownTermKindErrors(t *testing.T) {
	doc := `{"exprs":[{"terms":[{"term":"bogus"}]}]}`
	_, err := astjson.Decode([]byte(doc))
	qt.Assert(t, qt.IsNotNil(err))
}
