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

package value

import "github.com/chrsbats/slip/slip/ast"

// Code is the runtime Value wrapper around a semantic-AST Code node:
// "Code is an unevaluated value; it carries an expanded marker once
// definition-time template expansion has run" (spec §3).
type Code struct {
	Body    *ast.Code
	Closure *Scope // lexical scope the Code was produced in, for template expansion
}

func (*Code) Kind() Kind { return KindCode }

func (c *Code) Pformat() string { return "code[...]" }

// Expanded reports whether this Code's template expansion has already
// run (spec §4.3: "Marker _expanded prevents re-expansion on re-run").
func (c *Code) Expanded() bool { return c.Body != nil && c.Body.Expanded }
