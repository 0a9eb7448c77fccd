// Copyright 2019 CUE Authors
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

package ast

import (
	"unicode"
	"unicode/utf8"
)

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch >= utf8.RuneSelf && unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9' || ch >= utf8.RuneSelf && unicode.IsDigit(ch)
}

// IsValidIdent reports whether str is a valid SLIP Name segment: it must
// start with a letter, underscore, or '$', and PascalCase scope names are
// distinguished from lowercase ones by the prune heuristic (spec §4.2,
// Open Questions) rather than by any lexical rule here.
func IsValidIdent(ident string) bool {
	if ident == "" {
		return false
	}
	for i, r := range ident {
		if isLetter(r) || r == '_' || r == '$' {
			continue
		}
		if i > 0 && (isDigit(r) || r == '-' || r == '?' || r == '!') {
			continue
		}
		return false
	}
	return true
}

// IsPascalCase reports whether name begins with an uppercase letter - the
// heuristic spec §4.2 uses to decide whether a binding is scaffolding
// (a type/prototype name) rather than a user variable, for the purposes
// of cascade-pruning on delete.
func IsPascalCase(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
