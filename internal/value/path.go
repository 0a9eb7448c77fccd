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

import (
	"fmt"
	"strings"

	"github.com/chrsbats/slip/slip/ast"
)

// PathForm distinguishes the Path family members (spec §3).
type PathForm int

const (
	FormGet PathForm = iota
	FormSet
	FormDel
	FormPiped
	FormPost
	FormMultiSet
	FormLiteral
)

// Path is the runtime Value for any member of the Path family. Paths are
// value-equal and hashable by canonical textual form including meta
// (spec §3 invariant); Pformat is exactly that canonical form.
type Path struct {
	Form     PathForm
	Segments []ast.Segment
	Meta     *ast.Meta
	// MultiTargets holds the per-target segment lists for a MultiSetPath.
	MultiTargets [][]ast.Segment
	// Literal is true if this Path is wrapped as a PathLiteral (i.e. it
	// should not be auto-resolved when encountered as a value).
	Literal bool
}

func (*Path) Kind() Kind { return KindPath }

func (p *Path) Pformat() string {
	var b strings.Builder
	if p.Literal {
		b.WriteString("`")
	}
	switch p.Form {
	case FormSet:
		b.WriteString("")
	case FormDel:
		b.WriteString("~")
	case FormPiped:
		b.WriteString("|")
	case FormPost:
		b.WriteString(">")
	}
	for _, seg := range p.Segments {
		b.WriteString(segText(seg))
	}
	if p.Form == FormMultiSet {
		for i, tgt := range p.MultiTargets {
			if i > 0 {
				b.WriteString(",")
			}
			for _, seg := range tgt {
				b.WriteString(segText(seg))
			}
		}
	}
	if p.Meta != nil {
		b.WriteString("#(meta)")
	}
	if p.Literal {
		b.WriteString("`")
	}
	return b.String()
}

func segText(seg ast.Segment) string {
	switch s := seg.(type) {
	case *ast.NameSeg:
		if s.Dotted {
			return "." + s.Text
		}
		return "." + s.Text
	case *ast.IndexSeg:
		return "[#]"
	case *ast.SliceSeg:
		return "[:]"
	case *ast.GroupSeg:
		return "(#)"
	case *ast.FilterQuerySeg:
		return "[?]"
	case *ast.RootSeg:
		return "/"
	case *ast.ParentSeg:
		return ".."
	case *ast.PwdSeg:
		return "."
	default:
		return fmt.Sprintf("<%T>", seg)
	}
}

// IsSelfAlias reports whether p and other are the same *Path (pointer
// identity). The resolver's alias dereference makes its own pointer
// comparison and does not call it.
func (p *Path) IsSelfAlias(other *Path) bool {
	return p == other
}
