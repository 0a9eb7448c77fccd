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

	"github.com/chrsbats/slip/slip/ast"
)

// View is the opaque placeholder a filter query yields when applied to a
// non-list container (spec §4.2): unlike a List, a Dict/Scope/etc. has no
// inherent order for a predicate to select over, so the query is carried
// unmaterialized rather than rejected outright.
type View struct {
	Source Value
	Ops    []ast.Segment
}

func (*View) Kind() Kind { return KindView }

func (v *View) Pformat() string {
	return fmt.Sprintf("<View ops=%d on %s>", len(v.Ops), v.Source.Kind())
}
