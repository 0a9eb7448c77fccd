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

package pathresolver

import (
	"context"

	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
)

// Post implements `PostPath: value-expr`, legal only over an http(s)
// locator (spec §4.3 item 1, §6).
func (r *Resolver) Post(ctx context.Context, p *value.Path, scope *value.Scope, rhs value.Value) (value.Value, error) {
	text, ok, err := r.locatorPrefix(p.Segments)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, slerr.NewfKind(slerr.KindTypeError, pathPos(p), "post is only legal over an http(s) locator")
	}
	scheme, _ := schemeOf(text)
	if scheme != "http" {
		return nil, slerr.NewfKind(slerr.KindTypeError, pathPos(p), "post is only legal over an http(s) locator, got %s://", scheme)
	}
	l, err := r.locatorFor(scheme, pathPos(p))
	if err != nil {
		return nil, err
	}
	meta, err := r.resolveMeta(scope, p)
	if err != nil {
		return nil, err
	}
	return l.Post(ctx, text, rhs, meta)
}

// derefAlias implements the §4.2 alias rule: "on a value that is itself a
// GetPath (alias), dereference once, with identity-equal self-alias
// treated as a PathLiteral to avoid infinite recursion." A value reached
// through the alias is returned as is, even when it is itself an alias.
func (r *Resolver) derefAlias(ctx context.Context, v value.Value, scope *value.Scope) (value.Value, error) {
	p, ok := v.(*value.Path)
	if !ok || p.Literal || p.Form != value.FormGet {
		return v, nil
	}
	next, err := r.rawGet(ctx, p, scope)
	if err != nil {
		return nil, err
	}
	if np, ok := next.(*value.Path); ok && np == p {
		// identity-equal self-alias: treat as a literal to stop recursion.
		return p, nil
	}
	return next, nil
}
