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

// Package pathresolver implements spec §4.2: path traversal, filter
// queries, vectorized writes, and scheme I/O dispatch. It is grounded on
// cue's own split between a path package and its runtime/io adapters:
// the resolver here decides *locally* whether a path targets the host
// (spec §9: "The resolver decides locally whether the first segment is a
// URL-like locator, before any traversal") and otherwise performs the
// prototype/mixin-aware traversal itself.
package pathresolver

import (
	"context"
	"strings"

	"github.com/chrsbats/slip/internal/value"
)

// Meta is the evaluated `#( ... )` option dict (spec §6): timeout,
// retries, backoff, headers, params, content-type, encoding, prune,
// response-mode.
type Meta map[string]value.Value

// Locator is the thin I/O contract spec §1/§6 places outside the core:
// file://, fs://, and http(s) backends all implement it. The core never
// talks to a filesystem or socket directly.
type Locator interface {
	Get(ctx context.Context, locator string, meta Meta) (value.Value, error)
	Set(ctx context.Context, locator string, v value.Value, meta Meta) error
	Post(ctx context.Context, locator string, v value.Value, meta Meta) (value.Value, error)
	Delete(ctx context.Context, locator string, meta Meta) error
}

// schemeOf reports the I/O scheme a first-segment text names, per
// spec §6: file://, fs://, and http(s) URLs (recognized when the segment
// text begins with http:// or https://).
func schemeOf(text string) (scheme string, ok bool) {
	switch {
	case strings.HasPrefix(text, "file://"):
		return "file", true
	case strings.HasPrefix(text, "fs://"):
		return "fs", true
	case strings.HasPrefix(text, "http://"), strings.HasPrefix(text, "https://"):
		return "http", true
	}
	return "", false
}
