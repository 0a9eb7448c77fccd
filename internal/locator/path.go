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

// Package locator implements spec §6's file://, fs://, and http(s)
// Locator backends behind pathresolver.Locator.
package locator

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath implements SPEC_FULL.md §C.1's bare/relative/absolute/
// home-tilde resolution order: an absolute tail is used as-is (unless
// virtualRoot, in which case it is joined under base instead - fs://'s
// "leading / is relative to a virtual root, not the OS filesystem
// root"); a `~` tail expands against homeDir; everything else (`./`,
// `../`, or a bare name) joins against base.
func resolvePath(tail, base, homeDir string, virtualRoot bool) string {
	switch {
	case strings.HasPrefix(tail, "~"):
		rest := strings.TrimPrefix(tail, "~")
		rest = strings.TrimPrefix(rest, string(filepath.Separator))
		return filepath.Join(homeDir, rest)
	case filepath.IsAbs(tail):
		if virtualRoot {
			return filepath.Join(base, tail)
		}
		return tail
	default:
		return filepath.Join(base, tail)
	}
}

// stripScheme removes a locator's `scheme://` prefix, leaving the
// path/host tail the scheme-specific adapter resolves.
func stripScheme(locator, scheme string) string {
	return strings.TrimPrefix(locator, scheme+"://")
}

func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
