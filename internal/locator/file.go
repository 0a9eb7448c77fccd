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

package locator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/chrsbats/slip/internal/pathresolver"
	"github.com/chrsbats/slip/internal/serialize"
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// FileAdapter implements pathresolver.Locator for `file://` (spec §6):
// reads/writes the real OS filesystem, resolving a bare/relative/
// home-tilde tail against BaseDir (SPEC_FULL.md §C.1).
type FileAdapter struct {
	BaseDir     string
	HomeDir     string // empty uses os.UserHomeDir
	scheme      string
	virtualRoot bool
}

// NewFileAdapter builds a file:// adapter rooted at baseDir.
func NewFileAdapter(baseDir string) *FileAdapter {
	return &FileAdapter{BaseDir: baseDir, scheme: "file"}
}

func (a *FileAdapter) home() string {
	if a.HomeDir != "" {
		return a.HomeDir
	}
	return defaultHomeDir()
}

func (a *FileAdapter) resolve(locatorURL string) string {
	tail := stripScheme(locatorURL, a.scheme)
	return resolvePath(tail, a.BaseDir, a.home(), a.virtualRoot)
}

func contentTypeFor(path string, meta pathresolver.Meta) serialize.ContentType {
	if meta != nil {
		if v, ok := meta["content-type"]; ok {
			if s, ok := v.(value.String); ok {
				return serialize.DetectByMIME(string(s))
			}
		}
	}
	return serialize.DetectByExtension(path)
}

func (a *FileAdapter) Get(ctx context.Context, locatorURL string, meta pathresolver.Meta) (value.Value, error) {
	path := a.resolve(locatorURL)
	info, err := os.Stat(path)
	if err != nil {
		return nil, slerr.PathNotFound(token.NoPos, locatorURL)
	}
	if info.IsDir() {
		return nil, slerr.IsADirectory(token.NoPos, locatorURL)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, slerr.RuntimeErrorf(token.NoPos, "reading %s: %s", locatorURL, err)
	}
	return serialize.Deserialize(contentTypeFor(path, meta), data)
}

func (a *FileAdapter) Set(ctx context.Context, locatorURL string, v value.Value, meta pathresolver.Meta) error {
	path := a.resolve(locatorURL)
	data, err := serialize.Serialize(contentTypeFor(path, meta), v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return slerr.RuntimeErrorf(token.NoPos, "writing %s: %s", locatorURL, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return slerr.RuntimeErrorf(token.NoPos, "writing %s: %s", locatorURL, err)
	}
	return nil
}

func (a *FileAdapter) Post(ctx context.Context, locatorURL string, v value.Value, meta pathresolver.Meta) (value.Value, error) {
	return nil, slerr.TypeErrorf(token.NoPos, "POST is not supported over a file:// locator")
}

func (a *FileAdapter) Delete(ctx context.Context, locatorURL string, meta pathresolver.Meta) error {
	path := a.resolve(locatorURL)
	info, err := os.Stat(path)
	if err != nil {
		return slerr.PathNotFound(token.NoPos, locatorURL)
	}
	if info.IsDir() {
		return slerr.IsADirectory(token.NoPos, locatorURL)
	}
	if err := os.Remove(path); err != nil {
		return slerr.RuntimeErrorf(token.NoPos, "deleting %s: %s", locatorURL, err)
	}
	return nil
}

// FSAdapter implements pathresolver.Locator for `fs://`: identical to
// FileAdapter except a leading `/` is relative to BaseDir (a virtual
// root) rather than the OS filesystem root (SPEC_FULL.md §C.1).
type FSAdapter struct {
	FileAdapter
}

// NewFSAdapter builds an fs:// adapter rooted at baseDir.
func NewFSAdapter(baseDir string) *FSAdapter {
	return &FSAdapter{FileAdapter{BaseDir: baseDir, scheme: "fs", virtualRoot: true}}
}
