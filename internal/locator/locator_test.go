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

package locator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/chrsbats/slip/internal/locator"
	"github.com/chrsbats/slip/internal/pathresolver"
	"github.com/chrsbats/slip/internal/value"
)

func TestFileAdapterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := locator.NewFileAdapter(dir)
	ctx := context.Background()

	err := a.Set(ctx, "file://config.json", value.String(`{"ok":true}`), pathresolver.Meta{})
	qt.Assert(t, qt.IsNil(err))

	got, err := a.Get(ctx, "file://config.json", pathresolver.Meta{})
	qt.Assert(t, qt.IsNil(err))
	s, ok := got.(value.String)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(string(s), `{"ok":true}`))
}

func TestFileAdapterMissingPathIsNotFound(t *testing.T) {
	dir := t.TempDir()
	a := locator.NewFileAdapter(dir)
	_, err := a.Get(context.Background(), "file://nope.json", pathresolver.Meta{})
	qt.Assert(t, qt.IsNotNil(err))
}

func TestFileAdapterAbsolutePathIsOSRootRelative(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "outside.txt")
	a := locator.NewFileAdapter(dir)
	// An absolute locator path under file:// bypasses BaseDir entirely.
	err := a.Set(context.Background(), "file://"+tmp, value.String("x"), pathresolver.Meta{})
	qt.Assert(t, qt.IsNil(err))
}

func TestFSAdapterLeadingSlashIsVirtualRoot(t *testing.T) {
	dir := t.TempDir()
	a := locator.NewFSAdapter(dir)
	ctx := context.Background()

	err := a.Set(ctx, "fs:///data.txt", value.String("hello"), pathresolver.Meta{})
	qt.Assert(t, qt.IsNil(err))

	got, err := a.Get(ctx, "fs:///data.txt", pathresolver.Meta{})
	qt.Assert(t, qt.IsNil(err))
	s, ok := got.(value.String)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(string(s), "hello"))
}

func TestHTTPAdapterResponseModes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	a := locator.NewHTTPAdapter(srv.Client())
	ctx := context.Background()

	none, err := a.Post(ctx, srv.URL, value.String("{}"), pathresolver.Meta{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(none, value.Value(value.None)))

	lite, err := a.Post(ctx, srv.URL, value.String("{}"), pathresolver.Meta{"response-mode": value.String("lite")})
	qt.Assert(t, qt.IsNil(err))
	liteInt, ok := lite.(value.Int)
	qt.Assert(t, qt.IsTrue(ok))
	n, _ := liteInt.Int64()
	qt.Assert(t, qt.Equals(n, int64(http.StatusCreated)))

	full, err := a.Post(ctx, srv.URL, value.String("{}"), pathresolver.Meta{"response-mode": value.String("FULL")})
	qt.Assert(t, qt.IsNil(err))
	fullDict, ok := full.(*value.Dict)
	qt.Assert(t, qt.IsTrue(ok))
	status, _ := fullDict.Get("status")
	statusInt, ok := status.(value.Int)
	qt.Assert(t, qt.IsTrue(ok))
	sn, _ := statusInt.Int64()
	qt.Assert(t, qt.Equals(sn, int64(http.StatusCreated)))
}

func TestHTTPAdapterUnrecognizedResponseModeIsTypeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := locator.NewHTTPAdapter(srv.Client())
	_, err := a.Post(context.Background(), srv.URL, value.String("{}"), pathresolver.Meta{"response-mode": value.String("bogus")})
	qt.Assert(t, qt.IsNotNil(err))
}

func TestHTTPAdapterNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := locator.NewHTTPAdapter(srv.Client())
	_, err := a.Get(context.Background(), srv.URL, pathresolver.Meta{})
	qt.Assert(t, qt.IsNotNil(err))
}
