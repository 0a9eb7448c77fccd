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
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/chrsbats/slip/internal/pathresolver"
	"github.com/chrsbats/slip/internal/serialize"
	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// HTTPAdapter implements pathresolver.Locator for http(s) URLs (spec
// §6). Get issues a GET, Set a PUT, Post a POST, Delete a DELETE;
// SPEC_FULL.md §C.2's response-mode defaulting ("none" unless
// meta.response-mode says otherwise, case-insensitive, an unrecognized
// value is a TypeError) governs what Post returns.
type HTTPAdapter struct {
	Client *http.Client
}

// NewHTTPAdapter builds an http(s) adapter using client, or
// http.DefaultClient when nil.
func NewHTTPAdapter(client *http.Client) *HTTPAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAdapter{Client: client}
}

func (a *HTTPAdapter) do(ctx context.Context, method, url string, body []byte, headers pathresolver.Meta) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, slerr.RuntimeErrorf(token.NoPos, "building request for %s: %s", url, err)
	}
	if h, ok := headers["headers"]; ok {
		if hd, ok := h.(*value.Dict); ok {
			for _, k := range hd.Keys() {
				v, _ := hd.Get(k)
				if s, ok := v.(value.String); ok {
					req.Header.Set(k, string(s))
				}
			}
		}
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, slerr.RuntimeErrorf(token.NoPos, "%s %s: %s", method, url, err)
	}
	return resp, nil
}

func (a *HTTPAdapter) Get(ctx context.Context, url string, meta pathresolver.Meta) (value.Value, error) {
	resp, err := a.do(ctx, http.MethodGet, url, nil, meta)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, slerr.RuntimeErrorf(token.NoPos, "reading response from %s: %s", url, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, slerr.PathNotFound(token.NoPos, url)
	}
	return serialize.Deserialize(httpContentType(resp.Header.Get("Content-Type"), url, meta), data)
}

func (a *HTTPAdapter) Set(ctx context.Context, url string, v value.Value, meta pathresolver.Meta) error {
	ct := httpContentType("", url, meta)
	data, err := serialize.Serialize(ct, v)
	if err != nil {
		return err
	}
	resp, err := a.do(ctx, http.MethodPut, url, data, meta)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (a *HTTPAdapter) Post(ctx context.Context, url string, v value.Value, meta pathresolver.Meta) (value.Value, error) {
	ct := httpContentType("", url, meta)
	data, err := serialize.Serialize(ct, v)
	if err != nil {
		return nil, err
	}
	resp, err := a.do(ctx, http.MethodPost, url, data, meta)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, slerr.RuntimeErrorf(token.NoPos, "reading response from %s: %s", url, err)
	}

	mode, err := responseMode(meta)
	if err != nil {
		return nil, err
	}
	switch mode {
	case "none":
		return value.None, nil
	case "lite":
		return value.NewInt(int64(resp.StatusCode)), nil
	case "full":
		d := value.NewDict()
		d.Set("status", value.NewInt(int64(resp.StatusCode)))
		headers := value.NewDict()
		for k := range resp.Header {
			headers.Set(k, value.String(resp.Header.Get(k)))
		}
		d.Set("headers", headers)
		parsed, err := serialize.Deserialize(httpContentType(resp.Header.Get("Content-Type"), url, meta), body)
		if err != nil {
			return nil, err
		}
		d.Set("body", parsed)
		return d, nil
	default:
		return nil, slerr.TypeErrorf(token.NoPos, "unrecognized response-mode %q", mode)
	}
}

func (a *HTTPAdapter) Delete(ctx context.Context, url string, meta pathresolver.Meta) error {
	resp, err := a.do(ctx, http.MethodDelete, url, nil, meta)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return slerr.PathNotFound(token.NoPos, url)
	}
	return nil
}

// responseMode implements SPEC_FULL.md §C.2: meta.response-mode defaults
// to "none"; an explicit value is matched case-insensitively against
// none/lite/full, anything else is a TypeError.
func responseMode(meta pathresolver.Meta) (string, error) {
	if meta == nil {
		return "none", nil
	}
	v, ok := meta["response-mode"]
	if !ok {
		return "none", nil
	}
	s, ok := v.(value.String)
	if !ok {
		return "", slerr.TypeErrorf(token.NoPos, "response-mode must be a string")
	}
	mode := strings.ToLower(string(s))
	switch mode {
	case "none", "lite", "full":
		return mode, nil
	default:
		return "", slerr.TypeErrorf(token.NoPos, "unrecognized response-mode %q", string(s))
	}
}

func httpContentType(headerValue, url string, meta pathresolver.Meta) serialize.ContentType {
	if meta != nil {
		if v, ok := meta["content-type"]; ok {
			if s, ok := v.(value.String); ok {
				return serialize.DetectByMIME(string(s))
			}
		}
	}
	if headerValue != "" {
		return serialize.DetectByMIME(headerValue)
	}
	return serialize.DetectByExtension(url)
}
