// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"
)

// TestdataFS returns the shared fus/testdata directory.
func TestdataFS() (fs.FS, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("testutil: can't locate source directory")
	}
	dir := filepath.Join(filepath.Dir(file), "..", "..", "testdata")
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return os.DirFS(dir), nil
}

// ExpectedError is one entry of a diagnostics/*.json catalog.
type ExpectedError struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

// LoadErrorCatalog reads a diagnostics catalog mapping error names to their
// codes and messages. Keys starting with '_' reserve a code without naming
// an error.
func LoadErrorCatalog(testdata fs.FS, path string) (map[string]*ExpectedError, error) {
	type raw struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, path)
	if err != nil {
		return nil, err
	}

	var rawErrors map[string]raw
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&rawErrors); err != nil {
		return nil, err
	}

	out := make(map[string]*ExpectedError, len(rawErrors))
	codes := make(map[uint32]struct{}, len(rawErrors))
	for key, raw := range rawErrors {
		if raw.Code != 0 {
			if _, conflict := codes[raw.Code]; conflict {
				return nil, fmt.Errorf("duplicate error code %d", raw.Code)
			}
			codes[raw.Code] = struct{}{}
		}
		if key[0] == '_' {
			continue
		}
		if raw.Code == 0 {
			return nil, fmt.Errorf("error %q has no error code", key)
		}

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + raw.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = &ExpectedError{
			Key:     key,
			Code:    raw.Code,
			Message: raw.Message,
			Pattern: pattern,
		}
	}
	return out, nil
}

// CodedError is implemented by the error types of the syntax and compiler
// packages.
type CodedError interface {
	error
	Code() uint32
	Message() string
}

// ExpectCatalogError checks err against the catalog entry for name.
func ExpectCatalogError(
	t *testing.T,
	catalog map[string]*ExpectedError,
	name string,
	err error,
) {
	t.Helper()
	expect, ok := catalog[name]
	if !ok {
		t.Fatalf("unknown error name %q", name)
	}
	AssertError(t, err)
	coded, ok := err.(CodedError)
	if !ok {
		t.Fatalf("Expected coded error %q, got: %v", name, err)
	}
	ExpectEq(t, expect.Code, coded.Code())
	if expect.Pattern != nil {
		ExpectMatch(t, expect.Pattern, coded.Message())
	} else if expect.Message != "" {
		ExpectEq(t, expect.Message, coded.Message())
	}
}
