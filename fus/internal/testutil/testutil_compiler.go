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
	"encoding/json"
	"io/fs"
	"testing"

	"go.fus-lang.org/fus/syntax"
)

// ExpectedDiagnostic is one entry of a compiler test's expect_err.json.
type ExpectedDiagnostic struct {
	ExpectedError
	Row   int
	Col   int
	Trail []string
}

func LoadExpectedErrors(
	t *testing.T,
	catalog map[string]*ExpectedError,
	testdata fs.FS,
	jsonPath string,
) []*ExpectedDiagnostic {
	t.Helper()

	jsonData, err := fs.ReadFile(testdata, jsonPath)
	if err != nil {
		t.Fatal(err)
	}

	type expectedErrors struct {
		Errors []struct {
			Error   string   `json:"error"`
			Message string   `json:"message"`
			Pos     [2]int   `json:"pos"`
			Trail   []string `json:"trail"`
		} `json:"errors"`
	}

	var raw expectedErrors
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatal(err)
	}

	var out []*ExpectedDiagnostic
	for _, raw := range raw.Errors {
		expect, ok := catalog[raw.Error]
		if !ok {
			t.Fatalf("unknown error name %q", raw.Error)
		}
		diag := &ExpectedDiagnostic{
			ExpectedError: *expect,
			Row:           raw.Pos[0],
			Col:           raw.Pos[1],
			Trail:         raw.Trail,
		}
		if raw.Message != "" {
			diag.Message = raw.Message
			diag.Pattern = nil
		}
		out = append(out, diag)
	}
	return out
}

// ExpectDiagnostic checks err against an entry of expect_err.json.
func ExpectDiagnostic(t *testing.T, expect *ExpectedDiagnostic, err error) {
	t.Helper()
	coded, ok := err.(CodedError)
	if !ok {
		t.Fatalf("Expected coded error %q, got: %v", expect.Key, err)
	}
	ExpectEq(t, expect.Code, coded.Code())
	if expect.Pattern != nil {
		ExpectMatch(t, expect.Pattern, coded.Message())
	} else if expect.Message != "" {
		ExpectEq(t, expect.Message, coded.Message())
	}

	if expect.Row != 0 {
		positioned, ok := err.(interface{ Pos() syntax.Position })
		if !ok {
			t.Fatalf("error %q has no position", expect.Key)
		}
		ExpectEq(t, expect.Row, positioned.Pos().Row)
		ExpectEq(t, expect.Col, positioned.Pos().Col)
	}

	var trail []string
	if traced, ok := err.(interface{ Trail() []string }); ok {
		trail = traced.Trail()
	}
	ExpectSliceEq(t, expect.Trail, trail)
}
