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

package fus_test

import (
	"strings"
	"testing"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/internal/testutil"
)

func TestStringTable(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()

	a := table.Intern("point")
	b := table.InternBytes([]byte("point"))
	c := table.Join("po", "int")
	testutil.ExpectEq(t, a, b)
	testutil.ExpectEq(t, a, c)
	testutil.ExpectEq(t, 1, table.Len())

	d := table.Intern("line")
	testutil.ExpectFalse(t, a == d)
	testutil.ExpectEq(t, 2, table.Len())

	testutil.ExpectEq(t, "POINT_TAGS", table.Upper(table.Intern("point_tags")).String())
}

func TestSymZero(t *testing.T) {
	t.Parallel()
	var zero fus.Sym
	testutil.ExpectTrue(t, zero.IsZero())
	testutil.ExpectEq(t, "", zero.String())

	table := fus.NewStringTable()
	empty := table.Intern("")
	testutil.ExpectFalse(t, empty.IsZero())
	testutil.ExpectFalse(t, empty == zero)
}

func TestStringTableDump(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	table.Intern("b")
	table.Intern("a")
	table.Intern("b")

	var buf strings.Builder
	testutil.AssertNoError(t, table.DumpTo(&buf))
	testutil.ExpectNoDiff(t, "   0: \"b\"\n   1: \"a\"\n", buf.String())
}

func TestStringTableLookup(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	want := table.Intern("circle")

	got, ok := table.Lookup("circle")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, want, got)

	_, ok = table.Lookup("square")
	testutil.ExpectFalse(t, ok)
	testutil.ExpectEq(t, 1, table.Len())
}
