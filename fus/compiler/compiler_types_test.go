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

package compiler_test

import (
	"testing"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/compiler"
	"go.fus-lang.org/fus/internal/testutil"
)

func TestTypeTagPredicates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tag                                compiler.TypeTag
		inplace, weakref, pointer, cleanup bool
	}{
		{compiler.TAG_UNDEFINED, false, false, false, false},
		{compiler.TAG_VOID, false, false, false, false},
		{compiler.TAG_ANY, false, false, false, true},
		{compiler.TAG_INT, false, false, false, false},
		{compiler.TAG_STRING, false, false, false, false},
		{compiler.TAG_ARRAY, false, true, true, true},
		{compiler.TAG_STRUCT, true, true, true, true},
		{compiler.TAG_UNION, true, true, true, true},
		{compiler.TAG_ALIAS, false, false, false, false},
		{compiler.TAG_FUNC, false, false, false, false},
		{compiler.TAG_EXTERN, true, true, true, false},
	}
	for _, test := range tests {
		t.Run(test.tag.String(), func(t *testing.T) {
			testutil.ExpectEq(t, test.inplace, test.tag.SupportsInplace())
			testutil.ExpectEq(t, test.weakref, test.tag.SupportsWeakref())
			testutil.ExpectEq(t, test.pointer, test.tag.IsPointer())
			testutil.ExpectEq(t, test.cleanup, test.tag.HasCleanup())
		})
	}
}

func TestTypeTagStrings(t *testing.T) {
	t.Parallel()
	testutil.ExpectEq(t, "undefined", compiler.TAG_UNDEFINED.String())
	testutil.ExpectEq(t, "byte", compiler.TAG_BYTE.String())
	testutil.ExpectEq(t, "extern", compiler.TAG_EXTERN.String())
	testutil.ExpectEq(t, "TypeTag(99)", compiler.TypeTag(99).String())
}

func TestUnalias(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	defs := newDefs(table, "a", "b", "c")
	aliasTo(defs[0], defs[1])
	aliasTo(defs[1], defs[2])
	defs[2].Type = compiler.Type{Tag: compiler.TAG_STRUCT, Def: defs[2]}

	testutil.ExpectTrue(t, defs[0].Unalias() == defs[2])
	testutil.ExpectEq(t, compiler.TAG_STRUCT, defs[0].Type.Unalias().Tag)
	testutil.ExpectTrue(t, defs[0].Type.HasCleanup())

	// a circular chain stops instead of looping
	aliasTo(defs[2], defs[0])
	testutil.ExpectEq(t, compiler.TAG_ALIAS, defs[0].Type.Unalias().Tag)
	testutil.ExpectTrue(t, defs[0].Unalias() == defs[2])
}

func TestTypeRefPredicates(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	defs := newDefs(table, "s", "ext")
	defs[0].Type = compiler.Type{Tag: compiler.TAG_STRUCT, Def: defs[0]}
	defs[1].IsExtern = true

	toStruct := compiler.Type{Tag: compiler.TAG_ALIAS, Def: defs[0]}
	toExtern := compiler.Type{Tag: compiler.TAG_ALIAS, Def: defs[1]}

	tests := []struct {
		name     string
		ref      compiler.TypeRef
		embedded bool
		owned    bool
	}{
		{"int", compiler.TypeRef{Type: compiler.Type{Tag: compiler.TAG_INT}}, true, false},
		{"any", compiler.TypeRef{Type: compiler.Type{Tag: compiler.TAG_ANY}}, true, true},
		{"struct", compiler.TypeRef{Type: toStruct}, false, true},
		{"inplace struct", compiler.TypeRef{Type: toStruct, IsInplace: true}, true, true},
		{"weakref struct", compiler.TypeRef{Type: toStruct, IsWeakref: true}, false, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			testutil.ExpectEq(t, test.embedded, test.ref.Embedded())
			testutil.ExpectEq(t, test.owned, test.ref.Owned())
		})
	}

	testutil.ExpectTrue(t, toStruct.SupportsWeakref())
	testutil.ExpectTrue(t, toExtern.SupportsWeakref())
	testutil.ExpectFalse(t, (&compiler.Type{Tag: compiler.TAG_INT}).SupportsWeakref())
}

func TestWeakrefValidation(t *testing.T) {
	t.Parallel()
	mustCompile(t, "from ext: handle\n"+
		"typedef h: struct: (x (weakref @handle))\n")

	result := compiler.Compile(fus.NewStringTable(),
		[]byte("typedef h: struct: (x (weakref int))\n"), "test.fus")
	testutil.ExpectEq(t, 1, len(result.Errors))
	testutil.ExpectCatalogError(t, compilerErrors, "weakref_not_allowed", result.Errors[0])

	result = compiler.Compile(fus.NewStringTable(),
		[]byte("typedef p: struct: (x (int))\ntypedef h: struct: (x (inplace weakref @p))\n"), "test.fus")
	testutil.ExpectEq(t, 1, len(result.Errors))
	testutil.ExpectCatalogError(t, compilerErrors, "inplace_weakref", result.Errors[0])
}
