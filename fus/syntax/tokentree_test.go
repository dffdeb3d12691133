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

package syntax_test

import (
	"testing"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/internal/testutil"
	"go.fus-lang.org/fus/syntax"
)

const treeSource = "typedef point: struct: (x (int)) (y (int))\n" +
	"foo -3 \"a\\nb\" ;;blk\n" +
	"(() (()))\n"

func parseTrees(t *testing.T, lexer *syntax.Lexer, src string) []*syntax.TokenTree {
	t.Helper()
	testutil.AssertNoError(t, lexer.Load([]byte(src), "tree.fus"))
	trees, err := syntax.ParseTokenTrees(lexer)
	testutil.AssertNoError(t, err)
	return trees
}

func expectTreesEqual(t *testing.T, want, got []*syntax.TokenTree) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("Expected %d trees, got: %d", len(want), len(got))
	}
	for ii := range want {
		if !want[ii].Equal(got[ii]) {
			t.Errorf(
				"tree %d differs:\n%s\n%s",
				ii,
				syntax.Unparse(want[ii:ii+1], true),
				syntax.Unparse(got[ii:ii+1], true),
			)
		}
	}
}

func TestTokenTreeUnparseInline(t *testing.T) {
	t.Parallel()
	lexer := syntax.NewLexer(fus.NewStringTable())
	trees := parseTrees(t, lexer, treeSource)

	want := "typedef\n" +
		"point\n" +
		"(struct ((x (int)) (y (int))))\n" +
		"foo\n" +
		"-3\n" +
		"\"a\\nb\"\n" +
		"\"blk\"\n" +
		"(() (()))\n"
	testutil.ExpectNoDiff(t, want, syntax.Unparse(trees, true))
}

func TestTokenTreeUnparseIndented(t *testing.T) {
	t.Parallel()
	lexer := syntax.NewLexer(fus.NewStringTable())
	trees := parseTrees(t, lexer, "(a (b c) d)\n")

	want := ":\n" +
		"    a\n" +
		"    :\n" +
		"        b\n" +
		"        c\n" +
		"    d\n"
	testutil.ExpectNoDiff(t, want, syntax.Unparse(trees, false))
}

func TestTokenTreeRoundTrip(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	lexer := syntax.NewLexer(table)
	trees := parseTrees(t, lexer, treeSource)

	for _, inline := range []bool{true, false} {
		text := syntax.Unparse(trees, inline)
		reparsed := parseTrees(t, lexer, text)
		expectTreesEqual(t, trees, reparsed)
	}
}

func TestTokenTreeReplay(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	lexer := syntax.NewLexer(table)
	trees := parseTrees(t, lexer, treeSource)

	testutil.AssertNoError(t, lexer.LoadTrees(trees, "replay"))
	replayed, err := syntax.ParseTokenTrees(lexer)
	testutil.AssertNoError(t, err)
	expectTreesEqual(t, trees, replayed)

	for ii := 0; ii < 3; ii++ {
		testutil.AssertNoError(t, lexer.Next())
		testutil.ExpectTrue(t, lexer.Done())
	}
}

func TestTokenTreeReplayMatchesText(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	lexer := syntax.NewLexer(table)

	fromText, err := testutil.LexAll(lexer, sampleSource)
	testutil.AssertNoError(t, err)

	trees := parseTrees(t, lexer, sampleSource)
	testutil.AssertNoError(t, lexer.LoadTrees(trees, "replay"))
	fromTree, err := testutil.DumpTokens(lexer)
	testutil.AssertNoError(t, err)

	testutil.ExpectSliceEq(t, fromText, fromTree)
}

func TestTokenTreeReplaySingle(t *testing.T) {
	t.Parallel()
	table := fus.NewStringTable()
	lexer := syntax.NewLexer(table)
	trees := parseTrees(t, lexer, "(() (()) 7 \"q\")")

	testutil.AssertNoError(t, lexer.LoadTree(trees[0], "replay"))
	got, err := testutil.DumpTokens(lexer)
	testutil.AssertNoError(t, err)
	testutil.ExpectSliceEq(t, []string{
		"OPEN (",
		"OPEN (",
		"CLOSE )",
		"OPEN (",
		"OPEN (",
		"CLOSE )",
		"CLOSE )",
		"INT 7",
		`STR "q"`,
		"CLOSE )",
	}, got)
}

func TestTokenTreeErrors(t *testing.T) {
	t.Parallel()
	lexer := syntax.NewLexer(fus.NewStringTable())

	testutil.AssertNoError(t, lexer.Load([]byte("a )"), "tree.fus"))
	_, err := syntax.ParseTokenTrees(lexer)
	testutil.ExpectCatalogError(t, syntaxErrors, "unexpected", err)

	testutil.AssertNoError(t, lexer.Load([]byte("(a"), "tree.fus"))
	_, err = syntax.ParseTokenTrees(lexer)
	testutil.ExpectCatalogError(t, syntaxErrors, "expected_close", err)
}

func TestTreeKindStrings(t *testing.T) {
	t.Parallel()
	testutil.ExpectEq(t, "ARR", syntax.TREE_ARR.String())
	testutil.ExpectEq(t, "TreeKind(9)", syntax.TreeKind(9).String())
}
