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

package syntax

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"go.fus-lang.org/fus"
)

type TreeKind uint8

const (
	TREE_INT TreeKind = iota
	TREE_NAME
	TREE_OP
	TREE_STR
	TREE_ARR
)

func (k TreeKind) String() string {
	switch k {
	case TREE_INT:
		return "INT"
	case TREE_NAME:
		return "NAME"
	case TREE_OP:
		return "OP"
	case TREE_STR:
		return "STR"
	case TREE_ARR:
		return "ARR"
	default:
		return fmt.Sprintf("TreeKind(%d)", uint8(k))
	}
}

// TokenTree is a captured token stream: an atom, or an array of trees
// for each parenthesized (or colon-indented) group. Each node owns its
// children.
type TokenTree struct {
	Kind     TreeKind
	Int      int
	Sym      fus.Sym
	Children []*TokenTree
	Pos      Position
}

const treeExpected = "one of: " +
	"INT (e.g. 123, -10), " +
	"NAME (e.g. x, x2, hello_world, SomeName), " +
	"OP (e.g. +, --, =>), " +
	`STR (e.g. "hello world", "a \"quoted\" thing", "two\nlines"), ` +
	"ARR (e.g. (1 2 3))"

// ParseTokenTree consumes one tree starting at the lexer's current token.
func ParseTokenTree(l *Lexer) (*TokenTree, error) {
	tok := l.Token()
	tree := &TokenTree{Pos: tok.Pos}
	var err error
	switch tok.Kind {
	case T_OPEN:
		tree.Kind = TREE_ARR
		tree.Children = []*TokenTree{}
		if err := l.Next(); err != nil {
			return nil, err
		}
		for !l.Done() && !l.GotClose() {
			child, err := ParseTokenTree(l)
			if err != nil {
				return nil, err
			}
			tree.Children = append(tree.Children, child)
		}
		err = l.GetClose()
	case T_INT:
		tree.Kind = TREE_INT
		tree.Int, err = l.GetInt()
	case T_NAME:
		tree.Kind = TREE_NAME
		tree.Sym, err = l.GetName()
	case T_OP:
		tree.Kind = TREE_OP
		tree.Sym, err = l.GetOp()
	case T_STR, T_BLOCKSTR:
		tree.Kind = TREE_STR
		tree.Sym, err = l.GetStr()
	default:
		return nil, l.Unexpected(treeExpected)
	}
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseTokenTrees consumes trees until the end of input.
func ParseTokenTrees(l *Lexer) ([]*TokenTree, error) {
	var trees []*TokenTree
	for !l.Done() {
		tree, err := ParseTokenTree(l)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// Equal compares trees structurally, ignoring positions.
func (t *TokenTree) Equal(other *TokenTree) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TREE_INT:
		return t.Int == other.Int
	case TREE_ARR:
		if len(t.Children) != len(other.Children) {
			return false
		}
		for ii, child := range t.Children {
			if !child.Equal(other.Children[ii]) {
				return false
			}
		}
		return true
	default:
		return t.Sym == other.Sym
	}
}

// UnparseTo writes the tree as source text. A negative depth writes arrays
// inline with parentheses; otherwise arrays are written with ':' and one
// child per line, indented four spaces per level below depth.
func (t *TokenTree) UnparseTo(buf *bytes.Buffer, depth int) {
	switch t.Kind {
	case TREE_INT:
		buf.WriteString(strconv.Itoa(t.Int))
	case TREE_NAME, TREE_OP:
		buf.WriteString(t.Sym.String())
	case TREE_STR:
		buf.WriteString(QuoteStr(t.Sym.String()))
	case TREE_ARR:
		if depth < 0 {
			buf.WriteByte('(')
		} else {
			buf.WriteByte(':')
		}
		for ii, child := range t.Children {
			childDepth := depth
			if depth < 0 {
				if ii > 0 {
					buf.WriteByte(' ')
				}
			} else {
				childDepth++
				buf.WriteByte('\n')
				buf.WriteString(strings.Repeat("    ", childDepth))
			}
			child.UnparseTo(buf, childDepth)
		}
		if depth < 0 {
			buf.WriteByte(')')
		}
	default:
		panic(fmt.Sprintf("unreachable: %v", t.Kind))
	}
}

// Unparse writes each tree on its own line.
func Unparse(trees []*TokenTree, inline bool) string {
	depth := 0
	if inline {
		depth = -1
	}
	var buf bytes.Buffer
	for _, tree := range trees {
		tree.UnparseTo(&buf, depth)
		buf.WriteByte('\n')
	}
	return buf.String()
}

func (t *TokenTree) token(filename string) Token {
	pos := t.Pos
	if pos.IsZero() {
		pos.Filename = filename
	}
	switch t.Kind {
	case TREE_INT:
		return Token{Kind: T_INT, Text: strconv.Itoa(t.Int), Pos: pos, num: t.Int}
	case TREE_NAME:
		return Token{Kind: T_NAME, Text: t.Sym.String(), Pos: pos}
	case TREE_OP:
		return Token{Kind: T_OP, Text: t.Sym.String(), Pos: pos}
	case TREE_STR:
		s := t.Sym.String()
		return Token{Kind: T_STR, Text: QuoteStr(s), Pos: pos, str: s}
	default:
		panic(fmt.Sprintf("unreachable: %v", t.Kind))
	}
}

type replayFrame struct {
	trees []*TokenTree
	next  int
	pos   Position
}

// replay walks token trees without recursion. The bottom frame holds the
// top-level trees and produces no delimiters of its own.
type replay struct {
	frames []replayFrame
}

// LoadTree replays tree as if it were source text.
func (l *Lexer) LoadTree(tree *TokenTree, filename string) error {
	return l.LoadTrees([]*TokenTree{tree}, filename)
}

// LoadTrees replays each of trees in order, as if they were source text.
func (l *Lexer) LoadTrees(trees []*TokenTree, filename string) error {
	l.Unload()
	l.filename = filename
	l.loaded = true
	l.replay = &replay{
		frames: []replayFrame{{trees: trees}},
	}
	return l.Next()
}

func (r *replay) next(l *Lexer) {
	for len(r.frames) > 0 {
		top := &r.frames[len(r.frames)-1]
		if top.next < len(top.trees) {
			tree := top.trees[top.next]
			top.next++
			if tree.Kind != TREE_ARR {
				l.token = tree.token(l.filename)
				return
			}
			r.frames = append(r.frames, replayFrame{
				trees: tree.Children,
				pos:   tree.Pos,
			})
			l.token = Token{Kind: T_OPEN, Text: "(", Pos: tree.Pos}
			return
		}
		closePos := top.pos
		r.frames = r.frames[:len(r.frames)-1]
		if len(r.frames) > 0 {
			l.token = Token{Kind: T_CLOSE, Text: ")", Pos: closePos}
			return
		}
	}
	l.token = Token{Kind: T_DONE, Pos: Position{Filename: l.filename}}
}
