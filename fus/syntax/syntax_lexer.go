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
	"strconv"

	"go.fus-lang.org/fus"
)

// Lexer turns indentation-sensitive source text (or a replayed TokenTree)
// into a stream of tokens. It always holds one current token, which the
// Got* methods inspect and the Get* methods consume.
//
// A line ending in ':' opens a group which is closed by the first later
// line indented no deeper than the line holding the ':'.
type Lexer struct {
	table    *fus.StringTable
	filename string
	loaded   bool

	src string
	off int
	row int
	col int

	indent    int
	indents   []int
	returning int
	groupPos  Position

	replay *replay
	token  Token
}

func NewLexer(table *fus.StringTable) *Lexer {
	l := &Lexer{table: table}
	l.Unload()
	return l
}

// Load resets the lexer to the start of src. Any previous input is
// unloaded first.
func (l *Lexer) Load(src []byte, filename string) error {
	l.Unload()
	l.filename = filename
	l.src = string(src)
	l.loaded = true
	if err := l.getIndent(); err != nil {
		return err
	}
	return l.Next()
}

// Unload discards the current input and all position and indentation
// state.
func (l *Lexer) Unload() {
	l.filename = ""
	l.loaded = false
	l.src = ""
	l.off = 0
	l.row = 1
	l.col = 1
	l.indent = 0
	l.indents = l.indents[:0]
	l.returning = 0
	l.groupPos = Position{}
	l.replay = nil
	l.token = Token{Kind: T_DONE}
}

func (l *Lexer) Loaded() bool {
	return l.loaded
}

func (l *Lexer) Filename() string {
	return l.filename
}

func (l *Lexer) Token() *Token {
	return &l.token
}

// Info renders the position of the current token, for use as a
// diagnostic prefix.
func (l *Lexer) Info() string {
	return l.token.Pos.String() + ": "
}

func (l *Lexer) pos() Position {
	return Position{Filename: l.filename, Row: l.row, Col: l.col}
}

func (l *Lexer) eat() {
	if l.src[l.off] == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	l.off++
}

func (l *Lexer) peek(n int) byte {
	if l.off+n < len(l.src) {
		return l.src[l.off+n]
	}
	return 0
}

func (l *Lexer) atNewline() bool {
	c := l.peek(0)
	return c == '\n' || (c == '\r' && l.peek(1) == '\n')
}

func (l *Lexer) eatNewline() {
	if l.src[l.off] == '\r' {
		l.eat()
	}
	l.eat()
}

// getIndent consumes leading spaces. Blank lines and lines holding only a
// comment reset the count without producing an indent level.
func (l *Lexer) getIndent() error {
	indent := 0
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ':
			indent++
			l.eat()
		case l.atNewline():
			indent = 0
			l.eatNewline()
		case c == '#':
			indent = 0
			l.eatComment()
		case isSpace(c):
			return errIndentWhitespace(l.pos(), c)
		default:
			l.indent = indent
			return nil
		}
	}
	l.indent = 0
	return nil
}

func (l *Lexer) popIndent() error {
	if len(l.indents) == 0 {
		return errIndentStackEmpty(l.pos())
	}
	l.indents = l.indents[:len(l.indents)-1]
	return nil
}

func (l *Lexer) eatComment() {
	for l.off < len(l.src) && !l.atNewline() {
		l.eat()
	}
}

// Next advances to the next token. Once the input is exhausted the current
// token stays T_DONE however often Next is called.
func (l *Lexer) Next() error {
	if !l.loaded {
		return errNotLoaded()
	}
	if l.replay != nil {
		l.replay.next(l)
		return nil
	}

	for l.returning == 0 {
		if l.off >= len(l.src) || l.atNewline() {
			eof := l.off >= len(l.src)
			if !eof {
				l.eatNewline()
			}
			if err := l.getIndent(); err != nil {
				return err
			}
			l.groupPos = l.pos()
			for len(l.indents) > 0 && l.indent <= l.indents[len(l.indents)-1] {
				if err := l.popIndent(); err != nil {
					return err
				}
				l.returning--
			}
			if eof {
				l.token = Token{Kind: T_DONE, Pos: l.pos()}
				break
			}
			continue
		}

		c := l.src[l.off]
		start := l.pos()
		switch {
		case isSpace(c):
			for l.off < len(l.src) && isSpace(l.src[l.off]) && !l.atNewline() {
				l.eat()
			}
			continue
		case c == '#':
			l.eatComment()
			continue
		case c == ':':
			l.eat()
			l.returning++
			l.indents = append(l.indents, l.indent)
			l.groupPos = start
		case c == '(':
			l.eat()
			l.token = Token{Kind: T_OPEN, Text: "(", Pos: start}
		case c == ')':
			l.eat()
			l.token = Token{Kind: T_CLOSE, Text: ")", Pos: start}
		case c == '_' || isAlpha(c):
			l.lexName(start)
		case isDigit(c) || (c == '-' && isDigit(l.peek(1))):
			if err := l.lexInt(start); err != nil {
				return err
			}
		case c == '"':
			if err := l.lexStr(start); err != nil {
				return err
			}
		case c == ';' && l.peek(1) == ';':
			l.lexBlockStr(start)
		case isOpChar(c):
			l.lexOp(start)
		default:
			return errUnexpectedCharacter(start, c)
		}
		break
	}

	if l.returning > 0 {
		l.token = Token{Kind: T_OPEN, Text: "(", Pos: l.groupPos}
		l.returning--
	} else if l.returning < 0 {
		l.token = Token{Kind: T_CLOSE, Text: ")", Pos: l.groupPos}
		l.returning++
	}
	return nil
}

func (l *Lexer) lexName(start Position) {
	begin := l.off
	for l.off < len(l.src) {
		c := l.src[l.off]
		if c != '_' && !isAlpha(c) && !isDigit(c) {
			break
		}
		l.eat()
	}
	l.token = Token{Kind: T_NAME, Text: l.src[begin:l.off], Pos: start}
}

func (l *Lexer) lexInt(start Position) error {
	begin := l.off
	if l.src[l.off] == '-' {
		l.eat()
	}
	for l.off < len(l.src) && isDigit(l.src[l.off]) {
		l.eat()
	}
	text := l.src[begin:l.off]
	num, err := strconv.Atoi(text)
	if err != nil {
		return errIntLitOutOfRange(start, text)
	}
	l.token = Token{Kind: T_INT, Text: text, Pos: start, num: num}
	return nil
}

func (l *Lexer) lexStr(start Position) error {
	begin := l.off
	l.eat()
	for {
		if l.off >= len(l.src) {
			return errStrUnterminated(start)
		}
		c := l.src[l.off]
		if c == '\n' {
			return errStrContainsNewline(l.pos())
		}
		if c == '"' {
			l.eat()
			break
		}
		if c == '\\' {
			l.eat()
			if l.off >= len(l.src) {
				return errStrUnterminated(start)
			}
			if l.src[l.off] == '\n' {
				return errStrContainsNewline(l.pos())
			}
		}
		l.eat()
	}
	text := l.src[begin:l.off]
	l.token = Token{Kind: T_STR, Text: text, Pos: start, str: unquoteStr(text)}
	return nil
}

func (l *Lexer) lexBlockStr(start Position) {
	begin := l.off
	l.eat()
	l.eat()
	for l.off < len(l.src) && !l.atNewline() {
		l.eat()
	}
	text := l.src[begin:l.off]
	l.token = Token{Kind: T_BLOCKSTR, Text: text, Pos: start, str: text[2:]}
}

func (l *Lexer) lexOp(start Position) {
	begin := l.off
	for l.off < len(l.src) && isOpChar(l.src[l.off]) {
		l.eat()
	}
	l.token = Token{Kind: T_OP, Text: l.src[begin:l.off], Pos: start}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// isOpChar reports whether c may appear in an operator: any printable ASCII
// punctuation except grouping, names, strings and comments.
func isOpChar(c byte) bool {
	if c <= ' ' || c >= 0x7F || isAlpha(c) || isDigit(c) {
		return false
	}
	switch c {
	case '(', ')', ':', '_', '"', '#':
		return false
	}
	return true
}
