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
	"fmt"
)

// Position is a 1-based row and column within a named input.
type Position struct {
	Filename string
	Row      int
	Col      int
}

func (p Position) IsZero() bool {
	return p == Position{}
}

func (p Position) String() string {
	return fmt.Sprintf("%s: row %d: col %d", p.Filename, p.Row, p.Col)
}

type TokenKind uint8

const (
	T_DONE TokenKind = iota
	T_INT
	T_NAME
	T_OP
	T_STR
	T_BLOCKSTR
	T_OPEN
	T_CLOSE
)

func (k TokenKind) String() string {
	switch k {
	case T_DONE:
		return "DONE"
	case T_INT:
		return "INT"
	case T_NAME:
		return "NAME"
	case T_OP:
		return "OP"
	case T_STR:
		return "STR"
	case T_BLOCKSTR:
		return "BLOCKSTR"
	case T_OPEN:
		return "OPEN"
	case T_CLOSE:
		return "CLOSE"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

// Token is the lexer's current token.
//
// Text is the token as written, including the quotes of a T_STR and the
// leading ";;" of a T_BLOCKSTR. Tokens synthesized from indentation have
// the text "(" or ")".
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position

	str string
	num int
}

// StrValue returns the unescaped contents of a T_STR or T_BLOCKSTR.
func (t *Token) StrValue() string {
	return t.str
}

// IntValue returns the value of a T_INT.
func (t *Token) IntValue() int {
	return t.num
}

// QuoteStr renders s as a T_STR token that unescapes back to s.
func QuoteStr(s string) string {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for ii := 0; ii < len(s); ii++ {
		switch c := s[ii]; c {
		case '\n':
			buf = append(buf, '\\', 'n')
		case '"', '\\':
			buf = append(buf, '\\', c)
		default:
			buf = append(buf, c)
		}
	}
	buf = append(buf, '"')
	return string(buf)
}

func unquoteStr(token string) string {
	inner := token[1 : len(token)-1]
	buf := make([]byte, 0, len(inner))
	for ii := 0; ii < len(inner); ii++ {
		c := inner[ii]
		if c == '\\' && ii+1 < len(inner) {
			ii++
			switch c = inner[ii]; c {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			}
		}
		buf = append(buf, c)
	}
	return string(buf)
}
