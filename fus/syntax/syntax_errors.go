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

type Error struct {
	code    uint32
	message string
	pos     Position
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	if err.pos.IsZero() {
		return fmt.Sprintf("E%d: %s", err.code, err.message)
	}
	return fmt.Sprintf("%s: E%d: %s", err.pos, err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Pos() Position {
	return err.pos
}

func errNotLoaded() error {
	return &Error{
		code:    1000,
		message: "Lexer has no input loaded",
	}
}

func errUnexpectedCharacter(pos Position, c byte) error {
	return &Error{
		code:    1001,
		message: fmt.Sprintf("Unexpected character U+%04X", c),
		pos:     pos,
	}
}

func errIndentWhitespace(pos Position, c byte) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("Indented with whitespace other than ' ' (#32): #%d", c),
		pos:     pos,
	}
}

func errStrContainsNewline(pos Position) error {
	return &Error{
		code:    1003,
		message: "Reached newline while parsing str",
		pos:     pos,
	}
}

func errStrUnterminated(pos Position) error {
	return &Error{
		code:    1004,
		message: "Reached end of text while parsing str",
		pos:     pos,
	}
}

func errIndentStackEmpty(pos Position) error {
	return &Error{
		code:    1005,
		message: "Tried to pop an indent, but indents stack is empty",
		pos:     pos,
	}
}

func errIntLitOutOfRange(pos Position, token string) error {
	return &Error{
		code:    1006,
		message: fmt.Sprintf("Integer literal %s is out of range", token),
		pos:     pos,
	}
}

func showToken(tok *Token) string {
	if tok.Kind == T_DONE {
		return "end of input"
	}
	return `"` + tok.Text + `"`
}

func errExpectedText(want string, tok *Token) error {
	return &Error{
		code:    2000,
		message: fmt.Sprintf("Expected %q, but got: %s", want, showToken(tok)),
		pos:     tok.Pos,
	}
}

func errExpectedName(tok *Token) error {
	return &Error{
		code:    2001,
		message: "Expected name, but got: " + showToken(tok),
		pos:     tok.Pos,
	}
}

func errExpectedOp(tok *Token) error {
	return &Error{
		code:    2002,
		message: "Expected op, but got: " + showToken(tok),
		pos:     tok.Pos,
	}
}

func errExpectedStr(tok *Token) error {
	return &Error{
		code:    2003,
		message: "Expected str, but got: " + showToken(tok),
		pos:     tok.Pos,
	}
}

func errExpectedString(tok *Token) error {
	return &Error{
		code:    2004,
		message: "Expected name or op or str, but got: " + showToken(tok),
		pos:     tok.Pos,
	}
}

func errExpectedInt(tok *Token) error {
	return &Error{
		code:    2005,
		message: "Expected int, but got: " + showToken(tok),
		pos:     tok.Pos,
	}
}

func errExpectedOpen(tok *Token) error {
	return &Error{
		code:    2006,
		message: "Expected '(', but got: " + showToken(tok),
		pos:     tok.Pos,
	}
}

func errExpectedClose(tok *Token) error {
	return &Error{
		code:    2007,
		message: "Expected ')', but got: " + showToken(tok),
		pos:     tok.Pos,
	}
}

func errUnexpected(expected string, tok *Token) error {
	message := "Unexpected: " + showToken(tok)
	if expected != "" {
		message = fmt.Sprintf("Expected %s, but got: %s", expected, showToken(tok))
	}
	return &Error{
		code:    2008,
		message: message,
		pos:     tok.Pos,
	}
}
