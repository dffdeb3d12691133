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
	"go.fus-lang.org/fus"
)

func (l *Lexer) Done() bool {
	return l.token.Kind == T_DONE
}

// Got reports whether the current token is a name, operator, or group
// delimiter spelled exactly as text.
func (l *Lexer) Got(text string) bool {
	switch l.token.Kind {
	case T_NAME, T_OP, T_OPEN, T_CLOSE:
		return l.token.Text == text
	}
	return false
}

func (l *Lexer) GotName() bool {
	return l.token.Kind == T_NAME
}

func (l *Lexer) GotOp() bool {
	return l.token.Kind == T_OP
}

func (l *Lexer) GotStr() bool {
	return l.token.Kind == T_STR || l.token.Kind == T_BLOCKSTR
}

func (l *Lexer) GotInt() bool {
	return l.token.Kind == T_INT
}

func (l *Lexer) GotOpen() bool {
	return l.token.Kind == T_OPEN
}

func (l *Lexer) GotClose() bool {
	return l.token.Kind == T_CLOSE
}

func (l *Lexer) Get(text string) error {
	if !l.Got(text) {
		return errExpectedText(text, &l.token)
	}
	return l.Next()
}

func (l *Lexer) GetName() (fus.Sym, error) {
	if !l.GotName() {
		return fus.Sym{}, errExpectedName(&l.token)
	}
	return l.take(l.token.Text)
}

func (l *Lexer) GetOp() (fus.Sym, error) {
	if !l.GotOp() {
		return fus.Sym{}, errExpectedOp(&l.token)
	}
	return l.take(l.token.Text)
}

// GetStr consumes a T_STR or T_BLOCKSTR and returns its unescaped value.
func (l *Lexer) GetStr() (fus.Sym, error) {
	if !l.GotStr() {
		return fus.Sym{}, errExpectedStr(&l.token)
	}
	return l.take(l.token.str)
}

// GetString consumes a name, operator or string.
func (l *Lexer) GetString() (fus.Sym, error) {
	switch l.token.Kind {
	case T_STR, T_BLOCKSTR:
		return l.take(l.token.str)
	case T_NAME, T_OP:
		return l.take(l.token.Text)
	}
	return fus.Sym{}, errExpectedString(&l.token)
}

func (l *Lexer) GetInt() (int, error) {
	if !l.GotInt() {
		return 0, errExpectedInt(&l.token)
	}
	num := l.token.num
	return num, l.Next()
}

func (l *Lexer) GetOpen() error {
	if !l.GotOpen() {
		return errExpectedOpen(&l.token)
	}
	return l.Next()
}

func (l *Lexer) GetClose() error {
	if !l.GotClose() {
		return errExpectedClose(&l.token)
	}
	return l.Next()
}

func (l *Lexer) take(s string) (fus.Sym, error) {
	sym := l.table.Intern(s)
	return sym, l.Next()
}

// Unexpected returns an error describing the current token. If expected
// is empty the error only names the token.
func (l *Lexer) Unexpected(expected string) error {
	return errUnexpected(expected, &l.token)
}

// ParseSilent skips tokens up to (but not including) the close matching an
// already-consumed open.
func (l *Lexer) ParseSilent() error {
	depth := 1
	for {
		switch {
		case l.GotOpen():
			depth++
		case l.GotClose():
			depth--
			if depth == 0 {
				return nil
			}
		case l.Done():
			return l.Unexpected("")
		}
		if err := l.Next(); err != nil {
			return err
		}
	}
}

// Strings interns every atom up to the end of the current group and
// returns them. The closing token is left unconsumed.
func (l *Lexer) Strings() ([]fus.Sym, error) {
	var out []fus.Sym
	for !l.Done() && !l.GotClose() {
		sym, err := l.GetString()
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}
