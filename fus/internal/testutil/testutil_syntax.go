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
	"go.fus-lang.org/fus/syntax"
)

// maxTokens bounds DumpTokens so a lexer stuck before T_DONE fails the
// test instead of hanging it.
const maxTokens = 100000

// DumpTokens renders each token up to (not including) T_DONE as
// "KIND text", advancing the lexer to the end of its input.
func DumpTokens(l *syntax.Lexer) ([]string, error) {
	var out []string
	for ii := 0; !l.Done() && ii < maxTokens; ii++ {
		tok := l.Token()
		out = append(out, tok.Kind.String()+" "+tok.Text)
		if err := l.Next(); err != nil {
			return out, err
		}
	}
	return out, nil
}

// LexAll loads src into l and dumps its tokens.
func LexAll(l *syntax.Lexer, src string) ([]string, error) {
	if err := l.Load([]byte(src), "test.fus"); err != nil {
		return nil, err
	}
	return DumpTokens(l)
}
