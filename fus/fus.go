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

// Package fus holds the pieces shared by the fus tokenizer and compiler.
package fus

import (
	"fmt"
	"io"
	"strings"
	"unique"
)

// Sym is an interned string. Two Syms are equal if and only if their
// contents are equal, so comparing them is a pointer comparison.
//
// The zero Sym is distinct from every interned string (including "").
type Sym struct {
	h unique.Handle[string]
}

func (s Sym) String() string {
	if s.IsZero() {
		return ""
	}
	return s.h.Value()
}

func (s Sym) IsZero() bool {
	return s == Sym{}
}

// StringTable hands out Syms and remembers the order in which distinct
// strings were first seen.
//
// A StringTable is not safe for concurrent use.
type StringTable struct {
	syms  []Sym
	index map[Sym]struct{}
}

func NewStringTable() *StringTable {
	return &StringTable{
		index: make(map[Sym]struct{}),
	}
}

func (t *StringTable) Intern(s string) Sym {
	sym := Sym{unique.Make(s)}
	if _, ok := t.index[sym]; !ok {
		t.index[sym] = struct{}{}
		t.syms = append(t.syms, sym)
	}
	return sym
}

// Lookup returns the Sym for s if s has been interned.
func (t *StringTable) Lookup(s string) (Sym, bool) {
	sym := Sym{unique.Make(s)}
	_, ok := t.index[sym]
	return sym, ok
}

func (t *StringTable) InternBytes(buf []byte) Sym {
	return t.Intern(string(buf))
}

// Join interns the concatenation of parts.
func (t *StringTable) Join(parts ...string) Sym {
	return t.Intern(strings.Join(parts, ""))
}

// Upper interns the ASCII upper-case form of sym.
func (t *StringTable) Upper(sym Sym) Sym {
	s := sym.String()
	buf := []byte(s)
	for ii, c := range buf {
		if 'a' <= c && c <= 'z' {
			buf[ii] = c - ('a' - 'A')
		}
	}
	return t.InternBytes(buf)
}

func (t *StringTable) Len() int {
	return len(t.syms)
}

func (t *StringTable) Syms() []Sym {
	return t.syms
}

// DumpTo writes one line per interned string, in first-seen order.
func (t *StringTable) DumpTo(w io.Writer) error {
	for ii, sym := range t.syms {
		if _, err := fmt.Fprintf(w, "%4d: %q\n", ii, sym.String()); err != nil {
			return err
		}
	}
	return nil
}
