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

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/syntax"
)

type cmdTokenTree struct {
	cmdIO
	inline bool
	stdin  io.Reader
}

func (*cmdTokenTree) help() *commandHelp {
	return &commandHelp{
		usage:   "tokentree [-i] FILE...",
		summary: "Parse files into token trees and print them back out",
	}
}

func (cmd *cmdTokenTree) flags(flags *pflag.FlagSet) {
	flags.BoolVarP(&cmd.inline, "inline", "i", false, "print each tree on one line")
}

func (cmd *cmdTokenTree) run(ctx context.Context, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(cmd.errOut(), "usage: fusc tokentree [-i] FILE...")
		return 1
	}

	lexer := syntax.NewLexer(fus.NewStringTable())
	for _, filename := range argv {
		src, err := cmd.readSource(filename)
		if err != nil {
			fmt.Fprintln(cmd.errOut(), err)
			return 1
		}
		if err := lexer.Load(src, filename); err != nil {
			fmt.Fprintln(cmd.errOut(), err)
			return 1
		}
		trees, err := syntax.ParseTokenTrees(lexer)
		if err != nil {
			fmt.Fprintln(cmd.errOut(), err)
			return 1
		}
		if _, err := io.WriteString(cmd.out(), syntax.Unparse(trees, cmd.inline)); err != nil {
			fmt.Fprintln(cmd.errOut(), err)
			return 1
		}
	}
	return 0
}

func (cmd *cmdTokenTree) readSource(filename string) ([]byte, error) {
	if filename != "-" {
		return os.ReadFile(filename)
	}
	if cmd.stdin != nil {
		return io.ReadAll(cmd.stdin)
	}
	return io.ReadAll(os.Stdin)
}
