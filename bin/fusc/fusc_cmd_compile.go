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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/compiler"
)

type cmdCompile struct {
	cmdIO
	compileFlags
	outPath string
	watch   bool
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile [flags] FILE|DIR...",
		summary: "Compile type definitions and check them for errors",
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	cmd.compileFlags.register(flags)
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write the type graph as JSON (\"-\" for stdout)")
	flags.BoolVar(&cmd.watch, "watch", false, "recompile when inputs change")
}

func (cmd *cmdCompile) run(ctx context.Context, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(cmd.errOut(), "usage: fusc compile [flags] FILE|DIR...")
		return 1
	}

	cfg, err := cmd.compileFlags.load()
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	log := cmd.logger(cfg.Compiler.Debug)

	filter, err := newInputFilter(cfg.Inputs.Include, cfg.Inputs.Exclude)
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}

	rc := cmd.compileOnce(log, cfg, filter, argv)
	if !cmd.watch {
		return rc
	}

	w, err := newWatcher(log, cfg.Watch.Debounce, filter, func(changed []string) {
		log.Info("inputs changed", "paths", changed)
		cmd.compileOnce(log, cfg, filter, argv)
	})
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	defer w.Close()
	if err := w.watch(argv); err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	log.Info("watching for changes", "paths", argv)
	<-ctx.Done()
	return 0
}

func (cmd *cmdCompile) compileOnce(log *slog.Logger, cfg *config, filter *inputFilter, argv []string) int {
	c, ok := compileInputs(log, cfg, filter, argv, cmd.errOut())
	if !ok {
		return 1
	}
	if cmd.outPath == "" {
		return 0
	}
	if err := writeGraph(cmd.outPath, compiler.ExportGraph(c), cmd.out()); err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	return 0
}

// compileInputs compiles every source file found in paths into a single
// Compiler. Errors are written to errOut, one per line.
func compileInputs(
	log *slog.Logger,
	cfg *config,
	filter *inputFilter,
	paths []string,
	errOut io.Writer,
) (*compiler.Compiler, bool) {
	files, err := filter.expand(paths)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, false
	}
	if len(files) == 0 {
		fmt.Fprintln(errOut, "No input files found")
		return nil, false
	}

	table := fus.NewStringTable()
	c := cfg.compileOptions(log).New(table)
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return nil, false
		}
		log.Info("compiling", "file", file)
		if err := c.Parse(src, file); err != nil {
			fmt.Fprintln(errOut, err)
			return nil, false
		}
		log.Info("done compiling", "file", file)
	}

	result := c.Finish()
	if cfg.Compiler.Debug {
		dumpState(log, c, errOut)
	}
	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			fmt.Fprintln(errOut, err)
		}
		log.Error("compilation failed", "errors", len(result.Errors))
		return nil, false
	}
	log.Info("ok", "files", len(files), "defs", len(result.Defs))
	return c, true
}

func dumpState(log *slog.Logger, c *compiler.Compiler, w io.Writer) {
	fmt.Fprintln(w, "strings:")
	if err := c.StringTable().DumpTo(w); err != nil {
		log.Warn("can't dump string table", "error", err)
	}
	if err := c.Dump(w); err != nil {
		log.Warn("can't dump defs", "error", err)
	}
}

func writeGraph(path string, graph *compiler.Graph, stdout io.Writer) error {
	buf, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')

	if path == "-" {
		_, err := stdout.Write(buf)
		return err
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	fp, err := os.OpenFile(path, openFlags, 0o666)
	if err != nil {
		return err
	}
	_, writeErr := fp.Write(buf)
	closeErr := fp.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
