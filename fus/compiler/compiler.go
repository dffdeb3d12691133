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

// Package compiler builds, validates and orders the type graph described
// by fus type definitions.
package compiler

import (
	"io"
	"log/slog"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/syntax"
)

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	canRebind bool
	canRedef  bool
	debug     bool
	logger    *slog.Logger
}

// WithRebind allows "from" to rebind a name that is already bound.
func WithRebind(canRebind bool) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.canRebind = canRebind
	})
}

// WithRedef allows a def that already has a definition to be replaced.
func WithRedef(canRedef bool) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.canRedef = canRedef
	})
}

// WithDebug logs the def list after each parse and sort pass.
func WithDebug(debug bool) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.debug = debug
	})
}

func WithLogger(logger *slog.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.logger = logger
	})
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	if compileOptions.logger == nil {
		compileOptions.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return compileOptions
}

type CompileResult struct {
	// Defs in declaration order. Nil if there were errors.
	Defs []*TypeDef

	Errors []error
}

// Compile parses a single source file and finishes the compilation.
func Compile(
	table *fus.StringTable,
	src []byte,
	filename string,
	opts ...CompileOption,
) CompileResult {
	c := New(table, opts...)
	if err := c.Parse(src, filename); err != nil {
		return CompileResult{Errors: []error{err}}
	}
	return c.Finish()
}

// A Compiler accumulates the defs of one or more source files. It is not
// safe for concurrent use, and shares its StringTable with its lexer.
type Compiler struct {
	opts  *CompileOptions
	log   *slog.Logger
	table *fus.StringTable
	lexer *syntax.Lexer

	packageName fus.Sym

	defs         []*TypeDef
	defsByName   map[fus.Sym]*TypeDef
	inplaceOrder []*TypeDef

	bindings       []*Binding
	bindingsByName map[fus.Sym]*Binding
}

func New(table *fus.StringTable, opts ...CompileOption) *Compiler {
	return NewCompileOptions(opts...).New(table)
}

func (opts *CompileOptions) New(table *fus.StringTable) *Compiler {
	return &Compiler{
		opts:           opts,
		log:            opts.logger,
		table:          table,
		lexer:          syntax.NewLexer(table),
		defsByName:     make(map[fus.Sym]*TypeDef),
		bindingsByName: make(map[fus.Sym]*Binding),
	}
}

// Parse adds the defs of one source file. A parse error leaves the defs
// parsed before it in place.
func (c *Compiler) Parse(src []byte, filename string) error {
	if err := c.lexer.Load(src, filename); err != nil {
		return err
	}
	return c.parseLoaded()
}

// ParseTrees is like Parse, but reads tokens replayed from trees.
func (c *Compiler) ParseTrees(trees []*syntax.TokenTree, filename string) error {
	if err := c.lexer.LoadTrees(trees, filename); err != nil {
		return err
	}
	return c.parseLoaded()
}

func (c *Compiler) parseLoaded() error {
	filename := c.lexer.Filename()
	c.log.Debug("compiling", "file", filename)
	defer c.lexer.Unload()

	p := parser{c: c, lexer: c.lexer}
	if err := p.parseDefs(); err != nil {
		return err
	}
	c.log.Debug("done compiling", "file", filename, "defs", len(c.defs))
	if c.opts.debug {
		c.logDefs("parsed", c.defs)
	}
	return nil
}

// Finish validates the defs parsed so far and, if they are valid, sorts
// them with SortDefs. More files may be parsed afterwards.
func (c *Compiler) Finish() CompileResult {
	if errs := Validate(c.defs); len(errs) > 0 {
		var result CompileResult
		for _, err := range errs {
			result.Errors = append(result.Errors, err)
		}
		return result
	}
	if err := c.SortDefs(); err != nil {
		return CompileResult{Errors: []error{err}}
	}
	return CompileResult{Defs: c.defs}
}

// SortDefs reorders the defs twice: first so that each def follows the
// defs it embeds inplace, then so that each def follows the defs its
// declaration names. The order after the first pass is kept for writers
// that emit storage layouts (see InplaceOrder).
func (c *Compiler) SortDefs() error {
	sorted, err := SortDefs(c.defs, InplaceEdges)
	if err != nil {
		return err
	}
	c.inplaceOrder = sorted
	c.logSorted("inplace", sorted)

	sorted, err = SortDefs(sorted, TypedefEdges)
	if err != nil {
		return err
	}
	c.defs = sorted
	c.logSorted("typedef", sorted)
	return nil
}

func (c *Compiler) logSorted(pass string, defs []*TypeDef) {
	c.log.Debug("sorted defs", "pass", pass, "defs", len(defs))
	if c.opts.debug {
		c.logDefs("sorted by "+pass, defs)
	}
}

// InplaceOrder returns the defs as ordered by the last inplace sort, or nil
// if they haven't been sorted.
func (c *Compiler) InplaceOrder() []*TypeDef {
	return c.inplaceOrder
}

func (c *Compiler) Defs() []*TypeDef {
	return c.defs
}

func (c *Compiler) Bindings() []*Binding {
	return c.bindings
}

// PackageName returns the active package, or the zero Sym if none.
func (c *Compiler) PackageName() fus.Sym {
	return c.packageName
}

func (c *Compiler) StringTable() *fus.StringTable {
	return c.table
}

// Lookup returns the def with the given fully-qualified name.
func (c *Compiler) Lookup(name string) *TypeDef {
	sym, ok := c.table.Lookup(name)
	if !ok {
		return nil
	}
	return c.defsByName[sym]
}

func (c *Compiler) logDefs(stage string, defs []*TypeDef) {
	names := make([]string, len(defs))
	for ii, def := range defs {
		names[ii] = def.Name.String()
	}
	c.log.Debug("defs", "stage", stage, "names", names)
}

func (c *Compiler) packaged(name fus.Sym) fus.Sym {
	if c.packageName.IsZero() {
		return name
	}
	return c.table.Join(c.packageName.String(), "_", name.String())
}

func (c *Compiler) addDef(name fus.Sym, pos syntax.Position) *TypeDef {
	def := &TypeDef{
		Name:      name,
		NameUpper: c.table.Upper(name),
		Pos:       pos,
	}
	c.defs = append(c.defs, def)
	c.defsByName[name] = def
	c.log.Debug("added def", "name", name.String())
	return def
}

func (c *Compiler) getOrAddDef(name fus.Sym, pos syntax.Position) *TypeDef {
	if def, ok := c.defsByName[name]; ok {
		return def
	}
	return c.addDef(name, pos)
}

// redefOrAddDef returns an undefined def named name, ready to be defined.
func (c *Compiler) redefOrAddDef(name fus.Sym, pos syntax.Position) (*TypeDef, error) {
	def, ok := c.defsByName[name]
	if !ok {
		return c.addDef(name, pos), nil
	}
	if def.Type.Tag != TAG_UNDEFINED {
		if !c.opts.canRedef {
			return nil, errRedefine(def, pos)
		}
		c.log.Debug("redefining def", "name", name.String(), "was", def.Type.Tag.String())
		def.Type = Type{}
	}
	def.Pos = pos
	return def, nil
}

func (c *Compiler) bind(name fus.Sym, def *TypeDef, pos syntax.Position) error {
	binding, ok := c.bindingsByName[name]
	if !ok {
		binding = &Binding{Name: name}
		c.bindings = append(c.bindings, binding)
		c.bindingsByName[name] = binding
	} else if !c.opts.canRebind {
		return errRebind(binding, def, pos)
	}
	binding.Def = def
	return nil
}
