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

package compiler

import (
	"strings"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/syntax"
)

// A frame names the anonymous types parsed inside an enclosing type.
// arrayDepth counts arrays entered since the last named container.
type frame struct {
	name       fus.Sym
	arrayDepth int
}

type parser struct {
	c     *Compiler
	lexer *syntax.Lexer
}

func (p *parser) join(parts ...string) fus.Sym {
	return p.c.table.Join(parts...)
}

func (p *parser) parseDefs() error {
	l := p.lexer
	for !l.Done() && !l.GotClose() {
		var err error
		switch {
		case l.Got("typedef"):
			err = p.parseTypedef()
		case l.Got("struct"), l.Got("union"):
			_, err = p.parseStructOrUnion(nil, nil)
		case l.Got("func"), l.Got("method"):
			_, err = p.parseFunc(nil, nil)
		case l.Got("package"):
			err = p.parsePackage()
		case l.Got("from"):
			err = p.parseFrom()
		default:
			err = l.Unexpected("one of: typedef struct union func method package from")
		}
		if err != nil {
			return err
		}
	}
	if !l.Done() {
		return l.Unexpected("end of file")
	}
	return nil
}

func (p *parser) parseTypedef() error {
	l := p.lexer
	if err := l.Next(); err != nil {
		return err
	}
	pos := l.Token().Pos
	name, err := l.GetName()
	if err != nil {
		return err
	}
	name = p.c.packaged(name)
	def, err := p.c.redefOrAddDef(name, pos)
	if err != nil {
		return err
	}
	if err := l.GetOpen(); err != nil {
		return err
	}
	typ, err := p.parseType(frame{name: name}, def)
	if err != nil {
		return err
	}
	def.Type = typ
	return l.GetClose()
}

func (p *parser) parsePackage() error {
	l := p.lexer
	if err := l.Next(); err != nil {
		return err
	}
	if err := l.GetOpen(); err != nil {
		return err
	}
	name, err := l.GetName()
	if err != nil {
		return err
	}
	if err := l.GetClose(); err != nil {
		return err
	}
	if name.String() == "_" {
		name = fus.Sym{}
	}
	p.c.packageName = name
	return nil
}

func (p *parser) parseFrom() error {
	l := p.lexer
	if err := l.Next(); err != nil {
		return err
	}
	pkg, err := l.GetName()
	if err != nil {
		return err
	}
	if err := l.GetOpen(); err != nil {
		return err
	}
	for !l.Done() && !l.GotClose() {
		pos := l.Token().Pos
		name, err := l.GetName()
		if err != nil {
			return err
		}
		def := p.c.getOrAddDef(p.join(pkg.String(), "_", name.String()), pos)
		def.IsExtern = true
		if err := p.c.bind(name, def, pos); err != nil {
			return err
		}
	}
	return l.GetClose()
}

func (p *parser) parseTypeRef(f frame) (TypeRef, error) {
	l := p.lexer
	ref := TypeRef{Pos: l.Token().Pos}
modifiers:
	for {
		switch {
		case l.Got("inplace"):
			if ref.IsInplace {
				return ref, errDuplicateModifier("inplace", l.Token().Pos)
			}
			ref.IsInplace = true
		case l.Got("weakref"):
			if ref.IsWeakref {
				return ref, errDuplicateModifier("weakref", l.Token().Pos)
			}
			ref.IsWeakref = true
		default:
			break modifiers
		}
		if err := l.Next(); err != nil {
			return ref, err
		}
	}
	typ, err := p.parseType(f, nil)
	if err != nil {
		return ref, err
	}
	ref.Type = typ
	return ref, nil
}

// parseType parses a type within frame f. If the type is the definition
// of self (as in "typedef T: struct: ...") the def's own payload is
// returned. Other named types are returned as aliases to their defs.
func (p *parser) parseType(f frame, self *TypeDef) (Type, error) {
	l := p.lexer
	tok := l.Token()
	pos := tok.Pos

	if tag, ok := primitiveTags[tok.Text]; ok && l.GotName() {
		return Type{Tag: tag}, l.Next()
	}

	var def *TypeDef
	defines := false
	switch {
	case l.Got("@"):
		if err := l.Next(); err != nil {
			return Type{}, err
		}
		name, err := l.GetName()
		if err != nil {
			return Type{}, err
		}
		if binding, ok := p.c.bindingsByName[name]; ok {
			def = binding.Def
		} else {
			def = p.c.getOrAddDef(p.c.packaged(name), pos)
		}
	case l.Got("@@"):
		if err := l.Next(); err != nil {
			return Type{}, err
		}
		name, err := l.GetName()
		if err != nil {
			return Type{}, err
		}
		def = p.c.getOrAddDef(name, pos)
		def.IsExtern = true
	case l.Got("array"):
		var err error
		defines = true
		if def, err = p.parseArray(f); err != nil {
			return Type{}, err
		}
	case l.Got("struct"), l.Got("union"):
		var err error
		defines = true
		if def, err = p.parseStructOrUnion(&f, self); err != nil {
			return Type{}, err
		}
	case l.Got("func"), l.Got("method"):
		var err error
		defines = true
		if def, err = p.parseFunc(&f, self); err != nil {
			return Type{}, err
		}
	case l.Got("extern"):
		return p.parseExtern()
	default:
		return Type{}, l.Unexpected(
			"one of: void any type int err string bool byte" +
				" array struct union func method extern @ @@",
		)
	}

	if defines && def == self {
		return def.Type, nil
	}
	return Type{Tag: TAG_ALIAS, Def: def}, nil
}

func (p *parser) parseExtern() (Type, error) {
	l := p.lexer
	if err := l.Next(); err != nil {
		return Type{}, err
	}
	if err := l.GetOpen(); err != nil {
		return Type{}, err
	}
	pos := l.Token().Pos
	name, err := l.GetString()
	if err != nil {
		return Type{}, err
	}
	if name.String() == "" {
		return Type{}, errEmptyExternName(pos)
	}
	if err := l.GetClose(); err != nil {
		return Type{}, err
	}
	return Type{Tag: TAG_EXTERN, ExternName: name}, nil
}

func (p *parser) parseArray(f frame) (*TypeDef, error) {
	l := p.lexer
	pos := l.Token().Pos
	if err := l.Next(); err != nil {
		return nil, err
	}

	elemName := f.name
	if f.arrayDepth == 0 {
		elemName = p.join(f.name.String(), "_elem")
	}

	if err := l.GetOpen(); err != nil {
		return nil, err
	}
	ref, err := p.parseTypeRef(frame{
		name:       elemName,
		arrayDepth: f.arrayDepth + 1,
	})
	if err != nil {
		return nil, err
	}
	if err := l.GetClose(); err != nil {
		return nil, err
	}
	return p.arrayDef(ref, pos)
}

// arrayDef returns the def for arrays of ref, creating it if this is the
// first such array.
func (p *parser) arrayDef(ref TypeRef, pos syntax.Position) (*TypeDef, error) {
	name := p.arrayName(&ref)
	def, ok := p.c.defsByName[name]
	if !ok {
		def = p.c.addDef(name, pos)
	} else {
		switch {
		case def.Type.Tag == TAG_ARRAY:
			if !sameElement(def.Type.Subtype, &ref) {
				return nil, errArrayMismatch(def, pos)
			}
			return def, nil
		default:
			return nil, errNotAnArray(def, pos)
		}
	}
	def.Type = Type{
		Tag:     TAG_ARRAY,
		Def:     def,
		Subtype: &ref,
	}
	return def, nil
}

func (p *parser) arrayName(ref *TypeRef) fus.Sym {
	var elem string
	switch ref.Type.Tag {
	case TAG_ARRAY, TAG_STRUCT, TAG_UNION, TAG_FUNC, TAG_ALIAS:
		elem = ref.Type.Def.Name.String()
	case TAG_EXTERN:
		elem = "extern_" + identifierize(ref.Type.ExternName.String())
	default:
		elem = ref.Type.Tag.String()
	}
	switch {
	case ref.IsInplace:
		return p.join("arrayof_inplace_", elem)
	case ref.IsWeakref:
		return p.join("arrayof_weakref_", elem)
	}
	return p.join("arrayof_", elem)
}

func sameElement(a, b *TypeRef) bool {
	return a.IsInplace == b.IsInplace &&
		a.IsWeakref == b.IsWeakref &&
		a.Type.Tag == b.Type.Tag &&
		a.Type.Def == b.Type.Def &&
		a.Type.ExternName == b.Type.ExternName
}

// identifierize replaces each byte of s that can't appear in a name.
func identifierize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_',
			'a' <= r && r <= 'z',
			'A' <= r && r <= 'Z',
			'0' <= r && r <= '9':
			return r
		}
		return '_'
	}, s)
}

// defName reads the name of a struct, union or func. Top-level statements
// must name the type. Nested types may, and otherwise take the name of
// their frame.
func (p *parser) defName(f *frame) (fus.Sym, error) {
	l := p.lexer
	if f != nil && !l.GotName() {
		return f.name, nil
	}
	name, err := l.GetName()
	if err != nil {
		return fus.Sym{}, err
	}
	return p.c.packaged(name), nil
}

// defineDef returns the def a struct, union or func named name is about to
// define. A typedef's own def was already claimed by parseTypedef, so it
// keeps the position of the typedef's name.
func (p *parser) defineDef(name fus.Sym, pos syntax.Position, self *TypeDef) (*TypeDef, error) {
	if self != nil && self.Name == name {
		return self, nil
	}
	return p.c.redefOrAddDef(name, pos)
}

func (p *parser) parseStructOrUnion(f *frame, self *TypeDef) (*TypeDef, error) {
	l := p.lexer
	pos := l.Token().Pos
	tag := TAG_STRUCT
	if l.Got("union") {
		tag = TAG_UNION
	}
	if err := l.Next(); err != nil {
		return nil, err
	}

	name, err := p.defName(f)
	if err != nil {
		return nil, err
	}
	def, err := p.defineDef(name, pos, self)
	if err != nil {
		return nil, err
	}
	def.Type = Type{Tag: tag, Def: def}
	if tag == TAG_UNION {
		def.Type.TagsName = p.c.table.Upper(p.join(name.String(), "_tags"))
	}

	if err := l.GetOpen(); err != nil {
		return nil, err
	}
	seen := make(map[fus.Sym]struct{})
	for !l.Done() && !l.GotClose() {
		parens := l.GotOpen()
		if parens {
			if err := l.Next(); err != nil {
				return nil, err
			}
		}
		if err := p.parseField(def, seen); err != nil {
			return nil, err
		}
		if parens {
			if err := l.GetClose(); err != nil {
				return nil, err
			}
		}
	}
	return def, l.GetClose()
}

func (p *parser) parseField(def *TypeDef, seen map[fus.Sym]struct{}) error {
	l := p.lexer
	pos := l.Token().Pos
	name, err := l.GetName()
	if err != nil {
		return err
	}
	if name.String() == "extra_cleanup" && !l.GotOpen() {
		def.Type.ExtraCleanup = true
		return nil
	}

	field := &TypeField{Name: name, Pos: pos}
	if _, dup := seen[name]; dup {
		return errDuplicateField(def, field)
	}
	seen[name] = struct{}{}
	if def.Type.Tag == TAG_UNION {
		field.TagName = p.c.table.Upper(
			p.join(def.Name.String(), "_tag_", name.String()),
		)
	}

	if err := l.GetOpen(); err != nil {
		return err
	}
	ref, err := p.parseTypeRef(frame{
		name: p.join(def.Name.String(), "_", name.String()),
	})
	if err != nil {
		return err
	}
	field.Ref = ref
	def.Type.Fields = append(def.Type.Fields, field)
	return l.GetClose()
}

func (p *parser) parseFunc(f *frame, self *TypeDef) (*TypeDef, error) {
	l := p.lexer
	pos := l.Token().Pos
	isMethod := l.Got("method")
	if err := l.Next(); err != nil {
		return nil, err
	}

	name, err := p.defName(f)
	if err != nil {
		return nil, err
	}
	def, err := p.defineDef(name, pos, self)
	if err != nil {
		return nil, err
	}
	def.Type = Type{Tag: TAG_FUNC, Def: def, IsMethod: isMethod}

	if err := l.GetOpen(); err != nil {
		return nil, err
	}
	gotArgs := false
	seen := make(map[fus.Sym]struct{})
	for !l.Done() && !l.GotClose() {
		clausePos := l.Token().Pos
		switch {
		case l.Got("ret"):
			if def.Type.Ret != nil {
				return nil, errDuplicateClause(def, "ret", clausePos)
			}
			if err := l.Next(); err != nil {
				return nil, err
			}
			if err := l.GetOpen(); err != nil {
				return nil, err
			}
			ret, err := p.parseType(frame{name: p.join(name.String(), "_ret")}, nil)
			if err != nil {
				return nil, err
			}
			def.Type.Ret = &ret
			if err := l.GetClose(); err != nil {
				return nil, err
			}
		case l.Got("args"):
			if gotArgs {
				return nil, errDuplicateClause(def, "args", clausePos)
			}
			gotArgs = true
			if err := p.parseArgs(def, seen); err != nil {
				return nil, err
			}
		default:
			return nil, l.Unexpected("one of: ret args")
		}
	}
	if err := l.GetClose(); err != nil {
		return nil, err
	}

	if def.Type.Ret == nil {
		def.Type.Ret = &Type{Tag: TAG_ERR}
	}
	if isMethod && len(def.Type.Args) == 0 {
		return nil, errMethodReceiver(def)
	}
	return def, nil
}

func (p *parser) parseArgs(def *TypeDef, seen map[fus.Sym]struct{}) error {
	l := p.lexer
	if err := l.Next(); err != nil {
		return err
	}
	if err := l.GetOpen(); err != nil {
		return err
	}
	for !l.Done() && !l.GotClose() {
		parens := l.GotOpen()
		if parens {
			if err := l.Next(); err != nil {
				return err
			}
		}
		if err := p.parseArg(def, seen); err != nil {
			return err
		}
		if parens {
			if err := l.GetClose(); err != nil {
				return err
			}
		}
	}
	return l.GetClose()
}

func (p *parser) parseArg(def *TypeDef, seen map[fus.Sym]struct{}) error {
	l := p.lexer
	pos := l.Token().Pos
	name, err := l.GetName()
	if err != nil {
		return err
	}
	arg := &TypeArg{Name: name}
	if _, dup := seen[name]; dup {
		return errDuplicateArg(def, arg, pos)
	}
	seen[name] = struct{}{}

	if err := l.GetOpen(); err != nil {
		return err
	}
	if l.Got("out") {
		arg.Out = true
		if err := l.Next(); err != nil {
			return err
		}
	}
	typ, err := p.parseType(frame{
		name: p.join(def.Name.String(), "_", name.String()),
	}, nil)
	if err != nil {
		return err
	}
	arg.Type = typ
	def.Type.Args = append(def.Type.Args, arg)
	return l.GetClose()
}
