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
	"fmt"

	"go.fus-lang.org/fus"
	"go.fus-lang.org/fus/syntax"
)

type TypeTag uint8

const (
	TAG_UNDEFINED TypeTag = iota
	TAG_VOID
	TAG_ANY
	TAG_TYPE
	TAG_INT
	TAG_ERR
	TAG_STRING
	TAG_BOOL
	TAG_BYTE
	TAG_ARRAY
	TAG_STRUCT
	TAG_UNION
	TAG_ALIAS
	TAG_FUNC
	TAG_EXTERN
)

var typeTagNames = [...]string{
	TAG_UNDEFINED: "undefined",
	TAG_VOID:      "void",
	TAG_ANY:       "any",
	TAG_TYPE:      "type",
	TAG_INT:       "int",
	TAG_ERR:       "err",
	TAG_STRING:    "string",
	TAG_BOOL:      "bool",
	TAG_BYTE:      "byte",
	TAG_ARRAY:     "array",
	TAG_STRUCT:    "struct",
	TAG_UNION:     "union",
	TAG_ALIAS:     "alias",
	TAG_FUNC:      "func",
	TAG_EXTERN:    "extern",
}

// primitiveTags maps each primitive type keyword to its tag.
var primitiveTags = map[string]TypeTag{
	"void":   TAG_VOID,
	"any":    TAG_ANY,
	"type":   TAG_TYPE,
	"int":    TAG_INT,
	"err":    TAG_ERR,
	"string": TAG_STRING,
	"bool":   TAG_BOOL,
	"byte":   TAG_BYTE,
}

func (tag TypeTag) String() string {
	if int(tag) < len(typeTagNames) {
		return typeTagNames[tag]
	}
	return fmt.Sprintf("TypeTag(%d)", uint8(tag))
}

// SupportsInplace reports whether a value of this type may be embedded in
// its container instead of being stored behind a pointer.
func (tag TypeTag) SupportsInplace() bool {
	switch tag {
	case TAG_STRUCT, TAG_UNION, TAG_EXTERN:
		return true
	}
	return false
}

// SupportsWeakref reports whether types with this tag have a cleanup
// function that a weakref can opt out of.
func (tag TypeTag) SupportsWeakref() bool {
	switch tag {
	case TAG_ARRAY, TAG_STRUCT, TAG_UNION, TAG_EXTERN:
		return true
	}
	return false
}

// IsPointer reports whether references to this type are stored by pointer
// unless marked inplace.
func (tag TypeTag) IsPointer() bool {
	switch tag {
	case TAG_ARRAY, TAG_STRUCT, TAG_UNION, TAG_EXTERN:
		return true
	}
	return false
}

func (tag TypeTag) HasCleanup() bool {
	switch tag {
	case TAG_ANY, TAG_ARRAY, TAG_STRUCT, TAG_UNION:
		return true
	}
	return false
}

// A TypeDef is a named slot in the type graph. It is created by the first
// reference to its name, and its Type stays TAG_UNDEFINED until the
// definition itself is parsed.
type TypeDef struct {
	Name      fus.Sym
	NameUpper fus.Sym
	Type      Type
	IsExtern  bool

	// Pos is where the def was defined, or first referenced if it is
	// still undefined.
	Pos syntax.Position

	state visitState
}

// Type is the payload of a TypeDef or TypeRef.
//
// For TAG_ARRAY, TAG_STRUCT, TAG_UNION and TAG_FUNC, Def is the TypeDef
// owning this payload. For TAG_ALIAS it is the aliased TypeDef.
type Type struct {
	Tag TypeTag
	Def *TypeDef

	// TAG_ARRAY
	Subtype *TypeRef

	// TAG_STRUCT, TAG_UNION
	Fields       []*TypeField
	ExtraCleanup bool
	TagsName     fus.Sym

	// TAG_FUNC
	Ret      *Type
	Args     []*TypeArg
	IsMethod bool

	// TAG_EXTERN
	ExternName fus.Sym
}

type TypeRef struct {
	Type      Type
	IsInplace bool
	IsWeakref bool
	Pos       syntax.Position
}

type TypeField struct {
	Name    fus.Sym
	TagName fus.Sym
	Ref     TypeRef
	Pos     syntax.Position
}

type TypeArg struct {
	Name fus.Sym
	Out  bool
	Type Type
}

// A Binding maps a short name imported with "from" to its def.
type Binding struct {
	Name fus.Sym
	Def  *TypeDef
}

// TargetDef returns the def this type names: the owning def of an array,
// struct, union or func, or the aliased def. Other types have none.
func (t *Type) TargetDef() *TypeDef {
	switch t.Tag {
	case TAG_ARRAY, TAG_STRUCT, TAG_UNION, TAG_FUNC, TAG_ALIAS:
		return t.Def
	}
	return nil
}

// Unalias follows alias chains to the first non-alias type. A circular
// chain stops at the def where the cycle closes.
func (t *Type) Unalias() *Type {
	var seen map[*TypeDef]struct{}
	for t.Tag == TAG_ALIAS {
		if seen == nil {
			seen = make(map[*TypeDef]struct{})
		}
		if _, loop := seen[t.Def]; loop {
			break
		}
		seen[t.Def] = struct{}{}
		t = &t.Def.Type
	}
	return t
}

// Unalias returns the def at the end of def's alias chain.
func (def *TypeDef) Unalias() *TypeDef {
	seen := map[*TypeDef]struct{}{def: {}}
	for def.Type.Tag == TAG_ALIAS {
		next := def.Type.Def
		if _, loop := seen[next]; loop {
			break
		}
		seen[next] = struct{}{}
		def = next
	}
	return def
}

func (t *Type) HasCleanup() bool {
	return t.Unalias().Tag.HasCleanup()
}

// SupportsWeakref is like the tag method of the same name, but also
// accepts defs declared extern and left undefined.
func (t *Type) SupportsWeakref() bool {
	u := t.Unalias()
	if u.Tag == TAG_UNDEFINED {
		return t.Tag == TAG_ALIAS && t.Def.Unalias().IsExtern
	}
	return u.Tag.SupportsWeakref()
}

// Embedded reports whether the referenced value is stored in its
// container, either because the ref says so or because the type is not
// pointer-like.
func (r *TypeRef) Embedded() bool {
	return r.IsInplace || !r.Type.Unalias().Tag.IsPointer()
}

// Owned reports whether the container must clean up the referenced value.
func (r *TypeRef) Owned() bool {
	return !r.IsWeakref && r.Type.HasCleanup()
}

func (def *TypeDef) String() string {
	return def.Name.String()
}
