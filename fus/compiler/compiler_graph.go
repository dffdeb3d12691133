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

// Graph is the compiled type graph in the form handed to code writers.
// Defs are in declaration order, and InplaceOrder lists the names of the
// defs in storage-layout order.
type Graph struct {
	Package      string         `json:"package,omitempty"`
	Bindings     []GraphBinding `json:"bindings,omitempty"`
	Defs         []*GraphDef    `json:"defs"`
	InplaceOrder []string       `json:"inplace_order,omitempty"`
}

type GraphBinding struct {
	Name string `json:"name"`
	Def  string `json:"def"`
}

type GraphDef struct {
	Name       string `json:"name"`
	NameUpper  string `json:"name_upper"`
	Tag        string `json:"tag"`
	Extern     bool   `json:"extern,omitempty"`
	HasCleanup bool   `json:"has_cleanup"`

	// alias
	Alias string `json:"alias,omitempty"`

	// extern
	ExternName string `json:"extern_name,omitempty"`

	// array
	Elem *GraphRef `json:"elem,omitempty"`

	// struct, union
	Fields       []*GraphField `json:"fields,omitempty"`
	TagsName     string        `json:"tags_name,omitempty"`
	ExtraCleanup bool          `json:"extra_cleanup,omitempty"`

	// func
	Ret    *GraphType  `json:"ret,omitempty"`
	Args   []*GraphArg `json:"args,omitempty"`
	Method bool        `json:"method,omitempty"`
}

// GraphType describes a type used by a def. Def is set for aliases and
// names the aliased def. Resolved is the tag at the end of the alias
// chain.
type GraphType struct {
	Tag        string `json:"tag"`
	Def        string `json:"def,omitempty"`
	ExternName string `json:"extern_name,omitempty"`
	Resolved   string `json:"resolved"`
}

type GraphRef struct {
	GraphType
	Inplace  bool `json:"inplace,omitempty"`
	Weakref  bool `json:"weakref,omitempty"`
	Embedded bool `json:"embedded"`
	Owned    bool `json:"owned"`
}

type GraphField struct {
	Name    string   `json:"name"`
	TagName string   `json:"tag_name,omitempty"`
	Ref     GraphRef `json:"ref"`
}

type GraphArg struct {
	Name string    `json:"name"`
	Out  bool      `json:"out,omitempty"`
	Type GraphType `json:"type"`
}

// ExportGraph converts the compiler's defs. It is meant to be called after
// a successful Finish.
func ExportGraph(c *Compiler) *Graph {
	g := &Graph{
		Package: c.packageName.String(),
		Defs:    make([]*GraphDef, 0, len(c.defs)),
	}
	for _, binding := range c.bindings {
		g.Bindings = append(g.Bindings, GraphBinding{
			Name: binding.Name.String(),
			Def:  binding.Def.Name.String(),
		})
	}
	for _, def := range c.defs {
		g.Defs = append(g.Defs, exportDef(def))
	}
	for _, def := range c.inplaceOrder {
		g.InplaceOrder = append(g.InplaceOrder, def.Name.String())
	}
	return g
}

func exportDef(def *TypeDef) *GraphDef {
	typ := &def.Type
	out := &GraphDef{
		Name:       def.Name.String(),
		NameUpper:  def.NameUpper.String(),
		Tag:        typ.Tag.String(),
		Extern:     def.IsExtern,
		HasCleanup: typ.HasCleanup(),
	}
	switch typ.Tag {
	case TAG_ALIAS:
		out.Alias = typ.Def.Name.String()
	case TAG_EXTERN:
		out.ExternName = typ.ExternName.String()
	case TAG_ARRAY:
		elem := exportRef(typ.Subtype)
		out.Elem = &elem
	case TAG_STRUCT, TAG_UNION:
		out.TagsName = typ.TagsName.String()
		out.ExtraCleanup = typ.ExtraCleanup
		for _, field := range typ.Fields {
			out.Fields = append(out.Fields, &GraphField{
				Name:    field.Name.String(),
				TagName: field.TagName.String(),
				Ref:     exportRef(&field.Ref),
			})
		}
	case TAG_FUNC:
		out.Method = typ.IsMethod
		ret := exportType(typ.Ret)
		out.Ret = &ret
		for _, arg := range typ.Args {
			out.Args = append(out.Args, &GraphArg{
				Name: arg.Name.String(),
				Out:  arg.Out,
				Type: exportType(&arg.Type),
			})
		}
	}
	return out
}

func exportType(typ *Type) GraphType {
	out := GraphType{
		Tag:        typ.Tag.String(),
		ExternName: typ.ExternName.String(),
		Resolved:   typ.Unalias().Tag.String(),
	}
	if def := typ.TargetDef(); def != nil {
		out.Def = def.Name.String()
	}
	return out
}

func exportRef(ref *TypeRef) GraphRef {
	return GraphRef{
		GraphType: exportType(&ref.Type),
		Inplace:   ref.IsInplace,
		Weakref:   ref.IsWeakref,
		Embedded:  ref.Embedded(),
		Owned:     ref.Owned(),
	}
}
