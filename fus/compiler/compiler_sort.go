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

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// An EdgeFunc returns the defs that must be ordered before def.
type EdgeFunc func(def *TypeDef) []*TypeDef

// SortDefs returns defs ordered so that every def comes after the defs
// reachable from it through edges. Defs keep their relative order where
// edges don't constrain it.
func SortDefs(defs []*TypeDef, edges EdgeFunc) ([]*TypeDef, error) {
	for _, def := range defs {
		def.state = unvisited
	}

	sorted := make([]*TypeDef, 0, len(defs))
	var visit func(def *TypeDef) error
	visit = func(def *TypeDef) error {
		switch def.state {
		case done:
			return nil
		case inProgress:
			return errSortCycle(def)
		case unvisited:
			def.state = inProgress
			for _, child := range edges(def) {
				if err := visit(child); err != nil {
					return err
				}
			}
			def.state = done
			sorted = append(sorted, def)
			return nil
		}
		panic("unreachable")
	}

	for _, def := range defs {
		if err := visit(def); err != nil {
			return nil, err
		}
	}
	if len(sorted) != len(defs) {
		return nil, errSortIncomplete(len(sorted), len(defs))
	}
	return sorted, nil
}

// InplaceEdges returns the defs whose values def stores inplace: the
// element type of an array and the field types of a struct or union.
func InplaceEdges(def *TypeDef) []*TypeDef {
	var out []*TypeDef
	add := func(ref *TypeRef) {
		if !ref.Embedded() {
			return
		}
		if sub := ref.Type.TargetDef(); sub != nil {
			out = appendEdge(out, def, sub.Unalias())
		}
	}
	switch def.Type.Tag {
	case TAG_ARRAY:
		add(def.Type.Subtype)
	case TAG_STRUCT, TAG_UNION:
		for _, field := range def.Type.Fields {
			add(&field.Ref)
		}
	}
	return out
}

// TypedefEdges returns the defs named by def's declaration: the target of
// an alias, and the return and argument types of a func.
func TypedefEdges(def *TypeDef) []*TypeDef {
	var out []*TypeDef
	switch def.Type.Tag {
	case TAG_ALIAS:
		out = appendEdge(out, def, def.Type.Def)
	case TAG_FUNC:
		if def.Type.Ret != nil {
			out = appendEdge(out, def, def.Type.Ret.TargetDef())
		}
		for _, arg := range def.Type.Args {
			out = appendEdge(out, def, arg.Type.TargetDef())
		}
	}
	return out
}

func appendEdge(out []*TypeDef, def, sub *TypeDef) []*TypeDef {
	if sub == nil || sub == def {
		return out
	}
	return append(out, sub)
}
