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
	"io"
	"strings"
)

// Dump writes a human-readable listing of the compiler's package, bindings
// and defs, in their current order.
func (c *Compiler) Dump(w io.Writer) error {
	var buf strings.Builder
	if !c.packageName.IsZero() {
		fmt.Fprintf(&buf, "package: %s\n", c.packageName)
	}
	if len(c.bindings) > 0 {
		buf.WriteString("bindings:\n")
		for _, binding := range c.bindings {
			fmt.Fprintf(&buf, "    %s -> %s\n", binding.Name, binding.Def.Name)
		}
	}
	buf.WriteString("defs:\n")
	for _, def := range c.defs {
		dumpDef(&buf, def)
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func dumpDef(buf *strings.Builder, def *TypeDef) {
	typ := &def.Type
	fmt.Fprintf(buf, "    %s: %s", def.Name, typeString(typ, def))
	if def.IsExtern {
		buf.WriteString(" (extern)")
	}
	if typ.ExtraCleanup {
		buf.WriteString(" (extra_cleanup)")
	}
	buf.WriteByte('\n')

	switch typ.Tag {
	case TAG_ARRAY:
		fmt.Fprintf(buf, "        elem: %s\n", refString(typ.Subtype))
	case TAG_STRUCT, TAG_UNION:
		for _, field := range typ.Fields {
			fmt.Fprintf(buf, "        %s: %s", field.Name, refString(&field.Ref))
			if !field.TagName.IsZero() {
				fmt.Fprintf(buf, " [%s]", field.TagName)
			}
			buf.WriteByte('\n')
		}
	case TAG_FUNC:
		fmt.Fprintf(buf, "        ret: %s\n", typeString(typ.Ret, def))
		for _, arg := range typ.Args {
			out := ""
			if arg.Out {
				out = "out "
			}
			fmt.Fprintf(buf, "        arg %s: %s%s\n", arg.Name, out, typeString(&arg.Type, def))
		}
	}
}

// typeString renders a type as it would be written in source, except that
// the payload owned by def is shown by its tag.
func typeString(typ *Type, def *TypeDef) string {
	switch typ.Tag {
	case TAG_ALIAS:
		return "@" + typ.Def.Name.String()
	case TAG_EXTERN:
		return fmt.Sprintf("extern %q", typ.ExternName)
	case TAG_FUNC:
		if typ.IsMethod {
			return "method"
		}
	case TAG_ARRAY, TAG_STRUCT, TAG_UNION:
		if typ.Def != def {
			return "@" + typ.Def.Name.String()
		}
	}
	return typ.Tag.String()
}

func refString(ref *TypeRef) string {
	var prefix string
	if ref.IsInplace {
		prefix += "inplace "
	}
	if ref.IsWeakref {
		prefix += "weakref "
	}
	return prefix + typeString(&ref.Type, nil)
}
