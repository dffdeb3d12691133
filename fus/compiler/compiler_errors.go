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
	"strings"

	"go.fus-lang.org/fus/syntax"
)

// Error is a semantic, validation or sorting error.
//
// Validation errors found deep inside the graph carry a context trail,
// innermost first, describing how the offending reference was reached.
type Error struct {
	code    uint32
	message string
	pos     syntax.Position
	trail   []string
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	var buf strings.Builder
	if !err.pos.IsZero() {
		buf.WriteString(err.pos.String())
		buf.WriteString(": ")
	}
	fmt.Fprintf(&buf, "E%d: %s", err.code, err.message)
	for _, line := range err.trail {
		buf.WriteString("\n...")
		buf.WriteString(line)
	}
	return buf.String()
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Pos() syntax.Position {
	return err.pos
}

// Trail returns the context lines of a validation error, innermost first,
// without their leading "...".
func (err *Error) Trail() []string {
	return err.trail
}

func (err *Error) within(format string, args ...any) *Error {
	err.trail = append(err.trail, fmt.Sprintf(format, args...))
	return err
}

func errRedefine(def *TypeDef, pos syntax.Position) error {
	return &Error{
		code:    3000,
		message: fmt.Sprintf("Can't redefine: %s", def.Name),
		pos:     pos,
	}
}

func errRebind(binding *Binding, def *TypeDef, pos syntax.Position) error {
	return &Error{
		code: 3001,
		message: fmt.Sprintf(
			"Can't rebind name: %s (%s -> %s)",
			binding.Name, binding.Def.Name, def.Name,
		),
		pos: pos,
	}
}

func errDuplicateField(def *TypeDef, field *TypeField) error {
	return &Error{
		code: 3002,
		message: fmt.Sprintf(
			"Duplicate field %s in %s: %s",
			field.Name, def.Type.Tag, def.Name,
		),
		pos: field.Pos,
	}
}

func errDuplicateArg(def *TypeDef, arg *TypeArg, pos syntax.Position) error {
	return &Error{
		code:    3003,
		message: fmt.Sprintf("Duplicate argument %s of: %s", arg.Name, def.Name),
		pos:     pos,
	}
}

func errNotAnArray(def *TypeDef, pos syntax.Position) error {
	msg := fmt.Sprintf(
		"Def already exists, and is not an array: %s (%s)",
		def.Name, def.Type.Tag,
	)
	if subdef := def.Type.TargetDef(); subdef != nil && subdef != def {
		msg += " -> " + subdef.Name.String()
	}
	return &Error{
		code:    3004,
		message: msg,
		pos:     pos,
	}
}

func errArrayMismatch(def *TypeDef, pos syntax.Position) error {
	return &Error{
		code: 3005,
		message: fmt.Sprintf(
			"Array def %s already exists with a different element type",
			def.Name,
		),
		pos: pos,
	}
}

func errDuplicateClause(def *TypeDef, clause string, pos syntax.Position) error {
	return &Error{
		code:    3006,
		message: fmt.Sprintf("Duplicate %q clause in: %s", clause, def.Name),
		pos:     pos,
	}
}

func errMethodReceiver(def *TypeDef) error {
	return &Error{
		code:    3007,
		message: fmt.Sprintf("Method has no receiver argument: %s", def.Name),
		pos:     def.Pos,
	}
}

func errDuplicateModifier(modifier string, pos syntax.Position) error {
	return &Error{
		code:    3008,
		message: fmt.Sprintf("Duplicate %q modifier", modifier),
		pos:     pos,
	}
}

func errEmptyExternName(pos syntax.Position) error {
	return &Error{
		code:    3009,
		message: "Extern name is empty",
		pos:     pos,
	}
}

func errUndefined(def *TypeDef) *Error {
	return &Error{
		code:    4000,
		message: fmt.Sprintf("Def is undefined: %s", def.Name),
		pos:     def.Pos,
	}
}

func errInplaceNotAllowed(tag TypeTag, pos syntax.Position) *Error {
	return &Error{
		code:    4001,
		message: fmt.Sprintf("\"inplace\" reference not allowed to: %s", tag),
		pos:     pos,
	}
}

func errWeakrefNotAllowed(tag TypeTag, pos syntax.Position) *Error {
	return &Error{
		code:    4002,
		message: fmt.Sprintf("\"weakref\" reference not allowed to: %s", tag),
		pos:     pos,
	}
}

func errCircularAlias(def *TypeDef) *Error {
	return &Error{
		code:    4003,
		message: fmt.Sprintf("Circular alias definition: %s", def.Name),
		pos:     def.Pos,
	}
}

func errCircularInplace(def *TypeDef) *Error {
	return &Error{
		code:    4004,
		message: fmt.Sprintf("Circular inplace reference: %s", def.Name),
		pos:     def.Pos,
	}
}

func errInplaceWeakref(pos syntax.Position) *Error {
	return &Error{
		code:    4005,
		message: "\"inplace\" and \"weakref\" can't be used on the same reference",
		pos:     pos,
	}
}

func errSortCycle(def *TypeDef) *Error {
	return &Error{
		code:    5000,
		message: fmt.Sprintf("Dependency cycle while sorting defs: %s", def.Name),
		pos:     def.Pos,
	}
}

func errSortIncomplete(got, want int) *Error {
	return &Error{
		code:    5001,
		message: fmt.Sprintf("Sorted %d defs, but expected %d", got, want),
	}
}
