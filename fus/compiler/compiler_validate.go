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

// Validate checks every def and returns all the problems it finds:
// defs that were never defined, inplace and weakref references to types
// that don't support them, and circular aliases or inplace references.
func Validate(defs []*TypeDef) []*Error {
	var errs []*Error
	for _, def := range defs {
		typ := &def.Type
		switch typ.Tag {
		case TAG_UNDEFINED:
			if !def.IsExtern {
				errs = append(errs, errUndefined(def))
			}
		case TAG_ARRAY:
			for _, err := range checkRef(typ.Subtype, def) {
				errs = append(errs, err.within("while validating: %s", def.Name))
			}
		case TAG_STRUCT, TAG_UNION:
			for _, field := range typ.Fields {
				for _, err := range checkRef(&field.Ref, def) {
					errs = append(errs, err.within(
						"while validating field %s of: %s", field.Name, def.Name,
					))
				}
			}
		case TAG_ALIAS:
			if err := circularAlias(typ.Def, def, nil); err != nil {
				errs = append(errs, err.within("while validating: %s", def.Name))
			}
		}
	}
	return errs
}

func checkRef(ref *TypeRef, parent *TypeDef) []*Error {
	errs := checkRefTarget(ref)
	if err := circularInplaceRef(ref, parent, make(map[*TypeDef]struct{})); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// checkRefTarget checks the ref's modifiers against the type it resolves
// to, noting each alias followed along the way.
func checkRefTarget(ref *TypeRef) []*Error {
	var errs []*Error
	if ref.IsInplace && ref.IsWeakref {
		errs = append(errs, errInplaceWeakref(ref.Pos))
	}

	var aliases []*TypeDef
	seen := make(map[*TypeDef]struct{})
	typ := &ref.Type
	for typ.Tag == TAG_ALIAS {
		if _, loop := seen[typ.Def]; loop {
			// reported as a circular alias
			return errs
		}
		seen[typ.Def] = struct{}{}
		aliases = append(aliases, typ.Def)
		typ = &typ.Def.Type
	}

	var targetErrs []*Error
	if ref.IsInplace && !typ.Tag.SupportsInplace() {
		targetErrs = append(targetErrs, errInplaceNotAllowed(typ.Tag, ref.Pos))
	}
	if ref.IsWeakref && !ref.Type.SupportsWeakref() {
		targetErrs = append(targetErrs, errWeakrefNotAllowed(typ.Tag, ref.Pos))
	}
	for _, err := range targetErrs {
		for ii := len(aliases) - 1; ii >= 0; ii-- {
			err.within("aliased as: %s", aliases[ii].Name)
		}
	}
	return append(errs, targetErrs...)
}

// circularAlias follows the alias chain starting at def, and reports an
// error if it leads back to parent.
func circularAlias(def, parent *TypeDef, seen map[*TypeDef]struct{}) *Error {
	if def.Type.Tag != TAG_ALIAS {
		return nil
	}
	if def == parent {
		return errCircularAlias(def)
	}
	if seen == nil {
		seen = make(map[*TypeDef]struct{})
	}
	if _, loop := seen[def]; loop {
		return nil
	}
	seen[def] = struct{}{}
	if err := circularAlias(def.Type.Def, parent, seen); err != nil {
		return err.within("aliased as: %s", def.Name)
	}
	return nil
}

func circularInplaceRef(ref *TypeRef, parent *TypeDef, seen map[*TypeDef]struct{}) *Error {
	if !ref.IsInplace {
		return nil
	}
	def := ref.Type.TargetDef()
	if def == nil {
		return nil
	}
	return circularInplaceDef(def, parent, seen)
}

// circularInplaceDef reports an error if def embeds parent, directly or
// through other inplace references.
func circularInplaceDef(def, parent *TypeDef, seen map[*TypeDef]struct{}) *Error {
	if def == parent {
		return errCircularInplace(def)
	}
	if _, loop := seen[def]; loop {
		return nil
	}
	seen[def] = struct{}{}

	typ := &def.Type
	switch typ.Tag {
	case TAG_ARRAY:
		if err := circularInplaceRef(typ.Subtype, parent, seen); err != nil {
			return err.within("in: %s", def.Name)
		}
	case TAG_STRUCT, TAG_UNION:
		for _, field := range typ.Fields {
			if err := circularInplaceRef(&field.Ref, parent, seen); err != nil {
				return err.within("in field %s of: %s", field.Name, def.Name)
			}
		}
	case TAG_ALIAS:
		if err := circularInplaceDef(typ.Def, parent, seen); err != nil {
			return err.within("aliased as: %s", def.Name)
		}
	}
	return nil
}
