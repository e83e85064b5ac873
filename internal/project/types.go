package project

import (
	"fmt"

	"github.com/oxhq/stcore/internal/diagnostics"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
)

// bindTypes runs the deferred type-binding pass (§4.6). Per-file resolution
// left every declared TypeRef as source text (symbols.SymbolTable's
// typeRefText), because binding a field's type may need a user type
// declared in a different file; this pass can see the fully merged table,
// so it runs once, after copySymbols and resolveDerivation.
//
// Every TypeDecl/FunctionBlock/Class/Interface symbol gets its own Type
// interned first (a struct/union's fields, an enum's members, or an
// alias's target — composite/FB/Class/Interface types all get their own
// TypeId so navigation lands on the right declaration). Every other symbol
// that recorded a TypeRefText (variables, constants, parameters, function
// and method return types) is then bound against the same interner.
func (mb *merger) bindTypes() {
	tbl := mb.model.MergedSymbols
	interner := mb.model.Types

	var resolveUserType func(symID symbols.SymbolId) sttypes.TypeId
	resolveUserType = func(symID symbols.SymbolId) sttypes.TypeId {
		return interner.InternForSymbol(symID, func() sttypes.Type {
			return mb.buildType(symID, resolveUserType)
		})
	}

	declaring := map[symbols.SymbolId]bool{}
	for _, sym := range tbl.Iter() {
		switch sym.Kind.Tag {
		case symbols.KindType, symbols.KindFunctionBlock, symbols.KindClass, symbols.KindInterface:
			id := resolveUserType(sym.ID)
			tbl.SetTypeID(sym.ID, id)
			declaring[sym.ID] = true
		}
	}

	for _, sym := range tbl.Iter() {
		if declaring[sym.ID] {
			continue
		}
		text, ok := tbl.TypeRefText(sym.ID)
		if !ok {
			continue
		}
		scope := mb.scopeFor(sym.Parent, sym.HasParent)
		typeID := sttypes.ResolveTypeRefText(text, tbl, scope, interner, resolveUserType)
		if typeID == symbols.NoType {
			mb.model.Diagnostics = append(mb.model.Diagnostics, diagnostics.Diagnostic{
				Code:     diagnostics.EUnresolvedType,
				Severity: diagnostics.DefaultSeverity(diagnostics.EUnresolvedType),
				Message:  fmt.Sprintf("%q names an unresolved type %q", sym.Name, text),
				Range:    sym.Range,
			})
			continue
		}
		tbl.SetTypeID(sym.ID, typeID)
	}
}

// buildType constructs the Type payload for a TypeDecl/FunctionBlock/
// Class/Interface symbol. FunctionBlock/Class/Interface carry no Fields of
// their own (member lookup goes through the scope tree, not Type.Fields);
// their Type exists so a hover or "go to type" query on a variable of that
// kind has a TypeId to resolve through.
func (mb *merger) buildType(symID symbols.SymbolId, resolveUser func(symbols.SymbolId) sttypes.TypeId) sttypes.Type {
	tbl := mb.model.MergedSymbols
	sym, _ := tbl.Get(symID)

	switch sym.Kind.Tag {
	case symbols.KindFunctionBlock:
		return sttypes.Type{Tag: sttypes.TagFunctionBlock, Owner: symID}
	case symbols.KindClass:
		return sttypes.Type{Tag: sttypes.TagClass, Owner: symID}
	case symbols.KindInterface:
		return sttypes.Type{Tag: sttypes.TagInterface, Owner: symID}
	default:
		return mb.buildNamedType(symID, resolveUser)
	}
}

// buildNamedType builds the Type for a TYPE ... END_TYPE declaration: an
// alias if the per-file resolver recorded a bare TypeRef alias target, an
// Enum if its members are EnumValue children, else a Struct/Union built
// from its Variable children. The grammar does not distinguish STRUCT from
// UNION at the symbol level (walkVarBlockFields declares both the same
// way), so both are modeled as TagStruct; nothing downstream currently
// depends on telling them apart. Struct/Union/Enum Types carry Owner just
// like FunctionBlock/Class/Interface: their fields and enum values are
// themselves real Symbols parented to symID (walkVarBlockFields,
// walkTypeDecl's enum branch), so a member-navigation resolver can scan the
// merged table for symbols with Parent == Owner uniformly across every
// member kind, without special-casing structural Fields/Members.
func (mb *merger) buildNamedType(symID symbols.SymbolId, resolveUser func(symbols.SymbolId) sttypes.TypeId) sttypes.Type {
	tbl := mb.model.MergedSymbols
	sym, _ := tbl.Get(symID)

	if text, ok := tbl.TypeRefText(symID); ok {
		scope := mb.scopeFor(sym.Parent, sym.HasParent)
		aliasOf := sttypes.ResolveTypeRefText(text, tbl, scope, mb.model.Types, resolveUser)
		return sttypes.Type{Tag: sttypes.TagAlias, AliasOf: aliasOf}
	}

	memberScope := mb.scopeFor(symID, true)
	var members []sttypes.EnumMember
	var fields []sttypes.Field
	for _, child := range tbl.Iter() {
		if !child.HasParent || child.Parent != symID {
			continue
		}
		switch child.Kind.Tag {
		case symbols.KindEnumValue:
			members = append(members, sttypes.EnumMember{Name: child.Name, Value: child.Kind.EnumIntValue})
		case symbols.KindVariable:
			fieldType := symbols.NoType
			if text, ok := tbl.TypeRefText(child.ID); ok {
				fieldType = sttypes.ResolveTypeRefText(text, tbl, memberScope, mb.model.Types, resolveUser)
			}
			fields = append(fields, sttypes.Field{Name: child.Name, Type: fieldType})
		}
	}
	if len(members) > 0 {
		return sttypes.Type{Tag: sttypes.TagEnum, Members: members, EnumBase: sttypes.Int, Owner: symID}
	}
	return sttypes.Type{Tag: sttypes.TagStruct, Fields: fields, Owner: symID}
}
