// Package sttypes implements the IEC 61131-3 type system (C7): the
// closed set of builtin type ids, the Type sum type, and a TypeInterner
// that assigns/owns TypeIds for a project.
//
// Named "sttypes" (Structured-Text types) rather than "types" to avoid
// shadowing the standard library's go/types import path in any file that
// needs both.
package sttypes

import (
	"sort"

	"github.com/oxhq/stcore/internal/symbols"
)

// TypeId re-exports symbols.TypeId so callers that already import
// internal/symbols don't need a second name for the same handle.
type TypeId = symbols.TypeId

// Builtin type ids are reserved low-numbered handles (§3.6). Order within
// the block is not semantically meaningful except that 0 is reserved
// (NoType, defined in internal/symbols) and is never a valid builtin.
const (
	Bool TypeId = iota + 1
	Sint
	Int
	Dint
	Lint
	Usint
	Uint
	Udint
	Ulint
	Real
	Lreal
	Byte
	Word
	Dword
	Lword
	String
	WString
	Char
	WChar
	Time
	LTime
	Date
	LDate
	TOD
	LTOD
	DT
	LDT

	Any
	AnyNum
	AnyInt
	AnyReal
	AnyBit
	AnyString
	AnyDate
	AnyChars
	AnyDuration
	AnyUnsigned
	AnySigned
	AnyMagnitude
	AnyElementary
	AnyDerived

	firstUserType // first TypeId a TypeInterner hands out for user types
)

// builtinNames maps every builtin TypeId to its canonical IEC spelling.
var builtinNames = map[TypeId]string{
	Bool: "BOOL", Sint: "SINT", Int: "INT", Dint: "DINT", Lint: "LINT",
	Usint: "USINT", Uint: "UINT", Udint: "UDINT", Ulint: "ULINT",
	Real: "REAL", Lreal: "LREAL",
	Byte: "BYTE", Word: "WORD", Dword: "DWORD", Lword: "LWORD",
	String: "STRING", WString: "WSTRING", Char: "CHAR", WChar: "WCHAR",
	Time: "TIME", LTime: "LTIME", Date: "DATE", LDate: "LDATE",
	TOD: "TOD", LTOD: "LTOD", DT: "DT", LDT: "LDT",
	Any: "ANY", AnyNum: "ANY_NUM", AnyInt: "ANY_INT", AnyReal: "ANY_REAL",
	AnyBit: "ANY_BIT", AnyString: "ANY_STRING", AnyDate: "ANY_DATE",
	AnyChars: "ANY_CHARS", AnyDuration: "ANY_DURATION",
	AnyUnsigned: "ANY_UNSIGNED", AnySigned: "ANY_SIGNED",
	AnyMagnitude: "ANY_MAGNITUDE", AnyElementary: "ANY_ELEMENTARY",
	AnyDerived: "ANY_DERIVED",
}

// builtinByName is the reverse of builtinNames, keyed by uppercase
// spelling, used when resolving a TypeRef's qualified name.
var builtinByName = func() map[string]TypeId {
	m := make(map[string]TypeId, len(builtinNames))
	for id, name := range builtinNames {
		m[name] = id
	}
	return m
}()

// LookupBuiltin returns the TypeId for a builtin type's canonical
// spelling (case already normalized by the caller), if any.
func LookupBuiltin(name string) (TypeId, bool) {
	id, ok := builtinByName[name]
	return id, ok
}

// BuiltinName returns the canonical spelling of a builtin TypeId.
func BuiltinName(id TypeId) (string, bool) {
	n, ok := builtinNames[id]
	return n, ok
}

// IsBuiltin reports whether id names one of the reserved builtin types.
func IsBuiltin(id TypeId) bool {
	_, ok := builtinNames[id]
	return ok
}

// ConcreteBuiltinNames returns every elementary builtin type's canonical
// spelling, sorted, excluding the ANY_* generic type classes that never
// name a concrete variable's type — used by completion's type-annotation
// context (§4.9.1).
func ConcreteBuiltinNames() []string {
	names := make([]string, 0, len(builtinNames))
	for id, name := range builtinNames {
		if id >= Any {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeTag discriminates the Type sum type (§3.6).
type TypeTag int

const (
	TagBuiltin TypeTag = iota
	TagAlias
	TagStruct
	TagUnion
	TagEnum
	TagArray
	TagPointer
	TagReference
	TagFunctionBlock
	TagClass
	TagInterface
	TagString
)

// Field is one member of a Struct or Union type.
type Field struct {
	Name string
	Type TypeId
}

// EnumMember is one (name, ordinal) pair of an Enum type.
type EnumMember struct {
	Name  string
	Value int64
}

// ArrayBound is one dimension's [Lo, Hi] inclusive bound.
type ArrayBound struct {
	Lo, Hi int64
}

// Type is the tagged-union payload for one interned type (§3.6). Only the
// fields relevant to Tag are populated.
type Type struct {
	Tag TypeTag

	// Alias
	AliasOf TypeId

	// Struct / Union
	Fields []Field

	// Enum
	Members  []EnumMember
	EnumBase TypeId

	// Array
	ElementType TypeId
	Bounds      []ArrayBound

	// Pointer / Reference
	PointeeType TypeId

	// FunctionBlock / Class / Interface: self-referential, the declaring
	// symbol's own id. Struct / Union / Enum: the owning TYPE declaration's
	// symbol id, whose children (fields, enum values) are real Symbols in
	// the same table a member-navigation resolver can scan directly (§4.9.3).
	Owner symbols.SymbolId

	// String
	Capacity    uint32
	HasCapacity bool
}
