// Package symbols implements the symbol and scope model (C4) and the
// per-file resolver (C5): walking a file's CST into scopes, declarations,
// and an offset-ordered expression index.
//
// Symbol/Type kinds are modeled as Go tagged unions (a Kind enum plus a
// payload struct per variant) rather than an interface-per-kind hierarchy,
// matching the retrieval pack's preference for flat sum types over OO
// polymorphism where a closed set of variants is known up front.
package symbols

import "github.com/oxhq/stcore/host"

// SymbolId is an opaque handle into a SymbolTable.
type SymbolId uint32

// TypeId is an opaque handle into a TypeInterner (internal/sttypes).
type TypeId uint32

// NoType is the zero TypeId, used where typing has not run yet.
const NoType TypeId = 0

// ScopeId is an opaque handle into a ScopeTree.
type ScopeId uint32

// GlobalScope is the root scope of every ScopeTree.
const GlobalScope ScopeId = 0

// ExprId is an opaque handle identifying one expression node within a
// file, assigned in source order by the per-file resolver.
type ExprId uint32

// Visibility controls member-access reachability (§4.6).
type Visibility int

const (
	Public Visibility = iota
	Private
	Protected
	Internal
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "PUBLIC"
	case Private:
		return "PRIVATE"
	case Protected:
		return "PROTECTED"
	case Internal:
		return "INTERNAL"
	default:
		return "PUBLIC"
	}
}

// Modifiers carries the handful of boolean declaration modifiers the
// language allows on classes/methods/properties.
type Modifiers struct {
	IsFinal    bool
	IsAbstract bool
	IsOverride bool
}

// VarQualifier classifies a Variable symbol by the VAR_* block it was
// declared in.
type VarQualifier int

const (
	QualLocal VarQualifier = iota
	QualInput
	QualOutput
	QualInOut
	QualTemp
	QualStatic
	QualGlobal
	QualExternal
	QualAccess
	QualConfig
)

// ParamDirection classifies a Parameter symbol (used for completion's
// formal-argument templates, §4.9.1).
type ParamDirection int

const (
	DirIn ParamDirection = iota
	DirOut
	DirInOut
)

// SymbolKindTag discriminates the Symbol.Kind union.
type SymbolKindTag int

const (
	KindProgram SymbolKindTag = iota
	KindProgramInstance
	KindConfiguration
	KindResource
	KindTask
	KindNamespace
	KindFunction
	KindFunctionBlock
	KindClass
	KindMethod
	KindProperty
	KindInterface
	KindType
	KindEnumValue
	KindVariable
	KindConstant
	KindParameter
)

// SymbolKind is the tagged-union payload distinguishing Symbol variants
// (§3.4). Only the fields relevant to Tag are meaningful; zero values are
// used for the rest.
type SymbolKind struct {
	Tag SymbolKindTag

	// Function, Method: arity is the number of VAR_INPUT + VAR_IN_OUT
	// parameters, used by the project resolver's overload-compatibility
	// check (§4.6).
	ReturnType TypeId
	Arity      int
	HasReturn  bool

	// Variable
	VarQualifier VarQualifier
	IsConstant   bool
	IsRetain     bool
	IsPersistent bool

	// EnumValue
	EnumIntValue int64

	// Parameter
	ParamDirection ParamDirection
}

// Origin records that a merged-project Symbol was copied in from a
// specific file's local SymbolTable (§3.8).
type Origin struct {
	File     host.FileId
	LocalID  SymbolId
}

// Symbol is one named declaration (§3.4).
type Symbol struct {
	ID        SymbolId
	Name      string // original display case
	Kind      SymbolKind
	Parent    SymbolId // 0 (no parent) unless HasParent
	HasParent bool
	Origin    Origin
	HasOrigin bool
	TypeID    TypeId
	Range     host.TextRange
	Visibility Visibility
	Modifiers Modifiers
	Doc       string
	HasDoc    bool
}
