// Package syntax implements the lossless concrete syntax tree for IEC
// 61131-3 Structured Text: a hand-written lexer (C1), a shared green tree
// with an on-demand red view (C2), and an error-tolerant recursive-descent
// parser (C3).
//
// The design is grounded on the retrieval pack's bufbuild-protocompile
// ast2 package, which solves the same problem (a lossless, arena-indexed
// CST for a domain-specific language) for Protobuf: tokens and nodes live
// in flat arenas indexed by small integer handles, and the "red" view
// (absolute ranges, parent pointers) is reconstructed lazily from a handle
// plus the arena it belongs to, rather than stored on every node.
package syntax

// Kind is a closed enumeration of lexical and syntactic node kinds. It is
// the internal API between the parser and the resolver (§6: "not stable
// across major versions").
type Kind uint16

//go:generate stringer -type=Kind

const (
	KindError Kind = iota // byte(s) the lexer could not classify; keeps round-trip lossless

	// --- trivia ---
	KindWhitespace
	KindLineComment  // // ...
	KindBlockComment // (* ... *)
	KindEOF

	// --- literals ---
	KindIntLiteral
	KindRealLiteral
	KindStringLiteral       // 'single quoted'
	KindWideStringLiteral   // "double quoted"
	KindTypedLiteralPrefix  // <TYPE># as in INT#42 or T#1s
	KindTimeLiteral
	KindDateLiteral
	KindTODLiteral // time-of-day
	KindDTLiteral  // date-and-time
	KindIdent

	// --- punctuation / operators ---
	KindAssign     // :=
	KindArrow      // =>
	KindPow        // **
	KindLe         // <=
	KindGe         // >=
	KindNe         // <>
	KindRange      // ..
	KindCaret      // ^
	KindAmp        // &  (shorthand for AND in bit contexts)
	KindColon      // :
	KindSemi       // ;
	KindComma      // ,
	KindDot        // .
	KindLParen     // (
	KindRParen     // )
	KindLBracket   // [
	KindRBracket   // ]
	KindPlus       // +
	KindMinus      // -
	KindStar       // *
	KindSlash      // /
	KindEq         // =
	KindLt         // <
	KindGt         // >
	KindPercent    // MOD is a keyword, % is not used, reserved
	KindAt         // @ (reserved)

	// --- keywords: declarations ---
	KindKwProgram
	KindKwEndProgram
	KindKwFunction
	KindKwEndFunction
	KindKwFunctionBlock
	KindKwEndFunctionBlock
	KindKwClass
	KindKwEndClass
	KindKwInterface
	KindKwEndInterface
	KindKwMethod
	KindKwEndMethod
	KindKwProperty
	KindKwEndProperty
	KindKwGet
	KindKwEndGet
	KindKwSet
	KindKwEndSet
	KindKwAction
	KindKwEndAction
	KindKwNamespace
	KindKwEndNamespace
	KindKwConfiguration
	KindKwEndConfiguration
	KindKwResource
	KindKwEndResource
	KindKwTask
	KindKwType
	KindKwEndType
	KindKwStruct
	KindKwEndStruct
	KindKwUnion
	KindKwEndUnion
	KindKwUsing
	KindKwExtends
	KindKwImplements
	KindKwFinal
	KindKwAbstract
	KindKwOverride
	KindKwPublic
	KindKwPrivate
	KindKwProtected
	KindKwInternal

	// --- keywords: var blocks ---
	KindKwVar
	KindKwEndVar
	KindKwVarInput
	KindKwVarOutput
	KindKwVarInOut
	KindKwVarTemp
	KindKwVarGlobal
	KindKwVarExternal
	KindKwVarAccess
	KindKwVarConfig
	KindKwConstant
	KindKwRetain
	KindKwPersistent
	KindKwArray
	KindKwOf
	KindKwPointer
	KindKwTo
	KindKwReference

	// --- keywords: statements ---
	KindKwIf
	KindKwThen
	KindKwElsif
	KindKwElse
	KindKwEndIf
	KindKwCase
	KindKwEndCase
	KindKwFor
	KindKwEndFor
	KindKwBy
	KindKwDo
	KindKwWhile
	KindKwEndWhile
	KindKwRepeat
	KindKwUntil
	KindKwEndRepeat
	KindKwReturn
	KindKwExit
	KindKwContinue

	// --- keywords: expressions ---
	KindKwNot
	KindKwAnd
	KindKwXor
	KindKwOr
	KindKwMod
	KindKwThis
	KindKwSuper
	KindKwSizeOf
	KindKwTrue
	KindKwFalse
	KindKwNull

	// --- builtin type keywords (lexed as identifiers, classified by resolver) ---
	// (kept out of the keyword set deliberately: IEC type names are not
	// reserved words, so BOOL/INT/etc. lex as KindIdent and are recognized
	// by the type system, not the lexer.)

	// --- node kinds ---
	KindSourceFile
	KindUsingDirective
	KindNamespace
	KindProgram
	KindFunction
	KindFunctionBlock
	KindClass
	KindInterfaceDecl
	KindMethod
	KindProperty
	KindPropertyGet
	KindPropertySet
	KindAction
	KindConfiguration
	KindResource
	KindTask
	KindTypeDecl
	KindStructDef
	KindUnionDef
	KindEnumDef
	KindEnumValue
	KindVarBlock
	KindVarDecl
	KindName
	KindQualifiedName
	KindNameRef
	KindFieldExpr
	KindCallExpr
	KindArgList
	KindArg
	KindIndexExpr
	KindDerefExpr
	KindAddrExpr
	KindBinaryExpr
	KindUnaryExpr
	KindParenExpr
	KindLiteral
	KindTypeRef
	KindArrayTypeRef
	KindExtendsClause
	KindImplementsClause
	KindStmtList
	KindAssignStmt
	KindIfStmt
	KindCaseStmt
	KindCaseBranch
	KindElseBranch
	KindForStmt
	KindWhileStmt
	KindRepeatStmt
	KindReturnStmt
	KindExitStmt
	KindContinueStmt
	KindJmpStmt
	KindLabelStmt
	KindExprStmt
	KindEmptyStmt
	KindCondition
	KindThisExpr
	KindSuperExpr
	KindSizeOfExpr
	KindInitializerList
	KindArrayInitializer

	kindSentinel // not a real kind; used to size lookup tables
)

// IsTrivia reports whether k is whitespace or a comment: first-class
// tokens that carry no syntactic weight but must round-trip verbatim
// (§3.2, §4.1).
func (k Kind) IsTrivia() bool {
	switch k {
	case KindWhitespace, KindLineComment, KindBlockComment:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether k is one of the ST reserved keywords.
func (k Kind) IsKeyword() bool {
	return k >= KindKwProgram && k <= KindKwNull
}

// IsNode reports whether k tags a GreenNode (as opposed to a GreenToken).
func (k Kind) IsNode() bool {
	return k >= KindSourceFile && k < kindSentinel
}

// keywords maps the case-folded keyword spelling to its Kind. Populated in
// an init() so the literal table below stays readable.
var keywords = map[string]Kind{
	"program": KindKwProgram, "end_program": KindKwEndProgram,
	"function": KindKwFunction, "end_function": KindKwEndFunction,
	"function_block": KindKwFunctionBlock, "end_function_block": KindKwEndFunctionBlock,
	"class": KindKwClass, "end_class": KindKwEndClass,
	"interface": KindKwInterface, "end_interface": KindKwEndInterface,
	"method": KindKwMethod, "end_method": KindKwEndMethod,
	"property": KindKwProperty, "end_property": KindKwEndProperty,
	"get": KindKwGet, "end_get": KindKwEndGet,
	"set": KindKwSet, "end_set": KindKwEndSet,
	"action": KindKwAction, "end_action": KindKwEndAction,
	"namespace": KindKwNamespace, "end_namespace": KindKwEndNamespace,
	"configuration": KindKwConfiguration, "end_configuration": KindKwEndConfiguration,
	"resource": KindKwResource, "end_resource": KindKwEndResource,
	"task": KindKwTask,
	"type": KindKwType, "end_type": KindKwEndType,
	"struct": KindKwStruct, "end_struct": KindKwEndStruct,
	"union": KindKwUnion, "end_union": KindKwEndUnion,
	"using": KindKwUsing, "extends": KindKwExtends, "implements": KindKwImplements,
	"final": KindKwFinal, "abstract": KindKwAbstract, "override": KindKwOverride,
	"public": KindKwPublic, "private": KindKwPrivate, "protected": KindKwProtected, "internal": KindKwInternal,

	"var": KindKwVar, "end_var": KindKwEndVar,
	"var_input": KindKwVarInput, "var_output": KindKwVarOutput, "var_in_out": KindKwVarInOut,
	"var_temp": KindKwVarTemp, "var_global": KindKwVarGlobal, "var_external": KindKwVarExternal,
	"var_access": KindKwVarAccess, "var_config": KindKwVarConfig,
	"constant": KindKwConstant, "retain": KindKwRetain, "persistent": KindKwPersistent,
	"array": KindKwArray, "of": KindKwOf, "pointer": KindKwPointer, "to": KindKwTo,
	"reference": KindKwReference,

	"if": KindKwIf, "then": KindKwThen, "elsif": KindKwElsif, "else": KindKwElse, "end_if": KindKwEndIf,
	"case": KindKwCase, "end_case": KindKwEndCase,
	"for": KindKwFor, "end_for": KindKwEndFor, "by": KindKwBy, "do": KindKwDo,
	"while": KindKwWhile, "end_while": KindKwEndWhile,
	"repeat": KindKwRepeat, "until": KindKwUntil, "end_repeat": KindKwEndRepeat,
	"return": KindKwReturn, "exit": KindKwExit, "continue": KindKwContinue,

	"not": KindKwNot, "and": KindKwAnd, "xor": KindKwXor, "or": KindKwOr, "mod": KindKwMod,
	"this": KindKwThis, "super": KindKwSuper, "sizeof": KindKwSizeOf,
	"true": KindKwTrue, "false": KindKwFalse, "null": KindKwNull,
}

// LookupKeyword returns the Kind for a case-folded identifier spelling, or
// (KindIdent, false) if it is not a reserved word.
func LookupKeyword(lower string) (Kind, bool) {
	k, ok := keywords[lower]
	return k, ok
}
