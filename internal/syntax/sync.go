package syntax

// syncSet is the set of token kinds the statement-level error recovery in
// §4.3 treats as synchronization points: statement terminators, every
// END_* keyword, and keywords that start a new top-level or block
// construct. A failed production skips tokens up to — but not including —
// the next token in this set.
var syncSet = map[Kind]bool{
	KindSemi: true,

	KindKwEndProgram: true, KindKwEndFunction: true, KindKwEndFunctionBlock: true,
	KindKwEndClass: true, KindKwEndInterface: true, KindKwEndMethod: true,
	KindKwEndProperty: true, KindKwEndGet: true, KindKwEndSet: true,
	KindKwEndAction: true, KindKwEndNamespace: true, KindKwEndConfiguration: true,
	KindKwEndResource: true, KindKwEndType: true, KindKwEndStruct: true,
	KindKwEndUnion: true, KindKwEndVar: true, KindKwEndIf: true,
	KindKwEndCase: true, KindKwEndFor: true, KindKwEndWhile: true,
	KindKwEndRepeat: true,

	KindKwElse: true, KindKwElsif: true, KindKwUntil: true,

	KindKwProgram: true, KindKwFunction: true, KindKwFunctionBlock: true,
	KindKwClass: true, KindKwInterface: true, KindKwNamespace: true,
	KindKwConfiguration: true, KindKwType: true, KindKwUsing: true,

	KindEOF: true,
}

// stmtStartSet is the set of token kinds that can begin a new statement —
// used by the semicolon-insertion heuristic (§4.3): if the parser expects
// `;` but the next token is in this set (or is ELSE/ELSIF/UNTIL/an
// enclosing END_*), it records the error without consuming anything.
var stmtStartSet = map[Kind]bool{
	KindKwIf: true, KindKwCase: true, KindKwFor: true, KindKwWhile: true,
	KindKwRepeat: true, KindKwReturn: true, KindKwExit: true, KindKwContinue: true,
	KindIdent: true, KindKwThis: true, KindKwSuper: true, KindSemi: true,
}

var endKeywords = map[Kind]bool{
	KindKwEndProgram: true, KindKwEndFunction: true, KindKwEndFunctionBlock: true,
	KindKwEndClass: true, KindKwEndInterface: true, KindKwEndMethod: true,
	KindKwEndProperty: true, KindKwEndGet: true, KindKwEndSet: true,
	KindKwEndAction: true, KindKwEndNamespace: true, KindKwEndConfiguration: true,
	KindKwEndResource: true, KindKwEndType: true, KindKwEndStruct: true,
	KindKwEndUnion: true, KindKwEndVar: true, KindKwEndIf: true,
	KindKwEndCase: true, KindKwEndFor: true, KindKwEndWhile: true,
	KindKwEndRepeat: true,
}

func canStartStatement(k Kind) bool {
	if stmtStartSet[k] {
		return true
	}
	switch k {
	case KindKwElse, KindKwElsif, KindKwUntil:
		return true
	}
	return endKeywords[k]
}
