package syntax

// ParseError is a single recoverable parse failure. The tree itself always
// remains well-formed (§4.3, §7): a ParseError never prevents the rest of
// the file from parsing, and ranges stay valid even where a production
// could not complete.
type ParseError struct {
	Message string
	Range   TextRange
}

// Parse lexes and parses src, always returning a well-formed SourceFile
// green node plus whatever errors recovery recorded (§8 "Parser
// totality": Parse never panics and always terminates).
func Parse(src string) (*GreenNode, []ParseError) {
	p := newParser(src)
	p.parseSourceFile()
	return p.sink.Build(), p.errors
}

// ParseTypeRef parses src as a single TypeRef (or ArrayTypeRef) fragment,
// for re-parsing a symbol's recorded TypeRef source text (§4.6's deferred
// type-binding pass) back into a CST node. Unlike Parse, the returned tree
// has no SourceFile wrapper; its single top-level node is the TypeRef.
func ParseTypeRef(src string) (*GreenNode, []ParseError) {
	p := newParser(src)
	p.parseTypeRef()
	p.flushTrailingTrivia()
	return p.sink.Build(), p.errors
}

type parser struct {
	all    []GreenToken
	starts []Offset // start offset of all[i]
	sig    []int    // indices into all[] that are non-trivia
	sigPos int

	// allCursor is how many raw tokens (trivia included) have been emitted
	// into the event stream so far; emitUpTo advances it.
	allCursor int

	sink   eventSink
	errors []ParseError
}

func newParser(src string) *parser {
	all := Lex(src)
	starts := make([]Offset, len(all))
	var off Offset
	var sig []int
	for i, t := range all {
		starts[i] = off
		if !t.Kind.IsTrivia() {
			sig = append(sig, i)
		}
		off += Offset(t.Len())
	}
	return &parser{all: all, starts: starts, sig: sig}
}

// --- low-level token access -------------------------------------------------

func (p *parser) sigAt(n int) int {
	i := p.sigPos + n
	if i < 0 || i >= len(p.sig) {
		return -1
	}
	return p.sig[i]
}

func (p *parser) nth(n int) Kind {
	i := p.sigAt(n)
	if i < 0 {
		return KindEOF
	}
	return p.all[i].Kind
}

func (p *parser) at(k Kind) bool { return p.nth(0) == k }

func (p *parser) atAny(ks ...Kind) bool {
	cur := p.nth(0)
	for _, k := range ks {
		if cur == k {
			return true
		}
	}
	return false
}

func (p *parser) currentOffset() Offset {
	i := p.sigAt(0)
	if i < 0 {
		if len(p.all) == 0 {
			return 0
		}
		return p.starts[len(p.all)-1] + Offset(p.all[len(p.all)-1].Len())
	}
	return p.starts[i]
}

func (p *parser) eof() bool { return p.sigAt(0) < 0 }

// emitUpTo flushes every raw token (trivia included) up to (and including,
// if through=true) the significant token at index targetAll.
func (p *parser) emitUpTo(targetAll int, through bool) {
	// allPos tracks how many raw tokens have been emitted so far; derive
	// it from the trivia/sig bookkeeping lazily via a cursor field.
	for p.allCursor < targetAll {
		p.sink.Token(p.all[p.allCursor])
		p.allCursor++
	}
	if through && p.allCursor == targetAll && targetAll < len(p.all) {
		p.sink.Token(p.all[p.allCursor])
		p.allCursor++
	}
}

// bump consumes the current significant token (plus any preceding trivia)
// into the tree and advances.
func (p *parser) bump() GreenToken {
	i := p.sigAt(0)
	if i < 0 {
		return GreenToken{Kind: KindEOF}
	}
	p.emitUpTo(i, true)
	p.sigPos++
	return p.all[i]
}

// flushTrailingTrivia emits any remaining raw tokens (trailing trivia and
// the synthetic EOF marker's worth of nothing) at end of file.
func (p *parser) flushTrailingTrivia() {
	p.emitUpTo(len(p.all), false)
}

func (p *parser) errorAt(rng TextRange, msg string) {
	p.errors = append(p.errors, ParseError{Message: msg, Range: rng})
}

func (p *parser) errorHere(msg string) {
	off := p.currentOffset()
	p.errorAt(TextRange{Start: off, End: off}, msg)
}

// expect bumps the current token if it matches k, else records an error
// and leaves the cursor in place for recovery to handle.
func (p *parser) expect(k Kind) bool {
	if p.at(k) {
		p.bump()
		return true
	}
	p.errorHere("expected " + kindLabel(k))
	return false
}

// endKeywordLabels names every END_* keyword kindLabel may be asked to
// render. Kept distinct from kindLabel's kind-per-punctuation cases so
// that a failed END_* expectation always carries the specific keyword
// that was missing — callers distinguish "ran out of input" from "found
// the wrong keyword" (diagnostics E002/E003) by range alone, but both
// need a message naming which END_* was expected in the first place.
var endKeywordLabels = map[Kind]string{
	KindKwEndProgram:       "'END_PROGRAM'",
	KindKwEndFunction:      "'END_FUNCTION'",
	KindKwEndFunctionBlock: "'END_FUNCTION_BLOCK'",
	KindKwEndClass:         "'END_CLASS'",
	KindKwEndInterface:     "'END_INTERFACE'",
	KindKwEndMethod:        "'END_METHOD'",
	KindKwEndProperty:      "'END_PROPERTY'",
	KindKwEndGet:           "'END_GET'",
	KindKwEndSet:           "'END_SET'",
	KindKwEndAction:        "'END_ACTION'",
	KindKwEndNamespace:     "'END_NAMESPACE'",
	KindKwEndConfiguration: "'END_CONFIGURATION'",
	KindKwEndResource:      "'END_RESOURCE'",
	KindKwEndType:          "'END_TYPE'",
	KindKwEndStruct:        "'END_STRUCT'",
	KindKwEndUnion:         "'END_UNION'",
	KindKwEndVar:           "'END_VAR'",
	KindKwEndIf:            "'END_IF'",
	KindKwEndCase:          "'END_CASE'",
	KindKwEndFor:           "'END_FOR'",
	KindKwEndWhile:         "'END_WHILE'",
	KindKwEndRepeat:        "'END_REPEAT'",
}

func kindLabel(k Kind) string {
	switch k {
	case KindSemi:
		return "';'"
	case KindColon:
		return "':'"
	case KindAssign:
		return "':='"
	case KindRParen:
		return "')'"
	case KindRBracket:
		return "']'"
	case KindKwThen:
		return "'THEN'"
	case KindKwDo:
		return "'DO'"
	case KindKwOf:
		return "'OF'"
	case KindIdent:
		return "an identifier"
	}
	if label, ok := endKeywordLabels[k]; ok {
		return label
	}
	return "a token"
}

// --- top level ---------------------------------------------------------

func (p *parser) parseSourceFile() {
	root := p.sink.Start()
	for !p.eof() {
		p.parseTopLevelItem()
	}
	p.flushTrailingTrivia()
	p.sink.Complete(root, KindSourceFile)
}

func (p *parser) parseTopLevelItem() {
	switch p.nth(0) {
	case KindKwUsing:
		p.parseUsingDirective()
	case KindKwNamespace:
		p.parsePOU(KindKwNamespace, KindKwEndNamespace, KindNamespace, true)
	case KindKwProgram:
		p.parsePOU(KindKwProgram, KindKwEndProgram, KindProgram, true)
	case KindKwFunctionBlock:
		p.parseFunctionBlockLike()
	case KindKwFunction:
		p.parseFunctionLike()
	case KindKwClass:
		p.parseClassLike()
	case KindKwInterface:
		p.parseInterfaceDecl()
	case KindKwConfiguration:
		p.parseConfiguration()
	case KindKwType:
		p.parseTypeDecl()
	default:
		m := p.sink.Start()
		p.errorHere("unexpected token at top level")
		p.bump()
		p.sink.Complete(m, KindError)
	}
}

func (p *parser) parseUsingDirective() {
	m := p.sink.Start()
	p.expect(KindKwUsing)
	p.parseQualifiedName()
	p.expectSemi()
	p.sink.Complete(m, KindUsingDirective)
}

// parsePOU parses a simple `KW name (modifiers) varblocks stmtlist END_KW`
// construct such as NAMESPACE or PROGRAM. hasBody controls whether a
// StmtList is parsed (Namespace has member POUs instead, not a body).
func (p *parser) parsePOU(open, end Kind, kind Kind, hasBody bool) {
	m := p.sink.Start()
	p.expect(open)
	p.parseName()
	if kind == KindNamespace {
		for !p.eof() && !p.at(end) {
			p.parseTopLevelItem()
		}
	} else {
		p.parseVarBlocks()
		if hasBody {
			p.parseStmtList()
		}
	}
	p.expect(end)
	p.sink.Complete(m, kind)
}

func (p *parser) parseFunctionLike() {
	m := p.sink.Start()
	p.expect(KindKwFunction)
	p.parseName()
	if p.at(KindColon) {
		p.bump()
		p.parseTypeRef()
	}
	p.parseVarBlocks()
	p.parseStmtList()
	p.expect(KindKwEndFunction)
	p.sink.Complete(m, KindFunction)
}

func (p *parser) parseFunctionBlockLike() {
	m := p.sink.Start()
	p.expect(KindKwFunctionBlock)
	p.parseName()
	if p.at(KindKwExtends) {
		p.parseExtendsClause()
	}
	if p.at(KindKwImplements) {
		p.parseImplementsClause()
	}
	p.parseVarBlocks()
	p.parseStmtList()
	p.parseMemberDecls()
	p.expect(KindKwEndFunctionBlock)
	p.sink.Complete(m, KindFunctionBlock)
}

func (p *parser) parseClassLike() {
	m := p.sink.Start()
	p.expect(KindKwClass)
	p.parseName()
	if p.at(KindKwExtends) {
		p.parseExtendsClause()
	}
	if p.at(KindKwImplements) {
		p.parseImplementsClause()
	}
	p.parseVarBlocks()
	p.parseMemberDecls()
	p.expect(KindKwEndClass)
	p.sink.Complete(m, KindClass)
}

func (p *parser) parseInterfaceDecl() {
	m := p.sink.Start()
	p.expect(KindKwInterface)
	p.parseName()
	if p.at(KindKwExtends) {
		p.parseExtendsClause()
	}
	p.parseMemberDecls()
	p.expect(KindKwEndInterface)
	p.sink.Complete(m, KindInterfaceDecl)
}

func (p *parser) parseConfiguration() {
	m := p.sink.Start()
	p.expect(KindKwConfiguration)
	p.parseName()
	p.parseVarBlocks()
	for p.at(KindKwResource) {
		p.parseResource()
	}
	p.expect(KindKwEndConfiguration)
	p.sink.Complete(m, KindConfiguration)
}

func (p *parser) parseResource() {
	m := p.sink.Start()
	p.expect(KindKwResource)
	p.parseName()
	p.parseVarBlocks()
	for p.at(KindKwTask) {
		p.parseTask()
	}
	p.expect(KindKwEndResource)
	p.sink.Complete(m, KindResource)
}

func (p *parser) parseTask() {
	m := p.sink.Start()
	p.expect(KindKwTask)
	p.parseName()
	if p.at(KindLParen) {
		p.bump()
		for !p.eof() && !p.at(KindRParen) {
			p.bump()
		}
		p.expect(KindRParen)
	}
	p.expectSemi()
	p.sink.Complete(m, KindTask)
}

// parseMemberDecls parses zero or more METHOD/PROPERTY/ACTION members
// inside a Class/FunctionBlock/Interface, stopping at the enclosing END_*.
func (p *parser) parseMemberDecls() {
	for {
		switch p.nth(0) {
		case KindKwMethod:
			p.parseMethod()
		case KindKwProperty:
			p.parseProperty()
		case KindKwAction:
			p.parseAction()
		default:
			return
		}
	}
}

var visibilityKw = map[Kind]bool{
	KindKwPublic: true, KindKwPrivate: true, KindKwProtected: true, KindKwInternal: true,
}

func (p *parser) parseModifiers() {
	for visibilityKw[p.nth(0)] || p.atAny(KindKwFinal, KindKwAbstract, KindKwOverride) {
		p.bump()
	}
}

func (p *parser) parseMethod() {
	m := p.sink.Start()
	p.expect(KindKwMethod)
	p.parseModifiers()
	p.parseName()
	if p.at(KindColon) {
		p.bump()
		p.parseTypeRef()
	}
	p.parseVarBlocks()
	p.parseStmtList()
	p.expect(KindKwEndMethod)
	p.sink.Complete(m, KindMethod)
}

func (p *parser) parseProperty() {
	m := p.sink.Start()
	p.expect(KindKwProperty)
	p.parseModifiers()
	p.parseName()
	if p.at(KindColon) {
		p.bump()
		p.parseTypeRef()
	}
	for p.atAny(KindKwGet, KindKwSet) {
		if p.at(KindKwGet) {
			gm := p.sink.Start()
			p.bump()
			p.parseVarBlocks()
			p.parseStmtList()
			p.expect(KindKwEndGet)
			p.sink.Complete(gm, KindPropertyGet)
		} else {
			sm := p.sink.Start()
			p.bump()
			p.parseVarBlocks()
			p.parseStmtList()
			p.expect(KindKwEndSet)
			p.sink.Complete(sm, KindPropertySet)
		}
	}
	p.expect(KindKwEndProperty)
	p.sink.Complete(m, KindProperty)
}

func (p *parser) parseAction() {
	m := p.sink.Start()
	p.expect(KindKwAction)
	p.parseName()
	p.parseStmtList()
	p.expect(KindKwEndAction)
	p.sink.Complete(m, KindAction)
}

func (p *parser) parseExtendsClause() {
	m := p.sink.Start()
	p.expect(KindKwExtends)
	p.parseQualifiedName()
	for p.at(KindComma) {
		p.bump()
		p.parseQualifiedName()
	}
	p.sink.Complete(m, KindExtendsClause)
}

func (p *parser) parseImplementsClause() {
	m := p.sink.Start()
	p.expect(KindKwImplements)
	p.parseQualifiedName()
	for p.at(KindComma) {
		p.bump()
		p.parseQualifiedName()
	}
	p.sink.Complete(m, KindImplementsClause)
}

// --- type declarations ---------------------------------------------------

func (p *parser) parseTypeDecl() {
	m := p.sink.Start()
	p.expect(KindKwType)
	p.parseName()
	p.expect(KindColon)
	switch p.nth(0) {
	case KindKwStruct:
		p.parseStructDef()
	case KindKwUnion:
		p.parseUnionDef()
	case KindLParen:
		p.parseEnumDef()
	default:
		p.parseTypeRef()
	}
	p.expectSemi()
	p.expect(KindKwEndType)
	p.sink.Complete(m, KindTypeDecl)
}

func (p *parser) parseStructDef() {
	m := p.sink.Start()
	p.expect(KindKwStruct)
	for !p.eof() && !p.at(KindKwEndStruct) {
		p.parseVarDecl()
	}
	p.expect(KindKwEndStruct)
	p.sink.Complete(m, KindStructDef)
}

func (p *parser) parseUnionDef() {
	m := p.sink.Start()
	p.expect(KindKwUnion)
	for !p.eof() && !p.at(KindKwEndUnion) {
		p.parseVarDecl()
	}
	p.expect(KindKwEndUnion)
	p.sink.Complete(m, KindUnionDef)
}

func (p *parser) parseEnumDef() {
	m := p.sink.Start()
	p.expect(KindLParen)
	for !p.eof() && !p.at(KindRParen) {
		ev := p.sink.Start()
		p.expect(KindIdent)
		if p.at(KindAssign) {
			p.bump()
			p.parseExpr(0)
		}
		p.sink.Complete(ev, KindEnumValue)
		if p.at(KindComma) {
			p.bump()
		} else {
			break
		}
	}
	p.expect(KindRParen)
	if p.at(KindColon) {
		// (Name, Name) : BaseType — base integer type qualifier.
		p.bump()
		p.parseTypeRef()
	}
	p.sink.Complete(m, KindEnumDef)
}

// --- var blocks -----------------------------------------------------------

var varBlockOpeners = map[Kind]bool{
	KindKwVar: true, KindKwVarInput: true, KindKwVarOutput: true, KindKwVarInOut: true,
	KindKwVarTemp: true, KindKwVarGlobal: true, KindKwVarExternal: true,
	KindKwVarAccess: true, KindKwVarConfig: true,
}

func (p *parser) parseVarBlocks() {
	for varBlockOpeners[p.nth(0)] {
		p.parseVarBlock()
	}
}

func (p *parser) parseVarBlock() {
	m := p.sink.Start()
	p.bump() // the VAR_* keyword
	for p.atAny(KindKwConstant, KindKwRetain, KindKwPersistent) {
		p.bump()
	}
	for !p.eof() && !p.at(KindKwEndVar) {
		p.parseVarDecl()
	}
	p.expect(KindKwEndVar)
	p.sink.Complete(m, KindVarBlock)
}

func (p *parser) parseVarDecl() {
	m := p.sink.Start()
	p.parseName()
	for p.at(KindComma) {
		p.bump()
		p.parseName()
	}
	p.expect(KindColon)
	p.parseTypeRef()
	if p.at(KindAssign) {
		p.bump()
		p.parseInitializer()
	}
	p.expectSemi()
	p.sink.Complete(m, KindVarDecl)
}

func (p *parser) parseInitializer() {
	if p.at(KindLParen) {
		p.parseInitializerList()
		return
	}
	if p.at(KindLBracket) {
		p.parseArrayInitializer()
		return
	}
	p.parseExpr(0)
}

func (p *parser) parseInitializerList() {
	m := p.sink.Start()
	p.bump() // '('
	for !p.eof() && !p.at(KindRParen) {
		p.parseExpr(0)
		if p.at(KindComma) {
			p.bump()
		} else {
			break
		}
	}
	p.expect(KindRParen)
	p.sink.Complete(m, KindInitializerList)
}

func (p *parser) parseArrayInitializer() {
	m := p.sink.Start()
	p.bump() // '['
	for !p.eof() && !p.at(KindRBracket) {
		p.parseExpr(0)
		if p.at(KindComma) {
			p.bump()
		} else {
			break
		}
	}
	p.expect(KindRBracket)
	p.sink.Complete(m, KindArrayInitializer)
}

// --- names & type refs ------------------------------------------------------

func (p *parser) parseName() {
	m := p.sink.Start()
	p.expect(KindIdent)
	p.sink.Complete(m, KindName)
}

func (p *parser) parseQualifiedName() {
	m := p.sink.Start()
	p.expect(KindIdent)
	for p.at(KindDot) && p.nth(1) == KindIdent {
		p.bump()
		p.bump()
	}
	p.sink.Complete(m, KindQualifiedName)
}

func (p *parser) parseTypeRef() {
	m := p.sink.Start()
	switch p.nth(0) {
	case KindKwArray:
		p.bump()
		p.expect(KindLBracket)
		p.parseExpr(0)
		p.expect(KindRange)
		p.parseExpr(0)
		for p.at(KindComma) {
			p.bump()
			p.parseExpr(0)
			p.expect(KindRange)
			p.parseExpr(0)
		}
		p.expect(KindRBracket)
		p.expect(KindKwOf)
		p.parseTypeRef()
		p.sink.Complete(m, KindArrayTypeRef)
		return
	case KindKwPointer:
		p.bump()
		p.expect(KindKwTo)
		p.parseTypeRef()
		p.sink.Complete(m, KindTypeRef)
		return
	case KindKwReference:
		p.bump()
		p.expect(KindKwTo)
		p.parseTypeRef()
		p.sink.Complete(m, KindTypeRef)
		return
	default:
		p.parseQualifiedName()
		if p.at(KindLParen) {
			// STRING(80) / WSTRING(255) capacity.
			p.bump()
			if !p.at(KindRParen) {
				p.parseExpr(0)
			}
			p.expect(KindRParen)
		}
		p.sink.Complete(m, KindTypeRef)
		return
	}
}

// --- statements -------------------------------------------------------------

// stmtListEnd reports whether k terminates the enclosing statement list
// (an END_* keyword, or ELSE/ELSIF/UNTIL belonging to an ancestor).
func stmtListEnd(k Kind) bool {
	if k == KindEOF {
		return true
	}
	if endKeywords[k] {
		return true
	}
	switch k {
	case KindKwElse, KindKwElsif, KindKwUntil:
		return true
	}
	return false
}

func (p *parser) parseStmtList() {
	m := p.sink.Start()
	for !stmtListEnd(p.nth(0)) {
		p.parseStatement()
	}
	p.sink.Complete(m, KindStmtList)
}

func (p *parser) parseStatement() {
	switch p.nth(0) {
	case KindSemi:
		m := p.sink.Start()
		p.bump()
		p.sink.Complete(m, KindEmptyStmt)
	case KindKwIf:
		p.parseIfStmt()
	case KindKwCase:
		p.parseCaseStmt()
	case KindKwFor:
		p.parseForStmt()
	case KindKwWhile:
		p.parseWhileStmt()
	case KindKwRepeat:
		p.parseRepeatStmt()
	case KindKwReturn:
		m := p.sink.Start()
		p.bump()
		p.expectSemi()
		p.sink.Complete(m, KindReturnStmt)
	case KindKwExit:
		m := p.sink.Start()
		p.bump()
		p.expectSemi()
		p.sink.Complete(m, KindExitStmt)
	case KindKwContinue:
		m := p.sink.Start()
		p.bump()
		p.expectSemi()
		p.sink.Complete(m, KindContinueStmt)
	case KindIdent:
		if p.nth(1) == KindColon && p.nth(2) != KindAssign {
			m := p.sink.Start()
			p.parseName()
			p.bump() // ':'
			p.sink.Complete(m, KindLabelStmt)
			return
		}
		p.parseExprOrAssignStmt()
	default:
		if p.eof() || stmtListEnd(p.nth(0)) {
			return
		}
		m := p.sink.Start()
		p.errorHere("unexpected token in statement")
		p.bump()
		p.sink.Complete(m, KindError)
		p.recoverInStmt()
	}
}

// recoverInStmt skips to the next sync point without consuming it, used
// after an unexpected-token error mid-statement-list.
func (p *parser) recoverInStmt() {
	for !p.eof() && !syncSet[p.nth(0)] {
		p.bump()
	}
}

func (p *parser) parseExprOrAssignStmt() {
	m := p.sink.Start()
	lhs := p.parseExpr(0)
	_ = lhs
	if p.atAny(KindAssign, KindArrow) {
		p.bump()
		p.parseExpr(0)
		p.expectSemi()
		p.sink.Complete(m, KindAssignStmt)
		return
	}
	p.expectSemi()
	p.sink.Complete(m, KindExprStmt)
}

func (p *parser) parseIfStmt() {
	m := p.sink.Start()
	p.expect(KindKwIf)
	p.parseCondition()
	p.expect(KindKwThen)
	p.parseStmtList()
	for p.at(KindKwElsif) {
		em := p.sink.Start()
		p.bump()
		p.parseCondition()
		p.expect(KindKwThen)
		p.parseStmtList()
		p.sink.Complete(em, KindCaseBranch)
	}
	if p.at(KindKwElse) {
		eb := p.sink.Start()
		p.bump()
		p.parseStmtList()
		p.sink.Complete(eb, KindElseBranch)
	}
	p.expect(KindKwEndIf)
	p.sink.Complete(m, KindIfStmt)
}

func (p *parser) parseCondition() {
	m := p.sink.Start()
	p.parseExpr(0)
	p.sink.Complete(m, KindCondition)
}

func (p *parser) parseCaseStmt() {
	m := p.sink.Start()
	p.expect(KindKwCase)
	p.parseExpr(0)
	p.expect(KindKwOf)
	for p.canStartCaseLabel() {
		bm := p.sink.Start()
		p.parseExpr(0)
		for p.at(KindComma) {
			p.bump()
			p.parseExpr(0)
		}
		p.expect(KindColon)
		p.parseStmtList()
		p.sink.Complete(bm, KindCaseBranch)
	}
	if p.at(KindKwElse) {
		eb := p.sink.Start()
		p.bump()
		p.parseStmtList()
		p.sink.Complete(eb, KindElseBranch)
	}
	p.expect(KindKwEndCase)
	p.sink.Complete(m, KindCaseStmt)
}

func (p *parser) canStartCaseLabel() bool {
	switch p.nth(0) {
	case KindKwElse, KindKwEndCase, KindEOF:
		return false
	default:
		return true
	}
}

func (p *parser) parseForStmt() {
	m := p.sink.Start()
	p.expect(KindKwFor)
	p.parseName()
	p.expect(KindAssign)
	p.parseExpr(0)
	p.expect(KindKwTo)
	p.parseExpr(0)
	if p.at(KindKwBy) {
		p.bump()
		p.parseExpr(0)
	}
	p.expect(KindKwDo)
	p.parseStmtList()
	p.expect(KindKwEndFor)
	p.sink.Complete(m, KindForStmt)
}

func (p *parser) parseWhileStmt() {
	m := p.sink.Start()
	p.expect(KindKwWhile)
	p.parseCondition()
	p.expect(KindKwDo)
	p.parseStmtList()
	p.expect(KindKwEndWhile)
	p.sink.Complete(m, KindWhileStmt)
}

func (p *parser) parseRepeatStmt() {
	m := p.sink.Start()
	p.expect(KindKwRepeat)
	p.parseStmtList()
	p.expect(KindKwUntil)
	p.parseCondition()
	p.expectSemi()
	p.expect(KindKwEndRepeat)
	p.sink.Complete(m, KindRepeatStmt)
}

// expectSemi implements the semicolon-insertion heuristic of §4.3: if the
// next token can legally start a new statement (or is ELSE/ELSIF/UNTIL/end
// of the enclosing block), record the missing-`;` error without consuming
// anything; otherwise run full statement recovery.
func (p *parser) expectSemi() {
	if p.at(KindSemi) {
		p.bump()
		return
	}
	if canStartStatement(p.nth(0)) || stmtListEnd(p.nth(0)) {
		p.errorHere("expected ';'")
		return
	}
	p.errorHere("expected ';'")
	p.recoverInStmt()
}

// --- expressions (Pratt) ----------------------------------------------------

// bindingPower returns the left/right binding power for a binary operator
// kind, per the precedence table in §4.3 (lowest to highest: OR, XOR, AND,
// equality, relational, additive, multiplicative, power).
func bindingPower(k Kind) (left, right int, ok bool) {
	switch k {
	case KindKwOr:
		return 1, 2, true
	case KindKwXor:
		return 2, 3, true
	case KindKwAnd, KindAmp:
		return 3, 4, true
	case KindEq, KindNe:
		return 4, 5, true
	case KindLt, KindLe, KindGt, KindGe:
		return 5, 6, true
	case KindPlus, KindMinus:
		return 6, 7, true
	case KindStar, KindSlash, KindKwMod:
		return 7, 8, true
	case KindPow:
		// right-associative: right bp lower than left bp.
		return 10, 9, true
	default:
		return 0, 0, false
	}
}

func (p *parser) parseExpr(minBp int) CompletedMarker {
	lhs := p.parseUnary()
	for {
		left, right, ok := bindingPower(p.nth(0))
		if !ok || left < minBp {
			return lhs
		}
		m := p.sink.Precede(lhs)
		p.bump() // operator
		p.parseExpr(right)
		lhs = p.sink.Complete(m, KindBinaryExpr)
	}
}

func (p *parser) parseUnary() CompletedMarker {
	switch p.nth(0) {
	case KindMinus, KindPlus, KindKwNot:
		m := p.sink.Start()
		p.bump()
		p.parseUnary()
		return p.sink.Complete(m, KindUnaryExpr)
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() CompletedMarker {
	lhs := p.parsePrimary()
	for {
		switch p.nth(0) {
		case KindLParen:
			m := p.sink.Precede(lhs)
			p.parseArgList()
			lhs = p.sink.Complete(m, KindCallExpr)
		case KindLBracket:
			m := p.sink.Precede(lhs)
			p.bump()
			p.parseExpr(0)
			for p.at(KindComma) {
				p.bump()
				p.parseExpr(0)
			}
			p.expect(KindRBracket)
			lhs = p.sink.Complete(m, KindIndexExpr)
		case KindDot:
			m := p.sink.Precede(lhs)
			p.bump()
			p.parseName()
			lhs = p.sink.Complete(m, KindFieldExpr)
		case KindCaret:
			m := p.sink.Precede(lhs)
			p.bump()
			lhs = p.sink.Complete(m, KindDerefExpr)
		default:
			return lhs
		}
	}
}

func (p *parser) parseArgList() CompletedMarker {
	m := p.sink.Start()
	p.expect(KindLParen)
	for !p.eof() && !p.at(KindRParen) {
		p.parseArg()
		if p.at(KindComma) {
			p.bump()
		} else {
			break
		}
	}
	p.expect(KindRParen)
	return p.sink.Complete(m, KindArgList)
}

func (p *parser) parseArg() {
	m := p.sink.Start()
	// A formal arg is `Name := Expr` or `Name => Expr`; disambiguate by
	// looking ahead past a bare identifier for one of those operators.
	if p.at(KindIdent) && p.atAny2(1, KindAssign, KindArrow) {
		p.parseName()
		p.bump() // := or =>
		p.parseExpr(0)
	} else {
		p.parseExpr(0)
	}
	p.sink.Complete(m, KindArg)
}

func (p *parser) atAny2(n int, ks ...Kind) bool {
	cur := p.nth(n)
	for _, k := range ks {
		if cur == k {
			return true
		}
	}
	return false
}

func (p *parser) parsePrimary() CompletedMarker {
	switch p.nth(0) {
	case KindLParen:
		m := p.sink.Start()
		p.bump()
		p.parseExpr(0)
		p.expect(KindRParen)
		return p.sink.Complete(m, KindParenExpr)
	case KindKwThis:
		m := p.sink.Start()
		p.bump()
		return p.sink.Complete(m, KindThisExpr)
	case KindKwSuper:
		m := p.sink.Start()
		p.bump()
		return p.sink.Complete(m, KindSuperExpr)
	case KindKwSizeOf:
		m := p.sink.Start()
		p.bump()
		p.expect(KindLParen)
		p.parseExpr(0)
		p.expect(KindRParen)
		return p.sink.Complete(m, KindSizeOfExpr)
	case KindIntLiteral, KindRealLiteral, KindStringLiteral, KindWideStringLiteral,
		KindTimeLiteral, KindDateLiteral, KindTODLiteral, KindDTLiteral,
		KindKwTrue, KindKwFalse, KindKwNull:
		m := p.sink.Start()
		p.bump()
		return p.sink.Complete(m, KindLiteral)
	case KindTypedLiteralPrefix:
		m := p.sink.Start()
		p.bump()
		if !p.eof() {
			p.bump() // the literal value token following the prefix
		}
		return p.sink.Complete(m, KindLiteral)
	case KindIdent:
		m := p.sink.Start()
		p.bump()
		for p.at(KindDot) && p.nth(1) == KindIdent {
			p.bump()
			p.bump()
		}
		return p.sink.Complete(m, KindNameRef)
	default:
		m := p.sink.Start()
		p.errorHere("expected an expression")
		if !p.eof() && !syncSet[p.nth(0)] {
			p.bump()
		}
		return p.sink.Complete(m, KindError)
	}
}
