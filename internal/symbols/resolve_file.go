package symbols

import (
	"strings"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/syntax"
)

// FileResolution is the per-file resolver's (C5) output: the pieces of
// FileModel (§3.7) that depend only on one file's CST, not the project.
type FileResolution struct {
	Symbols *SymbolTable
	Scopes  *ScopeTree
	Exprs   *ExprIndex
}

// ResolveFile walks root (a SourceFile red node) and builds the scopes,
// symbols, and expression index local to that file (§4.5).
func ResolveFile(root syntax.RedNode) *FileResolution {
	r := &resolver{
		scopes: NewScopeTree(),
		exprs:  &ExprIndex{},
	}
	r.symbols = NewSymbolTable(r.scopes)
	r.walkSourceFile(root)
	return &FileResolution{Symbols: r.symbols, Scopes: r.scopes, Exprs: r.exprs}
}

type resolver struct {
	scopes  *ScopeTree
	symbols *SymbolTable
	exprs   *ExprIndex
}

// qualifiedPath splits a QualifiedName/Name red node's text on '.'.
func qualifiedPath(n syntax.RedNode) []string {
	return strings.Split(n.Text(), ".")
}

func nameOf(n syntax.RedNode) (string, bool) {
	nm, ok := n.ChildByKind(syntax.KindName)
	if !ok {
		return "", false
	}
	return nm.Text(), true
}

// typeRefChild returns n's direct TypeRef/ArrayTypeRef child, the two kinds
// a type annotation can surface as (§4.3's ARRAY special-case).
func typeRefChild(n syntax.RedNode) (syntax.RedNode, bool) {
	if tr, ok := n.ChildByKind(syntax.KindTypeRef); ok {
		return tr, true
	}
	if tr, ok := n.ChildByKind(syntax.KindArrayTypeRef); ok {
		return tr, true
	}
	return syntax.RedNode{}, false
}

// qualifiedNames collects the text of every QualifiedName child of an
// ExtendsClause/ImplementsClause node (§3.8: a type may name more than one
// base interface).
func qualifiedNames(clause syntax.RedNode) []string {
	var names []string
	for _, c := range clause.Children() {
		if c.Kind() == syntax.KindQualifiedName {
			names = append(names, c.Text())
		}
	}
	return names
}

func (r *resolver) declare(scope ScopeId, sym Symbol) SymbolId {
	id := r.symbols.Insert(sym)
	r.scopes.Declare(scope, sym.Name, id)
	return id
}

func (r *resolver) walkSourceFile(root syntax.RedNode) {
	for _, child := range root.Children() {
		r.walkTopLevel(child, GlobalScope, 0, false)
	}
}

// walkTopLevel dispatches one top-level (or namespace-member) item. parent
// is the enclosing namespace/POU symbol (0 if none); hasParent mirrors
// Symbol.HasParent.
func (r *resolver) walkTopLevel(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	switch n.Kind() {
	case syntax.KindUsingDirective:
		r.walkUsing(n, scope)
	case syntax.KindNamespace:
		r.walkNamespace(n, scope, parent, hasParent)
	case syntax.KindProgram:
		r.walkProgram(n, scope, parent, hasParent)
	case syntax.KindFunction:
		r.walkFunction(n, scope, parent, hasParent)
	case syntax.KindFunctionBlock:
		r.walkFunctionBlock(n, scope, parent, hasParent)
	case syntax.KindClass:
		r.walkClass(n, scope, parent, hasParent)
	case syntax.KindInterfaceDecl:
		r.walkInterface(n, scope, parent, hasParent)
	case syntax.KindConfiguration:
		r.walkConfiguration(n, scope, parent, hasParent)
	case syntax.KindTypeDecl:
		r.walkTypeDecl(n, scope, parent, hasParent)
	}
}

func (r *resolver) walkUsing(n syntax.RedNode, scope ScopeId) {
	qn, ok := n.ChildByKind(syntax.KindQualifiedName)
	if !ok {
		return
	}
	r.scopes.AddUsing(scope, UsingDirective{Path: qualifiedPath(qn), Range: qn.TextRange()})
}

func (r *resolver) walkNamespace(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	nameRange := n.TextRange()
	if nm, ok2 := n.ChildByKind(syntax.KindName); ok2 {
		nameRange = nm.TextRange()
	}
	sym := Symbol{
		Name: name, Kind: SymbolKind{Tag: KindNamespace}, Parent: parent, HasParent: hasParent,
		Range: nameRange, Visibility: Public,
	}
	id := r.declare(scope, sym)
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	for _, m := range n.Children() {
		if m.Kind() == syntax.KindName {
			continue
		}
		r.walkTopLevel(m, child, id, true)
	}
}

func (r *resolver) declRangeOf(n syntax.RedNode) host.TextRange {
	if nm, ok := n.ChildByKind(syntax.KindName); ok {
		return nm.TextRange()
	}
	return n.TextRange()
}

func (r *resolver) walkProgram(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindProgram}, Parent: parent, HasParent: hasParent,
		Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkVarBlocksAndBody(n, child, id)
}

func (r *resolver) walkFunction(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	retType, hasReturn := n.ChildByKind(syntax.KindTypeRef)
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindFunction, HasReturn: hasReturn, Arity: paramArity(n)},
		Parent: parent, HasParent: hasParent, Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	if hasReturn {
		r.symbols.SetTypeRefText(id, retType.Text())
	}
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkVarBlocksAndBody(n, child, id)
}

func (r *resolver) walkFunctionBlock(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindFunctionBlock}, Parent: parent, HasParent: hasParent,
		Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	if ext, ok2 := n.ChildByKind(syntax.KindExtendsClause); ok2 {
		r.symbols.SetExtendsNames(id, qualifiedNames(ext))
	}
	if impl, ok2 := n.ChildByKind(syntax.KindImplementsClause); ok2 {
		r.symbols.SetImplementsNames(id, qualifiedNames(impl))
	}
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkVarBlocksAndBody(n, child, id)
	r.walkMembers(n, child, id)
}

func (r *resolver) walkClass(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindClass}, Parent: parent, HasParent: hasParent,
		Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	if ext, ok2 := n.ChildByKind(syntax.KindExtendsClause); ok2 {
		r.symbols.SetExtendsNames(id, qualifiedNames(ext))
	}
	if impl, ok2 := n.ChildByKind(syntax.KindImplementsClause); ok2 {
		r.symbols.SetImplementsNames(id, qualifiedNames(impl))
	}
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkVarBlocks(n, child, id)
	r.walkMembers(n, child, id)
}

func (r *resolver) walkInterface(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindInterface}, Parent: parent, HasParent: hasParent,
		Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	if ext, ok2 := n.ChildByKind(syntax.KindExtendsClause); ok2 {
		r.symbols.SetExtendsNames(id, qualifiedNames(ext))
	}
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkMembers(n, child, id)
}

func (r *resolver) walkConfiguration(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindConfiguration}, Parent: parent, HasParent: hasParent,
		Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkVarBlocks(n, child, id)
	for _, res := range n.Children() {
		if res.Kind() != syntax.KindResource {
			continue
		}
		rname, ok2 := nameOf(res)
		if !ok2 {
			continue
		}
		rsym := Symbol{Name: rname, Kind: SymbolKind{Tag: KindResource}, Parent: id, HasParent: true,
			Range: r.declRangeOf(res), Visibility: Public}
		rid := r.declare(child, rsym)
		rchild := r.scopes.NewChild(child)
		r.scopes.SetOwner(rchild, rid)
		r.walkVarBlocks(res, rchild, rid)
		for _, task := range res.Children() {
			if task.Kind() != syntax.KindTask {
				continue
			}
			tname, ok3 := nameOf(task)
			if !ok3 {
				continue
			}
			tsym := Symbol{Name: tname, Kind: SymbolKind{Tag: KindTask}, Parent: rid, HasParent: true,
				Range: r.declRangeOf(task), Visibility: Public}
			r.declare(rchild, tsym)
		}
	}
}

func (r *resolver) walkTypeDecl(n syntax.RedNode, scope ScopeId, parent SymbolId, hasParent bool) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindType}, Parent: parent, HasParent: hasParent,
		Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	memberScope := r.scopes.NewChild(scope)
	r.scopes.SetOwner(memberScope, id)

	enumDef, hasEnum := n.ChildByKind(syntax.KindEnumDef)
	structDef, hasStruct := n.ChildByKind(syntax.KindStructDef)
	unionDef, hasUnion := n.ChildByKind(syntax.KindUnionDef)

	switch {
	case hasEnum:
		var iv int64
		for _, ev := range enumDef.Children() {
			if ev.Kind() != syntax.KindEnumValue {
				continue
			}
			evSym := Symbol{Name: ev.Text(), Kind: SymbolKind{Tag: KindEnumValue, EnumIntValue: iv},
				Parent: id, HasParent: true, Range: ev.TextRange(), Visibility: Public}
			// Inserted once, then bound under both the type's own member
			// scope (`TypeName.Value`, §4.7 FieldExpr lookup) and the
			// enclosing scope (bare-name ST usage) — same SymbolId either
			// way.
			evID := r.symbols.Insert(evSym)
			r.scopes.Declare(memberScope, evSym.Name, evID)
			r.scopes.Declare(scope, evSym.Name, evID)
			iv++
		}
		r.indexExprs(enumDef, scope)
	case hasStruct:
		r.walkVarBlockFields(structDef, memberScope, id)
	case hasUnion:
		r.walkVarBlockFields(unionDef, memberScope, id)
	default:
		// Plain alias: TYPE Name : SomeOtherType; END_TYPE. parseTypeDecl's
		// default branch parses a bare TypeRef with no wrapping kind; record
		// its text for the project resolver to bind later.
		if aliasRef, ok2 := typeRefChild(n); ok2 {
			r.symbols.SetTypeRefText(id, aliasRef.Text())
		}
	}
}

// walkVarBlockFields declares the bare VarDecl children of a StructDef or
// UnionDef as member variables of that type, in its member scope.
func (r *resolver) walkVarBlockFields(def syntax.RedNode, scope ScopeId, owner SymbolId) {
	for _, decl := range def.Children() {
		if decl.Kind() != syntax.KindVarDecl {
			continue
		}
		r.walkVarDecl(decl, scope, owner, QualLocal, false, false, false)
	}
}

// walkMembers parses METHOD/PROPERTY/ACTION members inside a
// Class/FunctionBlock/Interface.
func (r *resolver) walkMembers(n syntax.RedNode, scope ScopeId, owner SymbolId) {
	for _, m := range n.Children() {
		switch m.Kind() {
		case syntax.KindMethod:
			r.walkMethod(m, scope, owner)
		case syntax.KindProperty:
			r.walkProperty(m, scope, owner)
		case syntax.KindAction:
			r.walkAction(m, scope, owner)
		}
	}
}

func (r *resolver) visibilityOf(n syntax.RedNode) (Visibility, Modifiers) {
	vis := Public
	var mod Modifiers
	for _, e := range n.ChildrenWithTokens() {
		if !e.IsToken {
			continue
		}
		switch e.Token.Kind() {
		case syntax.KindKwPublic:
			vis = Public
		case syntax.KindKwPrivate:
			vis = Private
		case syntax.KindKwProtected:
			vis = Protected
		case syntax.KindKwInternal:
			vis = Internal
		case syntax.KindKwFinal:
			mod.IsFinal = true
		case syntax.KindKwAbstract:
			mod.IsAbstract = true
		case syntax.KindKwOverride:
			mod.IsOverride = true
		}
	}
	return vis, mod
}

func (r *resolver) walkMethod(n syntax.RedNode, scope ScopeId, owner SymbolId) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	vis, mod := r.visibilityOf(n)
	retType, hasReturn := n.ChildByKind(syntax.KindTypeRef)
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindMethod, HasReturn: hasReturn, Arity: paramArity(n)},
		Parent: owner, HasParent: true,
		Range: r.declRangeOf(n), Visibility: vis, Modifiers: mod}
	id := r.declare(scope, sym)
	if hasReturn {
		r.symbols.SetTypeRefText(id, retType.Text())
	}
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkVarBlocksAndBody(n, child, id)
}

// paramArity counts the VAR_INPUT and VAR_IN_OUT declarations directly
// under n's VAR_INPUT/VAR_IN_OUT blocks, used for the project resolver's
// method-compatibility check (§4.6).
func paramArity(n syntax.RedNode) int {
	count := 0
	for _, block := range n.Children() {
		if block.Kind() != syntax.KindVarBlock {
			continue
		}
		isParamBlock := false
		for _, e := range block.ChildrenWithTokens() {
			if e.IsToken && (e.Token.Kind() == syntax.KindKwVarInput || e.Token.Kind() == syntax.KindKwVarInOut) {
				isParamBlock = true
				break
			}
		}
		if !isParamBlock {
			continue
		}
		for _, decl := range block.Children() {
			if decl.Kind() != syntax.KindVarDecl {
				continue
			}
			for _, nm := range decl.Children() {
				if nm.Kind() == syntax.KindName {
					count++
				}
			}
		}
	}
	return count
}

func (r *resolver) walkProperty(n syntax.RedNode, scope ScopeId, owner SymbolId) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	vis, mod := r.visibilityOf(n)
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindProperty}, Parent: owner, HasParent: true,
		Range: r.declRangeOf(n), Visibility: vis, Modifiers: mod}
	id := r.declare(scope, sym)
	propScope := r.scopes.NewChild(scope)
	r.scopes.SetOwner(propScope, id)
	for _, acc := range n.Children() {
		switch acc.Kind() {
		case syntax.KindPropertyGet, syntax.KindPropertySet:
			accChild := r.scopes.NewChild(propScope)
			r.scopes.SetOwner(accChild, id)
			r.walkVarBlocksAndBody(acc, accChild, id)
		}
	}
}

func (r *resolver) walkAction(n syntax.RedNode, scope ScopeId, owner SymbolId) {
	name, ok := nameOf(n)
	if !ok {
		return
	}
	sym := Symbol{Name: name, Kind: SymbolKind{Tag: KindProgram}, Parent: owner, HasParent: true,
		Range: r.declRangeOf(n), Visibility: Public}
	id := r.declare(scope, sym)
	child := r.scopes.NewChild(scope)
	r.scopes.SetOwner(child, id)
	r.walkVarBlocksAndBody(n, child, id)
}

// walkVarBlocksAndBody declares every VAR* block's variables in scope,
// then indexes expressions in the body's StmtList.
func (r *resolver) walkVarBlocksAndBody(n syntax.RedNode, scope ScopeId, owner SymbolId) {
	r.walkVarBlocks(n, scope, owner)
	if body, ok := n.ChildByKind(syntax.KindStmtList); ok {
		r.indexExprs(body, scope)
	}
}

var blockQualifier = map[syntax.Kind]VarQualifier{
	syntax.KindKwVar:         QualLocal,
	syntax.KindKwVarInput:    QualInput,
	syntax.KindKwVarOutput:   QualOutput,
	syntax.KindKwVarInOut:    QualInOut,
	syntax.KindKwVarTemp:     QualTemp,
	syntax.KindKwVarGlobal:   QualGlobal,
	syntax.KindKwVarExternal: QualExternal,
	syntax.KindKwVarAccess:   QualAccess,
	syntax.KindKwVarConfig:   QualConfig,
}

func (r *resolver) walkVarBlocks(n syntax.RedNode, scope ScopeId, owner SymbolId) {
	for _, block := range n.Children() {
		if block.Kind() != syntax.KindVarBlock {
			continue
		}
		r.walkVarBlock(block, scope, owner)
	}
}

func (r *resolver) walkVarBlock(block syntax.RedNode, scope ScopeId, owner SymbolId) {
	qual := QualLocal
	isConstant, isRetain, isPersistent := false, false, false
	for _, e := range block.ChildrenWithTokens() {
		if !e.IsToken {
			continue
		}
		if q, ok := blockQualifier[e.Token.Kind()]; ok {
			qual = q
		}
		switch e.Token.Kind() {
		case syntax.KindKwConstant:
			isConstant = true
		case syntax.KindKwRetain:
			isRetain = true
		case syntax.KindKwPersistent:
			isPersistent = true
		}
	}
	for _, decl := range block.Children() {
		if decl.Kind() != syntax.KindVarDecl {
			continue
		}
		r.walkVarDecl(decl, scope, owner, qual, isConstant, isRetain, isPersistent)
	}
}

func (r *resolver) walkVarDecl(decl syntax.RedNode, scope ScopeId, owner SymbolId, qual VarQualifier, isConst, isRetain, isPersistent bool) {
	var direction ParamDirection
	switch qual {
	case QualInput:
		direction = DirIn
	case QualOutput:
		direction = DirOut
	case QualInOut:
		direction = DirInOut
	}
	isParam := qual == QualInput || qual == QualOutput || qual == QualInOut
	typeRef, hasTypeRef := typeRefChild(decl)

	for _, nm := range decl.Children() {
		if nm.Kind() != syntax.KindName {
			continue
		}
		tag := KindVariable
		var sk SymbolKind
		if isConst {
			tag = KindConstant
		}
		if isParam {
			tag = KindParameter
			sk = SymbolKind{Tag: tag, ParamDirection: direction, VarQualifier: qual}
		} else {
			sk = SymbolKind{Tag: tag, VarQualifier: qual, IsConstant: isConst, IsRetain: isRetain, IsPersistent: isPersistent}
		}
		sym := Symbol{Name: nm.Text(), Kind: sk, Parent: owner, HasParent: true, Range: nm.TextRange(), Visibility: Public}
		id := r.declare(scope, sym)
		if hasTypeRef {
			r.symbols.SetTypeRefText(id, typeRef.Text())
		}
	}
	// Initializer expressions (if any) still need indexing for typing.
	if init, ok := decl.ChildByKind(syntax.KindInitializerList); ok {
		r.indexExprs(init, scope)
	}
	if init, ok := decl.ChildByKind(syntax.KindArrayInitializer); ok {
		r.indexExprs(init, scope)
	}
}

// isExprKind reports whether k tags an expression-bearing node, per the
// kinds enumerated in §3.3.
func isExprKind(k syntax.Kind) bool {
	switch k {
	case syntax.KindNameRef, syntax.KindFieldExpr, syntax.KindCallExpr,
		syntax.KindIndexExpr, syntax.KindDerefExpr, syntax.KindAddrExpr,
		syntax.KindBinaryExpr, syntax.KindUnaryExpr, syntax.KindParenExpr,
		syntax.KindLiteral, syntax.KindThisExpr, syntax.KindSuperExpr,
		syntax.KindSizeOfExpr:
		return true
	default:
		return false
	}
}

// indexExprs walks n's subtree recording every expression-kind node into
// the file's expr_offset_map, in pre-order (§3.7, §4.5).
func (r *resolver) indexExprs(n syntax.RedNode, scope ScopeId) {
	n.Descendants(func(d syntax.RedNode) bool {
		if isExprKind(d.Kind()) {
			r.exprs.Add(d.TextRange(), scope)
		}
		return true
	})
}
