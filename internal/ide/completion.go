package ide

import (
	"sort"
	"strings"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/project"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// CompletionItemKind classifies a CompletionItem for client-side
// icon/grouping purposes (§4.9.1).
type CompletionItemKind int

const (
	CompletionKeyword CompletionItemKind = iota
	CompletionSnippet
	CompletionVariable
	CompletionFunction
	CompletionType
	CompletionMember
	CompletionParameter
)

// CompletionItem is one completion candidate. InsertText may carry "$1",
// "$2", ... tab-stop and "$0" final-cursor placeholders; the host
// translates these to its transport's own snippet syntax. SortPriority
// orders candidates lowest-first before the case-folded dedup pass
// (§4.9.1, §8 "completion dedup").
type CompletionItem struct {
	Label         string
	Kind          CompletionItemKind
	Detail        string
	Documentation string
	InsertText    string
	TextEdit      *host.TextEdit
	SortPriority  int
}

// completionContext is the cursor-position classification §4.9.1's
// detection rule produces.
type completionContext int

const (
	ctxGeneral completionContext = iota
	ctxTopLevel
	ctxStatement
	ctxMemberAccess
	ctxTypeAnnotation
	ctxArgument
	ctxVarBlock
)

// Complete produces the completion candidates appropriate to the cursor
// position at off within file (§4.9.1).
func (s *Service) Complete(ticket host.RequestTicket, file host.FileId, off host.Offset) ([]CompletionItem, bool) {
	root, _, ok := s.DB.Parse(ticket, file)
	if !ok {
		return nil, false
	}
	model, ok := s.DB.FileSymbolsWithProject(ticket, file)
	if !ok {
		return nil, false
	}
	local, ok := s.DB.FileSymbols(ticket, file)
	if !ok {
		return nil, false
	}

	ctx, node := detectContext(root, off)

	var items []CompletionItem
	switch ctx {
	case ctxMemberAccess:
		if dotTok, ok := prevNonTrivia(root, off); ok {
			items = append(items, s.memberAccessItems(ticket, file, model, local, dotTok)...)
		}
	case ctxTypeAnnotation:
		items = append(items, typeAnnotationItems(model)...)
	default:
		items = append(items, keywordItems(ctx)...)
		if scope, ok := scopeAt(local, root, off); ok {
			items = append(items, s.scopeSymbolItems(model, local, file, scope)...)
		}
		if ctx == ctxArgument {
			items = append(items, s.argumentItems(ticket, file, model, node)...)
		}
		items = append(items, s.stdlibItems(file)...)
	}
	items = append(items, typedLiteralItems(model, root, off)...)

	return dedupByLabel(items), true
}

// detectContext classifies the cursor position per §4.9.1's ordered
// rule, returning the CST node the rule matched on (the dot/colon's
// parent, or the ancestor node whose kind decided the context).
func detectContext(root syntax.RedNode, off host.Offset) (completionContext, syntax.RedNode) {
	if tok, ok := prevNonTrivia(root, off); ok {
		switch tok.Kind() {
		case syntax.KindDot:
			return ctxMemberAccess, tok.Parent()
		case syntax.KindColon:
			return ctxTypeAnnotation, tok.Parent()
		}
	}

	anchor, ok := root.TokenAtOffset(off, syntax.BiasLeft)
	if !ok {
		anchor, ok = root.TokenAtOffset(off, syntax.BiasRight)
	}
	if !ok {
		return ctxGeneral, root
	}

	result := ctxGeneral
	matched := anchor.Parent()
	anchor.Parent().Ancestors(func(n syntax.RedNode) bool {
		switch n.Kind() {
		case syntax.KindTypeRef, syntax.KindExtendsClause, syntax.KindImplementsClause:
			result, matched = ctxTypeAnnotation, n
		case syntax.KindArgList:
			result, matched = ctxArgument, n
		case syntax.KindVarBlock, syntax.KindVarDecl:
			result, matched = ctxVarBlock, n
		case syntax.KindStmtList:
			result, matched = ctxStatement, n
		case syntax.KindSourceFile:
			result, matched = ctxTopLevel, n
		default:
			return true
		}
		return false
	})
	return result, matched
}

// prevNonTrivia returns the token immediately at or before off, skipping
// whitespace and comments, for the "prev non-trivia token" checks
// §4.9.1's detection rule opens with.
func prevNonTrivia(root syntax.RedNode, off host.Offset) (syntax.RedToken, bool) {
	tok, ok := root.TokenAtOffset(off, syntax.BiasLeft)
	for ok && (tok.Kind() == syntax.KindWhitespace || tok.Kind() == syntax.KindLineComment || tok.Kind() == syntax.KindBlockComment) {
		tok, ok = tok.PrevToken()
	}
	return tok, ok
}

// scopeOwningKinds are the CST kinds the per-file resolver allocates a
// dedicated child scope for (every walkXxx that calls scopes.NewChild in
// internal/symbols/resolve_file.go).
var scopeOwningKinds = map[syntax.Kind]bool{
	syntax.KindNamespace: true, syntax.KindProgram: true, syntax.KindFunction: true,
	syntax.KindFunctionBlock: true, syntax.KindClass: true, syntax.KindInterfaceDecl: true,
	syntax.KindMethod: true, syntax.KindProperty: true, syntax.KindPropertyGet: true,
	syntax.KindPropertySet: true, syntax.KindAction: true, syntax.KindConfiguration: true,
	syntax.KindResource: true,
}

// scopeAt finds the scope whose POU/namespace body owns the cursor
// position at off, for completion contexts that fall outside any
// expression local.Exprs already indexed.
func scopeAt(local *symbols.FileResolution, root syntax.RedNode, off host.Offset) (symbols.ScopeId, bool) {
	tok, ok := root.TokenAtOffset(off, syntax.BiasLeft)
	if !ok {
		tok, ok = root.TokenAtOffset(off, syntax.BiasRight)
	}
	if !ok {
		return symbols.GlobalScope, false
	}

	var owner syntax.RedNode
	found := false
	tok.Parent().Ancestors(func(n syntax.RedNode) bool {
		if scopeOwningKinds[n.Kind()] {
			owner, found = n, true
			return false
		}
		return true
	})
	if !found {
		return symbols.GlobalScope, true
	}

	declNode := owner
	if owner.Kind() == syntax.KindPropertyGet || owner.Kind() == syntax.KindPropertySet {
		if parent, ok := owner.Parent(); ok {
			declNode = parent
		}
	}
	nameRange := declNode.TextRange()
	if nm, ok := declNode.ChildByKind(syntax.KindName); ok {
		nameRange = nm.TextRange()
	}
	var ownerID symbols.SymbolId
	ownerFound := false
	for _, sym := range local.Symbols.Iter() {
		if sym.Range == nameRange {
			ownerID, ownerFound = sym.ID, true
			break
		}
	}
	if !ownerFound {
		return symbols.GlobalScope, true
	}

	var matches []symbols.ScopeId
	for i := 0; i < local.Scopes.Len(); i++ {
		sc := local.Scopes.Get(symbols.ScopeId(i))
		if sc.HasOwner && sc.Owner == ownerID {
			matches = append(matches, sc.ID)
		}
	}
	if len(matches) == 0 {
		return symbols.GlobalScope, true
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
	if owner.Kind() != syntax.KindPropertyGet && owner.Kind() != syntax.KindPropertySet {
		return matches[0], true
	}
	// A PROPERTY's GET and SET accessors share their owning property's
	// SymbolId, so the propScope and each accessor's own scope collide on
	// Owner; walkProperty creates propScope first, then one scope per
	// GET/SET child in source order, so position among the property's own
	// GET/SET children selects the right one.
	parent, ok := owner.Parent()
	if !ok {
		return matches[0], true
	}
	idx := 0
	for _, c := range parent.Children() {
		if c.TextRange() == owner.TextRange() {
			break
		}
		if c.Kind() == syntax.KindPropertyGet || c.Kind() == syntax.KindPropertySet {
			idx++
		}
	}
	if idx+1 < len(matches) {
		return matches[idx+1], true
	}
	return matches[0], true
}

// scopeSymbolItems enumerates every symbol reachable from scope via the
// lexical scope chain, then via every USING import visible from it,
// innermost first, deduplicated by case-folded name (§4.9.1).
func (s *Service) scopeSymbolItems(model *project.Model, local *symbols.FileResolution, file host.FileId, scope symbols.ScopeId) []CompletionItem {
	var items []CompletionItem
	seen := map[string]bool{}
	cur := scope
	for {
		sc := local.Scopes.Get(cur)
		for folded, localID := range sc.Symbols {
			if seen[folded] {
				continue
			}
			mergedID, ok := model.MergedID(file, localID)
			if !ok {
				continue
			}
			sym, ok := model.MergedSymbols.Get(mergedID)
			if !ok {
				continue
			}
			seen[folded] = true
			items = append(items, symbolCompletionItem(model, sym))
		}
		for _, u := range sc.Using {
			for _, m := range membersOfQualifiedPath(model, u.Path) {
				folded := strings.ToLower(m.Name)
				if seen[folded] {
					continue
				}
				seen[folded] = true
				items = append(items, symbolCompletionItem(model, m))
			}
		}
		if !sc.HasParent {
			break
		}
		cur = sc.Parent
	}
	return items
}

// memberAccessItems completes the member name following a dot: it finds
// the NameRef chain ending immediately before dotTok, resolves it to a
// Symbol, and offers that symbol's type's members (or, for a namespace or
// type name itself, its own declared children) filtered by §4.6
// visibility from the accessing scope.
func (s *Service) memberAccessItems(ticket host.RequestTicket, file host.FileId, model *project.Model, local *symbols.FileResolution, dotTok syntax.RedToken) []CompletionItem {
	prevTok, ok := dotTok.PrevToken()
	for ok && prevTok.Kind() == syntax.KindWhitespace {
		prevTok, ok = prevTok.PrevToken()
	}
	if !ok || prevTok.Kind() != syntax.KindIdent {
		return nil
	}
	nameRef := prevTok.Parent()
	if nameRef.Kind() != syntax.KindNameRef {
		return nil
	}
	idents := identTokens(nameRef)
	exprID, ok := local.Exprs.At(nameRef.TextRange().Start)
	if !ok {
		return nil
	}
	entry, ok := local.Exprs.Entry(exprID)
	if !ok {
		return nil
	}
	baseSym, ok := resolveChainSymbol(model, local, file, entry.Scope, idents, len(idents)-1)
	if !ok {
		return nil
	}

	var members []symbols.Symbol
	if baseSym.TypeID != symbols.NoType {
		members = membersOfType(model, baseSym.TypeID)
	}
	if len(members) == 0 {
		switch baseSym.Kind.Tag {
		case symbols.KindNamespace, symbols.KindFunctionBlock, symbols.KindClass,
			symbols.KindInterface, symbols.KindType:
			members = membersOfOwner(model, baseSym.ID)
		}
	}

	owner, haveOwner := currentOwnerMerged(model, local, file, entry.Scope)
	var items []CompletionItem
	for _, m := range members {
		if !memberVisible(m, owner, haveOwner) {
			continue
		}
		items = append(items, symbolCompletionItem(model, m))
	}
	return items
}

// argumentItems completes formal parameter names not already bound in
// argList, inserting "Name := $0" (or "=>" for OUT params), priority 5
// (§4.9.1).
func (s *Service) argumentItems(ticket host.RequestTicket, file host.FileId, model *project.Model, argList syntax.RedNode) []CompletionItem {
	callExpr, ok := argList.Parent()
	if !ok || callExpr.Kind() != syntax.KindCallExpr {
		return nil
	}
	calleeChildren := callExpr.Children()
	if len(calleeChildren) == 0 {
		return nil
	}
	lastTok, ok := calleeChildren[0].LastToken()
	if !ok {
		return nil
	}
	occ, ok := s.occurrenceAt(ticket, file, lastTok.TextRange().Start)
	if !ok {
		return nil
	}
	if occ.Symbol.Kind.Tag != symbols.KindFunction && occ.Symbol.Kind.Tag != symbols.KindMethod {
		return nil
	}

	bound := map[string]bool{}
	for _, arg := range argList.Children() {
		if arg.Kind() != syntax.KindArg {
			continue
		}
		if nm, ok := arg.ChildByKind(syntax.KindName); ok {
			bound[strings.ToLower(nm.Text())] = true
		}
	}

	var items []CompletionItem
	for _, p := range membersOfOwner(model, occ.Symbol.ID) {
		if p.Kind.Tag != symbols.KindParameter || bound[strings.ToLower(p.Name)] {
			continue
		}
		insert := p.Name + " := $0"
		if p.Kind.ParamDirection == symbols.DirOut {
			insert = p.Name + " => $0"
		}
		items = append(items, CompletionItem{
			Label:        p.Name,
			Kind:         CompletionParameter,
			Detail:       qualifierDisplayName(p.Kind.VarQualifier),
			InsertText:   insert,
			SortPriority: 5,
		})
	}
	return items
}

// typeAnnotationItems lists every concrete builtin type name plus every
// user FunctionBlock/Class/Interface/Type declared in the project, for
// the TypeAnnotation context.
func typeAnnotationItems(model *project.Model) []CompletionItem {
	items := []CompletionItem{
		{Label: "ARRAY", Kind: CompletionKeyword, InsertText: "ARRAY[$1] OF $0", SortPriority: 40},
		{Label: "POINTER TO", Kind: CompletionKeyword, InsertText: "POINTER TO $0", SortPriority: 40},
		{Label: "REFERENCE TO", Kind: CompletionKeyword, InsertText: "REFERENCE TO $0", SortPriority: 40},
	}
	for _, name := range sttypes.ConcreteBuiltinNames() {
		items = append(items, CompletionItem{Label: name, Kind: CompletionKeyword, SortPriority: 50})
	}
	for _, sym := range model.MergedSymbols.Iter() {
		switch sym.Kind.Tag {
		case symbols.KindFunctionBlock, symbols.KindClass, symbols.KindInterface, symbols.KindType:
			items = append(items, CompletionItem{
				Label: sym.Name, Kind: CompletionType,
				Detail: kindDisplayName(sym.Kind.Tag), SortPriority: 100,
			})
		}
	}
	return items
}

type snippet struct {
	label    string
	insert   string
	priority int
}

func snippetItems(snips []snippet) []CompletionItem {
	items := make([]CompletionItem, len(snips))
	for i, sn := range snips {
		items[i] = CompletionItem{Label: sn.label, Kind: CompletionSnippet, InsertText: sn.insert, SortPriority: sn.priority}
	}
	return items
}

// keywordItems returns the context-appropriate keyword/snippet set,
// priorities 10-50 (§4.9.1).
func keywordItems(ctx completionContext) []CompletionItem {
	switch ctx {
	case ctxTopLevel:
		return snippetItems([]snippet{
			{"PROGRAM", "PROGRAM $1\nEND_PROGRAM", 50},
			{"FUNCTION", "FUNCTION $1 : $0\nEND_FUNCTION", 50},
			{"FUNCTION_BLOCK", "FUNCTION_BLOCK $1\nEND_FUNCTION_BLOCK", 50},
			{"CLASS", "CLASS $1\nEND_CLASS", 40},
			{"INTERFACE", "INTERFACE $1\nEND_INTERFACE", 40},
			{"NAMESPACE", "NAMESPACE $1\nEND_NAMESPACE", 30},
			{"CONFIGURATION", "CONFIGURATION $1\nEND_CONFIGURATION", 20},
			{"TYPE", "TYPE $1 : $0;\nEND_TYPE", 30},
			{"USING", "USING $0;", 40},
		})
	case ctxVarBlock:
		return snippetItems([]snippet{
			{"CONSTANT", "CONSTANT", 40},
			{"RETAIN", "RETAIN", 30},
			{"PERSISTENT", "PERSISTENT", 30},
		})
	case ctxStatement, ctxGeneral:
		return snippetItems([]snippet{
			{"IF", "IF $1 THEN\n\t$0\nEND_IF", 50},
			{"CASE", "CASE $1 OF\n$0\nEND_CASE", 50},
			{"FOR", "FOR $1 := $2 TO $3 DO\n\t$0\nEND_FOR", 50},
			{"WHILE", "WHILE $1 DO\n\t$0\nEND_WHILE", 40},
			{"REPEAT", "REPEAT\n\t$0\nUNTIL $1\nEND_REPEAT", 40},
			{"RETURN", "RETURN;", 30},
			{"EXIT", "EXIT;", 20},
			{"CONTINUE", "CONTINUE;", 20},
		})
	case ctxArgument:
		return snippetItems([]snippet{
			{"TRUE", "TRUE", 30},
			{"FALSE", "FALSE", 30},
			{"NOT", "NOT $0", 20},
		})
	default:
		return nil
	}
}

// iecStandardNames is the static IEC 61131-3 standard function/FB name
// table, consulted by host.StdlibConfig.Allowed when the host has
// configured a profile rather than an explicit allow-list.
var iecStandardNames = map[string]bool{
	"ABS": true, "SQRT": true, "LN": true, "LOG": true, "EXP": true,
	"SIN": true, "COS": true, "TAN": true, "ASIN": true, "ACOS": true, "ATAN": true,
	"ADD": true, "SUB": true, "MUL": true, "DIV": true, "MOD": true,
	"SHL": true, "SHR": true, "ROL": true, "ROR": true,
	"AND": true, "OR": true, "XOR": true, "NOT": true,
	"SEL": true, "MAX": true, "MIN": true, "LIMIT": true, "MUX": true,
	"GT": true, "GE": true, "EQ": true, "LE": true, "LT": true, "NE": true,
	"CONCAT": true, "LEN": true, "LEFT": true, "RIGHT": true, "MID": true,
	"INSERT": true, "DELETE": true, "REPLACE": true, "FIND": true,
	"TON": true, "TOF": true, "TP": true,
	"CTU": true, "CTD": true, "CTUD": true,
	"R_TRIG": true, "F_TRIG": true, "RS": true, "SR": true,
}

func isIECStandardName(name string) bool {
	return iecStandardNames[strings.ToUpper(name)]
}

// stdlibItems offers the host's configured library functions, filtered by
// its stdlib allow-list, priority 120 (§4.9.1, §6 LibraryDocs).
func (s *Service) stdlibItems(file host.FileId) []CompletionItem {
	cfg := s.DB.Host().Config(file)
	if len(cfg.LibraryDocs) == 0 {
		return nil
	}
	var items []CompletionItem
	for name, doc := range cfg.LibraryDocs {
		if !cfg.Stdlib.Allowed(name, isIECStandardName(name)) {
			continue
		}
		items = append(items, CompletionItem{
			Label: name, Kind: CompletionFunction, Documentation: doc, SortPriority: 120,
		})
	}
	return items
}

// typedLiteralItems offers continuations for an incomplete typed literal
// (`Prefix#|`): a canonical template for the handful of builtin duration/
// date-ish prefixes, or the declared enum values for a user enum-type
// prefix (§4.9.1).
func typedLiteralItems(model *project.Model, root syntax.RedNode, off host.Offset) []CompletionItem {
	tok, ok := root.TokenAtOffset(off, syntax.BiasLeft)
	if !ok || tok.Kind() != syntax.KindTypedLiteralPrefix {
		return nil
	}
	prefix := strings.TrimSuffix(tok.Text(), "#")

	if tmpl, ok := timeLiteralTemplates[strings.ToUpper(prefix)]; ok {
		edit := host.TextEdit{Range: tok.TextRange(), NewText: tmpl}
		return []CompletionItem{{Label: tmpl, Kind: CompletionSnippet, TextEdit: &edit, SortPriority: 15}}
	}

	id, ok := model.MergedSymbols.ResolveByName(prefix)
	if !ok {
		return nil
	}
	sym, ok := model.MergedSymbols.Get(id)
	if !ok || sym.Kind.Tag != symbols.KindType {
		return nil
	}
	var items []CompletionItem
	for _, m := range membersOfOwner(model, sym.ID) {
		if m.Kind.Tag != symbols.KindEnumValue {
			continue
		}
		items = append(items, CompletionItem{Label: m.Name, Kind: CompletionMember, InsertText: m.Name, SortPriority: 90})
	}
	return items
}

var timeLiteralTemplates = map[string]string{
	"T": "T#1s", "TIME": "TIME#1s",
	"LT": "LT#1s", "LTIME": "LTIME#1s",
	"D": "D#2024-01-15", "DATE": "DATE#2024-01-15",
	"TOD": "TOD#12:00:00", "LTOD": "LTOD#12:00:00",
	"DT": "DT#2024-01-15-12:00:00", "LDT": "LDT#2024-01-15-12:00:00",
}

// symbolCompletionItem renders sym as a completion candidate, priority
// 100 (§4.9.1).
func symbolCompletionItem(model *project.Model, sym symbols.Symbol) CompletionItem {
	detail := kindDisplayName(sym.Kind.Tag)
	if sym.TypeID != symbols.NoType {
		detail += " : " + typeDisplayName(model, sym.TypeID)
	}
	return CompletionItem{
		Label: sym.Name, Kind: symbolItemKind(sym.Kind.Tag), Detail: detail, SortPriority: 100,
	}
}

func symbolItemKind(tag symbols.SymbolKindTag) CompletionItemKind {
	switch tag {
	case symbols.KindFunction, symbols.KindMethod:
		return CompletionFunction
	case symbols.KindProgram, symbols.KindProgramInstance, symbols.KindFunctionBlock,
		symbols.KindClass, symbols.KindInterface, symbols.KindType, symbols.KindNamespace:
		return CompletionType
	default:
		return CompletionVariable
	}
}

// membersOfOwner returns every merged symbol directly parented to owner,
// falling back through owner's EXTENDS/IMPLEMENTS bases.
func membersOfOwner(model *project.Model, owner symbols.SymbolId) []symbols.Symbol {
	var out []symbols.Symbol
	for _, child := range model.MergedSymbols.Iter() {
		if child.HasParent && child.Parent == owner {
			out = append(out, child)
		}
	}
	for _, base := range model.DerivationGraph[owner] {
		out = append(out, membersOfOwner(model, base)...)
	}
	return out
}

// membersOfType returns a struct/union/enum/FB/class/interface TypeId's
// declared members via its owning Symbol.
func membersOfType(model *project.Model, t sttypes.TypeId) []symbols.Symbol {
	resolved := model.Types.ResolveAlias(t)
	tt, ok := model.Types.TypeByID(resolved)
	if !ok {
		return nil
	}
	switch tt.Tag {
	case sttypes.TagStruct, sttypes.TagUnion, sttypes.TagEnum,
		sttypes.TagFunctionBlock, sttypes.TagClass, sttypes.TagInterface:
		return membersOfOwner(model, tt.Owner)
	default:
		return nil
	}
}

// membersOfQualifiedPath resolves path (a USING directive's namespace
// path) and returns its declared children.
func membersOfQualifiedPath(model *project.Model, path []string) []symbols.Symbol {
	id, ok := model.MergedSymbols.ResolveQualified(path)
	if !ok {
		return nil
	}
	return membersOfOwner(model, id)
}

// currentOwnerMerged finds the nearest enclosing POU/namespace Symbol (in
// merged identity space) for scope, walking its scope chain's Owner
// fields outward.
func currentOwnerMerged(model *project.Model, local *symbols.FileResolution, file host.FileId, scope symbols.ScopeId) (symbols.SymbolId, bool) {
	cur := scope
	for {
		sc := local.Scopes.Get(cur)
		if sc.HasOwner {
			if mergedID, ok := model.MergedID(file, sc.Owner); ok {
				return mergedID, true
			}
		}
		if !sc.HasParent {
			return 0, false
		}
		cur = sc.Parent
	}
}

// memberVisible reports whether member is reachable from currentOwner
// under §4.6's visibility rules: Public is always visible; Private/
// Protected/Internal members are visible only from within their own
// declaring type. This is a narrower approximation than full
// derivation-aware Protected access (references/rename never need
// visibility at all; completion only needs to avoid suggesting members
// that plainly cannot be written from here).
func memberVisible(member symbols.Symbol, currentOwner symbols.SymbolId, haveOwner bool) bool {
	if member.Visibility == symbols.Public {
		return true
	}
	return haveOwner && member.HasParent && member.Parent == currentOwner
}

// dedupByLabel sorts items by ascending SortPriority, then removes every
// item whose case-folded label has already been kept (§4.9.1, §8
// "completion dedup").
func dedupByLabel(items []CompletionItem) []CompletionItem {
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortPriority < items[j].SortPriority })
	seen := map[string]bool{}
	out := make([]CompletionItem, 0, len(items))
	for _, it := range items {
		key := strings.ToLower(it.Label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
