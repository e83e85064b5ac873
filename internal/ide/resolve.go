package ide

import (
	"strings"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/project"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// Occurrence is one resolved identifier or member-access segment: the
// project-merged Symbol it names, and the exact source range of the
// occurrence itself — for a member access this is only the trailing
// name, not the whole dotted chain, so navigation on "a.B.c"'s "B"
// segment lands on B's own declaration rather than c's.
type Occurrence struct {
	Symbol symbols.Symbol
	Range  host.TextRange
}

// DeclLocation returns the file and range of sym's declaration, derived
// from its Origin (§3.8, the file whose local table first declared it)
// and its own Range — the declaration's name token, per the per-file
// resolver's declRangeOf/walkVarDecl convention (a Program/FB/Class/
// Type's own name child, or a VAR_* entry's Name node).
func DeclLocation(sym symbols.Symbol) (host.FileId, host.TextRange, bool) {
	if !sym.HasOrigin {
		return 0, host.TextRange{}, false
	}
	return sym.Origin.File, sym.Range, true
}

// occurrenceAt resolves the identifier segment covering off in file to
// its merged Symbol. It mirrors internal/typecheck's resolveNameRef/
// resolveHead/memberType family but returns the resolved Symbol itself
// (not just its TypeId), and resolves one chosen segment of a dotted
// chain rather than always the chain's tail — the two things hover/type
// checking never needed but navigation, references, and rename do.
func (s *Service) occurrenceAt(ticket host.RequestTicket, file host.FileId, off host.Offset) (Occurrence, bool) {
	model, ok := s.DB.FileSymbolsWithProject(ticket, file)
	if !ok {
		return Occurrence{}, false
	}
	local, ok := s.DB.FileSymbols(ticket, file)
	if !ok {
		return Occurrence{}, false
	}
	root, _, ok := s.DB.Parse(ticket, file)
	if !ok {
		return Occurrence{}, false
	}

	tok, ok := identTokenNear(root, off)
	if !ok {
		return Occurrence{}, false
	}
	parent := tok.Parent()

	switch parent.Kind() {
	case syntax.KindNameRef:
		return s.occurrenceInNameRef(ticket, file, model, local, parent, tok)
	case syntax.KindName:
		grand, ok := parent.Parent()
		if !ok {
			return Occurrence{}, false
		}
		if grand.Kind() == syntax.KindFieldExpr {
			return s.occurrenceInFieldExpr(ticket, file, model, local, grand, tok)
		}
		return occurrenceAtDeclaration(model, local, file, parent)
	default:
		return Occurrence{}, false
	}
}

// identTokenNear returns the Ident token at or immediately before off, so
// a cursor resting just past an identifier (the common "end of word"
// editor position) still resolves it.
func identTokenNear(root syntax.RedNode, off host.Offset) (syntax.RedToken, bool) {
	if tok, ok := root.TokenAtOffset(off, syntax.BiasRight); ok && tok.Kind() == syntax.KindIdent {
		return tok, true
	}
	if off == 0 {
		return syntax.RedToken{}, false
	}
	if tok, ok := root.TokenAtOffset(off-1, syntax.BiasLeft); ok && tok.Kind() == syntax.KindIdent {
		return tok, true
	}
	return syntax.RedToken{}, false
}

// identTokens returns every direct Ident token of a NameRef node in
// source order. NameRef has no nested nodes of its own — parsePrimary's
// ident-loop flattens `a.b.c` into one token run — so its children are
// alternating Ident/Dot/trivia tokens.
func identTokens(n syntax.RedNode) []syntax.RedToken {
	var out []syntax.RedToken
	for _, e := range n.ChildrenWithTokens() {
		if e.IsToken && e.Token.Kind() == syntax.KindIdent {
			out = append(out, e.Token)
		}
	}
	return out
}

func (s *Service) occurrenceInNameRef(ticket host.RequestTicket, file host.FileId, model *project.Model, local *symbols.FileResolution, nameRef syntax.RedNode, tok syntax.RedToken) (Occurrence, bool) {
	idents := identTokens(nameRef)
	idx := -1
	for i, t := range idents {
		if t.TextRange() == tok.TextRange() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Occurrence{}, false
	}
	exprID, ok := local.Exprs.At(nameRef.TextRange().Start)
	if !ok {
		return Occurrence{}, false
	}
	entry, ok := local.Exprs.Entry(exprID)
	if !ok {
		return Occurrence{}, false
	}
	sym, ok := resolveChainSymbol(model, local, file, entry.Scope, idents, idx)
	if !ok {
		return Occurrence{}, false
	}
	return Occurrence{Symbol: sym, Range: tok.TextRange()}, true
}

func (s *Service) occurrenceInFieldExpr(ticket host.RequestTicket, file host.FileId, model *project.Model, local *symbols.FileResolution, fieldExpr syntax.RedNode, tok syntax.RedToken) (Occurrence, bool) {
	children := fieldExpr.Children()
	if len(children) != 2 {
		return Occurrence{}, false
	}
	base := children[0]
	baseExprID, ok := local.Exprs.At(base.TextRange().Start)
	if !ok {
		return Occurrence{}, false
	}
	baseType, ok := s.DB.TypeOf(ticket, file, baseExprID)
	if !ok {
		return Occurrence{}, false
	}
	name := tok.Text()
	if sym, ok := memberSymbol(model, baseType, name); ok {
		return Occurrence{Symbol: sym, Range: tok.TextRange()}, true
	}
	// Fall back to treating base.name as a qualified namespace path,
	// mirroring typecheck.typeOfFieldExpr's own fallback.
	if id, ok := model.MergedSymbols.ResolveByName(base.Text() + "." + name); ok {
		sym, ok := model.MergedSymbols.Get(id)
		if !ok {
			return Occurrence{}, false
		}
		return Occurrence{Symbol: sym, Range: tok.TextRange()}, true
	}
	return Occurrence{}, false
}

// occurrenceAtDeclaration handles a click directly on a declaration's own
// name (not a reference to it): find the local symbol whose Range
// matches the Name node, then translate it into the merged identity
// space so callers get one uniform Symbol shape regardless of whether
// the cursor sat on a declaration or a use site.
func occurrenceAtDeclaration(model *project.Model, local *symbols.FileResolution, file host.FileId, nameNode syntax.RedNode) (Occurrence, bool) {
	rng := nameNode.TextRange()
	for _, sym := range local.Symbols.Iter() {
		if sym.Range == rng {
			mergedID, ok := model.MergedID(file, sym.ID)
			if !ok {
				continue
			}
			merged, ok := model.MergedSymbols.Get(mergedID)
			if !ok {
				continue
			}
			return Occurrence{Symbol: merged, Range: rng}, true
		}
	}
	return Occurrence{}, false
}

// resolveChainSymbol resolves idents[0..upTo] (a prefix of a flattened
// dotted NameRef) to the Symbol its last included segment names. The
// whole prefix is tried first as an absolute qualified path — a
// namespace-qualified reference and an instance-member chain are
// syntactically identical here — falling back to resolving the head
// locally (scope chain, then USING) and walking the remaining segments
// as type members.
func resolveChainSymbol(model *project.Model, local *symbols.FileResolution, file host.FileId, scope symbols.ScopeId, idents []syntax.RedToken, upTo int) (symbols.Symbol, bool) {
	if upTo < 0 || upTo >= len(idents) {
		return symbols.Symbol{}, false
	}
	names := make([]string, upTo+1)
	for i := 0; i <= upTo; i++ {
		names[i] = idents[i].Text()
	}
	if id, ok := model.MergedSymbols.ResolveQualified(names); ok {
		return model.MergedSymbols.Get(id)
	}

	head, ok := resolveHead(model, local, file, names[0], scope)
	if !ok {
		return symbols.Symbol{}, false
	}
	if upTo == 0 {
		return head, true
	}
	sym := head
	for i := 1; i <= upTo; i++ {
		next, ok := memberSymbol(model, sym.TypeID, names[i])
		if !ok {
			return symbols.Symbol{}, false
		}
		sym = next
	}
	return sym, true
}

// resolveHead resolves a chain's leading segment: the file-local scope
// chain first (translated into the merged identity space, since only
// merged symbols carry a bound TypeID), then every USING directive
// visible from scope, innermost first. Mirrors
// internal/typecheck.Checker.resolveHead exactly; duplicated rather than
// imported since Checker's fields are unexported and this package needs
// the resolved Symbol, not its TypeId.
func resolveHead(model *project.Model, local *symbols.FileResolution, file host.FileId, name string, scope symbols.ScopeId) (symbols.Symbol, bool) {
	if localID, ok := local.Symbols.Resolve(name, scope); ok {
		if mergedID, ok := model.MergedID(file, localID); ok {
			return model.MergedSymbols.Get(mergedID)
		}
	}
	cur := scope
	for {
		sc := local.Scopes.Get(cur)
		for _, u := range sc.Using {
			path := append(append([]string{}, u.Path...), name)
			if mergedID, ok := model.MergedSymbols.ResolveQualified(path); ok {
				return model.MergedSymbols.Get(mergedID)
			}
		}
		if !sc.HasParent {
			return symbols.Symbol{}, false
		}
		cur = sc.Parent
	}
}

// memberSymbol looks up name as a member of baseType: a struct/union
// field, an enum value, or a class/FB/interface member — all reached
// through one uniform findMember scan, since internal/project's
// buildNamedType now stamps Owner on struct/union/enum Types exactly as
// buildType already did for FunctionBlock/Class/Interface (see
// DESIGN.md's Open Question decision on sttypes.Type.Owner).
func memberSymbol(model *project.Model, baseType sttypes.TypeId, name string) (symbols.Symbol, bool) {
	resolved := model.Types.ResolveAlias(baseType)
	t, ok := model.Types.TypeByID(resolved)
	if !ok {
		return symbols.Symbol{}, false
	}
	switch t.Tag {
	case sttypes.TagStruct, sttypes.TagUnion, sttypes.TagEnum,
		sttypes.TagFunctionBlock, sttypes.TagClass, sttypes.TagInterface:
		return findMember(model, t.Owner, name)
	default:
		return symbols.Symbol{}, false
	}
}

// findMember looks up name among owner's direct merged-table children,
// falling back through owner's EXTENDS/IMPLEMENTS base(s) in
// DerivationGraph order when not found directly (§4.6's inherited-member
// visibility).
func findMember(model *project.Model, owner symbols.SymbolId, name string) (symbols.Symbol, bool) {
	tbl := model.MergedSymbols
	for _, child := range tbl.Iter() {
		if child.HasParent && child.Parent == owner && strings.EqualFold(child.Name, name) {
			return child, true
		}
	}
	for _, base := range model.DerivationGraph[owner] {
		if sym, ok := findMember(model, base, name); ok {
			return sym, true
		}
	}
	return symbols.Symbol{}, false
}
