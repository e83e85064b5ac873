package project

import (
	"fmt"
	"strings"

	"github.com/oxhq/stcore/internal/diagnostics"
	"github.com/oxhq/stcore/internal/symbols"
)

// foldKey ASCII-lowercases s for use as a byQualifiedName map key, mirroring
// the case-insensitive identifier comparison the language requires (§9).
func foldKey(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// localQualifiedName walks sym's Parent chain within its own file's table
// and joins the names root-to-leaf with '.'.
func localQualifiedName(tbl *symbols.SymbolTable, sym symbols.Symbol) string {
	parts := []string{sym.Name}
	cur := sym
	for cur.HasParent {
		parent, ok := tbl.Get(cur.Parent)
		if !ok {
			break
		}
		parts = append([]string{parent.Name}, parts...)
		cur = parent
	}
	return strings.Join(parts, ".")
}

// mergeable lists the symbol kinds that participate in cross-file
// duplicate-collapsing at all (§4.6 decision: "Programs/Functions/FBs/
// Classes/Interfaces/Namespaces/Types never overload... Methods are the
// only symbol kind with arity-based overload compatibility"). Every other
// kind — variables, parameters, constants, enum values, properties,
// actions, resources, tasks — is declared fresh per occurrence: two
// same-named local variables in two unrelated files (or two unrelated
// methods) are not the same symbol just because they share a name, and
// collapsing them by qualified-path text alone would silently merge a
// parameter of one method's signature into an unrelated method's scope
// whenever that method itself failed to collapse.
func mergeable(tag symbols.SymbolKindTag) bool {
	switch tag {
	case symbols.KindProgram, symbols.KindFunction, symbols.KindFunctionBlock,
		symbols.KindClass, symbols.KindInterface, symbols.KindNamespace,
		symbols.KindType, symbols.KindMethod:
		return true
	default:
		return false
	}
}

// compatible reports whether two same-qualified-path symbols from
// different files may be collapsed into one merged symbol (§4.6): same
// kind, and for Methods additionally the same arity and (when both name
// one) the same return type.
func compatible(existing, next symbols.Symbol) bool {
	if existing.Kind.Tag != next.Kind.Tag {
		return false
	}
	if existing.Kind.Tag == symbols.KindMethod {
		if existing.Kind.Arity != next.Kind.Arity {
			return false
		}
		if existing.Kind.HasReturn && next.Kind.HasReturn && existing.Kind.ReturnType != next.Kind.ReturnType {
			return false
		}
	}
	return true
}

// copySymbols walks every file's local SymbolTable in insertion order
// (parents necessarily precede their children, since the per-file resolver
// declares a container before recursing into it) and copies each symbol
// into the merged table, collapsing same-qualified-path duplicates that
// are compatible and flagging the rest with E105 (§3.8, §4.6).
func (mb *merger) copySymbols() {
	mb.byQualifiedName = map[string]symbols.SymbolId{}
	mb.containerScope = map[symbols.SymbolId]symbols.ScopeId{}

	for _, entry := range mb.entries {
		if entry.Res == nil {
			continue
		}
		localToMerged := map[symbols.SymbolId]symbols.SymbolId{}
		tbl := entry.Res.Symbols

		for _, sym := range tbl.Iter() {
			mergedParent, hasParent := symbols.SymbolId(0), false
			if sym.HasParent {
				if mp, ok := localToMerged[sym.Parent]; ok {
					mergedParent, hasParent = mp, true
				}
			}

			targetScope := mb.scopeFor(mergedParent, hasParent)

			var mergedID symbols.SymbolId
			if !mergeable(sym.Kind.Tag) {
				mergedID = mb.insertSymbol(sym, mergedParent, hasParent, entry, targetScope)
			} else {
				path := foldKey(localQualifiedName(tbl, sym))
				if existingID, ok := mb.byQualifiedName[path]; ok {
					existing, _ := mb.model.MergedSymbols.Get(existingID)
					if compatible(existing, sym) {
						mergedID = existingID
					} else {
						mergedID = mb.insertSymbol(sym, mergedParent, hasParent, entry, targetScope)
						mb.model.Diagnostics = append(mb.model.Diagnostics, diagnostics.Diagnostic{
							Code:     diagnostics.EAmbiguousDeclaration,
							Severity: diagnostics.DefaultSeverity(diagnostics.EAmbiguousDeclaration),
							Message:  fmt.Sprintf("%q is declared more than once with incompatible signatures", sym.Name),
							File:     entry.File,
							Range:    sym.Range,
						})
					}
				} else {
					mergedID = mb.insertSymbol(sym, mergedParent, hasParent, entry, targetScope)
					mb.byQualifiedName[path] = mergedID
				}
			}

			localToMerged[sym.ID] = mergedID
			mb.model.originToMerged[origin{file: entry.File, local: sym.ID}] = mergedID

			if names := tbl.ExtendsNames(sym.ID); len(names) > 0 {
				mb.model.MergedSymbols.SetExtendsNames(mergedID, names)
			}
			if names := tbl.ImplementsNames(sym.ID); len(names) > 0 {
				mb.model.MergedSymbols.SetImplementsNames(mergedID, names)
			}
		}
	}
}

func (mb *merger) insertSymbol(sym symbols.Symbol, mergedParent symbols.SymbolId, hasParent bool, entry FileEntry, scope symbols.ScopeId) symbols.SymbolId {
	sym.Parent = mergedParent
	sym.HasParent = hasParent
	sym.Origin = symbols.Origin{File: entry.File, LocalID: sym.ID}
	sym.HasOrigin = true
	id := mb.model.MergedSymbols.Insert(sym)
	mb.model.MergedScopes.Declare(scope, sym.Name, id)
	return id
}

// scopeFor returns the scope new declarations under mergedParent (or the
// global scope, if hasParent is false) should be declared into, lazily
// creating a child scope owned by mergedParent the first time it is asked
// for one.
func (mb *merger) scopeFor(mergedParent symbols.SymbolId, hasParent bool) symbols.ScopeId {
	if !hasParent {
		return symbols.GlobalScope
	}
	if sc, ok := mb.containerScope[mergedParent]; ok {
		return sc
	}
	parentSym, _ := mb.model.MergedSymbols.Get(mergedParent)
	parentScope := mb.scopeFor(parentSym.Parent, parentSym.HasParent)
	sc := mb.model.MergedScopes.NewChild(parentScope)
	mb.model.MergedScopes.SetOwner(sc, mergedParent)
	mb.containerScope[mergedParent] = sc
	return sc
}

// derivable lists the symbol kinds that participate in the EXTENDS/
// IMPLEMENTS derivation graph (§3.8).
func derivable(tag symbols.SymbolKindTag) bool {
	return tag == symbols.KindClass || tag == symbols.KindFunctionBlock || tag == symbols.KindInterface
}

// resolveDerivation resolves every Class/FunctionBlock/Interface's textual
// EXTENDS/IMPLEMENTS operands against the merged table, populating
// DerivationGraph, and reports any cycle as E104 (§3.8's invariant that a
// cycle must be detected and broken, never followed infinitely).
func (mb *merger) resolveDerivation() {
	tbl := mb.model.MergedSymbols
	for _, sym := range tbl.Iter() {
		if !derivable(sym.Kind.Tag) {
			continue
		}
		var bases []symbols.SymbolId
		for _, name := range tbl.ExtendsNames(sym.ID) {
			if id, ok := mb.resolveOperand(sym.ID, name); ok {
				bases = append(bases, id)
			}
		}
		for _, name := range tbl.ImplementsNames(sym.ID) {
			if id, ok := mb.resolveOperand(sym.ID, name); ok {
				bases = append(bases, id)
			}
		}
		if len(bases) > 0 {
			mb.model.DerivationGraph[sym.ID] = bases
		}
	}
	mb.detectCycles()
}

func (mb *merger) resolveOperand(owner symbols.SymbolId, name string) (symbols.SymbolId, bool) {
	tbl := mb.model.MergedSymbols
	if id, ok := tbl.ResolveByName(name); ok {
		return id, true
	}
	if id, ok := tbl.Resolve(name, symbols.GlobalScope); ok {
		return id, true
	}
	owningSym, _ := tbl.Get(owner)
	mb.model.Diagnostics = append(mb.model.Diagnostics, diagnostics.Diagnostic{
		Code:     diagnostics.EBrokenInheritance,
		Severity: diagnostics.DefaultSeverity(diagnostics.EBrokenInheritance),
		Message:  fmt.Sprintf("%q names an unresolved base type %q", owningSym.Name, name),
		Range:    owningSym.Range,
	})
	return 0, false
}

// detectCycles walks DerivationGraph with the three-color DFS scheme and
// reports one E104 per symbol discovered to sit on a cycle, breaking the
// edge so later traversals (type checking, member lookup) never follow it.
func (mb *merger) detectCycles() {
	const (
		white = iota
		gray
		black
	)
	color := map[symbols.SymbolId]int{}
	tbl := mb.model.MergedSymbols

	var visit func(id symbols.SymbolId)
	visit = func(id symbols.SymbolId) {
		color[id] = gray
		kept := mb.model.DerivationGraph[id][:0]
		for _, base := range mb.model.DerivationGraph[id] {
			switch color[base] {
			case white:
				visit(base)
				kept = append(kept, base)
			case gray:
				sym, _ := tbl.Get(id)
				mb.model.Diagnostics = append(mb.model.Diagnostics, diagnostics.Diagnostic{
					Code:     diagnostics.EAliasCycle,
					Severity: diagnostics.DefaultSeverity(diagnostics.EAliasCycle),
					Message:  fmt.Sprintf("%q participates in an inheritance cycle", sym.Name),
					Range:    sym.Range,
				})
				// edge dropped: do not append base to kept.
			case black:
				kept = append(kept, base)
			}
		}
		mb.model.DerivationGraph[id] = kept
		color[id] = black
	}

	for id := range mb.model.DerivationGraph {
		if color[id] == white {
			visit(id)
		}
	}
}
