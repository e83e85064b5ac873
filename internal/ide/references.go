package ide

import (
	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// Reference is one occurrence of a symbol found by a references or
// rename scan: its exact source range, and whether that occurrence is a
// write (assignment target) or a read (§4.9.4).
type Reference struct {
	File  host.FileId
	Range host.TextRange
	Write bool
}

// References finds every occurrence, across every open file, of the
// symbol at off within file (§4.9.4). includeDeclaration additionally
// reports the symbol's own declaration site as a (non-write) reference.
func (s *Service) References(ticket host.RequestTicket, file host.FileId, off host.Offset, includeDeclaration bool) ([]Reference, bool) {
	occ, ok := s.occurrenceAt(ticket, file, off)
	if !ok {
		return nil, false
	}
	return s.referencesToSymbol(ticket, occ.Symbol, includeDeclaration), true
}

// referencesToSymbol scans every open file's CST for NameRef/FieldExpr
// occurrences resolving to target, classifying each as a write or read.
func (s *Service) referencesToSymbol(ticket host.RequestTicket, target symbols.Symbol, includeDeclaration bool) []Reference {
	var out []Reference
	if includeDeclaration {
		if declFile, rng, ok := DeclLocation(target); ok {
			out = append(out, Reference{File: declFile, Range: rng, Write: false})
		}
	}

	for _, file := range s.DB.FileIds(ticket) {
		if ticket.Cancelled() {
			return nil
		}
		model, ok := s.DB.FileSymbolsWithProject(ticket, file)
		if !ok {
			continue
		}
		local, ok := s.DB.FileSymbols(ticket, file)
		if !ok {
			continue
		}
		root, _, ok := s.DB.Parse(ticket, file)
		if !ok {
			continue
		}

		root.Descendants(func(n syntax.RedNode) bool {
			switch n.Kind() {
			case syntax.KindNameRef:
				idents := identTokens(n)
				exprID, ok := local.Exprs.At(n.TextRange().Start)
				if !ok {
					return true
				}
				entry, ok := local.Exprs.Entry(exprID)
				if !ok {
					return true
				}
				for i, tok := range idents {
					sym, ok := resolveChainSymbol(model, local, file, entry.Scope, idents, i)
					if !ok {
						continue
					}
					if sameMergedSymbol(sym, target) {
						out = append(out, Reference{File: file, Range: tok.TextRange(), Write: isWriteTarget(n)})
					}
				}
			case syntax.KindFieldExpr:
				children := n.Children()
				if len(children) != 2 {
					return true
				}
				base := children[0]
				baseExprID, ok := local.Exprs.At(base.TextRange().Start)
				if !ok {
					return true
				}
				baseType, ok := s.DB.TypeOf(ticket, file, baseExprID)
				if !ok {
					return true
				}
				nameTok, ok := n.Children()[1].FirstToken()
				if !ok {
					return true
				}
				sym, ok := memberSymbol(model, baseType, nameTok.Text())
				if !ok {
					return true
				}
				if sameMergedSymbol(sym, target) {
					out = append(out, Reference{File: file, Range: nameTok.TextRange(), Write: isWriteTarget(n)})
				}
			}
			return true
		})
	}
	return out
}

func sameMergedSymbol(a, b symbols.Symbol) bool {
	return a.HasOrigin && b.HasOrigin && a.Origin == b.Origin
}

// isWriteTarget reports whether n (a NameRef or FieldExpr) is the
// assignment target of an AssignStmt: either n's parent directly is one,
// or n is the base of a nested FieldExpr/IndexExpr chain whose outermost
// parent is one (§4.9.4: "a.b.c := x" classifies a, b, and c all as
// writes, since every level is part of the assigned location).
func isWriteTarget(n syntax.RedNode) bool {
	cur := n
	for {
		parent, ok := cur.Parent()
		if !ok {
			return false
		}
		switch parent.Kind() {
		case syntax.KindFieldExpr, syntax.KindIndexExpr:
			children := parent.Children()
			if len(children) == 0 || children[0].TextRange() != cur.TextRange() {
				return false
			}
			cur = parent
			continue
		case syntax.KindAssignStmt:
			children := parent.Children()
			return len(children) > 0 && children[0].TextRange() == cur.TextRange()
		default:
			return false
		}
	}
}
