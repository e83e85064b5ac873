package ide

import (
	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/project"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
)

// Location is a navigable file+range pair (§4.9.3).
type Location struct {
	File  host.FileId
	Range host.TextRange
}

// Definition resolves the identifier at off to its declaration site
// (§4.9.3 "goto definition"), possibly in another file.
func (s *Service) Definition(ticket host.RequestTicket, file host.FileId, off host.Offset) (Location, bool) {
	occ, ok := s.occurrenceAt(ticket, file, off)
	if !ok {
		return Location{}, false
	}
	declFile, rng, ok := DeclLocation(occ.Symbol)
	if !ok {
		return Location{}, false
	}
	return Location{File: declFile, Range: rng}, true
}

// Declaration is Definition (§4.9.3): this language has no separate
// forward-declaration/definition split (a POU's header and body are one
// declaration), so both requests resolve identically.
func (s *Service) Declaration(ticket host.RequestTicket, file host.FileId, off host.Offset) (Location, bool) {
	return s.Definition(ticket, file, off)
}

// TypeDefinition resolves the identifier at off to the declaration of its
// TYPE, rather than to the identifier's own declaration (§4.9.3 "goto
// type definition") — hovering over a variable named `c : Counter` and
// asking for its type definition lands on Counter's FUNCTION_BLOCK
// header, not on c's VAR entry.
func (s *Service) TypeDefinition(ticket host.RequestTicket, file host.FileId, off host.Offset) (Location, bool) {
	occ, ok := s.occurrenceAt(ticket, file, off)
	if !ok || occ.Symbol.TypeID == symbols.NoType {
		return Location{}, false
	}
	model, ok := s.DB.FileSymbolsWithProject(ticket, file)
	if !ok {
		return Location{}, false
	}
	resolved := model.Types.ResolveAlias(occ.Symbol.TypeID)
	t, ok := model.Types.TypeByID(resolved)
	if !ok {
		return Location{}, false
	}
	switch t.Tag {
	case sttypes.TagStruct, sttypes.TagUnion, sttypes.TagEnum,
		sttypes.TagFunctionBlock, sttypes.TagClass, sttypes.TagInterface:
		owner, ok := model.MergedSymbols.Get(t.Owner)
		if !ok {
			return Location{}, false
		}
		declFile, rng, ok := DeclLocation(owner)
		if !ok {
			return Location{}, false
		}
		return Location{File: declFile, Range: rng}, true
	default:
		return Location{}, false
	}
}

// Implementation resolves an Interface Method to every Method in the
// project that implements it, or a virtual (overridable) Method to every
// override in a derived Class/FunctionBlock — the reverse direction of
// the EXTENDS/IMPLEMENTS derivation graph (§4.9.3 "goto implementation").
func (s *Service) Implementation(ticket host.RequestTicket, file host.FileId, off host.Offset) ([]Location, bool) {
	occ, ok := s.occurrenceAt(ticket, file, off)
	if !ok || occ.Symbol.Kind.Tag != symbols.KindMethod {
		return nil, false
	}
	model, ok := s.DB.FileSymbolsWithProject(ticket, file)
	if !ok {
		return nil, false
	}

	// Every Class/FunctionBlock whose DerivationGraph entry includes
	// occ.Symbol's own owner (directly or transitively), scanned for a
	// same-named Method, is an implementation/override.
	var out []Location
	tbl := model.MergedSymbols
	for _, owner := range tbl.Iter() {
		if owner.Kind.Tag != symbols.KindClass && owner.Kind.Tag != symbols.KindFunctionBlock {
			continue
		}
		if !derivesFrom(model, owner.ID, occ.Symbol.Parent) {
			continue
		}
		if m, ok := findMember(model, owner.ID, occ.Symbol.Name); ok && m.Kind.Tag == symbols.KindMethod {
			if declFile, rng, ok := DeclLocation(m); ok {
				out = append(out, Location{File: declFile, Range: rng})
			}
		}
	}
	return out, len(out) > 0
}

// derivesFrom reports whether owner's EXTENDS/IMPLEMENTS closure includes
// target, directly or transitively.
func derivesFrom(model *project.Model, owner, target symbols.SymbolId) bool {
	for _, base := range model.DerivationGraph[owner] {
		if base == target {
			return true
		}
		if derivesFrom(model, base, target) {
			return true
		}
	}
	return false
}
