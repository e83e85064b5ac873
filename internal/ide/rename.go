package ide

import (
	"path/filepath"
	"strings"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// RenameResult is the edit set a successful rename produces: the
// per-file text edits plus any file renames a primary-POU rename implies
// (§4.9.5).
type RenameResult struct {
	Edits   map[host.FileId][]host.TextEdit
	Renames []host.FileRename
}

// Rename computes the edits that renaming the identifier at off within
// file to newName requires, or false if the rename is invalid or the
// target cannot be resolved. It never mutates source itself; the host
// applies the returned edits.
func (s *Service) Rename(ticket host.RequestTicket, file host.FileId, off host.Offset, newName string) (RenameResult, bool) {
	if !isValidIdentifier(newName) {
		return RenameResult{}, false
	}
	if _, reserved := syntax.LookupKeyword(strings.ToLower(newName)); reserved {
		return RenameResult{}, false
	}

	occ, ok := s.occurrenceAt(ticket, file, off)
	if !ok {
		return RenameResult{}, false
	}

	if occ.Symbol.Kind.Tag == symbols.KindNamespace {
		return s.renameNamespace(ticket, occ.Symbol, newName)
	}

	result := RenameResult{Edits: map[host.FileId][]host.TextEdit{}}
	if isPrimaryPOU(occ.Symbol) {
		if declFile, _, ok := DeclLocation(occ.Symbol); ok {
			if oldPath, ok := s.DB.Host().FilePath(declFile); ok {
				stem := strings.TrimSuffix(filepath.Base(oldPath), filepath.Ext(oldPath))
				if strings.EqualFold(stem, occ.Symbol.Name) {
					newPath := filepath.Join(filepath.Dir(oldPath), newName+filepath.Ext(oldPath))
					result.Renames = append(result.Renames, host.FileRename{OldPath: oldPath, NewPath: newPath})
				}
			}
		}
	}

	for _, ref := range s.referencesToSymbol(ticket, occ.Symbol, true) {
		if ticket.Cancelled() {
			return RenameResult{}, false
		}
		result.Edits[ref.File] = append(result.Edits[ref.File], host.TextEdit{File: ref.File, Range: ref.Range, NewText: newName})
	}
	if len(result.Edits) == 0 && len(result.Renames) == 0 {
		return RenameResult{}, false
	}
	return result, true
}

// isPrimaryPOU reports whether sym names a top-level (not nested inside
// another POU) Program/Function/FunctionBlock/Class/Interface/TypeDecl —
// the kind of declaration a file is conventionally named after.
func isPrimaryPOU(sym symbols.Symbol) bool {
	switch sym.Kind.Tag {
	case symbols.KindProgram, symbols.KindFunction, symbols.KindFunctionBlock,
		symbols.KindClass, symbols.KindInterface, symbols.KindType:
	default:
		return false
	}
	return !sym.HasParent
}

// renameNamespace rewrites the namespace's own declaration plus every
// USING directive whose path equals its qualified path and every
// qualified-name/field-chain prefix that equals it, to newName — leaving
// the rest of the dotted path untouched (§4.9.5 step 4).
func (s *Service) renameNamespace(ticket host.RequestTicket, target symbols.Symbol, newName string) (RenameResult, bool) {
	path := namespacePath(s, ticket, target)
	if len(path) == 0 {
		return RenameResult{}, false
	}
	newPath := append(append([]string{}, path[:len(path)-1]...), newName)

	result := RenameResult{Edits: map[host.FileId][]host.TextEdit{}}
	if declFile, rng, ok := DeclLocation(target); ok {
		result.Edits[declFile] = append(result.Edits[declFile], host.TextEdit{File: declFile, Range: rng, NewText: newName})
	}
	for _, file := range s.DB.FileIds(ticket) {
		if ticket.Cancelled() {
			return RenameResult{}, false
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
			// KindUsingDirective's own QualifiedName child is visited by
			// this same Descendants walk, so it is rewritten here too:
			// a USING path and a TypeRef/ExtendsClause/ImplementsClause
			// qualified name are syntactically identical, matched purely
			// by text since they don't sit inside an expression scope a
			// resolver can walk.
			case syntax.KindQualifiedName:
				if edit, ok := renameIdentPrefix(file, identTokens(n), path, newPath); ok {
					result.Edits[file] = append(result.Edits[file], edit)
				}
			case syntax.KindNameRef:
				// An expression NameRef chain is only rewritten when its
				// prefix actually *resolves* to the namespace (spec's
				// "dotted field chains that resolve to the namespace"),
				// not merely text-matches it — a local symbol that happens
				// to share the namespace's name must not be touched.
				idents := identTokens(n)
				exprID, ok := local.Exprs.At(n.TextRange().Start)
				if !ok {
					return true
				}
				entry, ok := local.Exprs.Entry(exprID)
				if !ok {
					return true
				}
				for idx := len(path) - 1; idx < len(idents); idx++ {
					sym, ok := resolveChainSymbol(model, local, file, entry.Scope, idents, idx)
					if !ok || !sameMergedSymbol(sym, target) {
						continue
					}
					if edit, ok := renameIdentPrefix(file, idents[:idx+1], path, newPath); ok {
						result.Edits[file] = append(result.Edits[file], edit)
					}
					break
				}
			}
			return true
		})
	}
	if len(result.Edits) == 0 {
		return RenameResult{}, false
	}
	return result, true
}

// namespacePath walks target's own merged-table ancestry to build its
// dotted namespace path.
func namespacePath(s *Service, ticket host.RequestTicket, target symbols.Symbol) []string {
	declFile, _, ok := DeclLocation(target)
	if !ok {
		return nil
	}
	model, ok := s.DB.FileSymbolsWithProject(ticket, declFile)
	if !ok {
		return nil
	}
	var parts []string
	cur := target
	parts = append(parts, cur.Name)
	for cur.HasParent {
		parent, ok := model.MergedSymbols.Get(cur.Parent)
		if !ok {
			break
		}
		parts = append([]string{parent.Name}, parts...)
		cur = parent
	}
	return parts
}

// renameIdentPrefix rewrites idents' leading segments (a QualifiedName or
// NameRef's flat Ident-token run) when they case-fold match old, producing
// one TextEdit spanning exactly those segments.
func renameIdentPrefix(file host.FileId, idents []syntax.RedToken, old, newPath []string) (host.TextEdit, bool) {
	if len(idents) < len(old) {
		return host.TextEdit{}, false
	}
	for i, want := range old {
		if !strings.EqualFold(idents[i].Text(), want) {
			return host.TextEdit{}, false
		}
	}
	start := idents[0].TextRange().Start
	end := idents[len(old)-1].TextRange().End
	return host.TextEdit{File: file, Range: host.TextRange{Start: start, End: end}, NewText: strings.Join(newPath, ".")}, true
}

// isValidIdentifier reports whether name is a syntactically legal IEC
// 61131-3 identifier: starts with a letter or underscore, followed by
// letters, digits, or underscores (§3.3's Ident token shape).
func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			if !isLetter {
				return false
			}
			continue
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}
