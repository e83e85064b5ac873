package ide

import (
	"fmt"
	"strings"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// Hover is the markdown contents and anchoring range of a hover response
// (§4.9.2).
type Hover struct {
	Contents string
	Range    host.TextRange
}

// Hover resolves the identifier at off within file and renders its
// declaration header, type, namespace path, visibility/modifiers, and any
// leading doc comment — plus host-supplied library documentation when the
// symbol is a stdlib entry (§6 LibraryDocs).
func (s *Service) Hover(ticket host.RequestTicket, file host.FileId, off host.Offset) (Hover, bool) {
	occ, ok := s.occurrenceAt(ticket, file, off)
	if !ok {
		return Hover{}, false
	}
	model, ok := s.DB.FileSymbolsWithProject(ticket, file)
	if !ok {
		return Hover{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "```\n%s %s", kindDisplayName(occ.Symbol.Kind.Tag), qualifiedName(model, occ.Symbol))
	if occ.Symbol.TypeID != symbols.NoType {
		fmt.Fprintf(&b, " : %s", typeDisplayName(model, occ.Symbol.TypeID))
	}
	b.WriteString("\n```\n")

	switch occ.Symbol.Kind.Tag {
	case symbols.KindVariable, symbols.KindParameter:
		fmt.Fprintf(&b, "\n%s", qualifierDisplayName(occ.Symbol.Kind.VarQualifier))
		if occ.Symbol.Kind.IsConstant {
			b.WriteString(", CONSTANT")
		}
		if occ.Symbol.Kind.IsRetain {
			b.WriteString(", RETAIN")
		}
		if occ.Symbol.Kind.IsPersistent {
			b.WriteString(", PERSISTENT")
		}
		b.WriteString("\n")
	}
	if occ.Symbol.Modifiers.IsAbstract || occ.Symbol.Modifiers.IsFinal || occ.Symbol.Modifiers.IsOverride {
		var mods []string
		if occ.Symbol.Modifiers.IsAbstract {
			mods = append(mods, "ABSTRACT")
		}
		if occ.Symbol.Modifiers.IsFinal {
			mods = append(mods, "FINAL")
		}
		if occ.Symbol.Modifiers.IsOverride {
			mods = append(mods, "OVERRIDE")
		}
		fmt.Fprintf(&b, "\n%s\n", strings.Join(mods, ", "))
	}
	fmt.Fprintf(&b, "\nVisibility: %s\n", occ.Symbol.Visibility.String())

	if doc, ok := declDocComment(s, ticket, occ.Symbol); ok {
		fmt.Fprintf(&b, "\n%s\n", doc)
	}

	if cfg := s.DB.Host().Config(file); cfg.LibraryDocs != nil {
		if md, ok := cfg.LibraryDocs[qualifiedName(model, occ.Symbol)]; ok {
			fmt.Fprintf(&b, "\n---\n%s\n", md)
		}
	}

	return Hover{Contents: b.String(), Range: occ.Range}, true
}

// declDocComment extracts the doc comment immediately preceding sym's
// declaration: every contiguous line/block comment trivia token directly
// before its Name token, stopping at the first non-trivia token or a
// blank-line gap (more than one newline between the comment and the
// token it documents signals it belongs to something earlier, not this
// declaration).
func declDocComment(s *Service, ticket host.RequestTicket, sym symbols.Symbol) (string, bool) {
	file, rng, ok := DeclLocation(sym)
	if !ok {
		return "", false
	}
	root, _, ok := s.DB.Parse(ticket, file)
	if !ok {
		return "", false
	}
	tok, ok := root.TokenAtOffset(rng.Start, syntax.BiasRight)
	if !ok {
		return "", false
	}

	var comments []string
	cur := tok
	for {
		prev, ok := cur.PrevToken()
		if !ok {
			break
		}
		if prev.Kind() == syntax.KindWhitespace {
			if strings.Count(prev.Text(), "\n") > 1 {
				break
			}
			cur = prev
			continue
		}
		if prev.Kind() == syntax.KindLineComment || prev.Kind() == syntax.KindBlockComment {
			comments = append([]string{cleanComment(prev.Text())}, comments...)
			cur = prev
			continue
		}
		break
	}
	if len(comments) == 0 {
		return "", false
	}
	return strings.Join(comments, "\n"), true
}

func cleanComment(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "(*")
	text = strings.TrimSuffix(text, "*)")
	return strings.TrimSpace(text)
}
