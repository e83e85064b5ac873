package symbols

import "github.com/oxhq/stcore/host"

// exprKinds is intentionally not keyed on internal/syntax.Kind directly to
// avoid a dependency cycle (internal/syntax has no reason to know about
// symbols); resolve_file.go passes kind checks in as a closure instead.

// ExprEntry is one expression-kind node recorded by the per-file resolver,
// in source order (§3.7 "expr_offset_map"). Scope is the lexical scope the
// expression was found in, so a later typing pass can resolve its free
// names without re-walking the CST to rediscover context.
type ExprEntry struct {
	ID    ExprId
	Range host.TextRange
	Scope ScopeId
}

// ExprIndex is the ordered expr_offset_map of §3.7: every expression-kind
// CST node in a file, keyed for offset-based lookup. Entries are recorded
// in pre-order, which for this grammar is non-decreasing by start offset.
type ExprIndex struct {
	entries []ExprEntry
}

// Add records a new expression node and returns its assigned ExprId.
func (x *ExprIndex) Add(r host.TextRange, scope ScopeId) ExprId {
	id := ExprId(len(x.entries))
	x.entries = append(x.entries, ExprEntry{ID: id, Range: r, Scope: scope})
	return id
}

// Get returns the range for a previously assigned ExprId.
func (x *ExprIndex) Get(id ExprId) (host.TextRange, bool) {
	if int(id) < 0 || int(id) >= len(x.entries) {
		return host.TextRange{}, false
	}
	return x.entries[id].Range, true
}

// Entry returns the full recorded entry for a previously assigned ExprId.
func (x *ExprIndex) Entry(id ExprId) (ExprEntry, bool) {
	if int(id) < 0 || int(id) >= len(x.entries) {
		return ExprEntry{}, false
	}
	return x.entries[id], true
}

// Len returns how many expression nodes were recorded.
func (x *ExprIndex) Len() int { return len(x.entries) }

// At locates the innermost expression whose range contains off — the
// smallest range among all entries covering off (§4.7
// "expr_id_at_offset"). A linear scan is adequate at file scope; no
// component in this module processes files large enough to need an
// interval tree.
func (x *ExprIndex) At(off host.Offset) (ExprId, bool) {
	best := -1
	var bestLen host.Offset
	for _, e := range x.entries {
		if off < e.Range.Start || off > e.Range.End {
			continue
		}
		length := e.Range.End - e.Range.Start
		if best == -1 || length < bestLen {
			best = int(e.ID)
			bestLen = length
		}
	}
	if best == -1 {
		return 0, false
	}
	return ExprId(best), true
}
