package symbols

import "github.com/oxhq/stcore/host"

// UsingDirective records one `USING a.b.c;` import visible within a scope
// (§3.5). Names are checked after the local lexical chain fails.
type UsingDirective struct {
	Path  []string
	Range host.TextRange
}

// Scope is one node of a ScopeTree (§3.5). Symbol lookup is case-folded;
// Symbols stores the folded name so Resolve does not need to re-fold on
// every lookup.
type Scope struct {
	ID        ScopeId
	Parent    ScopeId
	HasParent bool
	Owner     SymbolId
	HasOwner  bool
	Symbols   map[string]SymbolId // case-folded name -> symbol
	Using     []UsingDirective
}

// ScopeTree owns every Scope for one file (or, once merged, one project).
// Scope 0 is always the global scope (§3.5).
type ScopeTree struct {
	scopes []Scope
}

// NewScopeTree creates a tree with scope 0 (the global scope) pre-created.
func NewScopeTree() *ScopeTree {
	t := &ScopeTree{}
	t.scopes = append(t.scopes, Scope{ID: GlobalScope, Symbols: map[string]SymbolId{}})
	return t
}

// NewChild creates a new scope whose parent is parent, returning its id.
func (t *ScopeTree) NewChild(parent ScopeId) ScopeId {
	id := ScopeId(len(t.scopes))
	t.scopes = append(t.scopes, Scope{ID: id, Parent: parent, HasParent: true, Symbols: map[string]SymbolId{}})
	return id
}

// Get returns the scope for id. Panics on an out-of-range id: callers
// always hold ids this tree itself issued.
func (t *ScopeTree) Get(id ScopeId) *Scope {
	return &t.scopes[id]
}

// SetOwner records the symbol that owns a scope (the POU/namespace/block
// the scope belongs to).
func (t *ScopeTree) SetOwner(id ScopeId, owner SymbolId) {
	t.scopes[id].Owner = owner
	t.scopes[id].HasOwner = true
}

// Declare binds name (case-folded) to sym within scope id.
func (t *ScopeTree) Declare(id ScopeId, name string, sym SymbolId) {
	t.scopes[id].Symbols[foldCase(name)] = sym
}

// AddUsing attaches a USING directive to scope id.
func (t *ScopeTree) AddUsing(id ScopeId, u UsingDirective) {
	t.scopes[id].Using = append(t.scopes[id].Using, u)
}

// Scopes returns every scope in the tree, indexed by ScopeId.
func (t *ScopeTree) Scopes() []Scope { return t.scopes }

// Len returns the number of scopes in the tree.
func (t *ScopeTree) Len() int { return len(t.scopes) }

// foldCase implements the ASCII case-folding §9 requires for symbol name
// comparisons, preserving the caller's original string for display
// elsewhere.
func foldCase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
