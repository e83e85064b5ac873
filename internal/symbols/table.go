package symbols

import "strings"

// SymbolTable indexes a set of Symbols by id and by (scope, case-folded
// name), and records enough bookkeeping for qualified-name resolution
// (§4.4). One SymbolTable is local to a file (§3.7); the project resolver
// (C6, internal/project) merges several into one with Origin annotations
// (§3.8).
//
// Type-id queries (type_by_id/type_name/resolve_alias_type in the
// conceptual API of §4.4) live on internal/sttypes.TypeInterner instead of
// here: a symbol table has no business owning the type world, and keeping
// them separate lets the project resolver share one TypeInterner across
// every file's SymbolTable without a circular import.
type SymbolTable struct {
	scopes  *ScopeTree
	symbols []Symbol
	// extendsNames/implementsNames record the textual EXTENDS/IMPLEMENTS
	// operands named by a Class/FunctionBlock/Interface symbol, before
	// project-level resolution attempts to turn them into SymbolIds
	// (§4.6). A symbol may name more than one interface in IMPLEMENTS.
	extendsNames    map[SymbolId][]string
	implementsNames map[SymbolId][]string
	// typeRefText records the exact source text of the TypeRef (or alias
	// target, for a TypeDecl) a symbol was declared with, deferring actual
	// type binding to the project resolver (C6/C7): binding a field's type
	// may need a user type declared in another file, which only the merged
	// table can see.
	typeRefText map[SymbolId]string
}

// NewSymbolTable creates an empty table backed by the given scope tree.
func NewSymbolTable(scopes *ScopeTree) *SymbolTable {
	return &SymbolTable{
		scopes:          scopes,
		extendsNames:    map[SymbolId][]string{},
		implementsNames: map[SymbolId][]string{},
		typeRefText:     map[SymbolId]string{},
	}
}

// Scopes returns the scope tree this table resolves names against.
func (t *SymbolTable) Scopes() *ScopeTree { return t.scopes }

// Insert adds sym to the table, assigning its ID, and returns that ID. The
// caller has already filled in every other field.
func (t *SymbolTable) Insert(sym Symbol) SymbolId {
	id := SymbolId(len(t.symbols))
	sym.ID = id
	t.symbols = append(t.symbols, sym)
	return id
}

// Get returns the symbol for id and whether id is valid.
func (t *SymbolTable) Get(id SymbolId) (Symbol, bool) {
	if int(id) < 0 || int(id) >= len(t.symbols) {
		return Symbol{}, false
	}
	return t.symbols[id], true
}

// MustGet is Get without the ok return, for callers that already hold an
// id known to be valid (e.g. one this table itself issued).
func (t *SymbolTable) MustGet(id SymbolId) Symbol {
	return t.symbols[id]
}

// Iter returns every symbol in insertion order.
func (t *SymbolTable) Iter() []Symbol { return t.symbols }

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int { return len(t.symbols) }

// SetExtendsNames records the textual EXTENDS operands for sym.
func (t *SymbolTable) SetExtendsNames(sym SymbolId, names []string) {
	t.extendsNames[sym] = names
}

// ExtendsNames returns the textual EXTENDS operands for sym, if any.
func (t *SymbolTable) ExtendsNames(sym SymbolId) []string {
	return t.extendsNames[sym]
}

// SetImplementsNames records the textual IMPLEMENTS operands for sym.
func (t *SymbolTable) SetImplementsNames(sym SymbolId, names []string) {
	t.implementsNames[sym] = names
}

// ImplementsNames returns the textual IMPLEMENTS operands for sym, if any.
func (t *SymbolTable) ImplementsNames(sym SymbolId) []string {
	return t.implementsNames[sym]
}

// Resolve looks up name starting at scope, walking outward through parent
// scopes (innermost wins), per §3.5. USING-imported names are not
// considered here: callers that want import fallback use ResolveWithUsing.
func (t *SymbolTable) Resolve(name string, scope ScopeId) (SymbolId, bool) {
	folded := foldCase(name)
	cur := scope
	for {
		s := t.scopes.Get(cur)
		if id, ok := s.Symbols[folded]; ok {
			return id, true
		}
		if !s.HasParent {
			return 0, false
		}
		cur = s.Parent
	}
}

// ResolveWithUsing is Resolve, falling back to every USING directive
// visible from scope (innermost to outermost) once the local chain fails
// (§3.5: "checked AFTER the local chain fails"). resolveQualified performs
// the per-import lookup.
func (t *SymbolTable) ResolveWithUsing(name string, scope ScopeId, resolveQualified func([]string) (SymbolId, bool)) (SymbolId, bool) {
	if id, ok := t.Resolve(name, scope); ok {
		return id, true
	}
	folded := foldCase(name)
	cur := scope
	for {
		s := t.scopes.Get(cur)
		for _, u := range s.Using {
			path := append(append([]string{}, u.Path...), folded)
			if id, ok := resolveQualified(path); ok {
				return id, true
			}
		}
		if !s.HasParent {
			return 0, false
		}
		cur = s.Parent
	}
}

// ResolveQualified walks a dotted path of names through nested
// Namespace/Class/FunctionBlock/Interface symbols starting from the
// global scope (§4.4).
func (t *SymbolTable) ResolveQualified(path []string) (SymbolId, bool) {
	if len(path) == 0 {
		return 0, false
	}
	id, ok := t.Resolve(path[0], GlobalScope)
	if !ok {
		return 0, false
	}
	for _, seg := range path[1:] {
		childScope, ok2 := t.memberScopeOf(id)
		if !ok2 {
			return 0, false
		}
		folded := foldCase(seg)
		next, ok3 := t.scopes.Get(childScope).Symbols[folded]
		if !ok3 {
			return 0, false
		}
		id = next
	}
	return id, true
}

// memberScopeOf finds the scope owned by sym, if sym is a
// namespace/POU-like symbol that owns one.
func (t *SymbolTable) memberScopeOf(sym SymbolId) (ScopeId, bool) {
	for i := 0; i < t.scopes.Len(); i++ {
		sc := t.scopes.Get(ScopeId(i))
		if sc.HasOwner && sc.Owner == sym {
			return ScopeId(i), true
		}
	}
	return 0, false
}

// ResolveByName resolves a dotted string such as "Ns.Sub.Prog" via
// ResolveQualified.
func (t *SymbolTable) ResolveByName(dotted string) (SymbolId, bool) {
	return t.ResolveQualified(strings.Split(dotted, "."))
}

// SetTypeID records the resolved TypeId for sym, once the project resolver
// (C6/C7) has bound its declared TypeRef.
func (t *SymbolTable) SetTypeID(sym SymbolId, typeID TypeId) {
	t.symbols[sym].TypeID = typeID
}

// SetTypeRefText records the source text of the TypeRef sym was declared
// with (or, for a TypeDecl alias, the text of its alias target).
func (t *SymbolTable) SetTypeRefText(sym SymbolId, text string) {
	t.typeRefText[sym] = text
}

// TypeRefText returns the source text recorded for sym, if any.
func (t *SymbolTable) TypeRefText(sym SymbolId) (string, bool) {
	s, ok := t.typeRefText[sym]
	return s, ok
}
