package sttypes

import (
	"sync"

	"github.com/oxhq/stcore/internal/symbols"
)

// TypeInterner owns every user-defined Type for a project and assigns
// them TypeIds above the reserved builtin range (§3.6, §3.8
// "type_world"). Builtins never pass through Intern: they are constant,
// reserved TypeIds looked up via LookupBuiltin/BuiltinName.
//
// Structurally equal aggregate types (two identical anonymous Array
// types, for instance) are not deduplicated: each TypeDecl/inline
// declaration gets its own TypeId, since each carries its own identity
// for navigation purposes (go to type definition must land on one
// specific declaration).
type TypeInterner struct {
	mu    sync.RWMutex
	types []Type // index 0 unused; ids start at firstUserType
	// bySymbol caches the TypeId already built for a declaring symbol
	// (a TypeDecl, FunctionBlock, Class or Interface), so BindTypes (§4.6)
	// can be called once per merged symbol without re-interning on every
	// reference site that names it.
	bySymbol map[symbols.SymbolId]TypeId
}

// NewTypeInterner creates an interner ready to hand out user TypeIds.
func NewTypeInterner() *TypeInterner {
	return &TypeInterner{types: make([]Type, firstUserType), bySymbol: map[symbols.SymbolId]TypeId{}}
}

// Intern registers t and returns its newly assigned TypeId.
func (i *TypeInterner) Intern(t Type) TypeId {
	i.mu.Lock()
	defer i.mu.Unlock()
	id := TypeId(len(i.types))
	i.types = append(i.types, t)
	return id
}

// InternForSymbol returns the TypeId already interned for sym, or builds
// one by calling build, interning it, and caching the result. Idempotent:
// the second caller asking about the same sym gets back the first caller's
// TypeId without running build again, so a struct with a self-referential
// (pointer) field does not recurse into its own construction.
func (i *TypeInterner) InternForSymbol(sym symbols.SymbolId, build func() Type) TypeId {
	i.mu.Lock()
	if id, ok := i.bySymbol[sym]; ok {
		i.mu.Unlock()
		return id
	}
	// Reserve the slot before calling build, so a recursive InternForSymbol
	// call for the same sym (reached while building sym's own fields) sees
	// a placeholder instead of looping.
	id := TypeId(len(i.types))
	i.types = append(i.types, Type{})
	i.bySymbol[sym] = id
	i.mu.Unlock()

	t := build()

	i.mu.Lock()
	i.types[id] = t
	i.mu.Unlock()
	return id
}

// TypeByID returns the Type for id. Builtins return a synthesized
// TagBuiltin Type; out-of-range user ids return (Type{}, false).
func (i *TypeInterner) TypeByID(id TypeId) (Type, bool) {
	if IsBuiltin(id) {
		return Type{Tag: TagBuiltin}, true
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) < int(firstUserType) || int(id) >= len(i.types) {
		return Type{}, false
	}
	return i.types[id], true
}

// TypeName returns the display name of id: the builtin spelling, or —
// for user types — the owning declaration's name, supplied by
// nameOf (typically a SymbolTable lookup by the type's Owner/declaring
// symbol, threaded in by the caller since TypeInterner does not itself
// hold a SymbolTable reference).
func (i *TypeInterner) TypeName(id TypeId, nameOf func(TypeId) (string, bool)) (string, bool) {
	if n, ok := BuiltinName(id); ok {
		return n, true
	}
	return nameOf(id)
}

// ResolveAlias follows a chain of Alias types to the first non-alias
// TypeId, per §4.4 "resolve_alias_type". A cycle (malformed input that
// escaped the project resolver's cycle detection) is broken by returning
// the last id seen rather than looping forever.
func (i *TypeInterner) ResolveAlias(id TypeId) TypeId {
	seen := map[TypeId]bool{}
	cur := id
	for {
		if seen[cur] {
			return cur
		}
		seen[cur] = true
		t, ok := i.TypeByID(cur)
		if !ok || t.Tag != TagAlias {
			return cur
		}
		cur = t.AliasOf
	}
}
