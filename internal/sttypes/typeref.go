package sttypes

import (
	"strconv"
	"strings"

	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// BindTypeRef resolves a parsed TypeRef/ArrayTypeRef node to a TypeId
// against the builtin table and symtab's declared names (§4.6). resolveUser
// is invoked for a named reference that is not a builtin spelling; the
// project resolver supplies one that lazily binds (and, via
// TypeInterner.InternForSymbol, caches) the referenced symbol's own Type
// the first time it is needed, so the order files are merged in never
// matters and a struct that refers to itself through a pointer field does
// not recurse forever.
//
// ARRAY bounds are evaluated for literal integers and a leading unary
// minus/plus only; a bound expressed with a named constant is left
// unresolved (Lo==Hi==0) rather than attempting general constant folding,
// which this module does not implement.
func BindTypeRef(n syntax.RedNode, symtab *symbols.SymbolTable, scope symbols.ScopeId, interner *TypeInterner, resolveUser func(symbols.SymbolId) TypeId) TypeId {
	switch n.Kind() {
	case syntax.KindArrayTypeRef:
		return bindArrayTypeRef(n, symtab, scope, interner, resolveUser)
	case syntax.KindTypeRef:
		return bindPlainTypeRef(n, symtab, scope, interner, resolveUser)
	default:
		return symbols.NoType
	}
}

func bindArrayTypeRef(n syntax.RedNode, symtab *symbols.SymbolTable, scope symbols.ScopeId, interner *TypeInterner, resolveUser func(symbols.SymbolId) TypeId) TypeId {
	children := n.Children()
	if len(children) == 0 {
		return symbols.NoType
	}
	elemNode := children[len(children)-1]
	boundExprs := children[:len(children)-1]

	var bounds []ArrayBound
	for i := 0; i+1 < len(boundExprs); i += 2 {
		lo, _ := evalIntLiteral(boundExprs[i])
		hi, _ := evalIntLiteral(boundExprs[i+1])
		bounds = append(bounds, ArrayBound{Lo: lo, Hi: hi})
	}

	elemType := BindTypeRef(elemNode, symtab, scope, interner, resolveUser)
	return interner.Intern(Type{Tag: TagArray, ElementType: elemType, Bounds: bounds})
}

// evalIntLiteral folds a Literal or leading-unary-minus/plus Literal node
// into an int64, supporting the plain-decimal and N#digits based-integer
// forms the lexer recognizes.
func evalIntLiteral(n syntax.RedNode) (int64, bool) {
	switch n.Kind() {
	case syntax.KindUnaryExpr:
		tok, ok := n.FirstToken()
		if !ok {
			return 0, false
		}
		inner, ok := n.ChildByKind(syntax.KindUnaryExpr)
		if !ok {
			if lit, ok2 := n.ChildByKind(syntax.KindLiteral); ok2 {
				inner = lit
			} else {
				return 0, false
			}
		}
		v, ok := evalIntLiteral(inner)
		if !ok {
			return 0, false
		}
		if tok.Kind() == syntax.KindMinus {
			return -v, true
		}
		return v, true
	case syntax.KindLiteral:
		return parseIntText(n.Text())
	default:
		return 0, false
	}
}

func parseIntText(text string) (int64, bool) {
	text = strings.ReplaceAll(text, "_", "")
	if i := strings.IndexByte(text, '#'); i >= 0 {
		base, err := strconv.Atoi(text[:i])
		if err != nil {
			return 0, false
		}
		v, err := strconv.ParseInt(text[i+1:], base, 64)
		return v, err == nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	return v, err == nil
}

func bindPlainTypeRef(n syntax.RedNode, symtab *symbols.SymbolTable, scope symbols.ScopeId, interner *TypeInterner, resolveUser func(symbols.SymbolId) TypeId) TypeId {
	first, ok := n.FirstToken()
	if !ok {
		return symbols.NoType
	}

	switch first.Kind() {
	case syntax.KindKwPointer:
		inner, ok2 := innerTypeRef(n)
		if !ok2 {
			return symbols.NoType
		}
		pointee := BindTypeRef(inner, symtab, scope, interner, resolveUser)
		return interner.Intern(Type{Tag: TagPointer, PointeeType: pointee})
	case syntax.KindKwReference:
		inner, ok2 := innerTypeRef(n)
		if !ok2 {
			return symbols.NoType
		}
		pointee := BindTypeRef(inner, symtab, scope, interner, resolveUser)
		return interner.Intern(Type{Tag: TagReference, PointeeType: pointee})
	default:
		return bindNamedTypeRef(n, symtab, scope, interner, resolveUser)
	}
}

// innerTypeRef returns the nested TypeRef/ArrayTypeRef child of a POINTER
// TO/REFERENCE TO TypeRef, which the parser wraps with the same KindTypeRef
// it uses for a plain named reference.
func innerTypeRef(n syntax.RedNode) (syntax.RedNode, bool) {
	if tr, ok := n.ChildByKind(syntax.KindTypeRef); ok {
		return tr, true
	}
	if tr, ok := n.ChildByKind(syntax.KindArrayTypeRef); ok {
		return tr, true
	}
	return syntax.RedNode{}, false
}

func bindNamedTypeRef(n syntax.RedNode, symtab *symbols.SymbolTable, scope symbols.ScopeId, interner *TypeInterner, resolveUser func(symbols.SymbolId) TypeId) TypeId {
	qn, ok := n.ChildByKind(syntax.KindQualifiedName)
	if !ok {
		return symbols.NoType
	}
	name := strings.ToUpper(qn.Text())

	capText, hasCap := capacityExpr(n)

	if builtin, ok2 := LookupBuiltin(name); ok2 {
		if !hasCap || (builtin != String && builtin != WString) {
			return builtin
		}
		capVal, _ := evalIntLiteral(capText)
		return interner.Intern(Type{Tag: TagString, Capacity: uint32(capVal), HasCapacity: true})
	}

	sym, ok2 := symtab.ResolveWithUsing(qn.Text(), scope, symtab.ResolveQualified)
	if !ok2 {
		return symbols.NoType
	}
	return resolveUser(sym)
}

// capacityExpr returns the STRING(N)/WSTRING(N) capacity expression node,
// the one child of n that is neither the QualifiedName nor (for a nested
// POINTER/REFERENCE) another TypeRef.
func capacityExpr(n syntax.RedNode) (syntax.RedNode, bool) {
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindQualifiedName {
			return c, true
		}
	}
	return syntax.RedNode{}, false
}

// ResolveTypeRefText re-parses text (as recorded by
// symbols.SymbolTable.SetTypeRefText) and binds it in scope, for the
// project resolver's deferred type-binding pass (§4.6).
func ResolveTypeRefText(text string, symtab *symbols.SymbolTable, scope symbols.ScopeId, interner *TypeInterner, resolveUser func(symbols.SymbolId) TypeId) TypeId {
	green, errs := syntax.ParseTypeRef(text)
	if len(errs) > 0 {
		return symbols.NoType
	}
	root := syntax.NewRoot(green)
	return BindTypeRef(root, symtab, scope, interner, resolveUser)
}
