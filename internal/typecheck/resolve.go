package typecheck

import (
	"strings"

	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
)

// resolveNameRef resolves a (possibly dotted) NameRef's text to a type.
// Since parsePrimary flattens any Ident.Ident... chain into one NameRef
// with no way to tell a namespace-qualified path from an instance-member
// chain apart syntactically (§3.7), the whole dotted text is tried first
// as an absolute qualified path against the project-wide merged table
// (LibA.SomeFunction); only if that fails is it treated as
// <local-name>.<member>* (counter.Value), resolving the head locally and
// then walking each remaining segment as a member of the previous
// segment's TYPE — not of the previous segment's own symbol, since a
// variable's members live under its TYPE declaration, not under the
// variable itself.
func (c *Checker) resolveNameRef(text string, scope symbols.ScopeId) (sttypes.TypeId, bool) {
	if id, ok := c.Project.MergedSymbols.ResolveByName(text); ok {
		sym, _ := c.Project.MergedSymbols.Get(id)
		return sym.TypeID, true
	}

	segments := strings.Split(text, ".")
	head, ok := c.resolveHead(segments[0], scope)
	if !ok {
		return symbols.NoType, false
	}
	t := head.TypeID
	for _, seg := range segments[1:] {
		next, ok := c.memberType(t, seg)
		if !ok {
			return symbols.NoType, false
		}
		t = next
	}
	return t, true
}

// resolveHead resolves a NameRef's leading segment: the file-local scope
// chain first (translating the hit into the merged identity space, since
// only merged symbols carry a bound TypeID — §4.6), then every USING
// directive visible from scope, innermost first.
func (c *Checker) resolveHead(name string, scope symbols.ScopeId) (symbols.Symbol, bool) {
	if localID, ok := c.Local.Symbols.Resolve(name, scope); ok {
		if mergedID, ok := c.Project.MergedID(c.File, localID); ok {
			return c.Project.MergedSymbols.Get(mergedID)
		}
	}

	cur := scope
	for {
		sc := c.Local.Scopes.Get(cur)
		for _, u := range sc.Using {
			path := append(append([]string{}, u.Path...), name)
			if mergedID, ok := c.Project.MergedSymbols.ResolveQualified(path); ok {
				return c.Project.MergedSymbols.Get(mergedID)
			}
		}
		if !sc.HasParent {
			return symbols.Symbol{}, false
		}
		cur = sc.Parent
	}
}

// findMember looks up name among owner's direct merged-table children
// (struct/union fields, enum members, class/FB/interface members, method
// parameters excluded — those never appear as a FieldExpr target), falling
// back through owner's EXTENDS base(s) in DerivationGraph order when not
// found directly (§4.6's inherited-member visibility).
func (c *Checker) findMember(owner symbols.SymbolId, name string) (symbols.Symbol, bool) {
	tbl := c.Project.MergedSymbols
	for _, child := range tbl.Iter() {
		if child.HasParent && child.Parent == owner && strings.EqualFold(child.Name, name) {
			return child, true
		}
	}
	for _, base := range c.Project.DerivationGraph[owner] {
		if sym, ok := c.findMember(base, name); ok {
			return sym, true
		}
	}
	return symbols.Symbol{}, false
}

// memberType looks up name as a member of baseType: a struct/union field,
// an enum member (whose "type" is the enum itself — qualifying an enum
// value, e.g. Color.Red, doesn't change its type), or a class/FB/interface
// member reached through findMember.
func (c *Checker) memberType(baseType sttypes.TypeId, name string) (sttypes.TypeId, bool) {
	resolved := c.Project.Types.ResolveAlias(baseType)
	t, ok := c.Project.Types.TypeByID(resolved)
	if !ok {
		return symbols.NoType, false
	}
	switch t.Tag {
	case sttypes.TagStruct, sttypes.TagUnion:
		for _, f := range t.Fields {
			if strings.EqualFold(f.Name, name) {
				return f.Type, true
			}
		}
	case sttypes.TagEnum:
		for _, m := range t.Members {
			if strings.EqualFold(m.Name, name) {
				return resolved, true
			}
		}
	case sttypes.TagFunctionBlock, sttypes.TagClass, sttypes.TagInterface:
		if sym, ok := c.findMember(t.Owner, name); ok {
			return sym.TypeID, true
		}
	}
	return symbols.NoType, false
}

// fbImplicitOutput returns the type of owner's sole VAR_OUTPUT member, the
// implicit result of invoking a FunctionBlock instance as if it were
// callable (§4.7) — a convenience IEC 61131-3 editors extend to FBs with
// exactly one output, letting `result := fb(args)` stand in for the
// call-then-read-output idiom. Ambiguous (zero or multiple outputs)
// returns NoType rather than guessing.
func (c *Checker) fbImplicitOutput(owner symbols.SymbolId) sttypes.TypeId {
	tbl := c.Project.MergedSymbols
	found := symbols.NoType
	count := 0
	for _, child := range tbl.Iter() {
		if child.HasParent && child.Parent == owner && child.Kind.Tag == symbols.KindVariable && child.Kind.VarQualifier == symbols.QualOutput {
			found = child.TypeID
			count++
		}
	}
	if count == 1 {
		return found
	}
	return symbols.NoType
}
