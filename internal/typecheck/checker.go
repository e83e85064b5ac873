// Package typecheck implements expression typing (C8): a pure, memoized
// function from an ExprId to its type, over one file's CST and the
// project's merged symbol/type model (§4.7). A Checker is scoped to a
// single open file; the semantic database (C9) owns one per file and
// rebuilds it whenever that file's parse or the project model changes.
package typecheck

import (
	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/diagnostics"
	"github.com/oxhq/stcore/internal/project"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// Checker computes and memoizes expression types for one file against a
// merged project.Model. Local carries the file's own scopes/symbols/expr
// index (§3.7); Project carries the merged table every name ultimately
// resolves through (§3.8) — a local symbol's own TypeID is never set,
// only its merged counterpart's is (internal/project's bindTypes), so
// every lookup here ends by translating into the merged identity space.
type Checker struct {
	File    host.FileId
	Root    syntax.RedNode
	Local   *symbols.FileResolution
	Project *project.Model

	cache   map[symbols.ExprId]sttypes.TypeId
	diags   []diagnostics.Diagnostic
	byRange map[host.TextRange]symbols.ExprId
}

// NewChecker builds a Checker for one file's parsed CST and local
// resolution, against the project's merged symbol/type model.
func NewChecker(file host.FileId, root syntax.RedNode, local *symbols.FileResolution, proj *project.Model) *Checker {
	return &Checker{
		File:    file,
		Root:    root,
		Local:   local,
		Project: proj,
		cache:   map[symbols.ExprId]sttypes.TypeId{},
	}
}

// Diagnostics returns every diagnostic raised by TypeOf calls made so
// far on this Checker (W005 implicit-conversion warnings, currently the
// only diagnostic expression typing raises on its own; assignment
// compatibility, E203, is checked by CheckAssignment against whatever
// statement walk owns AssignStmt).
func (c *Checker) Diagnostics() []diagnostics.Diagnostic { return c.diags }

// TypeOf returns the memoized type of expr (§4.7 "type_of", §4.8's
// `type_of` query). NoType if expr does not resolve to a known type by
// any rule below — an unresolved name, a malformed expression that
// escaped parser recovery, or an ExprId this Checker's file never
// recorded.
func (c *Checker) TypeOf(expr symbols.ExprId) sttypes.TypeId {
	if t, ok := c.cache[expr]; ok {
		return t
	}
	// Reserve the slot before recursing: a self-referential lookup (an
	// expression that somehow resolves back through itself) returns
	// NoType instead of looping, mirroring TypeInterner.InternForSymbol's
	// placeholder-before-build discipline.
	c.cache[expr] = symbols.NoType

	entry, ok := c.Local.Exprs.Entry(expr)
	if !ok {
		return symbols.NoType
	}
	node, ok := locate(c.Root, entry.Range)
	if !ok {
		return symbols.NoType
	}
	t := c.typeOfNode(node, entry.Scope)
	c.cache[expr] = t
	return t
}

// ensureIndex lazily builds the range->ExprId reverse lookup typeOfChild
// needs to route a child node back through the memoized TypeOf path
// instead of re-dispatching it from scratch.
func (c *Checker) ensureIndex() {
	if c.byRange != nil {
		return
	}
	c.byRange = make(map[host.TextRange]symbols.ExprId, c.Local.Exprs.Len())
	for i := 0; i < c.Local.Exprs.Len(); i++ {
		e, _ := c.Local.Exprs.Entry(symbols.ExprId(i))
		c.byRange[e.Range] = e.ID
	}
}

// typeOfChild resolves a child node's type. Every expression-kind node is
// recorded in the file's expr index (resolve_file.go's indexExprs walks
// every descendant unconditionally), so the common path routes through
// the memoized TypeOf — giving full memoization and single-emission
// diagnostics for free without threading a visited-set through the
// dispatch functions below. scope is used only for the (unreachable in
// practice) fallback, where a child was not itself indexed.
func (c *Checker) typeOfChild(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	c.ensureIndex()
	if id, ok := c.byRange[n.TextRange()]; ok {
		return c.TypeOf(id)
	}
	return c.typeOfNode(n, scope)
}

// locate re-finds the CST node an ExprEntry's range was recorded from.
// indexExprs records one entry per expression-kind descendant in
// pre-order; a wrapping node's range is always strictly larger than the
// range of any operand nested inside it (parens, operators, and postfix
// punctuation all add bytes), so the first descendant whose range matches
// rng exactly is unambiguous.
func locate(root syntax.RedNode, rng host.TextRange) (syntax.RedNode, bool) {
	var found syntax.RedNode
	ok := false
	root.Descendants(func(d syntax.RedNode) bool {
		if d.TextRange() == rng && isExprNodeKind(d.Kind()) {
			found, ok = d, true
			return false
		}
		return true
	})
	return found, ok
}

// isExprNodeKind mirrors resolve_file.go's unexported isExprKind: the
// closed set of CST kinds the per-file resolver indexes into ExprIndex
// (§3.7). Kept as its own copy rather than exported from internal/symbols
// to avoid giving that package an opinion about who dispatches on kinds.
func isExprNodeKind(k syntax.Kind) bool {
	switch k {
	case syntax.KindNameRef, syntax.KindFieldExpr, syntax.KindCallExpr,
		syntax.KindIndexExpr, syntax.KindDerefExpr, syntax.KindAddrExpr,
		syntax.KindBinaryExpr, syntax.KindUnaryExpr, syntax.KindParenExpr,
		syntax.KindLiteral, syntax.KindThisExpr, syntax.KindSuperExpr,
		syntax.KindSizeOfExpr:
		return true
	default:
		return false
	}
}
