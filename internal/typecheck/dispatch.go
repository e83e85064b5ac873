package typecheck

import (
	"fmt"
	"strings"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/diagnostics"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/syntax"
)

// typeOfNode dispatches on n's syntax kind, implementing §4.7's typing
// rules. scope is the lexical scope n was recorded under by the per-file
// resolver.
func (c *Checker) typeOfNode(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	switch n.Kind() {
	case syntax.KindLiteral:
		return c.typeOfLiteral(n)
	case syntax.KindNameRef:
		return c.typeOfNameRef(n, scope)
	case syntax.KindFieldExpr:
		return c.typeOfFieldExpr(n, scope)
	case syntax.KindCallExpr:
		return c.typeOfCallExpr(n, scope)
	case syntax.KindIndexExpr:
		return c.typeOfIndexExpr(n, scope)
	case syntax.KindDerefExpr:
		return c.typeOfDerefExpr(n, scope)
	case syntax.KindBinaryExpr:
		return c.typeOfBinaryExpr(n, scope)
	case syntax.KindUnaryExpr:
		return c.typeOfUnaryExpr(n, scope)
	case syntax.KindParenExpr:
		return c.typeOfInner(n, scope)
	case syntax.KindThisExpr:
		return c.typeOfOwner(scope, false)
	case syntax.KindSuperExpr:
		return c.typeOfOwner(scope, true)
	case syntax.KindSizeOfExpr:
		// SIZEOF always yields a byte count; IEC leaves the exact result
		// type to the implementation, this service fixes it at UDINT.
		return sttypes.Udint
	default:
		return symbols.NoType
	}
}

// typeOfLiteral reads a Literal node's type directly off its leaf
// token(s), skipping any trivia bump() folded into the node (§3.2): a
// plain literal is one value token, a typed literal (INT#42) is a
// KindTypedLiteralPrefix token followed by the value token, and the
// prefix alone determines the type.
func (c *Checker) typeOfLiteral(n syntax.RedNode) sttypes.TypeId {
	var toks []syntax.RedToken
	for _, e := range n.ChildrenWithTokens() {
		if e.IsToken && !e.Token.Kind().IsTrivia() {
			toks = append(toks, e.Token)
		}
	}
	if len(toks) == 0 {
		return symbols.NoType
	}
	if toks[0].Kind() == syntax.KindTypedLiteralPrefix {
		prefix := strings.ToUpper(strings.TrimSuffix(toks[0].Text(), "#"))
		if id, ok := sttypes.LookupBuiltin(prefix); ok {
			return id
		}
		return symbols.NoType
	}
	switch toks[0].Kind() {
	case syntax.KindIntLiteral:
		return sttypes.Dint
	case syntax.KindRealLiteral:
		return sttypes.Lreal
	case syntax.KindStringLiteral:
		return sttypes.String
	case syntax.KindWideStringLiteral:
		return sttypes.WString
	case syntax.KindTimeLiteral:
		return sttypes.Time
	case syntax.KindDateLiteral:
		return sttypes.Date
	case syntax.KindTODLiteral:
		return sttypes.TOD
	case syntax.KindDTLiteral:
		return sttypes.DT
	case syntax.KindKwTrue, syntax.KindKwFalse:
		return sttypes.Bool
	default: // KindKwNull: untyped, assignable to any pointer/reference/FB
		return symbols.NoType
	}
}

// typeOfNameRef types a (possibly dotted) NameRef: parsePrimary flattens
// any `Ident.Ident.Ident` chain into one NameRef node (internal/syntax's
// parser has no separate production for a qualified name at expression
// position), so a bare local variable and a namespace-qualified path look
// identical here and must both be tried (§4.7).
func (c *Checker) typeOfNameRef(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	t, ok := c.resolveNameRef(n.Text(), scope)
	if !ok {
		return symbols.NoType
	}
	return t
}

// typeOfFieldExpr types `base.x`: look up x as a member of base's
// declared type (struct/union field, enum member, or class/FB/interface
// member reached through the derivation hierarchy); failing that, treat
// base.x as a qualified namespace reference (§4.7).
func (c *Checker) typeOfFieldExpr(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	children := n.Children()
	if len(children) != 2 {
		return symbols.NoType
	}
	name, ok := lastDirectChildToken(n, syntax.KindName)
	if !ok {
		return symbols.NoType
	}
	baseType := c.typeOfChild(children[0], scope)
	if t, ok := c.memberType(baseType, name); ok {
		return t
	}
	qualified := children[0].Text() + "." + name
	if id, ok := c.Project.MergedSymbols.ResolveByName(qualified); ok {
		sym, _ := c.Project.MergedSymbols.Get(id)
		return sym.TypeID
	}
	return symbols.NoType
}

// lastDirectChildToken returns the text of the rightmost direct-child
// node of kind k, used here to read FieldExpr's member Name without
// re-deriving it from ChildrenWithTokens token scanning.
func lastDirectChildToken(n syntax.RedNode, k syntax.Kind) (string, bool) {
	children := n.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].Kind() == k {
			return children[i].Text(), true
		}
	}
	return "", false
}

// typeOfCallExpr types `f(args)`: the return type of f if f is a
// function or method (stored as f's own TypeID, same as any other typed
// symbol — a Function/Method's TypeRefText records its return type), or
// the FunctionBlock's implicit single-output when f is an FB instance
// invoked as a callable (§4.7).
func (c *Checker) typeOfCallExpr(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	children := n.Children()
	if len(children) == 0 {
		return symbols.NoType
	}
	calleeType := c.typeOfChild(children[0], scope)
	if calleeType == symbols.NoType {
		return symbols.NoType
	}
	resolved := c.Project.Types.ResolveAlias(calleeType)
	t, ok := c.Project.Types.TypeByID(resolved)
	if ok && t.Tag == sttypes.TagFunctionBlock {
		return c.fbImplicitOutput(t.Owner)
	}
	return calleeType
}

// typeOfIndexExpr types `a[i, j, ...]` as the element type of a's array
// type, regardless of how many index expressions are supplied (§3.7's
// grammar flattens multi-dimensional indexing into sibling children with
// no wrapper per dimension).
func (c *Checker) typeOfIndexExpr(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	children := n.Children()
	if len(children) == 0 {
		return symbols.NoType
	}
	baseType := c.typeOfChild(children[0], scope)
	resolved := c.Project.Types.ResolveAlias(baseType)
	t, ok := c.Project.Types.TypeByID(resolved)
	if !ok || t.Tag != sttypes.TagArray {
		return symbols.NoType
	}
	return t.ElementType
}

// typeOfDerefExpr types `p^` as the pointee type of p's pointer or
// reference type.
func (c *Checker) typeOfDerefExpr(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	children := n.Children()
	if len(children) == 0 {
		return symbols.NoType
	}
	baseType := c.typeOfChild(children[0], scope)
	resolved := c.Project.Types.ResolveAlias(baseType)
	t, ok := c.Project.Types.TypeByID(resolved)
	if !ok || (t.Tag != sttypes.TagPointer && t.Tag != sttypes.TagReference) {
		return symbols.NoType
	}
	return t.PointeeType
}

// typeOfInner delegates ParenExpr to its single wrapped operand; parens
// are tokens, not a node, so the expression is n's only child.
func (c *Checker) typeOfInner(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	children := n.Children()
	if len(children) == 0 {
		return symbols.NoType
	}
	return c.typeOfChild(children[0], scope)
}

// binaryOpKind classifies a BinaryExpr's direct-child operator token,
// found by scanning ChildrenWithTokens for the first non-trivia token
// that is one of this set — BinaryExpr's own Children() excludes it.
var binaryOpKinds = map[syntax.Kind]bool{
	syntax.KindPlus: true, syntax.KindMinus: true, syntax.KindStar: true,
	syntax.KindSlash: true, syntax.KindKwMod: true, syntax.KindPow: true,
	syntax.KindEq: true, syntax.KindNe: true, syntax.KindLt: true,
	syntax.KindLe: true, syntax.KindGt: true, syntax.KindGe: true,
	syntax.KindKwAnd: true, syntax.KindKwOr: true, syntax.KindKwXor: true,
	syntax.KindAmp: true,
}

var unaryOpKinds = map[syntax.Kind]bool{
	syntax.KindPlus: true, syntax.KindMinus: true, syntax.KindKwNot: true,
}

// directChildToken scans n's direct children (nodes and tokens) for the
// first non-trivia token matching pred, in source order.
func directChildToken(n syntax.RedNode, pred func(syntax.Kind) bool) (syntax.RedToken, bool) {
	for _, e := range n.ChildrenWithTokens() {
		if e.IsToken && !e.Token.Kind().IsTrivia() && pred(e.Token.Kind()) {
			return e.Token, true
		}
	}
	return syntax.RedToken{}, false
}

// typeOfBinaryExpr follows IEC 61131-3 promotion (§4.7): comparisons
// yield BOOL; AND/OR/XOR/& yield BOOL for boolean operands or the
// promoted bit-string/integer type for ANY_BIT operands; everything else
// is arithmetic, following Promote's integer/real widening. A widening
// between two distinct named numeric types emits W005.
func (c *Checker) typeOfBinaryExpr(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	children := n.Children()
	if len(children) != 2 {
		return symbols.NoType
	}
	lhs := c.Project.Types.ResolveAlias(c.typeOfChild(children[0], scope))
	rhs := c.Project.Types.ResolveAlias(c.typeOfChild(children[1], scope))
	op, ok := directChildToken(n, func(k syntax.Kind) bool { return binaryOpKinds[k] })
	if !ok {
		return symbols.NoType
	}

	switch op.Kind() {
	case syntax.KindEq, syntax.KindNe, syntax.KindLt, syntax.KindLe, syntax.KindGt, syntax.KindGe:
		return sttypes.Bool
	case syntax.KindKwAnd, syntax.KindKwOr, syntax.KindKwXor, syntax.KindAmp:
		if lhs == sttypes.Bool && rhs == sttypes.Bool {
			return sttypes.Bool
		}
		if sttypes.IsBitString(lhs) && sttypes.IsBitString(rhs) {
			if result, ok := sttypes.Promote(lhs, rhs); ok {
				return result
			}
		}
		return symbols.NoType
	default: // Plus, Minus, Star, Slash, KwMod, Pow
		result, ok := sttypes.Promote(lhs, rhs)
		if !ok {
			return symbols.NoType
		}
		if lhs != rhs {
			c.emitImplicitConversion(n.TextRange(), lhs, rhs)
		}
		return result
	}
}

// typeOfUnaryExpr types NOT/unary-minus/unary-plus over their operand:
// NOT requires BOOL or an ANY_BIT operand and preserves it; +/- preserve
// the operand's type unchanged (IEC has no promotion for a single
// operand).
func (c *Checker) typeOfUnaryExpr(n syntax.RedNode, scope symbols.ScopeId) sttypes.TypeId {
	children := n.Children()
	if len(children) != 1 {
		return symbols.NoType
	}
	operand := c.typeOfChild(children[0], scope)
	op, ok := directChildToken(n, func(k syntax.Kind) bool { return unaryOpKinds[k] })
	if !ok {
		return operand
	}
	if op.Kind() == syntax.KindKwNot {
		resolved := c.Project.Types.ResolveAlias(operand)
		if resolved == sttypes.Bool || sttypes.IsBitString(resolved) {
			return operand
		}
		return symbols.NoType
	}
	return operand
}

// typeOfOwner resolves THIS/SUPER to the type of the enclosing Class or
// FunctionBlock, walking up the local scope chain to find the nearest
// scope owned by one. SUPER resolves to the first EXTENDS base in the
// derivation graph.
func (c *Checker) typeOfOwner(scope symbols.ScopeId, super bool) sttypes.TypeId {
	cur := scope
	for {
		sc := c.Local.Scopes.Get(cur)
		if sc.HasOwner {
			if mergedID, ok := c.Project.MergedID(c.File, sc.Owner); ok {
				sym, _ := c.Project.MergedSymbols.Get(mergedID)
				if sym.Kind.Tag == symbols.KindClass || sym.Kind.Tag == symbols.KindFunctionBlock {
					if !super {
						return sym.TypeID
					}
					bases := c.Project.DerivationGraph[mergedID]
					if len(bases) == 0 {
						return symbols.NoType
					}
					baseSym, _ := c.Project.MergedSymbols.Get(bases[0])
					return baseSym.TypeID
				}
			}
		}
		if !sc.HasParent {
			return symbols.NoType
		}
		cur = sc.Parent
	}
}

// emitImplicitConversion records a W005 for a binary arithmetic operand
// pair that required widening between two distinct numeric types. Both
// operands are guaranteed builtin here: Promote only accepts
// integer/real operands and typeOfBinaryExpr resolves aliases first.
func (c *Checker) emitImplicitConversion(rng host.TextRange, lhs, rhs sttypes.TypeId) {
	lhsName, _ := sttypes.BuiltinName(lhs)
	rhsName, _ := sttypes.BuiltinName(rhs)
	c.diags = append(c.diags, diagnostics.Diagnostic{
		Code:     diagnostics.WNarrowingConv,
		Severity: diagnostics.DefaultSeverity(diagnostics.WNarrowingConv),
		Message:  fmt.Sprintf("implicit conversion between %s and %s", lhsName, rhsName),
		File:     c.File,
		Range:    rng,
	})
}

// CheckAssignment reports whether a value of type src may be assigned to
// a target declared as type target, per §4.7's assignment rule. Callers
// (an AssignStmt walk — not yet built; that is a statement-level
// concern outside expression typing) own deciding when to call this and
// accumulating the result; srcName/dstName are display names the caller
// already has on hand (e.g. from sttypes.BuiltinName or a symbol's own
// name for a user type) for the E203 message and its `<SRC>_TO_<DST>`
// hint.
func CheckAssignment(file host.FileId, target, src sttypes.TypeId, srcName, dstName string, rng host.TextRange) (diagnostics.Diagnostic, bool) {
	if target == symbols.NoType || src == symbols.NoType || target == src {
		return diagnostics.Diagnostic{}, false
	}
	if sttypes.IsImplicitlyConvertible(src, target) {
		return diagnostics.Diagnostic{}, false
	}
	return diagnostics.Diagnostic{
		Code:     diagnostics.EAssignIncompatible,
		Severity: diagnostics.DefaultSeverity(diagnostics.EAssignIncompatible),
		Message:  fmt.Sprintf("cannot assign %s to %s", srcName, dstName),
		File:     file,
		Range:    rng,
		Related:  []diagnostics.RelatedInfo{{Message: fmt.Sprintf("%s_TO_%s", srcName, dstName)}},
	}, true
}
