package syntax

import "github.com/oxhq/stcore/host"

// Offset and TextRange are aliases onto the host package's definitions so
// every layer of the core shares one canonical byte-offset type (§3.1).
type (
	Offset    = host.Offset
	TextRange = host.TextRange
)

// RedNode is a navigable view over a GreenNode, carrying the absolute byte
// range and parent link that the green tree itself omits (§3.2). Parent
// links are reconstructed on traversal rather than stored on the green
// node, which keeps green nodes shareable across revisions without
// back-references (§9 "Cyclic CST parent links").
type RedNode struct {
	green  *GreenNode
	start  Offset
	parent *RedNode
	// indexInParent is this node's position among its parent's
	// non-trivia-agnostic children (token or node); -1 at the root.
	indexInParent int
}

// NewRoot builds the red root view over a green tree produced by parsing
// one file. The root always starts at offset 0.
func NewRoot(green *GreenNode) RedNode {
	return RedNode{green: green, start: 0, parent: nil, indexInParent: -1}
}

// Green returns the underlying green node.
func (n RedNode) Green() *GreenNode { return n.green }

// Kind returns this node's syntax kind.
func (n RedNode) Kind() Kind { return n.green.Kind }

// TextRange returns this node's absolute byte range. The invariant
// TextRange() == sum of child ranges holds by construction: start is
// threaded down from the parent and the green node's own Len() is fixed
// at build time (§3.2, §8 "Offset stability").
func (n RedNode) TextRange() TextRange {
	return TextRange{Start: n.start, End: n.start + Offset(n.green.Len())}
}

// Text returns this node's exact source text.
func (n RedNode) Text() string { return n.green.Text() }

// Parent returns this node's parent, or (RedNode{}, false) at the root.
func (n RedNode) Parent() (RedNode, bool) {
	if n.parent == nil {
		return RedNode{}, false
	}
	return *n.parent, true
}

// RedElement is one child of a RedNode: either a nested RedNode or a leaf
// RedToken, mirroring GreenChild but carrying absolute position.
type RedElement struct {
	IsToken bool
	Token   RedToken
	Node    RedNode
}

// RedToken is a leaf token with its absolute byte range.
type RedToken struct {
	Green  GreenToken
	start  Offset
	parent *RedNode
}

// Kind returns this token's syntax kind.
func (t RedToken) Kind() Kind { return t.Green.Kind }

// TextRange returns this token's absolute byte range.
func (t RedToken) TextRange() TextRange {
	return TextRange{Start: t.start, End: t.start + Offset(t.Green.Len())}
}

// Text returns this token's exact source text.
func (t RedToken) Text() string { return t.Green.Text }

// Parent returns the node this token belongs to.
func (t RedToken) Parent() RedNode {
	if t.parent == nil {
		return RedNode{}
	}
	return *t.parent
}

// ChildrenWithTokens returns this node's direct children, both nodes and
// tokens, in source order with absolute positions filled in.
func (n RedNode) ChildrenWithTokens() []RedElement {
	out := make([]RedElement, 0, len(n.green.Children))
	off := n.start
	// parent must be a stable pointer for children to reference; box n.
	self := n
	for i, c := range n.green.Children {
		if c.IsToken {
			out = append(out, RedElement{IsToken: true, Token: RedToken{Green: c.Token, start: off, parent: &self}})
		} else {
			child := RedNode{green: c.Node, start: off, parent: &self, indexInParent: i}
			out = append(out, RedElement{Node: child})
		}
		off += Offset(c.Len())
	}
	return out
}

// Children returns only the node children (skipping leaf tokens), in
// source order.
func (n RedNode) Children() []RedNode {
	all := n.ChildrenWithTokens()
	out := make([]RedNode, 0, len(all))
	for _, e := range all {
		if !e.IsToken {
			out = append(out, e.Node)
		}
	}
	return out
}

// ChildByKind returns the first direct child node of the given kind, if
// any.
func (n RedNode) ChildByKind(k Kind) (RedNode, bool) {
	for _, c := range n.Children() {
		if c.Kind() == k {
			return c, true
		}
	}
	return RedNode{}, false
}

// Descendants yields every node in this subtree, this node included, in
// pre-order.
func (n RedNode) Descendants(yield func(RedNode) bool) {
	if !yield(n) {
		return
	}
	for _, c := range n.Children() {
		done := false
		c.Descendants(func(d RedNode) bool {
			if !yield(d) {
				done = true
				return false
			}
			return true
		})
		if done {
			return
		}
	}
}

// Ancestors yields this node and every ancestor up to (and including) the
// root, innermost first.
func (n RedNode) Ancestors(yield func(RedNode) bool) {
	cur := n
	for {
		if !yield(cur) {
			return
		}
		p, ok := cur.Parent()
		if !ok {
			return
		}
		cur = p
	}
}

// FirstToken returns the first leaf token in this subtree.
func (n RedNode) FirstToken() (RedToken, bool) {
	for _, e := range n.ChildrenWithTokens() {
		if e.IsToken {
			return e.Token, true
		}
		if t, ok := e.Node.FirstToken(); ok {
			return t, true
		}
	}
	return RedToken{}, false
}

// LastToken returns the last leaf token in this subtree.
func (n RedNode) LastToken() (RedToken, bool) {
	all := n.ChildrenWithTokens()
	for i := len(all) - 1; i >= 0; i-- {
		e := all[i]
		if e.IsToken {
			return e.Token, true
		}
		if t, ok := e.Node.LastToken(); ok {
			return t, true
		}
	}
	return RedToken{}, false
}

// Bias selects which of two adjacent tokens TokenAtOffset returns when the
// offset falls exactly on the boundary between them.
type Bias int

const (
	BiasLeft Bias = iota
	BiasRight
)

// TokenAtOffset returns the leaf token covering off, per the requested
// bias when off sits exactly on a token boundary (§4.2).
func (n RedNode) TokenAtOffset(off Offset, bias Bias) (RedToken, bool) {
	r := n.TextRange()
	if off < r.Start || off > r.End {
		return RedToken{}, false
	}
	for _, e := range n.ChildrenWithTokens() {
		var cr TextRange
		if e.IsToken {
			cr = e.Token.TextRange()
		} else {
			cr = e.Node.TextRange()
		}
		if off < cr.Start || off > cr.End {
			continue
		}
		if off == cr.End && bias == BiasLeft && off != r.End {
			// Prefer the left-biased token unless this is the very last
			// child (then falling through keeps correctness at EOF).
			continue
		}
		if e.IsToken {
			return e.Token, true
		}
		return e.Node.TokenAtOffset(off, bias)
	}
	// Fall back to whichever boundary token is closest, for the EOF case.
	if bias == BiasLeft {
		return n.LastToken()
	}
	return n.FirstToken()
}

// PrevToken returns the leaf token immediately preceding t in the whole
// tree (walking up through ancestors as needed), or (RedToken{}, false) at
// the start of the file.
func (t RedToken) PrevToken() (RedToken, bool) {
	return siblingToken(t.parent, t.start, -1)
}

// NextToken returns the leaf token immediately following t, or
// (RedToken{}, false) at the end of the file.
func (t RedToken) NextToken() (RedToken, bool) {
	r := t.TextRange()
	return siblingToken(t.parent, r.End, +1)
}

// siblingToken walks up from node looking for the nearest token strictly
// before (dir<0) or after (dir>0) boundary, descending into subtrees as
// needed.
func siblingToken(node *RedNode, boundary Offset, dir int) (RedToken, bool) {
	for node != nil {
		elems := node.ChildrenWithTokens()
		if dir < 0 {
			for i := len(elems) - 1; i >= 0; i-- {
				e := elems[i]
				var end Offset
				if e.IsToken {
					end = e.Token.TextRange().End
				} else {
					end = e.Node.TextRange().End
				}
				if end <= boundary {
					if e.IsToken {
						return e.Token, true
					}
					return e.Node.LastToken()
				}
			}
		} else {
			for _, e := range elems {
				var start Offset
				if e.IsToken {
					start = e.Token.TextRange().Start
				} else {
					start = e.Node.TextRange().Start
				}
				if start >= boundary {
					if e.IsToken {
						return e.Token, true
					}
					return e.Node.FirstToken()
				}
			}
		}
		p, ok := node.Parent()
		if !ok {
			return RedToken{}, false
		}
		node = &p
	}
	return RedToken{}, false
}
