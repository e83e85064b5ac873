package syntax

import "strings"

// GreenChild is one child of a GreenNode: either a nested GreenNode or a
// leaf GreenToken. Exactly one of Node/Token is meaningful, selected by
// IsToken — this is the "tagged union over a sum type" shape §9 calls for,
// sized to avoid an interface-dispatch indirection on the hottest path in
// the tree (pre-order text reconstruction).
type GreenChild struct {
	IsToken bool
	Token   GreenToken
	Node    *GreenNode
}

// Len returns the number of source bytes this child spans.
func (c GreenChild) Len() int {
	if c.IsToken {
		return c.Token.Len()
	}
	return c.Node.Len()
}

// GreenNode is an immutable node of the shared green tree: a syntax kind
// and an ordered list of children, carrying no absolute position (§3.2).
// Once built, a GreenNode is never mutated; it may be referenced from
// multiple red views across revisions where the corresponding source
// region is unchanged.
type GreenNode struct {
	Kind     Kind
	Children []GreenChild
	textLen  int
}

// NewGreenNode builds a GreenNode, computing and caching its text length
// from its children.
func NewGreenNode(kind Kind, children []GreenChild) *GreenNode {
	n := &GreenNode{Kind: kind, Children: children}
	for _, c := range children {
		n.textLen += c.Len()
	}
	return n
}

// Len returns the number of source bytes this node spans — the sum of its
// children's lengths, per the invariant in §3.2.
func (n *GreenNode) Len() int { return n.textLen }

// Text reconstructs this node's exact source text by concatenating every
// leaf token in pre-order. Building a green tree and serializing it this
// way must reproduce the source byte-exactly (§3.2, §8 "Lossless tree").
func (n *GreenNode) Text() string {
	var b strings.Builder
	b.Grow(n.textLen)
	n.writeText(&b)
	return b.String()
}

func (n *GreenNode) writeText(b *strings.Builder) {
	for _, c := range n.Children {
		if c.IsToken {
			b.WriteString(c.Token.Text)
		} else {
			c.Node.writeText(b)
		}
	}
}

// FirstLeaf returns the first leaf token in this subtree's pre-order
// traversal, or (GreenToken{}, false) if the subtree is empty.
func (n *GreenNode) FirstLeaf() (GreenToken, bool) {
	for _, c := range n.Children {
		if c.IsToken {
			return c.Token, true
		}
		if t, ok := c.Node.FirstLeaf(); ok {
			return t, true
		}
	}
	return GreenToken{}, false
}

// LastLeaf returns the last leaf token in this subtree's pre-order
// traversal, or (GreenToken{}, false) if the subtree is empty.
func (n *GreenNode) LastLeaf() (GreenToken, bool) {
	for i := len(n.Children) - 1; i >= 0; i-- {
		c := n.Children[i]
		if c.IsToken {
			return c.Token, true
		}
		if t, ok := c.Node.LastLeaf(); ok {
			return t, true
		}
	}
	return GreenToken{}, false
}
