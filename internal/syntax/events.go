package syntax

// event is one step of the parser's event stream: Start/Finish delimit a
// node, Token consumes one lexed token into the tree under construction.
// Materializing the tree from this stream (rather than building it
// directly) is what lets the expression parser fold left-recursive binary
// expressions without backtracking: a Start event can be retroactively
// "moved" to wrap an already-emitted run of events via forwardParent
// (§4.3).
type event struct {
	kind Kind
	// forwardParent, when non-zero, is 1+the index of another Start event
	// that should become this Start's parent once the stream is
	// materialized — the mechanism that lets `1 + 2` be parsed as
	// `(BinaryExpr 1 + 2)` instead of `(1 BinaryExpr(+ 2))` without
	// re-parsing.
	forwardParent int
	isFinish      bool
	isToken       bool
	token         GreenToken
	// abandoned marks a Start event that was later abandoned (its
	// would-be node never completed); such Starts are transparent when
	// materializing: their children splice into the enclosing node.
	abandoned bool
}

// eventSink accumulates the event stream during parsing and materializes
// it into a GreenNode tree on Build.
type eventSink struct {
	events []event
}

// Marker identifies an open (Start) event that has not yet been completed
// or abandoned.
type Marker struct {
	idx int
}

// Start opens a new node at the current position in the stream.
func (s *eventSink) Start() Marker {
	s.events = append(s.events, event{kind: KindError}) // placeholder kind
	return Marker{idx: len(s.events) - 1}
}

// Complete closes the node opened at m with the given kind.
func (s *eventSink) Complete(m Marker, kind Kind) CompletedMarker {
	s.events[m.idx].kind = kind
	s.events = append(s.events, event{isFinish: true})
	return CompletedMarker{idx: m.idx}
}

// Abandon discards the node opened at m; its Start event becomes
// transparent (neither a node nor a boundary) when materializing.
func (s *eventSink) Abandon(m Marker) {
	s.events[m.idx].abandoned = true
	s.events = append(s.events, event{isFinish: true})
}

// CompletedMarker identifies a node that has already been closed; it may
// still be wrapped by a later, larger node via Precede.
type CompletedMarker struct {
	idx int
}

// Precede opens a new Start event that will become the parent of the node
// identified by m once the stream is materialized, without moving or
// re-lexing anything already emitted (§4.3's "forward-parent
// re-parenting").
func (s *eventSink) Precede(m CompletedMarker) Marker {
	newMarker := s.Start()
	s.events[m.idx].forwardParent = newMarker.idx + 1
	return newMarker
}

// Token appends a single leaf token to the stream.
func (s *eventSink) Token(tok GreenToken) {
	s.events = append(s.events, event{isToken: true, token: tok})
}

// Build materializes the event stream into a single root GreenNode,
// wrapping everything in a KindSourceFile node if more than one top-level
// element survives (the normal case: one SourceFile Start/Finish pair
// around everything).
func (s *eventSink) Build() *GreenNode {
	n := len(s.events)

	// textualParent[i] is the Start index lexically enclosing Start i,
	// or -1 at the top level. effectiveParent[i] is textualParent[i]
	// overridden by forwardParent when the parser used Precede to
	// retroactively reparent a completed node.
	textualParent := make([]int, n)
	effectiveParent := make([]int, n)
	{
		var openStack []int
		for i, e := range s.events {
			switch {
			case e.isFinish:
				if len(openStack) > 0 {
					openStack = openStack[:len(openStack)-1]
				}
			case e.isToken:
			default:
				if len(openStack) > 0 {
					textualParent[i] = openStack[len(openStack)-1]
				} else {
					textualParent[i] = -1
				}
				openStack = append(openStack, i)
			}
		}
	}
	for i, e := range s.events {
		if e.isFinish || e.isToken {
			continue
		}
		if e.forwardParent != 0 {
			effectiveParent[i] = e.forwardParent - 1
		} else {
			effectiveParent[i] = textualParent[i]
		}
	}

	// children[parentStartIdx] accumulates that parent's green children,
	// keyed by Start index (-1 for the implicit top level). Because a
	// forward-parent's Start event always occurs no earlier than the
	// child it wraps, writes to children[effectiveParent] are safe to
	// perform before that parent's own Start event is processed; map
	// semantics make the ordering correct as long as all writes for a
	// given key happen in increasing event-index order, which a single
	// forward pass guarantees.
	children := map[int][]GreenChild{}
	kindOf := map[int]Kind{}
	var openTextual []int

	for i := 0; i < n; i++ {
		e := s.events[i]
		switch {
		case e.isToken:
			top := -1
			if len(openTextual) > 0 {
				top = openTextual[len(openTextual)-1]
			}
			children[top] = append(children[top], GreenChild{IsToken: true, Token: e.token})

		case e.isFinish:
			top := openTextual[len(openTextual)-1]
			openTextual = openTextual[:len(openTextual)-1]
			if s.events[top].abandoned {
				parent := textualParent[top]
				children[parent] = append(children[parent], children[top]...)
				delete(children, top)
				continue
			}
			node := NewGreenNode(kindOf[top], children[top])
			delete(children, top)
			delete(kindOf, top)
			parent := effectiveParent[top]
			children[parent] = append(children[parent], GreenChild{Node: node})

		default:
			kindOf[i] = e.kind
			openTextual = append(openTextual, i)
		}
	}

	roots := children[-1]
	if len(roots) == 1 && !roots[0].IsToken {
		return roots[0].Node
	}
	return NewGreenNode(KindSourceFile, roots)
}
