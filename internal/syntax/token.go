package syntax

// GreenToken is a leaf of the green tree: a syntax kind paired with the
// exact source-text slice it covers. Trivia (whitespace, comments) and
// error bytes are first-class tokens, per §3.2 and §4.1 — every byte of
// input belongs to exactly one leaf token, trivia included.
type GreenToken struct {
	Kind Kind
	Text string
}

// Len returns the number of bytes this token occupies.
func (t GreenToken) Len() int { return len(t.Text) }
