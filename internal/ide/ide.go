// Package ide implements the IDE-facing operations (C10): completion,
// hover, navigation, references, rename, refactorings, document/workspace
// symbols, hierarchies, signature help, inlay hints, semantic tokens,
// selection ranges, folding, linked editing, diagnostics, and code
// actions (§4.9, §4.10). Every operation is a pure function of a
// semdb.Database snapshot and a host.RequestTicket; none of them touch
// the host's storage, persistence, or transport directly — results are
// plain Go values the embedding host translates to its own wire format.
package ide

import "github.com/oxhq/stcore/internal/semdb"

// Service is the entry point for every IDE operation, backed by one
// semantic database. A Service is cheap to construct and holds no state
// of its own beyond the database reference, mirroring how buflsp's
// per-request handlers are thin wrappers around a shared *file/*workspace
// rather than accumulating request-scoped state.
type Service struct {
	DB *semdb.Database
}

// NewService wraps db for IDE-layer queries.
func NewService(db *semdb.Database) *Service {
	return &Service{DB: db}
}
