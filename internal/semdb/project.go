package semdb

import (
	"sort"
	"sync"

	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/project"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
	"github.com/oxhq/stcore/internal/typecheck"
)

// projectSnapshot is the merged project model for one generation (§3.8),
// plus the per-file type Checkers built against it. A snapshot is
// immutable once published; a new generation replaces it wholesale
// (mirroring fileModel's own atomic-replace discipline), which is what
// lets `type_of` invalidate on "project change" — any file change — while
// `file_symbols` invalidates on the narrower "parse change" (§4.8's table).
type projectSnapshot struct {
	gen   uint64
	model *project.Model

	mu       sync.Mutex
	checkers map[host.FileId]*typecheck.Checker
}

// ensureProject returns the project snapshot current as of the moment it
// is called, building one if none exists yet or the database has changed
// since the cached one was built. The merge itself runs outside db.mu, so
// concurrent file reads are never blocked by a project rebuild; projMu
// only serializes rebuilds against each other and against the brief
// window where the freshly built snapshot is published.
func (db *Database) ensureProject() *projectSnapshot {
	db.mu.RLock()
	gen := db.gen
	entries := make([]project.FileEntry, 0, len(db.files))
	for id, fm := range db.files {
		entries = append(entries, project.FileEntry{File: id, Res: fm.local})
	}
	db.mu.RUnlock()

	db.projMu.Lock()
	defer db.projMu.Unlock()
	if db.snap != nil && db.snap.gen == gen {
		return db.snap
	}

	// Merge requires a stable input order for deterministic duplicate
	// collapsing (project.Merge's doc comment, §8 "Determinism").
	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })

	snap := &projectSnapshot{
		gen:      gen,
		model:    project.Merge(entries),
		checkers: make(map[host.FileId]*typecheck.Checker),
	}
	db.snap = snap
	return snap
}

// FileSymbolsWithProject returns the merged project model current as of
// file's last edit or any other open file's (§4.8 `file_symbols_with_project`,
// invalidation "any file change"). file must currently be open; the model
// returned covers every open file, not just file, since merged symbols are
// inherently project-wide — file only selects which generation to build
// against (a closed file drops out of the merge on its next RemoveFile).
func (db *Database) FileSymbolsWithProject(ticket host.RequestTicket, file host.FileId) (*project.Model, bool) {
	if ticket.Cancelled() {
		return nil, false
	}
	if _, ok := db.fileModel(file); !ok {
		return nil, false
	}
	return db.ensureProject().model, true
}

// ExprIDAtOffset locates the innermost expression node in file whose
// text range contains off, returning its ExprId (§4.8 `expr_id_at_offset`,
// §4.7). Invalidates on parse change only — it never touches the project.
func (db *Database) ExprIDAtOffset(ticket host.RequestTicket, file host.FileId, off host.Offset) (symbols.ExprId, bool) {
	if ticket.Cancelled() {
		return 0, false
	}
	fm, ok := db.fileModel(file)
	if !ok {
		return 0, false
	}
	return fm.local.Exprs.At(off)
}

// TypeOf returns the memoized type of expr within file, against the
// current project snapshot (§4.8 `type_of`, §4.7). expr must have come
// from an ExprIDAtOffset (or direct FileSymbols.Exprs) call against the
// same file; an expr from a stale revision may resolve to the wrong node
// or fail to resolve at all once the file has moved past it.
func (db *Database) TypeOf(ticket host.RequestTicket, file host.FileId, expr symbols.ExprId) (sttypes.TypeId, bool) {
	c, ok := db.Checker(ticket, file)
	if !ok {
		return symbols.NoType, false
	}
	return c.TypeOf(expr), true
}

// Checker returns the memoized type Checker backing TypeOf for file
// against the current project snapshot, for callers (C10 hover, diagnostics
// publishing) that need more than one TypeOf call's worth of access — e.g.
// to also read accumulated W005 diagnostics via Checker.Diagnostics.
func (db *Database) Checker(ticket host.RequestTicket, file host.FileId) (*typecheck.Checker, bool) {
	if ticket.Cancelled() {
		return nil, false
	}
	fm, ok := db.fileModel(file)
	if !ok {
		return nil, false
	}
	snap := db.ensureProject()
	if ticket.Cancelled() {
		return nil, false
	}
	return snap.checkerFor(file, fm), true
}

// checkerFor returns (building and caching on first use) the Checker for
// file within this snapshot.
func (s *projectSnapshot) checkerFor(file host.FileId, fm *fileModel) *typecheck.Checker {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkers[file]
	if !ok {
		c = typecheck.NewChecker(file, fm.root, fm.local, s.model)
		s.checkers[file] = c
	}
	return c
}
