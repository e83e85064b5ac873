// Package host defines the boundary between the language-service core and
// whatever embeds it (an LSP adapter, a batch tool, a test harness). The
// core never performs file I/O, owns sockets, or starts timers; it is
// handed source text and a cancellation signal, and it hands back edits and
// diagnostics as plain values.
package host

import (
	"log/slog"
	"sync/atomic"
)

// FileId is an opaque stable handle assigned by the host. The core never
// interprets it beyond equality and ordering (insertion order is preserved
// by whichever side assigns it).
type FileId uint32

// Offset is a nonnegative byte offset into a file's source text.
type Offset uint32

// TextRange is a half-open byte range [Start, End) within one file.
type TextRange struct {
	Start Offset
	End   Offset
}

// Contains reports whether off lies within r, inclusive of Start and
// exclusive of End, except when r is an empty range at off (used for
// cursor-position matching against zero-width insertion points).
func (r TextRange) Contains(off Offset) bool {
	if r.Start == r.End {
		return off == r.Start
	}
	return off >= r.Start && off < r.End
}

// Len returns the number of bytes spanned by r.
func (r TextRange) Len() int { return int(r.End - r.Start) }

// TextEdit replaces the byte range Range within file File with NewText.
// Edits within one file must be non-overlapping; the host is responsible
// for applying them, conventionally from the highest offset to the lowest
// so earlier offsets remain valid.
type TextEdit struct {
	File    FileId
	Range   TextRange
	NewText string
}

// FileRename asks the host to rename a file. Produced by rename (§4.9.5)
// when a primary POU's name is changed and it matches its file's stem.
type FileRename struct {
	OldPath string
	NewPath string
}

// Edit bundles the cross-file text edits and any file renames an IDE
// operation produces. Both fields may be empty; a nil/zero Edit with
// Applicable=false signals the operation could not produce one.
type Edit struct {
	TextEdits []TextEdit
	Renames   []FileRename
}

// RequestTicket stamps one semantic request. Older tickets are cancelled
// the moment a newer one begins (§5); cooperative cancellation polls
// Cancelled() at coarse loop boundaries.
type RequestTicket struct {
	seq  uint64
	live *atomic.Uint64 // shared with the issuing Host; current "newest" seq
}

// Cancelled reports whether a newer ticket has since begun.
func (t RequestTicket) Cancelled() bool {
	if t.live == nil {
		return false
	}
	return t.live.Load() != t.seq
}

// TicketSource issues monotonically increasing RequestTickets and
// atomically invalidates every previously issued ticket when a new one is
// minted, per §5's cancellation semantics.
type TicketSource struct {
	seq atomic.Uint64
}

// Begin mints a fresh ticket and cancels every ticket issued before it.
func (s *TicketSource) Begin() RequestTicket {
	n := s.seq.Add(1)
	return RequestTicket{seq: n, live: &s.seq}
}

// Host is the set of inputs the core requires from its embedder. A host
// implementation owns file identity, source storage, and the cancellation
// primitive; the core only ever reads through this interface.
type Host interface {
	// Logger returns the structured logger the core should use for
	// diagnostics about its own operation (never for user-facing
	// diagnostics, which are returned as data, per §7).
	Logger() *slog.Logger

	// Config returns the effective configuration for the workspace that
	// owns file f, or the zero WorkspaceConfig if the host has none.
	Config(f FileId) WorkspaceConfig

	// FilePath returns the path or URI the host stores f under, if any.
	// The core is otherwise path-agnostic; it needs this only to compare
	// a renamed POU's new name against its file's stem (§4.9.5) and to
	// hand back FileRename.OldPath/NewPath to the host.
	FilePath(f FileId) (string, bool)
}

// NoopHost is a minimal Host useful for tests and for embedding contexts
// that don't need logging or per-file configuration.
type NoopHost struct {
	Cfg   WorkspaceConfig
	Log   *slog.Logger
	Paths map[FileId]string
}

// Logger implements Host.
func (h NoopHost) Logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// Config implements Host.
func (h NoopHost) Config(FileId) WorkspaceConfig { return h.Cfg }

// FilePath implements Host.
func (h NoopHost) FilePath(f FileId) (string, bool) {
	p, ok := h.Paths[f]
	return p, ok
}
