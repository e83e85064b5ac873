package diagnostics

import (
	"sync"

	"github.com/oxhq/stcore/host"
)

// QuickFixFunc computes a best-effort fix for one diagnostic (§7 "the
// core never asserts their success at the call site"). It may return
// (nil, false) when no fix applies to this particular occurrence.
type QuickFixFunc func(d Diagnostic) ([]host.TextEdit, bool)

// Registry is a thread-safe code -> QuickFixFunc map, repurposed from the
// teacher's language-provider registry (which mapped a language name to a
// provider implementation) into a diagnostic-code -> fix-function table:
// the same "register once, dispatch by key, reject duplicate
// registrations" shape, generalized from plugin identity to diagnostic
// identity.
type Registry struct {
	mu    sync.RWMutex
	fixes map[string]QuickFixFunc
}

// NewRegistry creates an empty quick-fix registry.
func NewRegistry() *Registry {
	return &Registry{fixes: map[string]QuickFixFunc{}}
}

// Register binds code to fn. Registering the same code twice is a
// programmer error and panics, matching the teacher's registry's
// conflict-on-insert behavior for duplicate plugin names.
func (r *Registry) Register(code string, fn QuickFixFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fixes[code]; exists {
		panic("diagnostics: quick-fix already registered for code " + code)
	}
	r.fixes[code] = fn
}

// Lookup returns the quick-fix function for code, if one is registered.
func (r *Registry) Lookup(code string) (QuickFixFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fixes[code]
	return fn, ok
}

// Fix runs the registered quick-fix for d, if any.
func (r *Registry) Fix(d Diagnostic) ([]host.TextEdit, bool) {
	fn, ok := r.Lookup(d.Code)
	if !ok {
		return nil, false
	}
	return fn(d)
}
