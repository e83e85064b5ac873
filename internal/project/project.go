// Package project implements the project resolver (C6): merging per-file
// symbol tables into one project-wide table annotated with Origin,
// resolving EXTENDS/IMPLEMENTS into a derivation graph, and collapsing
// alias-type chains.
package project

import (
	"github.com/oxhq/stcore/host"
	"github.com/oxhq/stcore/internal/diagnostics"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
)

// FileEntry is the subset of a semdb FileModel the project resolver needs:
// one file's local resolution output plus its host-assigned id.
type FileEntry struct {
	File host.FileId
	Res  *symbols.FileResolution
}

// Model is the merged project model of §3.8.
type Model struct {
	MergedSymbols *symbols.SymbolTable
	MergedScopes  *symbols.ScopeTree
	Types         *sttypes.TypeInterner
	// DerivationGraph maps a Class/FunctionBlock/Interface symbol to the
	// symbols its EXTENDS/IMPLEMENTS clause names, once resolved.
	DerivationGraph map[symbols.SymbolId][]symbols.SymbolId
	Diagnostics     []diagnostics.Diagnostic

	// originToMerged maps (file, local symbol id) to its merged SymbolId,
	// used by C8/C9/C10 to translate a file-local resolution into the
	// project-wide identity space.
	originToMerged map[origin]symbols.SymbolId
}

type origin struct {
	file  host.FileId
	local symbols.SymbolId
}

// MergedID translates a file-local SymbolId into its project-wide
// identity, if that file participated in the last Merge.
func (m *Model) MergedID(file host.FileId, local symbols.SymbolId) (symbols.SymbolId, bool) {
	id, ok := m.originToMerged[origin{file: file, local: local}]
	return id, ok
}

// Merge builds a Model from a set of per-file resolutions (§4.6).
// Entries should be supplied in a stable order (by FileId) so that
// duplicate-collapsing is deterministic across runs with identical
// inputs, per §8 "Determinism".
func Merge(entries []FileEntry) *Model {
	scopes := symbols.NewScopeTree()
	merged := symbols.NewSymbolTable(scopes)
	m := &Model{
		MergedSymbols:   merged,
		MergedScopes:    scopes,
		Types:           sttypes.NewTypeInterner(),
		DerivationGraph: map[symbols.SymbolId][]symbols.SymbolId{},
		originToMerged:  map[origin]symbols.SymbolId{},
	}

	mb := &merger{model: m, entries: entries}
	mb.copySymbols()
	mb.resolveDerivation()
	mb.bindTypes()
	return m
}

type merger struct {
	model   *Model
	entries []FileEntry
	// byQualifiedName tracks, for a fully-qualified dotted path, the
	// merged SymbolId already installed for it (for duplicate detection).
	byQualifiedName map[string]symbols.SymbolId
	// containerScope maps a merged container symbol (Namespace, POU,
	// Class, Interface, Type, ...) to the merged scope its children
	// declare into, created lazily the first time a child needs it.
	containerScope map[symbols.SymbolId]symbols.ScopeId
}
