// Package diagnostics defines the stable diagnostic taxonomy (§7) shared
// by the project resolver (C6), type checker (C8), and IDE operations
// (C10): resolution errors (E1xx), type errors (E2xx), semantic warnings
// (W0xx), and lockfile/library errors (L0xx) forwarded from the host's
// configuration layer unchanged.
//
// Diagnostic codes are part of the stable external surface (§6): adding a
// code is backward-compatible, repurposing one is not — never reassign an
// existing constant below to a new meaning.
package diagnostics

import "github.com/oxhq/stcore/host"

// Severity mirrors host.Severity so callers that only touch diagnostics
// don't need to import host for this one type.
type Severity = host.Severity

const (
	Error   = host.SeverityError
	Warning = host.SeverityWarning
	Info    = host.SeverityInfo
	Hint    = host.SeverityHint
	Off     = host.SeverityOff
)

// Parse errors (E0xx) — emitted by the parser (C3), never by the resolver.
const (
	EUnexpectedToken         = "E001"
	EMissingEndUnexpectedEOF = "E002"
	EMissingEndWrongKeyword  = "E003"
)

// Resolution errors (E1xx).
const (
	EUnresolvedName       = "E101"
	EUnresolvedType       = "E102"
	EAliasCycle           = "E104"
	EAmbiguousDeclaration = "E105"
	EInvalidIdentifier    = "E106"
	EBrokenInheritance    = "E107"
	EAccessViolation      = "E108"
)

// Type errors (E2xx).
const (
	EArgBindingError    = "E202"
	EAssignIncompatible = "E203"
	EOutputBindingOp    = "E205" // output-binding operator mismatch; also covers formal/positional mix
	EMissingReturn      = "E206"
)

// Semantic warnings (W0xx).
const (
	WUnusedVariable  = "W001"
	WUnusedParameter = "W002"
	WUnreachable     = "W003"
	WMissingElse     = "W004"
	WNarrowingConv   = "W005"
	WShadowedName    = "W006"
	WDeprecated      = "W007"
	WHighComplexity  = "W008"
	WNondeterminism1 = "W010"
	WNondeterminism2 = "W011"
)

// Lockfile/library errors (L0xx) are never produced by the core itself;
// they arrive pre-built from the host's configuration layer (§6, §7.5)
// and are only re-exported here for a stable code-space namespace.
const (
	LLibraryNotFound = "L001"
)

// RelatedInfo supplies a hint alongside a Diagnostic: a did-you-mean
// suggestion, a conversion hint, or an IEC clause reference (§7).
type RelatedInfo struct {
	Message string
	Range   host.TextRange
	File    host.FileId
	HasFile bool
}

// Diagnostic is one accumulated finding (§7). Diagnostics are data, never
// Go errors: a query that produces them still succeeds.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	File     host.FileId
	Range    host.TextRange
	Related  []RelatedInfo
	Fix      []host.TextEdit
}

// DefaultSeverity returns the severity a code carries before any
// workspace override is applied.
func DefaultSeverity(code string) Severity {
	if len(code) == 0 {
		return Error
	}
	switch code[0] {
	case 'E':
		return Error
	case 'W':
		return Warning
	case 'L':
		return Error
	default:
		return Error
	}
}
