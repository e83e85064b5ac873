package host

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// StdlibProfile selects which standard-library function/function-block
// surface completion and call resolution should consider (§6, §9 open
// question #2).
type StdlibProfile string

const (
	// StdlibProfileFull includes the IEC set plus anything matched by Allow.
	StdlibProfileFull StdlibProfile = "full"
	// StdlibProfileIEC includes only the IEC 61131-3 standard function/FB set.
	StdlibProfileIEC StdlibProfile = "iec"
	// StdlibProfileNone includes no stdlib completions or calls at all.
	StdlibProfileNone StdlibProfile = "none"
)

// StdlibConfig controls which stdlib symbols are visible to completion and
// call resolution.
type StdlibConfig struct {
	Profile StdlibProfile
	// Allow is a set of doublestar glob patterns matched against
	// fully-qualified stdlib names (e.g. "IEC.*", "Vendor.PID_*"). When
	// non-empty it is authoritative, overriding Profile entirely (§6 open
	// question #2).
	Allow []string
}

// Allowed reports whether name is visible under this stdlib configuration.
// iecNames is the implementation's static IEC 61131-3 standard function/FB
// table (owned by internal/ide), consulted only when Allow is empty.
func (c StdlibConfig) Allowed(name string, isIECStandard bool) bool {
	if len(c.Allow) > 0 {
		for _, pat := range c.Allow {
			if ok, _ := doublestar.Match(pat, name); ok {
				return true
			}
		}
		return false
	}
	switch c.Profile {
	case StdlibProfileNone:
		return false
	case StdlibProfileIEC:
		return isIECStandard
	case StdlibProfileFull, "":
		return true
	default:
		return false
	}
}

// Severity is a diagnostic severity level, overridable per code (§6, §7).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
	SeverityOff     Severity = "off"
)

// DiagnosticsConfig holds per-code enable/disable toggles and severity
// overrides (§4.9.9, §6).
type DiagnosticsConfig struct {
	// Enabled maps a warning-family code (e.g. "W001") to whether it is
	// emitted at all. Codes absent from the map default to enabled, except
	// where the family's own default says otherwise (see DefaultEnabled).
	Enabled map[string]bool
	// SeverityOverrides maps a diagnostic code to the severity it should be
	// reported at, overriding the code's built-in default severity.
	SeverityOverrides map[string]Severity
}

// IsEnabled reports whether code is active under this configuration.
func (c DiagnosticsConfig) IsEnabled(code string) bool {
	if c.Enabled == nil {
		return true
	}
	if v, ok := c.Enabled[code]; ok {
		return v
	}
	return true
}

// SeverityFor returns the effective severity for code, falling back to
// def when there is no override.
func (c DiagnosticsConfig) SeverityFor(code string, def Severity) Severity {
	if c.SeverityOverrides == nil {
		return def
	}
	if v, ok := c.SeverityOverrides[code]; ok {
		return v
	}
	return def
}

// Visibility controls whether a workspace's symbols participate in
// workspace-symbol search (§4.9.7).
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityHidden  Visibility = "hidden"
)

// WorkspaceInfo is the per-workspace metadata that orders and filters
// workspace-symbol results (§4.9.7, §5 ordering rules).
type WorkspaceInfo struct {
	Priority   int32
	Visibility Visibility
}

// Matches reports whether this workspace's results are ever returned for
// query (empty query string included for Public/Hidden semantics; §4.9.7:
// "Hidden never matches, Private matches only non-empty queries").
func (w WorkspaceInfo) Matches(query string) bool {
	switch w.Visibility {
	case VisibilityHidden:
		return false
	case VisibilityPrivate:
		return strings.TrimSpace(query) != ""
	default:
		return true
	}
}

// ExternalDiagnostic is a pre-built diagnostic the host injects from an
// external source (a linter, a build step) rather than one the core
// computed itself (§6, §7 L0xx).
type ExternalDiagnostic struct {
	Path     string
	Range    TextRange
	Severity Severity
	Code     string
	Message  string
	// Fix, if non-empty, is a quick-fix the code-action layer can surface
	// verbatim without understanding its origin.
	Fix []TextEdit
}

// MatchesPath reports whether this external diagnostic applies to path,
// supporting doublestar glob patterns in Path (e.g. "lib/**/*.st").
func (d ExternalDiagnostic) MatchesPath(path string) bool {
	if d.Path == path {
		return true
	}
	ok, _ := doublestar.Match(d.Path, path)
	return ok
}

// WorkspaceConfig is the full per-URI configuration shape the host supplies
// (§6).
type WorkspaceConfig struct {
	Stdlib             StdlibConfig
	Diagnostics        DiagnosticsConfig
	Workspace          WorkspaceInfo
	LibraryDocs        map[string]string // name -> markdown
	ExternalDiagnostics []ExternalDiagnostic
}
