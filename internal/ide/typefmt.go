package ide

import (
	"fmt"
	"strings"

	"github.com/oxhq/stcore/internal/project"
	"github.com/oxhq/stcore/internal/sttypes"
	"github.com/oxhq/stcore/internal/symbols"
)

// typeDisplayName renders id as an IEC 61131-3 type-declaration string for
// hover and signature help (§4.9.2). User types resolve their declaring
// symbol's name through Owner (set uniformly for every named user type,
// including struct/union/enum, per DESIGN.md's Open Question decision on
// sttypes.Type.Owner); builtins use their canonical spelling.
func typeDisplayName(model *project.Model, id sttypes.TypeId) string {
	if name, ok := sttypes.BuiltinName(id); ok {
		return name
	}
	t, ok := model.Types.TypeByID(id)
	if !ok {
		return "<unknown>"
	}
	switch t.Tag {
	case sttypes.TagAlias:
		return typeDisplayName(model, t.AliasOf)
	case sttypes.TagStruct, sttypes.TagUnion, sttypes.TagEnum,
		sttypes.TagFunctionBlock, sttypes.TagClass, sttypes.TagInterface:
		if sym, ok := model.MergedSymbols.Get(t.Owner); ok {
			return sym.Name
		}
		return "<unknown>"
	case sttypes.TagArray:
		var bounds []string
		for _, b := range t.Bounds {
			bounds = append(bounds, fmt.Sprintf("%d..%d", b.Lo, b.Hi))
		}
		return fmt.Sprintf("ARRAY[%s] OF %s", strings.Join(bounds, ","), typeDisplayName(model, t.ElementType))
	case sttypes.TagPointer:
		return "POINTER TO " + typeDisplayName(model, t.PointeeType)
	case sttypes.TagReference:
		return "REFERENCE TO " + typeDisplayName(model, t.PointeeType)
	case sttypes.TagString:
		// Type carries only a capacity, not which of STRING/WSTRING it
		// sizes (internal/sttypes.ResolveTypeRefText never records that);
		// STRING is the safe display default for a sized string type.
		if t.HasCapacity {
			return fmt.Sprintf("STRING(%d)", t.Capacity)
		}
		return "STRING"
	default:
		return "<unknown>"
	}
}

// kindDisplayName renders a symbol kind for hover headers and document
// symbol labels.
func kindDisplayName(tag symbols.SymbolKindTag) string {
	switch tag {
	case symbols.KindProgram:
		return "PROGRAM"
	case symbols.KindProgramInstance:
		return "PROGRAM instance"
	case symbols.KindConfiguration:
		return "CONFIGURATION"
	case symbols.KindResource:
		return "RESOURCE"
	case symbols.KindTask:
		return "TASK"
	case symbols.KindNamespace:
		return "NAMESPACE"
	case symbols.KindFunction:
		return "FUNCTION"
	case symbols.KindFunctionBlock:
		return "FUNCTION_BLOCK"
	case symbols.KindClass:
		return "CLASS"
	case symbols.KindMethod:
		return "METHOD"
	case symbols.KindProperty:
		return "PROPERTY"
	case symbols.KindInterface:
		return "INTERFACE"
	case symbols.KindType:
		return "TYPE"
	case symbols.KindEnumValue:
		return "enum value"
	case symbols.KindVariable:
		return "variable"
	case symbols.KindConstant:
		return "constant"
	case symbols.KindParameter:
		return "parameter"
	default:
		return "symbol"
	}
}

// qualifierDisplayName renders a Variable/Parameter's declaring VAR_*
// block for hover text.
func qualifierDisplayName(q symbols.VarQualifier) string {
	switch q {
	case symbols.QualInput:
		return "VAR_INPUT"
	case symbols.QualOutput:
		return "VAR_OUTPUT"
	case symbols.QualInOut:
		return "VAR_IN_OUT"
	case symbols.QualTemp:
		return "VAR_TEMP"
	case symbols.QualStatic:
		return "VAR (static)"
	case symbols.QualGlobal:
		return "VAR_GLOBAL"
	case symbols.QualExternal:
		return "VAR_EXTERNAL"
	case symbols.QualAccess:
		return "VAR_ACCESS"
	case symbols.QualConfig:
		return "VAR_CONFIG"
	default:
		return "VAR"
	}
}

// qualifiedName walks sym's Parent chain (in the merged table) to build
// its fully dotted display path (§4.9.7's workspace-symbol "container
// name").
func qualifiedName(model *project.Model, sym symbols.Symbol) string {
	parts := []string{sym.Name}
	cur := sym
	for cur.HasParent {
		parent, ok := model.MergedSymbols.Get(cur.Parent)
		if !ok {
			break
		}
		parts = append([]string{parent.Name}, parts...)
		cur = parent
	}
	return strings.Join(parts, ".")
}
