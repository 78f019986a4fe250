package analyzer

import (
	"strings"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// The bridge injects these handle types itself; parameters resolving to any
// of them are dropped from generated call signatures entirely.
var excludedHandleTypes = map[string]bool{
	"tauri::Window":        true,
	"tauri::WebviewWindow": true,
	"tauri::AppHandle":     true,
}

// State carries generics, so it is matched by prefix.
const excludedStatePrefix = "tauri::State"

// The known low-level response type stays opaque to force explicit
// caller-side casting.
const opaqueResponsePath = "tauri::ipc::Response"

var primitiveTypes = map[string]string{
	"String": "string",
	"str":    "string",
	"char":   "string",
	"bool":   "boolean",
	"u8":     "number",
	"u16":    "number",
	"u32":    "number",
	"u64":    "number",
	"u128":   "number",
	"i8":     "number",
	"i16":    "number",
	"i32":    "number",
	"i64":    "number",
	"i128":   "number",
	"usize":  "number",
	"isize":  "number",
	"f32":    "number",
	"f64":    "number",
}

// canonicalPath resolves a type path through the file's alias table. Only
// single-segment names go through the table; full paths stand on their own.
func canonicalPath(path string, aliases map[string]string) string {
	if path == "" || strings.Contains(path, "::") {
		return path
	}
	if full, ok := aliases[path]; ok {
		return full
	}
	return path
}

// isExcludedHandle tests the injected-handle exclusion set after stripping
// reference syntax and resolving aliases.
func isExcludedHandle(expr *models.TypeExpr, aliases map[string]string) bool {
	if expr == nil {
		return false
	}
	canonical := canonicalPath(expr.Path, aliases)
	if excludedHandleTypes[canonical] {
		return true
	}
	return strings.HasPrefix(canonical, excludedStatePrefix)
}

func isOpaqueResponse(expr *models.TypeExpr, aliases map[string]string) bool {
	return expr != nil && canonicalPath(expr.Path, aliases) == opaqueResponsePath
}

// resolveType maps one type expression to its normalized descriptor. It is a
// pure function of (expression, alias table); warnings go to the report and
// resolution never hard-fails the run.
func resolveType(expr *models.TypeExpr, aliases map[string]string, report *models.Report, file string) *models.TypeDescriptor {
	if expr == nil || expr.Unit {
		return models.Void()
	}

	if len(expr.Tuple) > 0 {
		d := &models.TypeDescriptor{Kind: models.KindTuple}
		for _, e := range expr.Tuple {
			d.Elems = append(d.Elems, resolveType(e, aliases, report, file))
		}
		return d
	}

	if expr.Path == "" {
		report.Warnf(models.UnsupportedType, file, 0, "unsupported type expression %q", expr.Raw)
		return models.Unsupported(expr.Raw)
	}

	if isOpaqueResponse(expr, aliases) {
		return models.Opaque()
	}

	if ts, ok := primitiveTypes[expr.Path]; ok {
		return models.Primitive(ts)
	}

	segments := strings.Split(expr.Path, "::")
	switch segments[len(segments)-1] {
	case "Option":
		if len(expr.Args) == 1 {
			return &models.TypeDescriptor{
				Kind: models.KindOptional,
				Elem: resolveType(expr.Args[0], aliases, report, file),
			}
		}
	case "Vec", "VecDeque", "HashSet", "BTreeSet":
		if len(expr.Args) == 1 {
			return &models.TypeDescriptor{
				Kind: models.KindList,
				Elem: resolveType(expr.Args[0], aliases, report, file),
			}
		}
	case "HashMap", "BTreeMap":
		if len(expr.Args) == 2 {
			return &models.TypeDescriptor{
				Kind:  models.KindMap,
				Key:   resolveType(expr.Args[0], aliases, report, file),
				Value: resolveType(expr.Args[1], aliases, report, file),
			}
		}
	case "Result":
		// The error arm is surfaced through the call's failure channel, not
		// its success value, so the success arm stands alone.
		if len(expr.Args) >= 1 {
			return resolveType(expr.Args[0], aliases, report, file)
		}
	case "Box", "Arc", "Rc", "Cow":
		if len(expr.Args) >= 1 {
			return resolveType(expr.Args[len(expr.Args)-1], aliases, report, file)
		}
	}

	if len(expr.Args) > 0 && !isNamedCandidate(segments[len(segments)-1]) {
		report.Warnf(models.UnsupportedType, file, 0, "unsupported type expression %q", expr.Raw)
		return models.Unsupported(expr.Raw)
	}

	// A named type not yet declared stays a forward reference; the second
	// pass resolves it against the completed type model.
	return models.Named(segments[len(segments)-1])
}

// isNamedCandidate rejects wrapper idents that fell through with the wrong
// arity; a user type name starts with an uppercase letter.
func isNamedCandidate(ident string) bool {
	return ident != "" && ident[0] >= 'A' && ident[0] <= 'Z'
}

// collectNamedRefs gathers the named-type references inside a descriptor.
func collectNamedRefs(d *models.TypeDescriptor, out map[string]bool) {
	if d == nil {
		return
	}
	if d.Kind == models.KindNamed {
		out[d.Name] = true
	}
	collectNamedRefs(d.Elem, out)
	collectNamedRefs(d.Err, out)
	collectNamedRefs(d.Key, out)
	collectNamedRefs(d.Value, out)
	for _, e := range d.Elems {
		collectNamedRefs(e, out)
	}
}

// markKnownRefs is the second resolution pass: every named reference is
// checked against the completed type model, so declaration order across
// files never matters.
func markKnownRefs(d *models.TypeDescriptor, declared map[string]bool) {
	if d == nil {
		return
	}
	if d.Kind == models.KindNamed {
		d.Known = declared[d.Name]
	}
	markKnownRefs(d.Elem, declared)
	markKnownRefs(d.Err, declared)
	markKnownRefs(d.Key, declared)
	markKnownRefs(d.Value, declared)
	for _, e := range d.Elems {
		markKnownRefs(e, declared)
	}
}
