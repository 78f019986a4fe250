package generator

import (
	"strings"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// tsType renders a resolved descriptor as TypeScript. prefix qualifies named
// types ("T." inside wrappers, empty inside the types index). Named types
// that resolve to nothing declared in the scanned tree render as unknown, as
// do opaque and unsupported ones.
func tsType(d *models.TypeDescriptor, prefix string) string {
	if d == nil {
		return "void"
	}
	switch d.Kind {
	case models.KindPrimitive:
		return d.Name
	case models.KindOptional:
		return tsType(d.Elem, prefix) + " | null"
	case models.KindResult:
		return tsType(d.Elem, prefix)
	case models.KindList:
		elem := tsType(d.Elem, prefix)
		if strings.Contains(elem, " | ") {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case models.KindMap:
		return "Record<" + tsType(d.Key, prefix) + ", " + tsType(d.Value, prefix) + ">"
	case models.KindTuple:
		parts := make([]string, len(d.Elems))
		for i, e := range d.Elems {
			parts[i] = tsType(e, prefix)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case models.KindNamed:
		if d.Known {
			return prefix + d.Name
		}
		return "unknown"
	default:
		return "unknown"
	}
}

// promiseType wraps a return descriptor for an async signature.
func promiseType(d *models.TypeDescriptor, prefix string) string {
	return "Promise<" + tsType(d, prefix) + ">"
}

// docLines splits an accumulated doc comment into block-comment body lines.
// Empty docs yield nil so templates can skip the comment entirely.
func docLines(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}
	lines := strings.Split(doc, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
