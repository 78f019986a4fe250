package models

import (
	"fmt"
	"sort"
)

// Severity of a diagnostic message.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// DiagnosticKind classifies what went wrong.
type DiagnosticKind int

const (
	// SyntaxError: one file failed to parse; the rest of the tree continues.
	SyntaxError DiagnosticKind = iota
	// UnsupportedType: a type expression had no mapping and was replaced
	// with the Unsupported marker.
	UnsupportedType
	// UnstaticEventName: a broadcast call used a computed event name or
	// window label; the site was dropped.
	UnstaticEventName
	// NameCollision: two declarations share an output identity; both are
	// retained.
	NameCollision
)

func (k DiagnosticKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax-error"
	case UnsupportedType:
		return "unsupported-type"
	case UnstaticEventName:
		return "unstatic-event-name"
	case NameCollision:
		return "name-collision"
	default:
		return "unknown"
	}
}

// Diagnostic is one localized error or warning.
type Diagnostic struct {
	Severity Severity
	Kind     DiagnosticKind
	File     string
	Line     int // 1-based, 0 when not tied to a location
	Message  string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
	}
	if d.File != "" {
		return fmt.Sprintf("%s: %s: %s", d.File, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Report collects diagnostics across a run.
type Report struct {
	items []Diagnostic
}

func NewReport() *Report { return &Report{} }

func (r *Report) Errorf(kind DiagnosticKind, file string, line int, format string, args ...interface{}) {
	r.items = append(r.items, Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) Warnf(kind DiagnosticKind, file string, line int, format string, args ...interface{}) {
	r.items = append(r.items, Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends another report's diagnostics.
func (r *Report) Merge(o *Report) {
	if o != nil {
		r.items = append(r.items, o.items...)
	}
}

func (r *Report) HasErrors() bool {
	for _, d := range r.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics returns all items, errors first, stable within severity.
func (r *Report) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity < out[j].Severity
	})
	return out
}

// Warnings returns only the warning items in insertion order.
func (r *Report) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.items {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Errors returns only the error items in insertion order.
func (r *Report) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.items {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// CountKind returns how many diagnostics carry the given kind.
func (r *Report) CountKind(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
