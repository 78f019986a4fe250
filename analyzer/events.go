package analyzer

import (
	"fmt"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// detectEvents resolves the raw broadcast sites of one parsed file into
// event sites. It depends only on the file's own declarations: the receiver
// is matched against the enclosing function's parameters and the payload
// against the same parameter table.
func detectEvents(pf *models.ParsedFile, report *models.Report) []*models.EventSite {
	var sites []*models.EventSite
	file := pf.File.RelPath

	for _, fn := range pf.Functions {
		paramTypes := map[string]*models.TypeExpr{}
		for _, p := range fn.Params {
			paramTypes[p.Name] = p.Type
		}

		for _, raw := range fn.Broadcasts {
			if !raw.NameStatic {
				report.Warnf(models.UnstaticEventName, file, raw.Line,
					"broadcast call uses a computed event name; a typed handler requires a statically known name")
				continue
			}

			scope, ok := broadcastScope(raw, paramTypes, pf.Aliases, report, file)
			if !ok {
				continue
			}

			sites = append(sites, &models.EventSite{
				Name:    raw.NameLit,
				Key:     raw.NameLit,
				Payload: payloadDescriptor(raw, paramTypes, pf.Aliases, report, file),
				Scope:   scope,
				File:    file,
			})
		}
	}
	return sites
}

// broadcastScope resolves the audience of one call. A call routed through a
// window handle is scoped to that window's identifier; a call routed through
// the application handle is global. emit_to names its window explicitly.
func broadcastScope(raw models.RawBroadcast, params map[string]*models.TypeExpr, aliases map[string]string, report *models.Report, file string) (models.EventScope, bool) {
	if raw.Method == "emit_to" {
		if !raw.WindowStatic {
			report.Warnf(models.UnstaticEventName, file, raw.Line,
				"broadcast call uses a computed window label; the site is skipped")
			return models.EventScope{}, false
		}
		return models.WindowScope(raw.WindowLit), true
	}

	expr, ok := params[raw.Receiver]
	if !ok {
		return models.EventScope{}, false
	}
	switch canonicalPath(expr.Path, aliases) {
	case "tauri::AppHandle":
		return models.GlobalScope(), true
	case "tauri::Window", "tauri::WebviewWindow":
		return models.WindowScope(raw.Receiver), true
	}
	return models.EventScope{}, false
}

func payloadDescriptor(raw models.RawBroadcast, params map[string]*models.TypeExpr, aliases map[string]string, report *models.Report, file string) *models.TypeDescriptor {
	switch raw.Payload {
	case models.PayloadNone:
		return models.Void()
	case models.PayloadIdent:
		if expr, ok := params[raw.PayloadText]; ok {
			return resolveType(expr, aliases, report, file)
		}
		return models.Unsupported(raw.PayloadText)
	case models.PayloadStructLit:
		return models.Named(raw.PayloadText)
	case models.PayloadStrLit:
		return models.Primitive("string")
	case models.PayloadNumLit:
		return models.Primitive("number")
	case models.PayloadBoolLit:
		return models.Primitive("boolean")
	default:
		return models.Unsupported(raw.PayloadText)
	}
}

// mergeEvents deduplicates sites by (scope, event name) preserving first
// discovery order. Identical payloads merge into one entry; differing
// payloads are a recorded collision, and both entries are retained under
// distinct keys.
func mergeEvents(all []*models.EventSite, report *models.Report) []*models.EventSite {
	type slot struct {
		sites []*models.EventSite
	}
	index := map[string]*slot{}
	var merged []*models.EventSite

	keyOf := func(scope models.EventScope, name string) string {
		return scope.Window + "\x00" + name
	}

	for _, site := range all {
		k := keyOf(site.Scope, site.Name)
		s, ok := index[k]
		if !ok {
			index[k] = &slot{sites: []*models.EventSite{site}}
			merged = append(merged, site)
			continue
		}

		duplicate := false
		for _, existing := range s.sites {
			if existing.Payload.Equal(site.Payload) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		report.Warnf(models.NameCollision, site.File, 0,
			"event %q in scope %q is broadcast with conflicting payload types; both are retained",
			site.Name, scopeLabel(site.Scope))
		site.Key = fmt.Sprintf("%s#%d", site.Name, len(s.sites)+1)
		s.sites = append(s.sites, site)
		merged = append(merged, site)
	}
	return merged
}

func scopeLabel(s models.EventScope) string {
	if s.Global() {
		return "global"
	}
	return s.Window
}
