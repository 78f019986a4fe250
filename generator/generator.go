// Package generator turns the analyzed model into the output artifact list:
// invoke wrappers, callable-surface interfaces, the types index, event
// handler files and barrel indexes, each rendered through the Renderer.
package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/tauria/tauria-tsgen/analyzer/contracts"
	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// Artifact is one output file, path relative to the output root.
type Artifact struct {
	RelPath string
	Content string
}

// Options selects optional artifact groups.
type Options struct {
	MockAPI bool
}

type Generator struct {
	renderer contracts.Renderer
}

func NewGenerator(renderer contracts.Renderer) *Generator {
	return &Generator{renderer: renderer}
}

type wrapperFunc struct {
	Doc     []string
	Name    string // camelCase caller-side name
	Wire    string // backend command name
	Params string // "userId: number, flag: boolean"
	Args   string // "{ userId, flag }"
	Return string // "Promise<T.User>"
}

type modulePayload struct {
	Module      string
	TypesImport string
	HasTypes    bool
	Funcs       []wrapperFunc
}

type fieldEntry struct {
	Doc  []string
	Name string
	Type string
}

type typeEntry struct {
	Doc    []string
	Name   string
	Struct bool
	Fields []fieldEntry // struct form
	Union  string       // enum form
}

type typesPayload struct {
	Types []typeEntry
}

type eventSlot struct {
	Doc        string
	Slot       string // callback property name
	EventName  string // wire name
	Payload    string // TS payload type
	HasPayload bool
}

type eventsPayload struct {
	Callbacks   string // callbacks interface name
	Attach      string // attach function name
	ScopeDoc    string
	TypesImport string
	HasTypes    bool
	Slots       []eventSlot
}

type barrelPayload struct {
	Lines []string
}

// moduleRef locates one command-bearing module inside the output tree.
type moduleRef struct {
	segments []string
	name     string
}

func (r moduleRef) path() string {
	dir := strings.Join(r.segments, "/")
	if dir != "" {
		dir += "/"
	}
	return dir + r.name
}

// Generate renders every artifact for the model. The returned order is
// deterministic: module artifacts in tree order, then types, events and
// barrels.
func (g *Generator) Generate(model *models.Model, opts Options) ([]Artifact, error) {
	var artifacts []Artifact

	var moduleRefs []moduleRef

	var walkErr error
	model.Root.Walk(func(segments []string, node *models.ModuleNode) {
		if walkErr != nil || len(node.Commands) == 0 {
			return
		}
		segs := append([]string(nil), segments...)
		moduleRefs = append(moduleRefs, moduleRef{segments: segs, name: node.Segment})

		dir := strings.Join(segs, "/")
		if dir != "" {
			dir += "/"
		}
		depth := 1 + len(segs)

		wrapper := g.modulePayload(node, strings.Repeat("../", depth)+"interface/types")
		if a, err := g.render("wrapper.ts.tmpl", "tauria-api/"+dir+node.Segment+".ts", wrapper); err != nil {
			walkErr = err
		} else {
			artifacts = append(artifacts, a)
		}

		iface := g.modulePayload(node, strings.Repeat("../", depth)+"types")
		if a, err := g.render("interface.ts.tmpl", "interface/commands/"+dir+node.Segment+".ts", iface); err != nil {
			walkErr = err
		} else {
			artifacts = append(artifacts, a)
		}

		if opts.MockAPI {
			mock := g.modulePayload(node, strings.Repeat("../", depth)+"interface/types")
			if a, err := g.render("mock.ts.tmpl", "mock-api/"+dir+node.Segment+".ts", mock); err != nil {
				walkErr = err
			} else {
				artifacts = append(artifacts, a)
			}
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if a, err := g.render("types_index.ts.tmpl", "interface/types/index.ts", g.typesPayload(model)); err != nil {
		return nil, err
	} else {
		artifacts = append(artifacts, a)
	}

	eventFiles, err := g.eventArtifacts(model)
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, eventFiles...)

	barrels, err := g.barrelArtifacts(model, moduleRefs, opts)
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, barrels...)

	return artifacts, nil
}

func (g *Generator) render(tmpl, relPath string, payload any) (Artifact, error) {
	content, err := g.renderer.Render(tmpl, payload)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to render %s: %w", relPath, err)
	}
	return Artifact{RelPath: relPath, Content: content}, nil
}

// modulePayload builds the shared wrapper/interface/mock input for one module.
func (g *Generator) modulePayload(node *models.ModuleNode, typesImport string) modulePayload {
	p := modulePayload{Module: node.Segment, TypesImport: typesImport}

	for _, cmd := range node.Commands {
		var params, args []string
		for _, param := range cmd.Params {
			name := strcase.ToLowerCamel(param.Name)
			params = append(params, name+": "+tsType(param.Type, "T."))
			args = append(args, name)
		}

		fn := wrapperFunc{
			Doc:    docLines(cmd.Doc),
			Name:   strcase.ToLowerCamel(cmd.Name),
			Wire:   cmd.Name,
			Params: strings.Join(params, ", "),
			Args:   "{ " + strings.Join(args, ", ") + " }",
			Return: promiseType(cmd.Return, "T."),
		}
		if len(args) == 0 {
			fn.Args = "{}"
		}
		p.Funcs = append(p.Funcs, fn)

		if strings.Contains(fn.Params, "T.") || strings.Contains(fn.Return, "T.") {
			p.HasTypes = true
		}
	}
	return p
}

// typesPayload builds the consolidated types index: exportable declarations
// sorted by name then declaring module, structs as interfaces and enums as
// externally tagged unions.
func (g *Generator) typesPayload(model *models.Model) typesPayload {
	exportable := make([]*models.TypeDeclaration, 0, len(model.Types))
	for _, t := range model.Types {
		if t.Exportable() {
			exportable = append(exportable, t)
		}
	}
	sort.SliceStable(exportable, func(i, j int) bool {
		if exportable[i].Name != exportable[j].Name {
			return exportable[i].Name < exportable[j].Name
		}
		return exportable[i].Module < exportable[j].Module
	})

	var p typesPayload
	for _, t := range exportable {
		entry := typeEntry{Doc: docLines(t.Doc), Name: t.Name}
		if t.Kind == models.DeclStruct {
			entry.Struct = true
			for _, f := range t.Fields {
				entry.Fields = append(entry.Fields, fieldEntry{
					Doc:  docLines(f.Doc),
					Name: f.Name,
					Type: tsType(f.Type, ""),
				})
			}
		} else {
			entry.Union = enumUnion(t)
		}
		p.Types = append(p.Types, entry)
	}
	return p
}

// enumUnion renders an enum as its externally tagged union: unit variants as
// name literals, tuple and struct variants as single-key objects.
func enumUnion(t *models.TypeDeclaration) string {
	var arms []string
	for _, v := range t.Variants {
		switch v.Kind {
		case models.VariantUnit:
			arms = append(arms, `"`+v.Name+`"`)
		case models.VariantTuple:
			if len(v.Tuple) == 1 {
				arms = append(arms, "{ "+v.Name+": "+tsType(v.Tuple[0], "")+" }")
			} else {
				parts := make([]string, len(v.Tuple))
				for i, d := range v.Tuple {
					parts[i] = tsType(d, "")
				}
				arms = append(arms, "{ "+v.Name+": ["+strings.Join(parts, ", ")+"] }")
			}
		case models.VariantStruct:
			fields := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = f.Name + ": " + tsType(f.Type, "")
			}
			arms = append(arms, "{ "+v.Name+": { "+strings.Join(fields, "; ")+" } }")
		}
	}
	if len(arms) == 0 {
		return "never"
	}
	return strings.Join(arms, " | ")
}

// eventArtifacts renders one handler file per discovered scope, callback
// slots in discovery order.
func (g *Generator) eventArtifacts(model *models.Model) ([]Artifact, error) {
	var artifacts []Artifact

	if global := model.GlobalEvents(); len(global) > 0 {
		payload := g.eventsPayload("GlobalEventCallbacks", "attachGlobalEventHandlers",
			"Events broadcast to every window.", global)
		a, err := g.render("events.ts.tmpl", "tauria-api/events/GlobalEventHandlers.ts", payload)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	for _, window := range model.WindowNames() {
		pascal := strcase.ToCamel(window)
		payload := g.eventsPayload(
			pascal+"WindowEventCallbacks",
			"attach"+pascal+"WindowEventHandlers",
			fmt.Sprintf("Events broadcast to the %q window.", window),
			model.WindowEvents(window))
		a, err := g.render("events.ts.tmpl", "tauria-api/events/"+pascal+"WindowEventHandlers.ts", payload)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	return artifacts, nil
}

func (g *Generator) eventsPayload(callbacks, attach, scopeDoc string, events []*models.EventSite) eventsPayload {
	p := eventsPayload{
		Callbacks:   callbacks,
		Attach:      attach,
		ScopeDoc:    scopeDoc,
		TypesImport: "../../interface/types",
	}
	for _, e := range events {
		ts := tsType(e.Payload, "T.")
		slot := eventSlot{
			Slot:       "on" + strcase.ToCamel(strings.ReplaceAll(e.Key, "#", "_")),
			EventName:  e.Name,
			Payload:    ts,
			HasPayload: ts != "void",
		}
		if strings.Contains(ts, "T.") {
			p.HasTypes = true
		}
		p.Slots = append(p.Slots, slot)
	}
	return p
}

// barrelArtifacts renders the index files. Module wrappers re-export as
// namespaces so same-named functions in different modules never clash.
func (g *Generator) barrelArtifacts(model *models.Model, refs []moduleRef, opts Options) ([]Artifact, error) {
	var artifacts []Artifact

	var apiLines []string
	for _, r := range refs {
		apiLines = append(apiLines, fmt.Sprintf("export * as %s from %q;", r.name, "./"+r.path()))
	}
	if len(model.GlobalEvents()) > 0 {
		apiLines = append(apiLines, `export * from "./events/GlobalEventHandlers";`)
	}
	for _, window := range model.WindowNames() {
		pascal := strcase.ToCamel(window)
		apiLines = append(apiLines, fmt.Sprintf("export * from %q;", "./events/"+pascal+"WindowEventHandlers"))
	}
	a, err := g.render("barrel.ts.tmpl", "tauria-api/index.ts", barrelPayload{Lines: apiLines})
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, a)

	var ifaceLines []string
	for _, r := range refs {
		ifaceLines = append(ifaceLines, fmt.Sprintf("export type { %s } from %q;", r.name, "./commands/"+r.path()))
	}
	ifaceLines = append(ifaceLines, `export * from "./types";`)
	a, err = g.render("barrel.ts.tmpl", "interface/index.ts", barrelPayload{Lines: ifaceLines})
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, a)

	if opts.MockAPI {
		var mockLines []string
		for _, r := range refs {
			mockLines = append(mockLines, fmt.Sprintf("export * as %s from %q;", r.name, "./"+r.path()))
		}
		a, err = g.render("barrel.ts.tmpl", "mock-api/index.ts", barrelPayload{Lines: mockLines})
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	a, err = g.render("root_index.ts.tmpl", "index.ts", struct{ MockAPI bool }{opts.MockAPI})
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, a)

	return artifacts, nil
}
