package analyzer

import (
	"fmt"

	"github.com/iancoleman/strcase"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// moduleName converts a file base name to the canonical wrapper identifier
// case, e.g. "user_commands" -> "UserCommands".
func moduleName(base string) string {
	return strcase.ToCamel(base)
}

// fileOutcome carries one file's built declarations through re-join, in scan
// order, regardless of worker completion order.
type fileOutcome struct {
	file     *models.SourceFile
	commands []*models.CommandFunction
	types    []*models.TypeDeclaration
	events   []*models.EventSite
	failed   bool
}

// assemble converts the ordered per-file results into the module tree. Node
// paths mirror the relative directory of each file; every declaration ends
// up owned by exactly one node.
func assemble(outcomes []*fileOutcome, report *models.Report) (*models.ModuleNode, []*models.TypeDeclaration, error) {
	root := &models.ModuleNode{}
	var flatTypes []*models.TypeDeclaration
	firstDeclared := map[string]string{} // type name -> wrapper name of first declaring module

	owned := 0
	for _, out := range outcomes {
		if out.failed {
			continue
		}

		node := &models.ModuleNode{
			Segment:  moduleName(out.file.Name),
			Commands: out.commands,
			Types:    out.types,
			Source:   out.file,
		}
		dir := ensureDir(root, out.file.Segments)
		dir.Children = append(dir.Children, node)
		owned += len(out.commands) + len(out.types)

		for _, t := range out.types {
			if prev, ok := firstDeclared[t.Name]; ok {
				// Two identically named wrappers in different directories
				// stay segregated, but types flatten into one exported
				// namespace, so both are retained and the clash is flagged.
				report.Warnf(models.NameCollision, out.file.RelPath, 0,
					"type %q is declared in both %s and %s; both are retained", t.Name, prev, t.Module)
			} else {
				firstDeclared[t.Name] = t.Module
			}
			flatTypes = append(flatTypes, t)
		}
	}

	// Internal invariant: the tree owns everything the files produced.
	counted := 0
	root.Walk(func(_ []string, n *models.ModuleNode) {
		counted += len(n.Commands) + len(n.Types)
	})
	if counted != owned {
		return nil, nil, fmt.Errorf("internal: %d declarations owned by no module", owned-counted)
	}

	return root, flatTypes, nil
}

// ensureDir walks or creates the directory chain for the given segments.
func ensureDir(root *models.ModuleNode, segments []string) *models.ModuleNode {
	node := root
	for _, seg := range segments {
		var next *models.ModuleNode
		for _, c := range node.Children {
			if !c.IsFile() && c.Segment == seg {
				next = c
				break
			}
		}
		if next == nil {
			next = &models.ModuleNode{Segment: seg}
			node.Children = append(node.Children, next)
		}
		node = next
	}
	return node
}
