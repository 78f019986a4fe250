package analyzer

import (
	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// buildCommand resolves one bridgeable function into a callable command
// entry. Parameters resolving to an injected handle type are dropped here,
// regardless of the reference syntax or alias indirection used to reach them.
func buildCommand(fn *models.ParsedFunction, pf *models.ParsedFile, module string, report *models.Report) *models.CommandFunction {
	file := pf.File.RelPath
	cmd := &models.CommandFunction{
		Name:   fn.Name,
		Doc:    fn.Doc,
		Module: module,
		Async:  fn.Async,
	}

	for _, p := range fn.Params {
		if isExcludedHandle(p.Type, pf.Aliases) {
			continue
		}
		cmd.Params = append(cmd.Params, models.Parameter{
			Name:          p.Name,
			Type:          resolveType(p.Type, pf.Aliases, report, file),
			Ref:           p.Type != nil && p.Type.Ref,
			CanonicalPath: canonicalPath(paramPath(p.Type), pf.Aliases),
		})
	}

	cmd.Return = resolveType(fn.Return, pf.Aliases, report, file)
	return cmd
}

func paramPath(expr *models.TypeExpr) string {
	if expr == nil {
		return ""
	}
	return expr.Path
}

// buildTypeDecl resolves one struct or enum declaration.
func buildTypeDecl(pt *models.ParsedTypeDecl, pf *models.ParsedFile, module string, report *models.Report) *models.TypeDeclaration {
	file := pf.File.RelPath
	decl := &models.TypeDeclaration{
		Name:           pt.Name,
		Doc:            pt.Doc,
		Kind:           pt.Kind,
		Module:         module,
		Serializable:   pt.Serializable,
		Deserializable: pt.Deserializable,
	}

	for _, f := range pt.Fields {
		decl.Fields = append(decl.Fields, models.Field{
			Name: f.Name,
			Doc:  f.Doc,
			Type: resolveType(f.Type, pf.Aliases, report, file),
		})
	}

	for _, v := range pt.Variants {
		variant := models.Variant{Name: v.Name, Doc: v.Doc, Kind: v.Kind}
		for _, t := range v.Tuple {
			variant.Tuple = append(variant.Tuple, resolveType(t, pf.Aliases, report, file))
		}
		for _, f := range v.Fields {
			variant.Fields = append(variant.Fields, models.Field{
				Name: f.Name,
				Doc:  f.Doc,
				Type: resolveType(f.Type, pf.Aliases, report, file),
			})
		}
		decl.Variants = append(decl.Variants, variant)
	}

	return decl
}
