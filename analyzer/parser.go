package analyzer

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

//go:embed queries/*.scm
var queryFS embed.FS

var (
	broadcastQueryOnce sync.Once
	broadcastQuery     *sitter.Query
	broadcastQueryErr  error
)

// broadcastTagQuery returns the compiled call-site query. The compiled query
// is safe to share across goroutines; parsers are not.
func broadcastTagQuery() (*sitter.Query, error) {
	broadcastQueryOnce.Do(func() {
		data, err := queryFS.ReadFile("queries/broadcasts.scm")
		if err != nil {
			broadcastQueryErr = fmt.Errorf("reading query file: %w", err)
			return
		}
		q, err := sitter.NewQuery(data, rust.GetLanguage())
		if err != nil {
			broadcastQueryErr = fmt.Errorf("compiling query: %w", err)
			return
		}
		broadcastQuery = q
	})
	return broadcastQuery, broadcastQueryErr
}

// Parser turns one file's text into its ordered declaration set. Each worker
// goroutine must use its own Parser.
type Parser struct {
	parser *sitter.Parser
	query  *sitter.Query
}

func NewParser() (*Parser, error) {
	q, err := broadcastTagQuery()
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{parser: p, query: q}, nil
}

// ParseError is a localized parse failure. It never aborts the run; the
// pipeline records it and moves on to the next file.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// ParseFile extracts bridgeable functions, structs, enums, alias bindings and
// doc comments from one file. Unrelated top-level items are skipped silently.
func (p *Parser) ParseFile(file *models.SourceFile) (*models.ParsedFile, error) {
	src := file.Content
	tree, err := p.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &ParseError{File: file.RelPath, Line: 1, Reason: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, reason := firstSyntaxError(root)
		return nil, &ParseError{File: file.RelPath, Line: line, Reason: reason}
	}

	parsed := &models.ParsedFile{
		File:    file,
		Aliases: map[string]string{},
	}

	var docs []string
	var attrs []string

	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "line_comment":
			if text, ok := lineDoc(nodeText(n, src)); ok {
				docs = append(docs, text)
			} else {
				docs, attrs = nil, nil
			}
		case "block_comment":
			if lines, ok := blockDoc(nodeText(n, src)); ok {
				docs = append(docs, lines...)
			} else {
				docs, attrs = nil, nil
			}
		case "attribute_item":
			attrs = append(attrs, nodeText(n, src))
		case "use_declaration":
			p.collectAliases(n, src, parsed.Aliases)
			docs, attrs = nil, nil
		case "function_item":
			if hasCommandMarker(attrs) {
				parsed.Functions = append(parsed.Functions, p.parseFunction(n, src, docs))
			}
			docs, attrs = nil, nil
		case "struct_item":
			parsed.Types = append(parsed.Types, p.parseStruct(n, src, docs, attrs))
			docs, attrs = nil, nil
		case "enum_item":
			parsed.Types = append(parsed.Types, p.parseEnum(n, src, docs, attrs))
			docs, attrs = nil, nil
		default:
			docs, attrs = nil, nil
		}
	}

	return parsed, nil
}

func nodeText(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

func firstSyntaxError(root *sitter.Node) (int, string) {
	var find func(n *sitter.Node) *sitter.Node
	find = func(n *sitter.Node) *sitter.Node {
		if n.IsError() || n.IsMissing() {
			return n
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if found := find(n.Child(i)); found != nil {
				return found
			}
		}
		return nil
	}

	if n := find(root); n != nil {
		reason := "invalid syntax"
		if n.IsMissing() {
			reason = fmt.Sprintf("missing %s", n.Type())
		}
		return int(n.StartPoint().Row) + 1, reason
	}
	return 1, "invalid syntax"
}

// lineDoc returns the cleaned text of a "///" doc line. Plain "//" comments
// reset accumulation, so the second return distinguishes the two.
func lineDoc(text string) (string, bool) {
	if strings.HasPrefix(text, "///") {
		return strings.TrimSpace(strings.TrimPrefix(text, "///")), true
	}
	return "", false
}

// blockDoc cleans a "/** ... */" block into its lines, stripping the leading
// asterisk decoration.
func blockDoc(text string) ([]string, bool) {
	if !strings.HasPrefix(text, "/**") {
		return nil, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	var lines []string
	for _, line := range strings.Split(inner, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, true
}

// hasCommandMarker reports whether the attribute list carries the explicit
// bridge marker: #[tauri::command] or #[command], with or without arguments.
// Marker detection is never done by name or shape heuristics.
func hasCommandMarker(attrs []string) bool {
	for _, a := range attrs {
		path := attributePath(a)
		if path == "command" || path == "tauri::command" {
			return true
		}
	}
	return false
}

// attributePath extracts the macro path of "#[path(...)]".
func attributePath(attr string) string {
	s := strings.TrimSuffix(strings.TrimPrefix(attr, "#["), "]")
	if i := strings.IndexAny(s, "( ="); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// deriveList extracts the derived trait paths of a #[derive(...)] attribute.
func deriveList(attr string) []string {
	if attributePath(attr) != "derive" {
		return nil
	}
	open := strings.Index(attr, "(")
	close := strings.LastIndex(attr, ")")
	if open < 0 || close < open {
		return nil
	}
	var out []string
	for _, part := range strings.Split(attr[open+1:close], ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// hasDerive reports whether any derive attribute names the trait, matching
// on the last path segment so serde::Serialize also counts.
func hasDerive(attrs []string, trait string) bool {
	for _, a := range attrs {
		for _, d := range deriveList(a) {
			segs := strings.Split(d, "::")
			if segs[len(segs)-1] == trait {
				return true
			}
		}
	}
	return false
}

func (p *Parser) collectAliases(n *sitter.Node, src []byte, aliases map[string]string) {
	if arg := n.ChildByFieldName("argument"); arg != nil {
		collectUseTree(arg, src, "", aliases)
	}
}

// collectUseTree walks a use clause, recording alias -> canonical path for
// every bound name. "use a::B" binds B to a::B; "use a::B as C" binds C.
func collectUseTree(n *sitter.Node, src []byte, prefix string, aliases map[string]string) {
	switch n.Type() {
	case "identifier", "scoped_identifier":
		full := joinPath(prefix, collapsePath(nodeText(n, src)))
		segs := strings.Split(full, "::")
		aliases[segs[len(segs)-1]] = full
	case "use_as_clause":
		path := n.ChildByFieldName("path")
		alias := n.ChildByFieldName("alias")
		if path != nil && alias != nil {
			full := joinPath(prefix, collapsePath(nodeText(path, src)))
			aliases[nodeText(alias, src)] = full
		}
	case "scoped_use_list":
		newPrefix := prefix
		if path := n.ChildByFieldName("path"); path != nil {
			newPrefix = joinPath(prefix, collapsePath(nodeText(path, src)))
		}
		if list := n.ChildByFieldName("list"); list != nil {
			collectUseTree(list, src, newPrefix, aliases)
		}
	case "use_list":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			collectUseTree(n.NamedChild(i), src, prefix, aliases)
		}
	case "use_wildcard":
		// glob imports carry no binding we can resolve
	}
}

func joinPath(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return prefix + "::" + path
}

// collapsePath strips whitespace a formatter may have inserted around "::".
func collapsePath(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

func (p *Parser) parseFunction(n *sitter.Node, src []byte, docs []string) *models.ParsedFunction {
	fn := &models.ParsedFunction{
		Doc:  strings.Join(docs, "\n"),
		Line: int(n.StartPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = nodeText(name, src)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "function_modifiers" && strings.Contains(nodeText(c, src), "async") {
			fn.Async = true
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			if param.Type() != "parameter" {
				continue
			}
			pat := param.ChildByFieldName("pattern")
			ty := param.ChildByFieldName("type")
			if pat == nil || ty == nil {
				continue
			}
			fn.Params = append(fn.Params, models.ParsedParam{
				Name: nodeText(pat, src),
				Type: typeExpr(ty, src),
			})
		}
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Return = typeExpr(ret, src)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Broadcasts = p.collectBroadcasts(body, src)
	}
	return fn
}

func (p *Parser) parseStruct(n *sitter.Node, src []byte, docs, attrs []string) *models.ParsedTypeDecl {
	decl := &models.ParsedTypeDecl{
		Doc:            strings.Join(docs, "\n"),
		Kind:           models.DeclStruct,
		Serializable:   hasDerive(attrs, "Serialize"),
		Deserializable: hasDerive(attrs, "Deserialize"),
		Line:           int(n.StartPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		decl.Name = nodeText(name, src)
	}
	if body := n.ChildByFieldName("body"); body != nil && body.Type() == "field_declaration_list" {
		decl.Fields = parseFieldList(body, src)
	}
	return decl
}

func parseFieldList(body *sitter.Node, src []byte) []models.ParsedField {
	var fields []models.ParsedField
	var docs []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "line_comment":
			if text, ok := lineDoc(nodeText(c, src)); ok {
				docs = append(docs, text)
			} else {
				docs = nil
			}
		case "block_comment":
			if lines, ok := blockDoc(nodeText(c, src)); ok {
				docs = append(docs, lines...)
			} else {
				docs = nil
			}
		case "attribute_item":
			// field attributes (e.g. serde renames) are not modeled
		case "field_declaration":
			name := c.ChildByFieldName("name")
			ty := c.ChildByFieldName("type")
			if name != nil && ty != nil {
				fields = append(fields, models.ParsedField{
					Name: nodeText(name, src),
					Doc:  strings.Join(docs, "\n"),
					Type: typeExpr(ty, src),
				})
			}
			docs = nil
		default:
			docs = nil
		}
	}
	return fields
}

func (p *Parser) parseEnum(n *sitter.Node, src []byte, docs, attrs []string) *models.ParsedTypeDecl {
	decl := &models.ParsedTypeDecl{
		Doc:            strings.Join(docs, "\n"),
		Kind:           models.DeclEnum,
		Serializable:   hasDerive(attrs, "Serialize"),
		Deserializable: hasDerive(attrs, "Deserialize"),
		Line:           int(n.StartPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		decl.Name = nodeText(name, src)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return decl
	}
	var variantDocs []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "line_comment":
			if text, ok := lineDoc(nodeText(c, src)); ok {
				variantDocs = append(variantDocs, text)
			} else {
				variantDocs = nil
			}
		case "block_comment":
			if lines, ok := blockDoc(nodeText(c, src)); ok {
				variantDocs = append(variantDocs, lines...)
			} else {
				variantDocs = nil
			}
		case "attribute_item":
		case "enum_variant":
			decl.Variants = append(decl.Variants, parseVariant(c, src, variantDocs))
			variantDocs = nil
		default:
			variantDocs = nil
		}
	}
	return decl
}

func parseVariant(n *sitter.Node, src []byte, docs []string) models.ParsedVariant {
	v := models.ParsedVariant{
		Doc:  strings.Join(docs, "\n"),
		Kind: models.VariantUnit,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		v.Name = nodeText(name, src)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return v
	}
	switch body.Type() {
	case "ordered_field_declaration_list":
		v.Kind = models.VariantTuple
		for i := 0; i < int(body.NamedChildCount()); i++ {
			c := body.NamedChild(i)
			if isTypeNode(c) {
				v.Tuple = append(v.Tuple, typeExpr(c, src))
			}
		}
	case "field_declaration_list":
		v.Kind = models.VariantStruct
		v.Fields = parseFieldList(body, src)
	}
	return v
}

func isTypeNode(n *sitter.Node) bool {
	switch n.Type() {
	case "type_identifier", "primitive_type", "scoped_type_identifier",
		"generic_type", "reference_type", "tuple_type", "unit_type", "array_type":
		return true
	}
	return false
}

// typeExpr converts a tree-sitter type node into the resolver's input form.
func typeExpr(n *sitter.Node, src []byte) *models.TypeExpr {
	raw := nodeText(n, src)
	switch n.Type() {
	case "reference_type":
		inner := n.ChildByFieldName("type")
		if inner == nil {
			return &models.TypeExpr{Raw: raw}
		}
		e := typeExpr(inner, src)
		e.Ref = true
		e.Raw = raw
		return e
	case "type_identifier", "primitive_type":
		return &models.TypeExpr{Path: raw, Raw: raw}
	case "scoped_type_identifier", "scoped_identifier":
		return &models.TypeExpr{Path: collapsePath(raw), Raw: raw}
	case "generic_type":
		e := &models.TypeExpr{Raw: raw}
		if base := n.ChildByFieldName("type"); base != nil {
			e.Path = collapsePath(nodeText(base, src))
		}
		if args := n.ChildByFieldName("type_arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				c := args.NamedChild(i)
				if isTypeNode(c) {
					e.Args = append(e.Args, typeExpr(c, src))
				}
			}
		}
		return e
	case "unit_type":
		return &models.TypeExpr{Unit: true, Raw: raw}
	case "tuple_type":
		e := &models.TypeExpr{Raw: raw}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if isTypeNode(c) {
				e.Tuple = append(e.Tuple, typeExpr(c, src))
			}
		}
		return e
	default:
		// arrays, trait objects, fn pointers: carried as unsupported
		return &models.TypeExpr{Raw: raw}
	}
}

// collectBroadcasts runs the call-site query over one function body and
// records every emit / emit_to call routed through a plain identifier.
func (p *Parser) collectBroadcasts(body *sitter.Node, src []byte) []models.RawBroadcast {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(p.query, body)

	var sites []models.RawBroadcast
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}

		var receiver, method, args *sitter.Node
		for _, c := range match.Captures {
			switch p.query.CaptureNameForId(c.Index) {
			case "receiver":
				receiver = c.Node
			case "method":
				method = c.Node
			case "args":
				args = c.Node
			}
		}
		if receiver == nil || method == nil || args == nil {
			continue
		}

		name := nodeText(method, src)
		if name != "emit" && name != "emit_to" {
			continue
		}

		var argNodes []*sitter.Node
		for i := 0; i < int(args.NamedChildCount()); i++ {
			argNodes = append(argNodes, args.NamedChild(i))
		}

		site := models.RawBroadcast{
			Method:   name,
			Receiver: nodeText(receiver, src),
			Line:     int(method.StartPoint().Row) + 1,
		}

		var nameArg, payloadArg *sitter.Node
		if name == "emit" {
			if len(argNodes) > 0 {
				nameArg = argNodes[0]
			}
			if len(argNodes) > 1 {
				payloadArg = argNodes[1]
			}
		} else {
			if len(argNodes) > 0 {
				site.WindowLit, site.WindowStatic = stringLit(argNodes[0], src)
			}
			if len(argNodes) > 1 {
				nameArg = argNodes[1]
			}
			if len(argNodes) > 2 {
				payloadArg = argNodes[2]
			}
		}

		if nameArg != nil {
			site.NameLit, site.NameStatic = stringLit(nameArg, src)
		}
		site.Payload, site.PayloadText = classifyPayload(payloadArg, src)
		sites = append(sites, site)
	}
	return sites
}

func stringLit(n *sitter.Node, src []byte) (string, bool) {
	if n.Type() != "string_literal" {
		return "", false
	}
	text := nodeText(n, src)
	return strings.Trim(text, `"`), true
}

func classifyPayload(n *sitter.Node, src []byte) (models.RawPayloadKind, string) {
	if n == nil {
		return models.PayloadNone, ""
	}
	switch n.Type() {
	case "reference_expression":
		if inner := n.ChildByFieldName("value"); inner != nil {
			return classifyPayload(inner, src)
		}
		return models.PayloadOther, nodeText(n, src)
	case "identifier":
		return models.PayloadIdent, nodeText(n, src)
	case "struct_expression":
		if name := n.ChildByFieldName("name"); name != nil {
			segs := strings.Split(collapsePath(nodeText(name, src)), "::")
			return models.PayloadStructLit, segs[len(segs)-1]
		}
		return models.PayloadOther, nodeText(n, src)
	case "string_literal", "raw_string_literal":
		return models.PayloadStrLit, ""
	case "integer_literal", "float_literal":
		return models.PayloadNumLit, ""
	case "boolean_literal":
		return models.PayloadBoolLit, ""
	default:
		return models.PayloadOther, nodeText(n, src)
	}
}
