package models

// SourceFile is one scanned backend source file. Immutable once scanned.
type SourceFile struct {
	RelPath  string   // relative to the scan root, forward slashes
	Segments []string // directory segments between the root and the file
	Name     string   // base name without extension
	Content  []byte
}

// TypeExpr is the parser's structural view of a Rust type expression.
// The resolver consumes it together with the file's alias table.
type TypeExpr struct {
	Ref   bool   // had one level of reference/borrow syntax
	Path  string // "String", "Vec", "tauri::State", "tauri::ipc::Response"
	Args  []*TypeExpr
	Tuple []*TypeExpr // tuple element types; only when Path is empty
	Unit  bool        // the () type
	Raw   string      // source text, kept for diagnostics
}

// TypeKind tags the variants of TypeDescriptor.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindOptional
	KindResult
	KindList
	KindMap
	KindTuple
	KindNamed
	KindOpaque
	KindUnsupported
)

// TypeDescriptor is the normalized form of a backend type.
//
// Result values never survive resolution: the error arm is dropped and the
// success arm is returned alone, since failures surface through the call's
// rejection channel. KindResult exists so the variant set is closed over
// everything the resolver can build internally.
type TypeDescriptor struct {
	Kind  TypeKind
	Name  string            // primitive name ("string", "number", ...) or named-type name
	Known bool              // KindNamed: declared somewhere in the scanned tree
	Elem  *TypeDescriptor   // KindOptional / KindList / KindResult success arm
	Err   *TypeDescriptor   // KindResult error arm
	Key   *TypeDescriptor   // KindMap
	Value *TypeDescriptor   // KindMap
	Elems []*TypeDescriptor // KindTuple
	Raw   string            // KindUnsupported: the original expression text
}

func Primitive(name string) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindPrimitive, Name: name}
}

func Void() *TypeDescriptor { return Primitive("void") }

func Named(name string) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindNamed, Name: name}
}

func Opaque() *TypeDescriptor { return &TypeDescriptor{Kind: KindOpaque} }

func Unsupported(raw string) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindUnsupported, Raw: raw}
}

// Equal reports structural equality of two descriptors.
func (d *TypeDescriptor) Equal(o *TypeDescriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.Name != o.Name || d.Raw != o.Raw {
		return false
	}
	if !d.Elem.Equal(o.Elem) || !d.Err.Equal(o.Err) || !d.Key.Equal(o.Key) || !d.Value.Equal(o.Value) {
		return false
	}
	if len(d.Elems) != len(o.Elems) {
		return false
	}
	for i := range d.Elems {
		if !d.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// Parameter is one caller-visible command parameter. Parameters whose
// canonical path is in the injected-handle exclusion set never appear here.
type Parameter struct {
	Name          string
	Type          *TypeDescriptor
	Ref           bool
	CanonicalPath string // alias-resolved path used for exclusion testing
}

// CommandFunction is one bridgeable backend function.
type CommandFunction struct {
	Name   string // backend name, snake_case
	Doc    string
	Params []Parameter
	Return *TypeDescriptor
	Module string // wrapper name of the declaring module
	Async  bool
}

// DeclKind distinguishes struct and enum declarations.
type DeclKind int

const (
	DeclStruct DeclKind = iota
	DeclEnum
)

type Field struct {
	Name string
	Doc  string
	Type *TypeDescriptor
}

// VariantKind mirrors the three Rust enum variant shapes.
type VariantKind int

const (
	VariantUnit VariantKind = iota
	VariantTuple
	VariantStruct
)

type Variant struct {
	Name   string
	Doc    string
	Kind   VariantKind
	Tuple  []*TypeDescriptor // VariantTuple
	Fields []Field           // VariantStruct
}

// TypeDeclaration is one exportable struct or enum.
type TypeDeclaration struct {
	Name           string
	Doc            string
	Kind           DeclKind
	Fields         []Field
	Variants       []Variant
	Module         string // wrapper name of the declaring module
	Serializable   bool   // derives Serialize
	Deserializable bool   // derives Deserialize
}

// Exportable reports whether the declaration belongs in the types index.
func (t *TypeDeclaration) Exportable() bool {
	return t.Serializable || t.Deserializable
}

// EventScope is the broadcast audience: a single window or the whole app.
type EventScope struct {
	Window string // empty means global
}

func GlobalScope() EventScope            { return EventScope{} }
func WindowScope(name string) EventScope { return EventScope{Window: name} }

func (s EventScope) Global() bool { return s.Window == "" }

// EventSite is one deduplicated broadcast discovery.
type EventSite struct {
	Name    string // literal event name
	Key     string // distinct key; differs from Name only on payload collisions
	Payload *TypeDescriptor
	Scope   EventScope
	File    string // first file the site was discovered in
}

// ModuleNode mirrors one directory or file of the input tree. File nodes are
// leaves and own declarations; directory nodes only have children.
type ModuleNode struct {
	Segment  string // directory name, or the wrapper name for file nodes
	Children []*ModuleNode
	Commands []*CommandFunction
	Types    []*TypeDeclaration
	Source   *SourceFile // nil for directory nodes
}

func (n *ModuleNode) IsFile() bool { return n.Source != nil }

// Walk visits file nodes depth-first in child order, carrying the directory
// segments accumulated above each node.
func (n *ModuleNode) Walk(fn func(segments []string, node *ModuleNode)) {
	n.walk(nil, fn)
}

func (n *ModuleNode) walk(segments []string, fn func([]string, *ModuleNode)) {
	for _, c := range n.Children {
		if c.IsFile() {
			fn(segments, c)
			continue
		}
		c.walk(append(segments, c.Segment), fn)
	}
}

// Model is the complete semantic model of one run.
type Model struct {
	Root   *ModuleNode
	Types  []*TypeDeclaration // flattened, scan order then declaration order
	Events []*EventSite       // deduplicated, discovery order
	Report *Report
}

// WindowNames returns the distinct window scopes in discovery order.
func (m *Model) WindowNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, e := range m.Events {
		if e.Scope.Global() || seen[e.Scope.Window] {
			continue
		}
		seen[e.Scope.Window] = true
		names = append(names, e.Scope.Window)
	}
	return names
}

// GlobalEvents returns the global-scope sites in discovery order.
func (m *Model) GlobalEvents() []*EventSite {
	var out []*EventSite
	for _, e := range m.Events {
		if e.Scope.Global() {
			out = append(out, e)
		}
	}
	return out
}

// WindowEvents returns the sites scoped to one window in discovery order.
func (m *Model) WindowEvents(window string) []*EventSite {
	var out []*EventSite
	for _, e := range m.Events {
		if e.Scope.Window == window {
			out = append(out, e)
		}
	}
	return out
}
