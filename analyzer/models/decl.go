package models

// Raw declarations as the parser leaves them: types are still TypeExpr trees
// and event call sites are unresolved. The resolver and event detector consume
// these; nothing downstream re-reads source text.

type ParsedParam struct {
	Name string
	Type *TypeExpr
}

// RawPayloadKind classifies the payload expression of a broadcast call.
type RawPayloadKind int

const (
	PayloadNone RawPayloadKind = iota
	PayloadIdent
	PayloadStructLit
	PayloadStrLit
	PayloadNumLit
	PayloadBoolLit
	PayloadOther
)

// RawBroadcast is one emit/emit_to call site captured inside a command body.
type RawBroadcast struct {
	Method       string // "emit" or "emit_to"
	Receiver     string // identifier the call is routed through
	WindowLit    string // emit_to only: window label literal
	WindowStatic bool   // emit_to only: label was a string literal
	NameLit      string
	NameStatic   bool // event name was a string literal
	Payload      RawPayloadKind
	PayloadText  string // identifier or type name, depending on kind
	Line         int
}

// ParsedFunction is a bridgeable function before type resolution.
type ParsedFunction struct {
	Name       string
	Doc        string
	Async      bool
	Params     []ParsedParam
	Return     *TypeExpr // nil for no return type
	Broadcasts []RawBroadcast
	Line       int
}

type ParsedField struct {
	Name string
	Doc  string
	Type *TypeExpr
}

type ParsedVariant struct {
	Name   string
	Doc    string
	Kind   VariantKind
	Tuple  []*TypeExpr
	Fields []ParsedField
}

// ParsedTypeDecl is a struct or enum declaration before type resolution.
type ParsedTypeDecl struct {
	Name           string
	Doc            string
	Kind           DeclKind
	Fields         []ParsedField
	Variants       []ParsedVariant
	Serializable   bool
	Deserializable bool
	Line           int
}

// ParsedFile is the ordered declaration set of one source file.
type ParsedFile struct {
	File      *SourceFile
	Aliases   map[string]string // alias -> canonical path, from use bindings
	Functions []*ParsedFunction
	Types     []*ParsedTypeDecl
}
