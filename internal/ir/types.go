package ir

import "fmt"

// DeclKind is the syntactic kind of a type declaration.
type DeclKind int

const (
	KindStruct DeclKind = iota
	KindEnum
	KindUnion
)

func (k DeclKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// ParseDeclKind maps "struct", "enum" and "union" to a DeclKind.
// The empty string means struct.
func ParseDeclKind(s string) (DeclKind, bool) {
	switch s {
	case "", "struct":
		return KindStruct, true
	case "enum":
		return KindEnum, true
	case "union":
		return KindUnion, true
	default:
		return KindStruct, false
	}
}

// ParamKind distinguishes lifetime, type and const generic parameters.
type ParamKind int

const (
	ParamLifetime ParamKind = iota
	ParamType
	ParamConst
)

func (k ParamKind) String() string {
	switch k {
	case ParamLifetime:
		return "lifetime"
	case ParamType:
		return "type"
	case ParamConst:
		return "const"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// GenericParam is one declared generic parameter.
type GenericParam struct {
	Kind ParamKind
	// Name includes the leading quote for lifetimes ("'a").
	Name    string
	Bounds  []Type
	Default *Type
	// ConstType is the value type of a const parameter.
	ConstType Type
}

// Predicate is a where-clause entry: `Bounded: B1 + B2`.
type Predicate struct {
	Bounded Type
	Bounds  []Type
}

// Generics holds declared parameters and where predicates.
type Generics struct {
	Params []GenericParam
	Where  []Predicate
}

// Clone returns a deep copy so callers may append without aliasing.
func (g Generics) Clone() Generics {
	var out Generics
	for _, p := range g.Params {
		p.Bounds = append([]Type(nil), p.Bounds...)
		out.Params = append(out.Params, p)
	}
	for _, w := range g.Where {
		w.Bounds = append([]Type(nil), w.Bounds...)
		out.Where = append(out.Where, w)
	}
	return out
}

// Ordered returns parameters with lifetimes first, otherwise in declaration
// order.
func (g Generics) Ordered() []GenericParam {
	out := make([]GenericParam, 0, len(g.Params))
	for _, p := range g.Params {
		if p.Kind == ParamLifetime {
			out = append(out, p)
		}
	}
	for _, p := range g.Params {
		if p.Kind != ParamLifetime {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the declared parameter names.
func (g Generics) Names() []string {
	names := make([]string, len(g.Params))
	for i, p := range g.Params {
		names[i] = p.Name
	}
	return names
}

// TypeArgs returns the tokens that apply the parameters to a type, e.g.
// ["<", "'a", ",", "T", ">"]. Empty when there are no parameters.
func (g Generics) TypeArgs() []string {
	params := g.Ordered()
	if len(params) == 0 {
		return nil
	}
	tokens := []string{"<"}
	for i, p := range params {
		if i > 0 {
			tokens = append(tokens, ",")
		}
		tokens = append(tokens, p.Name)
	}
	return append(tokens, ">")
}

// Field is one member of a record. Name is empty for positional fields.
type Field struct {
	Name string
	Type Type
}

// Layout is the field layout of a record: exactly Positional or Named.
type Layout interface {
	Fields() []Field
	layout()
}

// Positional is a tuple-struct layout; fields are addressed by index.
type Positional []Field

func (p Positional) Fields() []Field { return p }
func (Positional) layout()            {}

// Named is a braced-struct layout; fields are addressed by name.
type Named []Field

func (n Named) Fields() []Field { return n }
func (Named) layout()            {}

// Position locates a declaration in its source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// TypeDecl is a parsed type declaration handed to the derive core.
type TypeDecl struct {
	Name     string
	Kind     DeclKind
	Generics Generics
	// Layout is nil for unit structs, empty structs, enums and unions.
	Layout Layout
	// Derives lists the operator names requested for this declaration.
	Derives []string
	Pos     Position
}

// Fields returns the declared fields, or nil when there is no layout.
func (d *TypeDecl) Fields() []Field {
	if d.Layout == nil {
		return nil
	}
	return d.Layout.Fields()
}

// SelfType is the declaration applied to its own generic parameters, e.g.
// `Point<'a, T>`.
func (d *TypeDecl) SelfType() Type {
	return NewType(append([]string{d.Name}, d.Generics.TypeArgs()...)...)
}
