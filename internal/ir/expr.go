package ir

// Expr is a synthesized Rust expression.
type Expr interface {
	expr()
}

// Ident is a bare identifier such as `rhs`.
type Ident string

func (Ident) expr() {}

// SelfField is `self.<Member>`; Member is an index for positional fields.
type SelfField struct {
	Member string
}

func (SelfField) expr() {}

// MethodCall is `<Receiver>.<Method>(<Args>...)`.
type MethodCall struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

func (MethodCall) expr() {}

// FieldInit initializes one constructor field. Name is empty for
// positional constructors.
type FieldInit struct {
	Name  string
	Value Expr
}

// Ctor constructs a record: `T(a, b)` or `T { x: a, y: b }`.
type Ctor struct {
	Type   string
	Named  bool
	Fields []FieldInit
}

func (Ctor) expr() {}
