package ir

import "strings"

// Operator identifies a scalar-shaped operator trait.
type Operator struct {
	// Name is the human-readable trait name, e.g. "Mul".
	Name string
	// TraitPath is the fully-qualified trait, e.g. "::std::ops::Mul".
	TraitPath string
	// CopyPath is the marker trait required of a reused scalar operand.
	CopyPath string
}

// MethodName is the trait method, the lowercased operator name.
func (o Operator) MethodName() string {
	return strings.ToLower(o.Name)
}
