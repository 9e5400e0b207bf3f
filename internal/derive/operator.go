package derive

import (
	"fmt"
	"slices"

	"github.com/roach88/mulderive/internal/ir"
)

// Flavor selects the crate operator traits are emitted from.
type Flavor int

const (
	// FlavorStd emits ::std::ops and ::std::marker paths.
	FlavorStd Flavor = iota
	// FlavorCore emits ::core::ops and ::core::marker paths for no_std crates.
	FlavorCore
)

func (f Flavor) crate() string {
	if f == FlavorCore {
		return "core"
	}
	return "std"
}

// mulLike lists the operators sharing the scalar shape. Each is emitted
// exactly like Mul; only the trait and method names differ.
var mulLike = []string{"Mul", "Div", "Rem", "Shl", "Shr"}

// OperatorNames returns the supported operator names in a stable order.
func OperatorNames() []string {
	return slices.Clone(mulLike)
}

// IsOperator reports whether name is a supported operator.
func IsOperator(name string) bool {
	return slices.Contains(mulLike, name)
}

// LookupOperator builds the descriptor for a supported operator name.
func LookupOperator(name string, flavor Flavor) (ir.Operator, error) {
	if !IsOperator(name) {
		return ir.Operator{}, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownOperator, name, mulLike)
	}
	crate := flavor.crate()
	return ir.Operator{
		Name:      name,
		TraitPath: fmt.Sprintf("::%s::ops::%s", crate, name),
		CopyPath:  fmt.Sprintf("::%s::marker::Copy", crate),
	}, nil
}
