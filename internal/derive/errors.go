package derive

import (
	"errors"
	"fmt"

	"github.com/roach88/mulderive/internal/ir"
)

// ErrUnsupportedShape is matched (via errors.Is) by every ShapeError.
var ErrUnsupportedShape = errors.New("unsupported shape")

// ErrUnknownOperator is returned by LookupOperator for names outside the
// mul-like family.
var ErrUnknownOperator = errors.New("unknown operator")

// ShapeError reports a declaration that is not a struct with at least one
// positional or named field.
type ShapeError struct {
	Operator string
	Decl     string
	Reason   string
	Pos      ir.Position
}

func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("derive(%s): only structs with at least one field are supported", e.Operator)
	if e.Decl != "" {
		msg = fmt.Sprintf("derive(%s) on %s: only structs with at least one field are supported", e.Operator, e.Decl)
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Pos.IsValid() {
		msg = e.Pos.String() + ": " + msg
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrUnsupportedShape) match.
func (e *ShapeError) Unwrap() error {
	return ErrUnsupportedShape
}
