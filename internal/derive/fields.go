package derive

import (
	"strconv"

	"github.com/roach88/mulderive/internal/ir"
)

// RHS is the name of the scalar operand parameter.
const RHS = "rhs"

// BuildBody returns the field-wise method body for a record layout:
// `T(self.0.m(rhs), ...)` for positional fields and
// `T { f: self.f.m(rhs), ... }` for named fields, in declaration order.
//
// Any other layout (nil for unit structs, enums and unions) or a layout
// without fields is rejected with a *ShapeError.
func BuildBody(typeName string, layout ir.Layout, method string) (ir.Ctor, error) {
	switch l := layout.(type) {
	case ir.Positional:
		if len(l) == 0 {
			break
		}
		return ir.Ctor{Type: typeName, Fields: applyEach(l, method, func(i int, _ ir.Field) string {
			return strconv.Itoa(i)
		})}, nil

	case ir.Named:
		if len(l) == 0 {
			break
		}
		fields := applyEach(l, method, func(_ int, f ir.Field) string {
			return f.Name
		})
		for i := range fields {
			fields[i].Name = l[i].Name
		}
		return ir.Ctor{Type: typeName, Named: true, Fields: fields}, nil
	}
	return ir.Ctor{}, &ShapeError{Decl: typeName, Reason: "no fields"}
}

// applyEach emits `self.<member>.<method>(rhs)` for every field.
func applyEach(fields []ir.Field, method string, member func(int, ir.Field) string) []ir.FieldInit {
	out := make([]ir.FieldInit, len(fields))
	for i, f := range fields {
		out[i] = ir.FieldInit{Value: ir.MethodCall{
			Receiver: ir.SelfField{Member: member(i, f)},
			Method:   method,
			Args:     []ir.Expr{ir.Ident(RHS)},
		}}
	}
	return out
}
