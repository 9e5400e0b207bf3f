package derive

import (
	"strconv"

	"github.com/roach88/mulderive/internal/ir"
)

// ScalarIdent is the reserved name of the synthesized scalar parameter.
const ScalarIdent = "__rhs_T"

// DistinctTypes returns the field types with structural duplicates removed,
// in first-occurrence order.
func DistinctTypes(fields []ir.Field) []ir.Type {
	seen := make(map[string]bool, len(fields))
	var out []ir.Type
	for _, f := range fields {
		key := f.Type.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f.Type)
	}
	return out
}

// FreshScalar returns ScalarIdent, or ScalarIdent followed by the smallest
// positive counter, such that the name collides with neither the record's
// own name nor any generic parameter or identifier used in a field type or
// where predicate.
func FreshScalar(typeName string, generics ir.Generics, fields []ir.Field) string {
	taken := map[string]bool{typeName: true}
	for _, p := range generics.Params {
		taken[p.Name] = true
		for _, b := range p.Bounds {
			markIdents(taken, b)
		}
	}
	for _, w := range generics.Where {
		markIdents(taken, w.Bounded)
		for _, b := range w.Bounds {
			markIdents(taken, b)
		}
	}
	for _, f := range fields {
		markIdents(taken, f.Type)
	}

	name := ScalarIdent
	for n := 1; taken[name]; n++ {
		name = ScalarIdent + strconv.Itoa(n)
	}
	return name
}

func markIdents(taken map[string]bool, t ir.Type) {
	for _, id := range t.Idents() {
		taken[id] = true
	}
}

// Synthesize augments generics for an operator implementation. It appends
// a fresh scalar type parameter and, for every distinct field type T, the
// predicate `T: Op<Scalar, Output = T>`. When there is more than one field
// the scalar is used once per field, so it is also bound by Copy.
//
// The input generics are not modified; original parameters and predicates
// keep their order and come first.
func Synthesize(typeName string, generics ir.Generics, fields []ir.Field, op ir.Operator) (ir.Generics, string) {
	scalar := FreshScalar(typeName, generics, fields)
	out := generics.Clone()

	param := ir.GenericParam{Kind: ir.ParamType, Name: scalar}
	if len(fields) > 1 {
		param.Bounds = []ir.Type{ir.PathType(op.CopyPath)}
	}
	out.Params = append(out.Params, param)

	for _, t := range DistinctTypes(fields) {
		out.Where = append(out.Where, ir.Predicate{
			Bounded: t,
			Bounds:  []ir.Type{operatorBound(op, scalar, t)},
		})
	}
	return out, scalar
}

// operatorBound builds `Op<Scalar, Output = T>`.
func operatorBound(op ir.Operator, scalar string, output ir.Type) ir.Type {
	tokens := ir.PathTokens(op.TraitPath)
	tokens = append(tokens, "<", scalar, ",", "Output", "=")
	tokens = append(tokens, output.Tokens...)
	tokens = append(tokens, ">")
	return ir.Type{Tokens: tokens}
}
