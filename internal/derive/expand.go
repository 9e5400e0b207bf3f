package derive

import (
	"github.com/roach88/mulderive/internal/ir"
)

// Expand synthesizes the implementation of op for decl.
//
// Enums, unions, unit structs and structs without fields fail with a
// *ShapeError naming the operator; nothing else is checked.
func Expand(decl *ir.TypeDecl, op ir.Operator) (*ir.ImplFragment, error) {
	if decl.Kind != ir.KindStruct {
		return nil, &ShapeError{Operator: op.Name, Decl: decl.Name, Reason: decl.Kind.String(), Pos: decl.Pos}
	}
	fields := decl.Fields()
	if len(fields) == 0 {
		return nil, &ShapeError{Operator: op.Name, Decl: decl.Name, Reason: "no fields", Pos: decl.Pos}
	}

	generics, scalar := Synthesize(decl.Name, decl.Generics, fields, op)

	method := op.MethodName()
	body, err := BuildBody(decl.Name, decl.Layout, method)
	if err != nil {
		if shapeErr, ok := err.(*ShapeError); ok {
			shapeErr.Operator = op.Name
			shapeErr.Pos = decl.Pos
		}
		return nil, err
	}

	selfType := decl.SelfType()
	trait := ir.PathTokens(op.TraitPath)
	trait = append(trait, "<", scalar, ">")

	return &ir.ImplFragment{
		Decl:     decl.Name,
		Operator: op.Name,
		Generics: generics,
		Trait:    ir.Type{Tokens: trait},
		SelfType: selfType,
		Output:   selfType,
		Scalar:   scalar,
		Method: ir.Method{
			Name:     method,
			Receiver: "self",
			Params:   []ir.Param{{Name: RHS, Type: ir.NewType(scalar)}},
			Result:   selfType,
			Body:     body,
		},
	}, nil
}
