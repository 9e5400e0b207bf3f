package testutil

import "github.com/roach88/mulderive/internal/ir"

// Positional builds a tuple struct with one field per type.
func Positional(name string, types ...string) *ir.TypeDecl {
	fields := make(ir.Positional, len(types))
	for i, t := range types {
		fields[i] = ir.Field{Type: ir.NewType(t)}
	}
	return &ir.TypeDecl{Name: name, Layout: fields}
}

// Named builds a struct from alternating field names and types:
//
//	Named("Point", "x", "f32", "y", "f32")
func Named(name string, pairs ...string) *ir.TypeDecl {
	if len(pairs)%2 != 0 {
		panic("testutil.Named: odd number of name/type arguments")
	}
	fields := make(ir.Named, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		fields = append(fields, ir.Field{Name: pairs[i], Type: ir.NewType(pairs[i+1])})
	}
	return &ir.TypeDecl{Name: name, Layout: fields}
}

// StdOperator returns the ::std descriptor for a mul-like operator name.
func StdOperator(name string) ir.Operator {
	return ir.Operator{
		Name:      name,
		TraitPath: "::std::ops::" + name,
		CopyPath:  "::std::marker::Copy",
	}
}
