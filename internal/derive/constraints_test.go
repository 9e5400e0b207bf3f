package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mulderive/internal/ir"
)

func mustOp(t *testing.T, name string) ir.Operator {
	t.Helper()
	op, err := LookupOperator(name, FlavorStd)
	require.NoError(t, err)
	return op
}

func TestDistinctTypesFirstOccurrence(t *testing.T) {
	fields := []ir.Field{
		field("a", "f64"),
		field("b", "f32"),
		field("c", "f64"),
		{Name: "d", Type: ir.NewType("Vec", "<", "f32", ">")},
		{Name: "e", Type: ir.NewType("Vec", "<", "f32", ">")},
	}

	types := DistinctTypes(fields)
	require.Len(t, types, 3)
	assert.Equal(t, "f64", types[0].String())
	assert.Equal(t, "f32", types[1].String())
	assert.Equal(t, "Vec<f32>", types[2].String())
}

func TestSynthesizeDeduplicatesBounds(t *testing.T) {
	fields := []ir.Field{field("x", "f32"), field("y", "f32")}

	g, scalar := Synthesize("Rec", ir.Generics{}, fields, mustOp(t, "Mul"))

	assert.Equal(t, ScalarIdent, scalar)
	require.Len(t, g.Where, 1)
	assert.Equal(t, "f32", g.Where[0].Bounded.String())
	require.Len(t, g.Where[0].Bounds, 1)
	assert.Equal(t, "::std::ops::Mul<__rhs_T, Output = f32>", g.Where[0].Bounds[0].String())
}

func TestSynthesizeCopyBoundOnlyForMultipleFields(t *testing.T) {
	op := mustOp(t, "Mul")

	one, scalar := Synthesize("Rec", ir.Generics{}, []ir.Field{field("", "f64")}, op)
	require.Len(t, one.Params, 1)
	assert.Equal(t, scalar, one.Params[0].Name)
	assert.Empty(t, one.Params[0].Bounds)

	two, _ := Synthesize("Rec", ir.Generics{}, []ir.Field{field("", "f64"), field("", "f64")}, op)
	require.Len(t, two.Params, 1)
	require.Len(t, two.Params[0].Bounds, 1)
	assert.Equal(t, "::std::marker::Copy", two.Params[0].Bounds[0].String())
}

func TestSynthesizeKeepsOriginalGenerics(t *testing.T) {
	original := ir.Generics{
		Params: []ir.GenericParam{{Kind: ir.ParamType, Name: "T", Bounds: []ir.Type{ir.NewType("Clone")}}},
		Where:  []ir.Predicate{{Bounded: ir.NewType("T"), Bounds: []ir.Type{ir.NewType("Default")}}},
	}
	fields := []ir.Field{field("a", "T"), field("b", "u8")}

	g, scalar := Synthesize("Rec", original, fields, mustOp(t, "Rem"))

	require.Len(t, g.Params, 2)
	assert.Equal(t, "T", g.Params[0].Name)
	assert.Equal(t, scalar, g.Params[1].Name)
	require.Len(t, g.Where, 3)
	assert.Equal(t, "T: Default", g.Where[0].Bounded.String()+": "+g.Where[0].Bounds[0].String())
	assert.Equal(t, "::std::ops::Rem<__rhs_T, Output = T>", g.Where[1].Bounds[0].String())
	assert.Equal(t, "::std::ops::Rem<__rhs_T, Output = u8>", g.Where[2].Bounds[0].String())

	// The caller's generics are untouched.
	assert.Len(t, original.Params, 1)
	assert.Len(t, original.Where, 1)
}

func TestFreshScalarAvoidsCollisions(t *testing.T) {
	assert.Equal(t, "__rhs_T", FreshScalar("Rec", ir.Generics{}, nil))

	g := ir.Generics{Params: []ir.GenericParam{
		{Kind: ir.ParamType, Name: "__rhs_T"},
		{Kind: ir.ParamType, Name: "__rhs_T1"},
	}}
	assert.Equal(t, "__rhs_T2", FreshScalar("Rec", g, nil))

	fields := []ir.Field{{Name: "x", Type: ir.NewType("Wrapper", "<", "__rhs_T", ">")}}
	assert.Equal(t, "__rhs_T1", FreshScalar("Rec", ir.Generics{}, fields))

	where := ir.Generics{Where: []ir.Predicate{{
		Bounded: ir.NewType("T"),
		Bounds:  []ir.Type{ir.NewType("From", "<", "__rhs_T", ">")},
	}}}
	assert.Equal(t, "__rhs_T1", FreshScalar("Rec", where, nil))

	// The record's own name is taken: the impl parameter would shadow Self.
	assert.Equal(t, "__rhs_T1", FreshScalar("__rhs_T", ir.Generics{}, nil))
	assert.Equal(t, "__rhs_T2", FreshScalar("__rhs_T1", ir.Generics{}, []ir.Field{field("", "__rhs_T")}))
}

func TestSynthesizeUsesFreshScalarEverywhere(t *testing.T) {
	g := ir.Generics{Params: []ir.GenericParam{{Kind: ir.ParamType, Name: "__rhs_T"}}}
	fields := []ir.Field{field("a", "__rhs_T"), field("b", "f32")}

	out, scalar := Synthesize("Rec", g, fields, mustOp(t, "Mul"))

	assert.Equal(t, "__rhs_T1", scalar)
	assert.Equal(t, "::std::ops::Mul<__rhs_T1, Output = __rhs_T>", out.Where[0].Bounds[0].String())
	assert.Equal(t, "::std::ops::Mul<__rhs_T1, Output = f32>", out.Where[1].Bounds[0].String())
}
