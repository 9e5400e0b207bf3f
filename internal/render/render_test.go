package render

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mulderive/internal/derive"
	"github.com/roach88/mulderive/internal/ir"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func expand(t *testing.T, decl *ir.TypeDecl, name string, flavor derive.Flavor) *ir.ImplFragment {
	t.Helper()
	op, err := derive.LookupOperator(name, flavor)
	require.NoError(t, err)
	frag, err := derive.Expand(decl, op)
	require.NoError(t, err)
	return frag
}

func f(name, typ string) ir.Field {
	return ir.Field{Name: name, Type: ir.NewType(typ)}
}

func TestFragmentGolden(t *testing.T) {
	tests := []struct {
		name   string
		decl   *ir.TypeDecl
		op     string
		flavor derive.Flavor
	}{
		{
			name: "positional_two_fields",
			decl: &ir.TypeDecl{Name: "Record", Layout: ir.Positional{f("", "f32"), f("", "f32")}},
			op:   "Mul",
		},
		{
			name: "named_two_fields",
			decl: &ir.TypeDecl{Name: "Record", Layout: ir.Named{f("x", "f32"), f("y", "f32")}},
			op:   "Mul",
		},
		{
			name: "single_field",
			decl: &ir.TypeDecl{Name: "Record", Layout: ir.Positional{f("", "f64")}},
			op:   "Mul",
		},
		{
			name: "generic_named",
			decl: &ir.TypeDecl{
				Name: "Pair",
				Generics: ir.Generics{
					Params: []ir.GenericParam{
						{Kind: ir.ParamType, Name: "T", Bounds: []ir.Type{ir.NewType("Clone")}},
						{Kind: ir.ParamLifetime, Name: "'a"},
					},
					Where: []ir.Predicate{{Bounded: ir.NewType("T"), Bounds: []ir.Type{ir.NewType("Default")}}},
				},
				Layout: ir.Named{
					f("value", "T"),
					f("scale", "T"),
					{Name: "tag", Type: ir.NewType("&", "'a", "str")},
				},
			},
			op: "Mul",
		},
		{
			name: "const_generic_core",
			decl: &ir.TypeDecl{
				Name: "Grid",
				Generics: ir.Generics{Params: []ir.GenericParam{
					{Kind: ir.ParamConst, Name: "N", ConstType: ir.NewType("usize")},
				}},
				Layout: ir.Named{{Name: "cells", Type: ir.NewType("[", "f32", ";", "N", "]")}},
			},
			op:     "Shr",
			flavor: derive.FlavorCore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag := expand(t, tt.decl, tt.op, tt.flavor)
			newGoldie(t).Assert(t, tt.name, []byte(Fragment(frag)))
		})
	}
}

func TestFileGolden(t *testing.T) {
	meters := &ir.TypeDecl{Name: "Meters", Layout: ir.Positional{f("", "f64")}}
	frags := []*ir.ImplFragment{
		expand(t, meters, "Mul", derive.FlavorStd),
		expand(t, meters, "Div", derive.FlavorStd),
	}

	var buf bytes.Buffer
	require.NoError(t, File(&buf, frags))
	newGoldie(t).Assert(t, "file_two_fragments", buf.Bytes())
}

func TestJoinMatchesFile(t *testing.T) {
	meters := &ir.TypeDecl{Name: "Meters", Layout: ir.Positional{f("", "f64")}}
	frags := []*ir.ImplFragment{
		expand(t, meters, "Mul", derive.FlavorStd),
		expand(t, meters, "Div", derive.FlavorStd),
	}

	var fromFile, fromJoin bytes.Buffer
	require.NoError(t, File(&fromFile, frags))
	require.NoError(t, Join(&fromJoin, []string{Fragment(frags[0]), Fragment(frags[1])}))
	assert.Equal(t, fromFile.String(), fromJoin.String())
}

func TestJoinEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Join(&buf, nil))
	assert.Equal(t, Header, buf.String())
}

func TestImplGenerics(t *testing.T) {
	assert.Equal(t, "", ImplGenerics(ir.Generics{}))

	def := ir.NewType("f32")
	g := ir.Generics{Params: []ir.GenericParam{
		{Kind: ir.ParamType, Name: "T", Default: &def},
		{Kind: ir.ParamLifetime, Name: "'b", Bounds: []ir.Type{ir.NewType("'a")}},
		{Kind: ir.ParamLifetime, Name: "'a"},
	}}
	assert.Equal(t, "<'b: 'a, 'a, T>", ImplGenerics(g))
}

func TestPredicate(t *testing.T) {
	p := ir.Predicate{
		Bounded: ir.NewType("Vec", "<", "T", ">"),
		Bounds:  []ir.Type{ir.NewType("Clone"), ir.NewType("Send")},
	}
	assert.Equal(t, "Vec<T>: Clone + Send", Predicate(p))
}

func TestExprNamedAndPositional(t *testing.T) {
	call := ir.MethodCall{Receiver: ir.SelfField{Member: "0"}, Method: "rem", Args: []ir.Expr{ir.Ident("rhs")}}
	assert.Equal(t, "self.0.rem(rhs)", Expr(call))
	assert.Equal(t, "T(self.0.rem(rhs))", Expr(ir.Ctor{Type: "T", Fields: []ir.FieldInit{{Value: call}}}))
	assert.Equal(t, "T { a: self.0.rem(rhs) }", Expr(ir.Ctor{Type: "T", Named: true, Fields: []ir.FieldInit{{Name: "a", Value: call}}}))
}
