package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mulderive/internal/ir"
)

func f32Field(name string) ir.Field {
	return ir.Field{Name: name, Type: ir.NewType("f32")}
}

func TestValidateValid(t *testing.T) {
	decl := &ir.TypeDecl{
		Name:    "Point",
		Layout:  ir.Named{f32Field("x"), f32Field("y")},
		Derives: []string{"Mul", "Div"},
	}

	errs := Validate(decl)
	assert.Empty(t, errs, "valid record should have no errors")
}

func TestValidateEmptyName(t *testing.T) {
	decl := &ir.TypeDecl{
		Name:    "  ",
		Layout:  ir.Positional{f32Field("")},
		Derives: []string{"Mul"},
	}

	errs := Validate(decl)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrRecordNameEmpty, errs[0].Code)
}

func TestValidateDuplicateField(t *testing.T) {
	decl := &ir.TypeDecl{
		Name:    "Point",
		Layout:  ir.Named{f32Field("x"), f32Field("x")},
		Derives: []string{"Mul"},
	}

	errs := Validate(decl)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateField, errs[0].Code)
	assert.Equal(t, "fields[1].name", errs[0].Field)
}

func TestValidateInvalidIdentifiers(t *testing.T) {
	decl := &ir.TypeDecl{
		Name:    "Point<T>",
		Layout:  ir.Named{f32Field("x"), f32Field("x"), f32Field("my field"), f32Field("_")},
		Derives: []string{"Mul"},
	}

	errs := Validate(decl)
	require.Len(t, errs, 4)
	assert.Equal(t, ErrInvalidIdentifier, errs[0].Code)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, ErrDuplicateField, errs[1].Code)
	assert.Equal(t, ErrInvalidIdentifier, errs[2].Code)
	assert.Equal(t, "fields[2].name", errs[2].Field)
	assert.Equal(t, ErrInvalidIdentifier, errs[3].Code)
	assert.Equal(t, "fields[3].name", errs[3].Field)
}

func TestValidateAcceptsRustIdentifiers(t *testing.T) {
	for _, name := range []string{"Point", "_Hidden", "__rhs_T", "V2", "r#type"} {
		decl := &ir.TypeDecl{
			Name:    name,
			Layout:  ir.Named{f32Field(name), f32Field("y_1")},
			Derives: []string{"Mul"},
		}
		assert.Empty(t, Validate(decl), name)
	}
}

func TestValidateDuplicateGeneric(t *testing.T) {
	decl := &ir.TypeDecl{
		Name: "Pair",
		Generics: ir.Generics{Params: []ir.GenericParam{
			{Kind: ir.ParamType, Name: "T"},
			{Kind: ir.ParamType, Name: "T"},
		}},
		Layout:  ir.Positional{{Type: ir.NewType("T")}},
		Derives: []string{"Mul"},
	}

	errs := Validate(decl)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateGeneric, errs[0].Code)
}

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name string
		decl *ir.TypeDecl
		code string
	}{
		{"unit struct", &ir.TypeDecl{Name: "Unit", Derives: []string{"Mul"}}, ErrRecordNoFields},
		{"empty named", &ir.TypeDecl{Name: "Empty", Layout: ir.Named{}, Derives: []string{"Shl"}}, ErrRecordNoFields},
		{"enum", &ir.TypeDecl{Name: "Color", Kind: ir.KindEnum, Derives: []string{"Mul"}}, ErrRecordNotStruct},
		{"union", &ir.TypeDecl{Name: "Bits", Kind: ir.KindUnion, Layout: ir.Named{f32Field("f")}, Derives: []string{"Div"}}, ErrRecordNotStruct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.decl)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
}

func TestValidateShapeIgnoredWithoutOperators(t *testing.T) {
	decl := &ir.TypeDecl{Name: "Color", Kind: ir.KindEnum}
	assert.Empty(t, Validate(decl))
}

func TestValidateUnknownOperator(t *testing.T) {
	decl := &ir.TypeDecl{
		Name:    "Meters",
		Layout:  ir.Positional{f32Field("")},
		Derives: []string{"Add", "Mul"},
	}

	errs := Validate(decl)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownDeriveTarget, errs[0].Code)
	assert.Equal(t, "derive[0]", errs[0].Field)
	assert.Contains(t, errs[0].Message, "Mul, Div, Rem, Shl, Shr")
}

func TestValidateCollectsAll(t *testing.T) {
	decl := &ir.TypeDecl{
		Name:    "",
		Layout:  ir.Named{f32Field("a"), f32Field("a")},
		Derives: []string{"Sub"},
	}

	errs := Validate(decl)
	require.Len(t, errs, 3)
	assert.Equal(t, ErrRecordNameEmpty, errs[0].Code)
	assert.Equal(t, ErrDuplicateField, errs[1].Code)
	assert.Equal(t, ErrUnknownDeriveTarget, errs[2].Code)
}

func TestValidationErrorString(t *testing.T) {
	err := ValidationError{Field: "fields", Message: "struct \"Unit\" has no fields", Code: ErrRecordNoFields, Line: 4}
	assert.Equal(t, `[E104] line 4: fields: struct "Unit" has no fields`, err.Error())

	err.Line = 0
	assert.Equal(t, `[E104] fields: struct "Unit" has no fields`, err.Error())
}
