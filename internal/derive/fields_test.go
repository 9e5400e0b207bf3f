package derive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mulderive/internal/ir"
)

func field(name, typ string) ir.Field {
	return ir.Field{Name: name, Type: ir.NewType(typ)}
}

func TestBuildBodyPositional(t *testing.T) {
	for n := 1; n <= 4; n++ {
		layout := make(ir.Positional, n)
		for i := range layout {
			layout[i] = field("", "f32")
		}

		body, err := BuildBody("Record", layout, "mul")
		require.NoError(t, err)

		assert.Equal(t, "Record", body.Type)
		assert.False(t, body.Named)
		require.Len(t, body.Fields, n)
		for i, f := range body.Fields {
			assert.Empty(t, f.Name)
			call, ok := f.Value.(ir.MethodCall)
			require.True(t, ok)
			assert.Equal(t, ir.SelfField{Member: string(rune('0' + i))}, call.Receiver)
			assert.Equal(t, "mul", call.Method)
			assert.Equal(t, []ir.Expr{ir.Ident("rhs")}, call.Args)
		}
	}
}

func TestBuildBodyNamedKeepsDeclarationOrder(t *testing.T) {
	layout := ir.Named{field("z", "f32"), field("a", "f64"), field("m", "i32")}

	body, err := BuildBody("Record", layout, "div")
	require.NoError(t, err)

	assert.True(t, body.Named)
	require.Len(t, body.Fields, 3)
	for i, name := range []string{"z", "a", "m"} {
		assert.Equal(t, name, body.Fields[i].Name)
		call := body.Fields[i].Value.(ir.MethodCall)
		assert.Equal(t, ir.SelfField{Member: name}, call.Receiver)
		assert.Equal(t, "div", call.Method)
	}
}

func TestBuildBodyRejectsOtherShapes(t *testing.T) {
	tests := []struct {
		name   string
		layout ir.Layout
	}{
		{"nil layout", nil},
		{"empty positional", ir.Positional{}},
		{"empty named", ir.Named{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildBody("Record", tt.layout, "mul")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedShape))
		})
	}
}
