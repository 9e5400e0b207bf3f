package compiler

import (
	"context"
	"fmt"

	"github.com/roach88/mulderive/internal/ir"
	"github.com/roach88/mulderive/internal/syntax"
)

// rawRecord is a record declaration as written in CUE or YAML, before its
// Rust fragments are parsed.
//
//	name: Point
//	kind: struct            # struct | enum | union, default struct
//	generics: ["'a", "T: Copy"]
//	where: ["T: Default"]
//	fields:
//	  - {name: x, type: T}
//	  - {name: y, type: T}
//	derive: [Mul, Div]
//
// Fields without names form a positional (tuple) layout.
type rawRecord struct {
	Name     string     `yaml:"name"`
	Kind     string     `yaml:"kind"`
	Generics []string   `yaml:"generics"`
	Where    []string   `yaml:"where"`
	Fields   []rawField `yaml:"fields"`
	Derive   []string   `yaml:"derive"`

	pos ir.Position
	// fieldPos holds per-field positions when the source provides them.
	fieldPos []ir.Position
}

type rawField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func (r *rawRecord) posOfField(i int) ir.Position {
	if i < len(r.fieldPos) && r.fieldPos[i].IsValid() {
		return r.fieldPos[i]
	}
	return r.pos
}

// buildDecl parses every Rust fragment of a raw record and assembles the
// declaration.
func buildDecl(ctx context.Context, r *rawRecord) (*ir.TypeDecl, error) {
	if r.Name == "" {
		return nil, &CompileError{Field: "name", Message: "record name is required", Pos: r.pos}
	}

	kind, ok := ir.ParseDeclKind(r.Kind)
	if !ok {
		return nil, &CompileError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown kind %q: must be struct, enum or union", r.Kind),
			Pos:     r.pos,
		}
	}

	decl := &ir.TypeDecl{
		Name:    r.Name,
		Kind:    kind,
		Derives: r.Derive,
		Pos:     r.pos,
	}

	for i, text := range r.Generics {
		params, err := syntax.ParseParams(ctx, text)
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("generics[%d]", i), Message: err.Error(), Pos: r.pos}
		}
		if len(params) != 1 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("generics[%d]", i),
				Message: fmt.Sprintf("expected one generic parameter, got %d in %q", len(params), text),
				Pos:     r.pos,
			}
		}
		decl.Generics.Params = append(decl.Generics.Params, params[0])
	}

	for i, text := range r.Where {
		preds, err := syntax.ParsePredicates(ctx, text)
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("where[%d]", i), Message: err.Error(), Pos: r.pos}
		}
		decl.Generics.Where = append(decl.Generics.Where, preds...)
	}

	if kind == ir.KindEnum && len(r.Fields) > 0 {
		return nil, &CompileError{Field: "fields", Message: "enum records cannot declare fields", Pos: r.pos}
	}

	layout, err := buildLayout(ctx, r)
	if err != nil {
		return nil, err
	}
	decl.Layout = layout
	return decl, nil
}

func buildLayout(ctx context.Context, r *rawRecord) (ir.Layout, error) {
	if len(r.Fields) == 0 {
		return nil, nil
	}

	named := 0
	fields := make([]ir.Field, len(r.Fields))
	for i, f := range r.Fields {
		t, err := syntax.ParseType(ctx, f.Type)
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("fields[%d].type", i),
				Message: err.Error(),
				Pos:     r.posOfField(i),
			}
		}
		fields[i] = ir.Field{Name: f.Name, Type: t}
		if f.Name != "" {
			named++
		}
	}

	switch named {
	case 0:
		return ir.Positional(fields), nil
	case len(fields):
		return ir.Named(fields), nil
	default:
		return nil, &CompileError{
			Field:   "fields",
			Message: "record mixes named and positional fields",
			Pos:     r.pos,
		}
	}
}
