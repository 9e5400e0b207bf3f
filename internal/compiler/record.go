package compiler

import (
	"context"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/mulderive/internal/ir"
)

// CompileRecord parses a CUE value into a TypeDecl.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the record struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`record: Point: { fields: [{name: "x", type: "f32"}], derive: ["Mul"] }`)
//	decl, err := CompileRecord(context.Background(), v.LookupPath(cue.ParsePath("record.Point")))
func CompileRecord(ctx context.Context, v cue.Value) (*ir.TypeDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	raw := &rawRecord{pos: cuePosition(v.Pos())}

	// Record name comes from the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		raw.Name = labels[len(labels)-1].String()
	}

	var err error
	if raw.Kind, err = optionalString(v, "kind"); err != nil {
		return nil, err
	}
	if raw.Generics, err = stringList(v, "generics"); err != nil {
		return nil, err
	}
	if raw.Where, err = stringList(v, "where"); err != nil {
		return nil, err
	}
	if raw.Derive, err = stringList(v, "derive"); err != nil {
		return nil, err
	}
	if err := parseFields(v, raw); err != nil {
		return nil, err
	}

	return buildDecl(ctx, raw)
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// stringList reads an optional list of strings.
func stringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("entries must be strings: %v", err),
				Pos:     cuePosition(iter.Value().Pos()),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// parseFields reads `fields: [{name?: string, type: string}, ...]`.
func parseFields(v cue.Value, raw *rawRecord) error {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil // unit records are loaded and rejected later
	}

	iter, err := fieldsVal.List()
	if err != nil {
		return formatCUEError(err)
	}

	for i := 0; iter.Next(); i++ {
		fv := iter.Value()
		pos := cuePosition(fv.Pos())

		typeVal := fv.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return &CompileError{
				Field:   fmt.Sprintf("fields[%d].type", i),
				Message: "field type is required",
				Pos:     pos,
			}
		}
		typ, err := typeVal.String()
		if err != nil {
			return formatCUEError(err)
		}

		name, err := optionalString(fv, "name")
		if err != nil {
			return err
		}

		raw.Fields = append(raw.Fields, rawField{Name: name, Type: typ})
		raw.fieldPos = append(raw.fieldPos, pos)
	}
	return nil
}

// CompileCUE compiles every `record: <Name>: {...}` entry of a CUE file, in
// declaration order.
func CompileCUE(ctx context.Context, file string, data []byte) ([]*ir.TypeDecl, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(file))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	recordsVal := v.LookupPath(cue.ParsePath("record"))
	if !recordsVal.Exists() {
		return nil, nil
	}
	iter, err := recordsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []*ir.TypeDecl
	for iter.Next() {
		decl, err := CompileRecord(ctx, iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}
