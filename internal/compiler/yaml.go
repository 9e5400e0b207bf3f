package compiler

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mulderive/internal/ir"
)

// yamlDocument is the top level of a YAML declaration file.
type yamlDocument struct {
	Records []yaml.Node `yaml:"records"`
}

// CompileYAML parses every record of a YAML declaration file:
//
//	records:
//	  - name: Vec2
//	    fields: [{type: f32}, {type: f32}]
//	    derive: [Mul]
func CompileYAML(ctx context.Context, file string, data []byte) ([]*ir.TypeDecl, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error(), Pos: ir.Position{File: file}}
	}

	decls := make([]*ir.TypeDecl, 0, len(doc.Records))
	for i := range doc.Records {
		node := &doc.Records[i]
		raw := &rawRecord{pos: ir.Position{File: file, Line: node.Line, Column: node.Column}}
		if err := node.Decode(raw); err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("records[%d]", i),
				Message: err.Error(),
				Pos:     raw.pos,
			}
		}
		raw.fieldPos = yamlFieldPositions(file, node)

		decl, err := buildDecl(ctx, raw)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// yamlFieldPositions finds the position of each entry of `fields`.
func yamlFieldPositions(file string, record *yaml.Node) []ir.Position {
	if record.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(record.Content); i += 2 {
		key, val := record.Content[i], record.Content[i+1]
		if key.Value != "fields" || val.Kind != yaml.SequenceNode {
			continue
		}
		out := make([]ir.Position, len(val.Content))
		for j, item := range val.Content {
			out[j] = ir.Position{File: file, Line: item.Line, Column: item.Column}
		}
		return out
	}
	return nil
}
