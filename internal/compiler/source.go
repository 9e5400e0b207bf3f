package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/roach88/mulderive/internal/derive"
	"github.com/roach88/mulderive/internal/ir"
	"github.com/roach88/mulderive/internal/syntax"
)

// SourceExts lists the file extensions LoadSource understands.
var SourceExts = []string{".rs", ".cue", ".yaml", ".yml"}

// IsSource reports whether path has a supported extension.
func IsSource(path string) bool {
	return slices.Contains(SourceExts, filepath.Ext(path))
}

// LoadSource parses one source file, choosing the front end by extension.
//
// Rust declarations are kept only when they derive at least one supported
// operator, and their derive lists are narrowed to those operators: other
// derives belong to other macros. CUE and YAML records are kept as written.
func LoadSource(ctx context.Context, file string, data []byte) ([]*ir.TypeDecl, error) {
	switch filepath.Ext(file) {
	case ".rs":
		parsed, err := syntax.ParseSource(ctx, file, data)
		if err != nil {
			return nil, err
		}
		var decls []*ir.TypeDecl
		for i := range parsed {
			decl := &parsed[i]
			decl.Derives = slices.DeleteFunc(decl.Derives, func(name string) bool {
				return !derive.IsOperator(name)
			})
			if len(decl.Derives) > 0 {
				decls = append(decls, decl)
			}
		}
		return decls, nil
	case ".cue":
		return CompileCUE(ctx, file, data)
	case ".yaml", ".yml":
		return CompileYAML(ctx, file, data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", file)
	}
}
