package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/mulderive/internal/compiler"
	"github.com/roach88/mulderive/internal/ir"
	"github.com/roach88/mulderive/internal/syntax"
)

// LoadMode controls how errors are handled during source loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the declarations found in the given paths.
type LoadResult struct {
	Decls     []*ir.TypeDecl
	FileCount int
}

// LoadError represents an error that occurred during source loading.
type LoadError struct {
	Code    string
	Message string
	Pos     ir.Position
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No source files found
	ErrCodeParseFailed = "E004" // Rust/CUE/YAML parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeCacheFailed = "E006" // Expansion cache error
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeTestFailed  = "E008" // Conformance scenario failed
)

// LoadSources loads declarations from files and directories, in argument
// order. Directories are walked in lexical order. See compiler.LoadSource
// for how each file is read.
func LoadSources(ctx context.Context, paths []string, mode LoadMode) (*LoadResult, []error) {
	files, err := findSourceFiles(paths)
	if err != nil {
		return nil, []error{err}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no source files found in %s", strings.Join(paths, ", "))}}
	}

	result := &LoadResult{FileCount: len(files)}
	var errs []error
	for _, file := range files {
		decls, err := loadFile(ctx, file)
		if err != nil {
			errs = append(errs, convertLoadError(err, file))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Decls = append(result.Decls, decls...)
	}
	return result, errs
}

func loadFile(ctx context.Context, file string) ([]*ir.TypeDecl, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return compiler.LoadSource(ctx, file, data)
}

// findSourceFiles expands directories into their source files.
func findSourceFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
		}

		if !info.IsDir() {
			if !compiler.IsSource(path) {
				return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("unsupported file type: %s (want %s)", path, strings.Join(compiler.SourceExts, ", "))}
			}
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && compiler.IsSource(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
	}
	return files, nil
}

// convertLoadError converts a front-end error to a LoadError with position info.
func convertLoadError(err error, file string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeParseFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	var syntaxErr *syntax.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &LoadError{
			Code:    ErrCodeParseFailed,
			Message: syntaxErr.Message,
			Pos:     syntaxErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", file, err),
	}
}
