package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/mulderive/internal/ir"
)

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     ir.Position
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// cuePosition converts a CUE token position.
func cuePosition(p token.Pos) ir.Position {
	if !p.IsValid() {
		return ir.Position{}
	}
	return ir.Position{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors; report the first one.
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     cuePosition(positions[0]),
		}
	}

	return err
}
