package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/mulderive/internal/derive"
	"github.com/roach88/mulderive/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrRecordNameEmpty     = "E101" // name is required
	ErrDuplicateField      = "E102" // duplicate field name
	ErrDuplicateGeneric    = "E103" // duplicate generic parameter
	ErrRecordNoFields      = "E104" // at least one field required
	ErrRecordNotStruct     = "E105" // only structs can derive operators
	ErrUnknownDeriveTarget = "E106" // derive names an unsupported operator
	ErrInvalidIdentifier   = "E107" // name is not a Rust identifier
)

// rustIdentifier matches plain and raw (r#) Rust identifiers. A lone
// underscore is rejected separately.
var rustIdentifier = regexp.MustCompile(`^(r#)?[A-Za-z_][A-Za-z0-9_]*$`)

func isRustIdentifier(name string) bool {
	return rustIdentifier.MatchString(name) && strings.TrimPrefix(name, "r#") != "_"
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a declaration before expansion.
// Returns all errors found (does not fail-fast).
//
// Shape problems (E104, E105) are reported only when the record derives at
// least one operator; a plain enum is not an error by itself.
func Validate(decl *ir.TypeDecl) []ValidationError {
	var errs []ValidationError
	line := decl.Pos.Line

	// E101: name is required
	if strings.TrimSpace(decl.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "record name is required and must be non-empty",
			Code:    ErrRecordNameEmpty,
			Line:    line,
		})
	} else if !isRustIdentifier(decl.Name) {
		// E107: the name is spliced into `impl ... for Name`
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("record name %q is not a Rust identifier", decl.Name),
			Code:    ErrInvalidIdentifier,
			Line:    line,
		})
	}

	// E102: duplicate field names
	seenFields := make(map[string]bool)
	for i, f := range decl.Fields() {
		if f.Name == "" {
			continue
		}
		if !isRustIdentifier(f.Name) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("fields[%d].name", i),
				Message: fmt.Sprintf("field name %q is not a Rust identifier", f.Name),
				Code:    ErrInvalidIdentifier,
				Line:    line,
			})
		}
		if seenFields[f.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("fields[%d].name", i),
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateField,
				Line:    line,
			})
		}
		seenFields[f.Name] = true
	}

	// E103: duplicate generic parameters
	seenParams := make(map[string]bool)
	for i, p := range decl.Generics.Params {
		if seenParams[p.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("generics[%d]", i),
				Message: fmt.Sprintf("duplicate generic parameter: %q", p.Name),
				Code:    ErrDuplicateGeneric,
				Line:    line,
			})
		}
		seenParams[p.Name] = true
	}

	// E106: unknown derive operators
	derivesOperator := false
	for i, name := range decl.Derives {
		if derive.IsOperator(name) {
			derivesOperator = true
			continue
		}
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("derive[%d]", i),
			Message: fmt.Sprintf("unknown operator %q (supported: %s)", name, strings.Join(derive.OperatorNames(), ", ")),
			Code:    ErrUnknownDeriveTarget,
			Line:    line,
		})
	}

	if !derivesOperator {
		return errs
	}

	// E105 / E104: shape
	if decl.Kind != ir.KindStruct {
		errs = append(errs, ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("%s %q cannot derive operators; only structs are supported", decl.Kind, decl.Name),
			Code:    ErrRecordNotStruct,
			Line:    line,
		})
	} else if len(decl.Fields()) == 0 {
		errs = append(errs, ValidationError{
			Field:   "fields",
			Message: fmt.Sprintf("struct %q has no fields", decl.Name),
			Code:    ErrRecordNoFields,
			Line:    line,
		})
	}

	return errs
}
