package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mulderive/internal/compiler"
	"github.com/roach88/mulderive/internal/ir"
)

// RecordIssue is a validation error tied to the record it was found in.
type RecordIssue struct {
	Record string `json:"record"`
	File   string `json:"file,omitempty"`
	compiler.ValidationError
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                    `json:"valid"`
	Records  int                     `json:"records"`
	Errors   []RecordIssue           `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check records without generating code",
		Long: `Check record declarations without generating code.

Performs parsing, schema validation and shape checks for every derived
operator, and reports record cycles as warnings. Faster than expand for
development feedback.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(ctx context.Context, opts *RootOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadSources(ctx, paths, LoadModeCollectAll)
	if len(loadErrors) > 0 {
		return outputLoadErrors(formatter, loadErrors)
	}
	formatter.VerboseLog("Found %d file(s)", loadResult.FileCount)

	issues := ValidateDecls(loadResult.Decls, formatter)
	result := ValidationResult{
		Valid:    len(issues) == 0,
		Records:  len(loadResult.Decls),
		Errors:   issues,
		Warnings: compiler.AnalyzeCycles(loadResult.Decls),
	}
	for _, w := range result.Warnings {
		formatter.Warn(w.Message)
	}

	if len(issues) > 0 {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateDecls runs schema validation on every declaration.
// Returns all errors found (does not fail-fast).
func ValidateDecls(decls []*ir.TypeDecl, formatter *OutputFormatter) []RecordIssue {
	var issues []RecordIssue
	for _, decl := range decls {
		if formatter != nil {
			formatter.VerboseLog("Validating record: %s", decl.Name)
		}
		for _, verr := range compiler.Validate(decl) {
			issues = append(issues, RecordIssue{Record: decl.Name, File: decl.Pos.File, ValidationError: verr})
		}
	}
	return issues
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d record(s) valid\n", result.Records)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		switch {
		case err.File != "" && err.Line > 0:
			fmt.Fprintf(formatter.Writer, "%s:%d (%s)\n", err.File, err.Line, err.Record)
		case err.Record != "":
			fmt.Fprintf(formatter.Writer, "%s\n", err.Record)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
