package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mulderive/internal/compiler"
	"github.com/roach88/mulderive/internal/derive"
	"github.com/roach88/mulderive/internal/driver"
	"github.com/roach88/mulderive/internal/render"
	"github.com/roach88/mulderive/internal/store"
)

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	*RootOptions
	Operators []string // restrict to these operators
	Core      bool     // emit ::core paths
	CachePath string   // expansion cache database
	Output    string   // output file path
	Jobs      int      // concurrent expansions
}

// ExpandedFragment is one entry of the JSON output.
type ExpandedFragment struct {
	Decl     string `json:"decl"`
	Operator string `json:"operator"`
	Key      string `json:"key"`
	Cached   bool   `json:"cached"`
	Rendered string `json:"rendered"`
}

// ExpansionResult is the JSON payload of a successful expand.
type ExpansionResult struct {
	Fragments []ExpandedFragment      `json:"fragments"`
	Summary   driver.Summary          `json:"summary"`
	Warnings  []compiler.CycleWarning `json:"warnings,omitempty"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand <path>...",
		Short: "Generate operator impls for derived records",
		Long: `Generate scalar operator implementations (Mul, Div, Rem, Shl, Shr).

Reads Rust sources (.rs) and record declarations (.cue, .yaml), expands every
supported derive and prints the impl blocks as Rust source. Directories are
searched recursively.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Operators, "op", nil, "only expand these operators (repeatable)")
	cmd.Flags().BoolVar(&opts.Core, "core", false, "emit ::core paths for no_std crates")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "expansion cache database (disabled when empty)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", driver.DefaultLimit, "concurrent expansions")

	return cmd
}

func runExpand(ctx context.Context, opts *ExpandOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	for _, name := range opts.Operators {
		if !derive.IsOperator(name) {
			return outputCommandError(formatter, compiler.ErrUnknownDeriveTarget,
				fmt.Sprintf("unknown operator %q", name))
		}
	}

	loadResult, loadErrors := LoadSources(ctx, paths, LoadModeCollectAll)
	if len(loadErrors) > 0 {
		return outputLoadErrors(formatter, loadErrors)
	}
	formatter.VerboseLog("Found %d declaration(s) in %d file(s)", len(loadResult.Decls), loadResult.FileCount)

	if issues := schemaIssues(ValidateDecls(loadResult.Decls, formatter)); len(issues) > 0 {
		return outputValidationErrors(formatter, ValidationResult{Records: len(loadResult.Decls), Errors: issues})
	}

	flavor := derive.FlavorStd
	if opts.Core {
		flavor = derive.FlavorCore
	}
	reqs, err := driver.BuildRequests(loadResult.Decls, opts.Operators, flavor)
	if err != nil {
		return outputFailure(formatter, compiler.ErrUnknownDeriveTarget, err.Error(), nil)
	}

	driverOpts := []driver.Option{
		driver.WithLimit(opts.Jobs),
		driver.WithLogger(newLogger(formatter)),
	}
	if opts.CachePath != "" {
		cache, err := store.Open(opts.CachePath)
		if err != nil {
			return outputCommandError(formatter, ErrCodeCacheFailed, err.Error())
		}
		defer cache.Close()
		driverOpts = append(driverOpts, driver.WithCache(cache))
	}

	results, summary, err := driver.New(driverOpts...).Run(ctx, reqs)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCacheFailed, err.Error())
	}

	if failures := failedResults(results); len(failures) > 0 {
		return outputFailure(formatter, failures[0].Code, failures[0].Message, failures)
	}

	warnings := compiler.AnalyzeCycles(loadResult.Decls)
	for _, w := range warnings {
		formatter.Warn(w.Message)
	}

	var text bytes.Buffer
	rendered := make([]string, len(results))
	fragments := make([]ExpandedFragment, len(results))
	for i, r := range results {
		rendered[i] = r.Rendered
		fragments[i] = ExpandedFragment{Decl: r.Decl, Operator: r.Operator, Key: r.Key, Cached: r.Cached, Rendered: r.Rendered}
	}
	if err := render.Join(&text, rendered); err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, text.Bytes(), 0o644); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		formatter.VerboseLog("Wrote %d impl(s) to %s", len(results), opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(ExpansionResult{Fragments: fragments, Summary: summary, Warnings: warnings})
	}
	if opts.Output == "" {
		_, err := formatter.Writer.Write(text.Bytes())
		return err
	}
	fmt.Fprintf(formatter.Writer, "✓ Expanded %d impl(s) (%d cached)\n", len(results), summary.Hits)
	return nil
}

// schemaIssues drops shape issues (E104, E105). The driver reports those per
// operator with the failing derive named.
func schemaIssues(issues []RecordIssue) []RecordIssue {
	return slices.DeleteFunc(issues, func(issue RecordIssue) bool {
		return issue.Code == compiler.ErrRecordNoFields || issue.Code == compiler.ErrRecordNotStruct
	})
}

// failedResults converts per-request errors to CLI errors.
func failedResults(results []driver.Result) []CLIError {
	var out []CLIError
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		code := ErrCodeGeneric
		var shapeErr *derive.ShapeError
		if errors.As(r.Err, &shapeErr) {
			code = compiler.ErrRecordNotStruct
			if shapeErr.Reason == "no fields" {
				code = compiler.ErrRecordNoFields
			}
		}
		out = append(out, CLIError{Code: code, Message: r.Err.Error()})
	}
	return out
}

// newLogger routes driver logs to the diagnostic writer in verbose mode and
// drops them otherwise.
func newLogger(f *OutputFormatter) *slog.Logger {
	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f.GetErrWriter(), &slog.HandlerOptions{Level: level}))
}
