package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mulderive/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios through the expansion driver.

Each scenario is expanded twice against a fresh in-memory cache; the second
run must come from the cache unchanged. When ../golden/<name>.golden exists
next to the scenarios directory, the generated file must match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  mulderive test ./testdata/scenarios
  mulderive test ./testdata/scenarios --filter "scalar_*"
  mulderive test ./testdata/scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	for _, file := range files {
		sr := runScenario(ctx, file, opts)
		if opts.Format != "json" {
			printScenario(cmd, sr)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles returns the YAML files under dir whose base name
// (without extension) matches filter, in lexical order.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func runScenario(ctx context.Context, file string, opts *TestOptions) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(ctx, scenario)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	sr := ScenarioResult{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
	goldenPath := goldenFilePath(file, scenario.Name)

	if opts.Update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to create golden directory: %v", err))
			return sr
		}
		if err := os.WriteFile(goldenPath, []byte(result.Output), 0644); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to write golden file: %v", err))
		}
		return sr
	}

	golden, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		// Assertions only.
	case err != nil:
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
	case string(golden) != result.Output:
		sr.Pass = false
		sr.Errors = append(sr.Errors, "output does not match golden file (run with --update to regenerate)")
	}
	return sr
}

// goldenFilePath places golden files in a golden/ directory beside the
// scenario's directory: testdata/scenarios/x.yaml -> testdata/golden/<name>.golden.
func goldenFilePath(scenarioFile, name string) string {
	parent := filepath.Dir(filepath.Dir(scenarioFile))
	return filepath.Join(parent, "golden", name+".golden")
}

func printScenario(cmd *cobra.Command, sr ScenarioResult) {
	w := cmd.OutOrStdout()
	if sr.Pass {
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
