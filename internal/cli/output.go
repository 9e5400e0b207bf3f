package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation or expansion failure (unsupported shape, unknown operator, etc.)
	ExitCommandError = 2 // Command error (invalid paths, parse errors, cache not writable, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// Warn reports a non-fatal diagnostic. Text mode writes it to the
// diagnostic writer; JSON output carries warnings in its payload instead.
func (f *OutputFormatter) Warn(message string) {
	if f.Format == "json" {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), "warning: %s\n", message)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// outputCommandError outputs a single command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputFailure outputs a validation or expansion failure (exit code 1).
func outputFailure(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message))
}

// outputLoadErrors outputs every load error. Load errors are command-level
// errors (exit code 2).
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		cliErrors[i] = toCLIError(err)
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		for _, e := range cliErrors {
			fmt.Fprintf(formatter.Writer, "Error [%s]: %s\n", e.Code, e.Message)
		}
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
}

func toCLIError(err error) CLIError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Pos.IsValid() {
			msg = loadErr.Pos.String() + ": " + msg
		}
		return CLIError{Code: loadErr.Code, Message: msg}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}
