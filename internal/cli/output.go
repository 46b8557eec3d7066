package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for fvaqc commands.
const (
	ExitSuccess      = 0 // all checks or scenarios passed
	ExitFailure      = 1 // QC failure or scenario failure
	ExitCommandError = 2 // the command could not run
)

// Error codes carried in CLIError.Code.
const (
	CodeQCFailed    = "E_QC_FAILED"
	CodeNeedsReview = "E_NEEDS_REVIEW"
	CodeTestFailed  = "E_TEST_FAILED"
)

// ExitError carries the process exit code out of a command's RunE.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or a JSON envelope.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string      `json:"status"`           // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`   // command payload, kept on failure
	Error  *CLIError   `json:"error,omitempty"`  // set when Status is "error"
	RunID  string      `json:"run_id,omitempty"` // set when exactly one run was produced
}

// CLIError describes why a command did not succeed.
type CLIError struct {
	Code    string      `json:"code"`              // E_* code or a pipeline ErrorKind
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // per-jurisdiction context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a failure in the configured format. Details are printed in
// text mode only when verbose.
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
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Summary writes an indented JSON envelope for a QC or scenario summary.
// A non-nil failure sets the status to "error"; data is written either way.
func (f *OutputFormatter) Summary(data interface{}, runID string, failure *CLIError) error {
	response := CLIResponse{Status: "ok", Data: data, RunID: runID}
	if failure != nil {
		response.Status = "error"
		response.Error = failure
	}
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
