package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// CLIResponse is the structured JSON output of every command run with --json.
//
// Schema:
//
//	{
//	  "success": true|false,
//	  "data": { ... },          // Command-specific payload
//	  "error": {                 // Present only on failure
//	    "code": "GENERATION_FAILED",
//	    "message": "Human-readable description"
//	  }
//	}
type CLIResponse struct {
	Success bool            `json:"success"`
	Data    any             `json:"data,omitempty"`
	Error   *CLIErrorDetail `json:"error,omitempty"`
}

// CLIErrorDetail contains machine-readable error code and human-readable message.
type CLIErrorDetail struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Failures []string `json:"failures,omitempty"`
}

// CLI exit codes.
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArguments = 3
	ExitValidationFailed = 4
)

// CLI error codes for structured JSON error responses.
const (
	ErrCodeInvalidArguments = "INVALID_ARGUMENTS"
	ErrCodeConfigError      = "CONFIG_ERROR"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// cliOut is where EmitCLISuccess and EmitCLIError write; tests swap it.
var cliOut io.Writer = os.Stdout

// EmitCLISuccess writes a successful CLIResponse as JSON to stdout.
func EmitCLISuccess(data any) {
	resp := CLIResponse{Success: true, Data: data}
	enc := json.NewEncoder(cliOut)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) //nolint:errcheck
}

// EmitCLIError writes an error CLIResponse as JSON to stdout.
// Returns the exit code for the caller to use with os.Exit.
func EmitCLIError(err error) int {
	resp := CLIResponse{
		Success: false,
		Error:   &CLIErrorDetail{Code: CLIErrorCodeForError(err), Message: err.Error()},
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		resp.Error.Message = fmt.Sprintf("schema %s failed with %d error(s)", genErr.Stage, len(genErr.Failures))
		resp.Error.Failures = genErr.Messages()
	}
	enc := json.NewEncoder(cliOut)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) //nolint:errcheck
	return CLIExitCodeForError(err)
}

// CLIExitCodeForError maps structured error types to CLI exit codes.
func CLIExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrGenerationFailed), errors.Is(err, ErrValidationFailed):
		return ExitValidationFailed
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidArguments):
		return ExitInvalidArguments
	default:
		return ExitGeneralError
	}
}

// CLIErrorCodeForError maps structured error types to CLI error code strings.
func CLIErrorCodeForError(err error) string {
	switch {
	case errors.Is(err, ErrGenerationFailed):
		return ErrCodeGenerationFailed
	case errors.Is(err, ErrValidationFailed):
		return ErrCodeValidationFailed
	case errors.Is(err, ErrInvalidArguments):
		return ErrCodeInvalidArguments
	case errors.Is(err, ErrInvalidConfig):
		return ErrCodeConfigError
	default:
		return ErrCodeInternalError
	}
}
