package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EmundoT/avrogen/internal/types"
)

// Sentinel errors for common error conditions.
// These can be used with errors.Is() for error type checking.
var (
	// ErrSourceMissing indicates the source directory does not exist.
	// Discovery reports it as a signal; only callers that require sources turn it into an error.
	ErrSourceMissing = errors.New("source directory does not exist")

	// ErrGenerationFailed indicates at least one file failed during generate
	ErrGenerationFailed = errors.New("schema generation failed")

	// ErrValidationFailed indicates at least one file failed during a validate-only pass
	ErrValidationFailed = errors.New("schema validation failed")

	// ErrInvalidConfig indicates a configuration value outside its allowed set
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArguments indicates an unknown command, flag or flag value
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrReportSealed is the panic value when a sealed report is mutated
	ErrReportSealed = errors.New("generation report is sealed")
)

// Stage names the pass that produced a GenerationError.
type Stage string

const (
	StageGenerate Stage = "generation"
	StageValidate Stage = "validation"
)

// GenerationError is the single aggregated failure raised at the end of a run.
// Failures are in discovery order.
type GenerationError struct {
	Stage    Stage
	Failures []types.FileFailure
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %s failed with %d error(s):", e.Stage, len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  - ")
		b.WriteString(f.String())
	}
	return b.String()
}

// Is matches the stage sentinel.
func (e *GenerationError) Is(target error) bool {
	switch target {
	case ErrGenerationFailed:
		return e.Stage == StageGenerate
	case ErrValidationFailed:
		return e.Stage == StageValidate
	}
	return false
}

// Messages returns every failure rendered as "<file>: <reason>".
func (e *GenerationError) Messages() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.String()
	}
	return out
}

// Files returns the distinct failing file names in first-seen order.
func (e *GenerationError) Files() []string {
	seen := make(map[string]bool, len(e.Failures))
	var out []string
	for _, f := range e.Failures {
		if !seen[f.FileName] {
			seen[f.FileName] = true
			out = append(out, f.FileName)
		}
	}
	return out
}

// Error message templates for formatted errors.
const (
	// ErrReadFileMsg wraps a read failure of a discovered schema file
	ErrReadFileMsg = "read error: %v"
	// ErrParseMsg wraps a schema parse failure
	ErrParseMsg = "parse error: %v"
	// ErrCompileMsg wraps a compiler failure for one schema
	ErrCompileMsg = "compile %s: %v"
	// ErrDependencyMsg marks a schema that refers to a type from a schema that was not generated
	ErrDependencyMsg = "%s depends on invalid type %s"
)
