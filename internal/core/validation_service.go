package core

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/EmundoT/avrogen/internal/logging"
	"github.com/EmundoT/avrogen/internal/schema"
	"github.com/EmundoT/avrogen/internal/types"
)

// ValidationServiceInterface defines the contract for configuration checks
// and validate-only passes over a source tree.
type ValidationServiceInterface interface {
	ValidateConfig(cfg types.Config) error
	ValidateTree(ctx context.Context, cfg types.Config) (types.ValidationSummary, error)
}

// Compile-time interface satisfaction check.
var _ ValidationServiceInterface = (*ValidationService)(nil)

// ValidationService checks configuration values and runs the structural
// validator over every schema without compiling anything.
type ValidationService struct {
	fs        FileSystem
	validator SchemaValidator
	logger    *zap.Logger
}

// NewValidationService creates a new ValidationService
func NewValidationService(fs FileSystem, validator SchemaValidator, logger *zap.Logger) *ValidationService {
	return &ValidationService{
		fs:        fs,
		validator: validator,
		logger:    logging.OrNop(logger),
	}
}

var (
	validVisibilities = []types.FieldVisibility{types.VisibilityPublic, types.VisibilityPrivate}
	validStringTypes  = []types.StringType{types.StringTypeString, types.StringTypeCharSequence, types.StringTypeUtf8}
	validFormats      = []types.ReportFormat{types.ReportHTML, types.ReportJSON, types.ReportCycloneDX, types.ReportSPDX}
)

// ValidateConfig rejects blank directories, output or report directories
// that overlap source_dir, and values outside their allowed sets. The error
// wraps ErrInvalidConfig and names every offending key. Directories should
// already be resolved against the same root.
func (s *ValidationService) ValidateConfig(cfg types.Config) error {
	var problems []string

	for _, dir := range []struct{ key, value string }{
		{"source_dir", cfg.SourceDir},
		{"output_dir", cfg.OutputDir},
		{"report_dir", cfg.ReportDir},
	} {
		if strings.TrimSpace(dir.value) == "" {
			problems = append(problems, dir.key+" must not be empty")
		}
	}

	problems = append(problems, directoryLayoutProblems(cfg)...)

	if !slices.Contains(validVisibilities, cfg.FieldVisibility) {
		problems = append(problems, fmt.Sprintf("field_visibility %q must be one of PUBLIC, PRIVATE", cfg.FieldVisibility))
	}
	if !slices.Contains(validStringTypes, cfg.StringType) {
		problems = append(problems, fmt.Sprintf("string_type %q must be one of String, CharSequence, Utf8", cfg.StringType))
	}
	for _, f := range cfg.Report.Formats {
		if !slices.Contains(validFormats, f) {
			problems = append(problems, fmt.Sprintf("report.formats entry %q must be one of html, json, cyclonedx, spdx", f))
		}
	}
	if cfg.Parallel.MaxWorkers < 0 {
		problems = append(problems, fmt.Sprintf("parallel.max_workers %d must not be negative", cfg.Parallel.MaxWorkers))
	}
	if cfg.PackageName != "" && !isGoIdentifier(cfg.PackageName) {
		problems = append(problems, fmt.Sprintf("package_name %q is not a valid Go package name", cfg.PackageName))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateTree discovers, parses and validates every schema under
// cfg.SourceDir. All files are checked; a *GenerationError with stage
// validation is returned when any failure was found. A missing source
// directory validates zero files successfully.
func (s *ValidationService) ValidateTree(ctx context.Context, cfg types.Config) (types.ValidationSummary, error) {
	var summary types.ValidationSummary

	discovery := Discover(s.fs, cfg.SourceDir)
	if discovery.Missing {
		s.logger.Warn(ErrSourceMissing.Error(), zap.String("dir", cfg.SourceDir))
		return summary, nil
	}

	files, failures := discovery.Collect()
	executor := NewParallelExecutor(cfg.Parallel)
	results := executor.Execute(ctx, files, func(_ context.Context, src types.SourceFile) FileResult {
		res := FileResult{Source: src}
		file, failure := loadSchemaFile(s.fs, src)
		if failure != nil {
			res.Failures = append(res.Failures, *failure)
			return res
		}
		for _, node := range file.Schemas {
			outcome := s.validator.Validate(node, ValidationContext{FileName: src.RelPath})
			for _, msg := range outcome.Errors {
				res.fail(types.FailureValidation, schema.FullName(node), msg)
			}
		}
		return res
	})

	for _, res := range results {
		summary.ValidatedFiles++
		failures = append(failures, res.Failures...)
	}
	slices.SortStableFunc(failures, func(a, b types.FileFailure) int { return a.Order - b.Order })
	summary.Failures = failures

	if len(failures) > 0 {
		s.logger.Error("validation failed", zap.Int("files", summary.ValidatedFiles), zap.Int("failures", len(failures)))
		return summary, &GenerationError{Stage: StageValidate, Failures: failures}
	}
	s.logger.Info("validation passed", zap.Int("files", summary.ValidatedFiles))
	return summary, nil
}

// directoryLayoutProblems reports output_dir and report_dir values that
// equal, contain or sit inside source_dir. clean_output removes the whole
// output directory, so an overlap would delete the schemas themselves.
func directoryLayoutProblems(cfg types.Config) []string {
	if strings.TrimSpace(cfg.SourceDir) == "" {
		return nil
	}
	source := absDir(cfg.SourceDir)

	var problems []string
	for _, dir := range []struct{ key, value string }{
		{"output_dir", cfg.OutputDir},
		{"report_dir", cfg.ReportDir},
	} {
		if strings.TrimSpace(dir.value) == "" {
			continue
		}
		target := absDir(dir.value)
		switch {
		case target == source:
			problems = append(problems, fmt.Sprintf("%s %q must differ from source_dir", dir.key, dir.value))
		case isWithin(target, source):
			problems = append(problems, fmt.Sprintf("%s %q must not be inside source_dir %q", dir.key, dir.value, cfg.SourceDir))
		case isWithin(source, target):
			problems = append(problems, fmt.Sprintf("%s %q must not contain source_dir %q", dir.key, dir.value, cfg.SourceDir))
		}
	}
	return problems
}

func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// isWithin reports whether child lies strictly below parent.
func isWithin(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isGoIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
