// Package types holds the plain data types shared by the avrogen packages.
package types

import (
	"fmt"
	"time"
)

// SourceKind identifies the two recognised schema file kinds.
type SourceKind string

const (
	KindAVSC SourceKind = "AVSC" // single schema file (.avsc)
	KindAVPR SourceKind = "AVPR" // protocol file (.avpr)
)

// FieldVisibility controls how generated struct fields are exposed.
type FieldVisibility string

const (
	VisibilityPublic  FieldVisibility = "PUBLIC"
	VisibilityPrivate FieldVisibility = "PRIVATE"
)

// StringType selects the Go representation of Avro strings.
type StringType string

const (
	StringTypeString       StringType = "String"
	StringTypeCharSequence StringType = "CharSequence"
	StringTypeUtf8         StringType = "Utf8"
)

// ReportFormat names a report sink.
type ReportFormat string

const (
	ReportHTML      ReportFormat = "html"
	ReportJSON      ReportFormat = "json"
	ReportCycloneDX ReportFormat = "cyclonedx"
	ReportSPDX      ReportFormat = "spdx"
)

// Config is the effective avrogen configuration. It is loaded once per run
// from avrogen.yml, the source override file and command-line flags, and is
// passed by value to every component.
type Config struct {
	SourceDir              string          `yaml:"source_dir" json:"source_dir"`
	OutputDir              string          `yaml:"output_dir" json:"output_dir"`
	ReportDir              string          `yaml:"report_dir" json:"report_dir"`
	FieldVisibility        FieldVisibility `yaml:"field_visibility" json:"field_visibility"`
	StringType             StringType      `yaml:"string_type" json:"string_type"`
	OptionalGetters        bool            `yaml:"optional_getters" json:"optional_getters"`
	DecimalLogicalType     bool            `yaml:"decimal_logical_type" json:"decimal_logical_type"`
	NullSafeAnnotations    bool            `yaml:"null_safe_annotations" json:"null_safe_annotations"`
	ValidateBeforeGenerate bool            `yaml:"validate_before_generate" json:"validate_before_generate"`
	CleanOutput            bool            `yaml:"clean_output" json:"clean_output"`
	PackageName            string          `yaml:"package_name" json:"package_name"`
	ModulePath             string          `yaml:"module_path,omitempty" json:"module_path,omitempty"`
	CustomHeader           string          `yaml:"custom_header,omitempty" json:"custom_header,omitempty"`
	Parallel               ParallelOptions `yaml:"parallel" json:"parallel"`
	Report                 ReportOptions   `yaml:"report" json:"report"`
}

// ParallelOptions configures the per-file worker pool.
// MaxWorkers 0 means runtime.NumCPU(), 1 means sequential.
type ParallelOptions struct {
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

// ReportOptions selects the report sinks written after every run.
type ReportOptions struct {
	Formats []ReportFormat `yaml:"formats" json:"formats"`
}

// CompilerOptions is the subset of Config handed to the schema compiler.
type CompilerOptions struct {
	FieldVisibility     FieldVisibility
	StringType          StringType
	OptionalGetters     bool
	NullSafeAnnotations bool
	DecimalLogicalType  bool
	PackageName         string
	ModulePath          string
	CustomHeader        string
}

// CompilerOptions derives the compiler options from the configuration.
func (c Config) CompilerOptions() CompilerOptions {
	return CompilerOptions{
		FieldVisibility:     c.FieldVisibility,
		StringType:          c.StringType,
		OptionalGetters:     c.OptionalGetters,
		NullSafeAnnotations: c.NullSafeAnnotations,
		DecimalLogicalType:  c.DecimalLogicalType,
		PackageName:         c.PackageName,
		ModulePath:          c.ModulePath,
		CustomHeader:        c.CustomHeader,
	}
}

// SourceFile is one discovered schema file.
type SourceFile struct {
	Path    string     // path as walked (root joined with RelPath)
	RelPath string     // slash-separated path relative to the source root
	Name    string     // base name, used in failure messages
	Kind    SourceKind // AVSC or AVPR
	Index   int        // discovery ordinal
}

// ValidationOutcome collects the structural errors of one schema. Empty means valid.
type ValidationOutcome struct {
	Errors []string `json:"errors,omitempty"`
}

// Valid reports whether no errors were found.
func (o ValidationOutcome) Valid() bool { return len(o.Errors) == 0 }

// GeneratedArtifact records one successfully compiled schema.
type GeneratedArtifact struct {
	LogicalName   string     `json:"name"`
	FullName      string     `json:"full_name"`
	SourceFile    string     `json:"source_file"`
	OutputRelPath string     `json:"output_file"`
	Kind          SourceKind `json:"kind"`
	Checksum      string     `json:"sha256,omitempty"`
	Order         int        `json:"-"`
}

// FailureKind classifies a per-file failure.
type FailureKind string

const (
	FailureDiscovery  FailureKind = "discovery"
	FailureParse      FailureKind = "parse"
	FailureValidation FailureKind = "validation"
	FailureCompile    FailureKind = "compile"
)

// FileFailure is one named failure collected during a run.
type FileFailure struct {
	FileName string      `json:"file"`
	Schema   string      `json:"schema,omitempty"`
	Kind     FailureKind `json:"kind"`
	Reason   string      `json:"reason"`
	Order    int         `json:"-"`
}

// String renders the failure as "<file>: <reason>".
func (f FileFailure) String() string {
	return fmt.Sprintf("%s: %s", f.FileName, f.Reason)
}

// RunStatus is the overall outcome written into reports.
type RunStatus string

const (
	StatusSuccess RunStatus = "SUCCESS"
	StatusFailed  RunStatus = "FAILED"
)

// ReportSummary is the rendered, read-only view of a generation report.
type ReportSummary struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Status        RunStatus           `json:"status"`
	ArtifactCount int                 `json:"artifact_count"`
	Elapsed       time.Duration       `json:"elapsed_ns"`
	Fingerprint   string              `json:"fingerprint"`
	Artifacts     []GeneratedArtifact `json:"artifacts"`
	Failures      []FileFailure       `json:"failures,omitempty"`

	// ReportFiles lists the report files written for this summary. Sinks
	// render before it is known, so it is empty in the reports themselves.
	ReportFiles []string `json:"report_files,omitempty"`
}

// ValidationSummary is the result of a validate-only pass.
type ValidationSummary struct {
	ValidatedFiles int           `json:"validated_files"`
	Failures       []FileFailure `json:"failures,omitempty"`
}
