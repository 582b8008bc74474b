package core

import "github.com/EmundoT/avrogen/internal/types"

// File and directory names
const (
	// ConfigFile is the avrogen configuration filename, looked up in the working directory
	ConfigFile = "avrogen.yml"
	// PropertiesOverrideFile may carry a sourceDirectory key that replaces source_dir
	PropertiesOverrideFile = "application.properties"
	// YAMLOverrideFile may carry a sourceDirectory key that replaces source_dir
	YAMLOverrideFile = "application.yml"
	// SourceOverrideKey is the key read from the override files
	SourceOverrideKey = "sourceDirectory"
)

// Default directories, relative to the working directory.
const (
	// DefaultSourceDir is the conventional schema resources path
	DefaultSourceDir = "src/main/resources/avro"
	// DefaultOutputDir is the conventional generated-sources path
	DefaultOutputDir = "build/generated/go"
	// DefaultReportDir is where report sinks write
	DefaultReportDir = "build/reports/avro"
	// DefaultPackageName is used for schemas without a namespace
	DefaultPackageName = "avro"
)

// Report file names written under the report directory.
const (
	HTMLReportFile      = "avro-generation-report.html"
	JSONReportFile      = "avro-generation-report.json"
	CycloneDXReportFile = "avro-generation-bom.cdx.json"
	SPDXReportFile      = "avro-generation-bom.spdx.json"
)

// Schema file extensions recognised by discovery.
const (
	SchemaExt   = ".avsc"
	ProtocolExt = ".avpr"
)

// maxWorkersCap bounds the worker pool regardless of configuration.
const maxWorkersCap = 8

// DefaultConfig returns the configuration used when no avrogen.yml exists.
func DefaultConfig() types.Config {
	return types.Config{
		SourceDir:              DefaultSourceDir,
		OutputDir:              DefaultOutputDir,
		ReportDir:              DefaultReportDir,
		FieldVisibility:        types.VisibilityPublic,
		StringType:             types.StringTypeString,
		ValidateBeforeGenerate: true,
		CleanOutput:            true,
		PackageName:            DefaultPackageName,
		Report: types.ReportOptions{
			Formats: []types.ReportFormat{types.ReportHTML, types.ReportJSON},
		},
	}
}
