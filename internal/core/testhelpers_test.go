package core

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/EmundoT/avrogen/internal/types"
)

// ============================================================================
// Schema Fixtures
// ============================================================================

const (
	userSchema = `{
  "type": "record",
  "name": "User",
  "namespace": "com.example",
  "fields": [
    {"name": "id", "type": "long"},
    {"name": "email", "type": ["null", "string"], "default": null}
  ]
}`

	emptyRecordSchema = `{"type": "record", "name": "Empty", "namespace": "com.example", "fields": []}`

	colorEnumSchema = `{"type": "enum", "name": "Color", "namespace": "com.example", "symbols": ["RED", "GREEN"]}`

	accountsProtocol = `{
  "protocol": "Accounts",
  "namespace": "com.example.accounts",
  "types": [
    {"type": "record", "name": "Account", "fields": [{"name": "id", "type": "string"}]},
    {"type": "record", "name": "Owner", "fields": [{"name": "name", "type": "string"}]}
  ]
}`

	brokenSchema = `{"type": "record", "name": `
)

// ============================================================================
// Gomock Test Helpers
// ============================================================================

// setupMocks creates the mock dependencies of the generation pipeline
func setupMocks(t *testing.T) (*gomock.Controller, *MockFileSystem, *MockCompiler, *MockConfigStore) {
	ctrl := gomock.NewController(t)
	return ctrl, NewMockFileSystem(ctrl), NewMockCompiler(ctrl), NewMockConfigStore(ctrl)
}

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

// newTestGenerator builds a Generator with a deterministic run ID and clock.
func newTestGenerator(fs FileSystem, compiler Compiler) *Generator {
	g := NewGenerator(fs, compiler, NewStructuralValidator(), nil, nil)
	g.newRunID = func() string { return "11111111-2222-3333-4444-555555555555" }
	g.now = fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), time.Second)
	return g
}

// testConfig returns a configuration rooted under dir with no report sinks.
func testConfig(dir string) types.Config {
	cfg := DefaultConfig()
	cfg.SourceDir = dir + "/src"
	cfg.OutputDir = dir + "/out"
	cfg.ReportDir = dir + "/reports"
	cfg.Report.Formats = nil
	cfg.Parallel.MaxWorkers = 2
	return cfg
}
