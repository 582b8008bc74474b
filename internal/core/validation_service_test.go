package core

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmundoT/avrogen/internal/testutil"
	"github.com/EmundoT/avrogen/internal/types"
)

// ============================================================================
// ValidateConfig
// ============================================================================

func TestValidateConfig_Defaults(t *testing.T) {
	svc := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil)
	assert.NoError(t, svc.ValidateConfig(DefaultConfig()))
}

func TestValidateConfig_Problems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Config)
		want   string
	}{
		{"blank source", func(c *types.Config) { c.SourceDir = " " }, "source_dir must not be empty"},
		{"blank output", func(c *types.Config) { c.OutputDir = "" }, "output_dir must not be empty"},
		{"visibility", func(c *types.Config) { c.FieldVisibility = "PROTECTED" }, `field_visibility "PROTECTED"`},
		{"string type", func(c *types.Config) { c.StringType = "Text" }, `string_type "Text"`},
		{"report format", func(c *types.Config) { c.Report.Formats = []types.ReportFormat{"pdf"} }, `report.formats entry "pdf"`},
		{"workers", func(c *types.Config) { c.Parallel.MaxWorkers = -1 }, "parallel.max_workers -1"},
		{"package", func(c *types.Config) { c.PackageName = "my-pkg" }, `package_name "my-pkg"`},
	}

	svc := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := svc.ValidateConfig(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FieldVisibility = "x"
	cfg.StringType = "y"

	err := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil).ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field_visibility")
	assert.Contains(t, err.Error(), "string_type")
}

func TestValidateConfig_DirectoryLayout(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "gen", "schemas")

	tests := []struct {
		name   string
		output string
		report string
		want   string
	}{
		{"output equals source", src, filepath.Join(root, "reports"), "output_dir " + quote(src) + " must differ from source_dir"},
		{"output contains source", filepath.Join(root, "gen"), filepath.Join(root, "reports"), "must not contain source_dir"},
		{"output contains source via root", root, filepath.Join(root, "reports"), "output_dir " + quote(root) + " must not contain source_dir"},
		{"output inside source", filepath.Join(src, "out"), filepath.Join(root, "reports"), "must not be inside source_dir"},
		{"report equals source", filepath.Join(root, "out"), src, "report_dir " + quote(src) + " must differ from source_dir"},
		{"report contains source", filepath.Join(root, "out"), filepath.Join(root, "gen"), "report_dir"},
		{"report inside source", filepath.Join(root, "out"), filepath.Join(src, "reports"), "must not be inside source_dir"},
		{"unclean path", filepath.Join(src, "sub", ".."), filepath.Join(root, "reports"), "must differ from source_dir"},
	}

	svc := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SourceDir = src
			cfg.OutputDir = tt.output
			cfg.ReportDir = tt.report

			err := svc.ValidateConfig(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateConfig_SiblingDirectoriesAllowed(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.SourceDir = filepath.Join(root, "gen", "schemas")
	cfg.OutputDir = filepath.Join(root, "gen", "schemas-out")
	cfg.ReportDir = filepath.Join(root, "gen", "reports")

	svc := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil)
	assert.NoError(t, svc.ValidateConfig(cfg))
}

func TestIsWithin(t *testing.T) {
	sep := string(filepath.Separator)
	assert.True(t, isWithin(sep+filepath.Join("a", "b", "c"), sep+"a"))
	assert.False(t, isWithin(sep+"a", sep+"a"))
	assert.False(t, isWithin(sep+"a", sep+filepath.Join("a", "b")))
	assert.True(t, isWithin(sep+"..a", sep), "a name starting with dots is still a child")
	assert.False(t, isWithin(sep+filepath.Join("a", "bc"), sep+filepath.Join("a", "b")))
}

func quote(s string) string { return fmt.Sprintf("%q", s) }

func TestIsGoIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"avro": true, "_x": true, "pkg2": true, "": false, "2pkg": false, "a-b": false, "a.b": false,
	} {
		assert.Equal(t, want, isGoIdentifier(s), s)
	}
}

// ============================================================================
// ValidateTree
// ============================================================================

func TestValidateTree_AllValid(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"src/user.avsc":     userSchema,
		"src/accounts.avpr": accountsProtocol,
	})

	svc := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil)
	summary, err := svc.ValidateTree(context.Background(), testConfig(root))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ValidatedFiles)
	assert.Empty(t, summary.Failures)
}

func TestValidateTree_CollectsEveryFailure(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"src/a_broken.avsc": brokenSchema,
		"src/b_empty.avsc":  emptyRecordSchema,
		"src/c_user.avsc":   userSchema,
	})

	svc := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil)
	summary, err := svc.ValidateTree(context.Background(), testConfig(root))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 3, summary.ValidatedFiles)

	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "a_broken.avsc", summary.Failures[0].FileName)
	assert.Equal(t, types.FailureParse, summary.Failures[0].Kind)
	assert.Equal(t, "b_empty.avsc: Record Empty has no fields", summary.Failures[1].String())
	assert.Equal(t, "com.example.Empty", summary.Failures[1].Schema)
}

func TestValidateTree_MissingSource(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "nothing"))
	summary, err := NewValidationService(NewOSFileSystem(), NewStructuralValidator(), nil).
		ValidateTree(context.Background(), cfg)
	require.NoError(t, err)
	assert.Zero(t, summary.ValidatedFiles)
}
