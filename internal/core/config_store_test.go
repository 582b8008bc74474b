package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmundoT/avrogen/internal/testutil"
	"github.com/EmundoT/avrogen/internal/types"
)

// ============================================================================
// FileConfigStore
// ============================================================================

func TestFileConfigStore_MissingFileYieldsDefaults(t *testing.T) {
	store := NewFileConfigStore(t.TempDir())
	assert.False(t, store.Exists())

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDefaultConfig_Directories(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "src/main/resources/avro", cfg.SourceDir)
	assert.Equal(t, "build/generated/go", cfg.OutputDir)
	assert.Equal(t, "build/reports/avro", cfg.ReportDir)
}

func TestFileConfigStore_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		ConfigFile: "source_dir: schemas\nfield_visibility: PRIVATE\nparallel:\n  max_workers: 1\n",
	})

	store := NewFileConfigStore(root)
	assert.True(t, store.Exists())
	assert.Equal(t, filepath.Join(root, ConfigFile), store.Path())

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "schemas", cfg.SourceDir)
	assert.Equal(t, types.VisibilityPrivate, cfg.FieldVisibility)
	assert.Equal(t, 1, cfg.Parallel.MaxWorkers)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.True(t, cfg.ValidateBeforeGenerate)
	assert.Equal(t, []types.ReportFormat{types.ReportHTML, types.ReportJSON}, cfg.Report.Formats)
}

func TestFileConfigStore_SaveLoad(t *testing.T) {
	store := NewFileConfigStoreAt(filepath.Join(t.TempDir(), "custom.yml"))

	cfg := DefaultConfig()
	cfg.ModulePath = "example.com/app/gen"
	cfg.Report.Formats = []types.ReportFormat{types.ReportSPDX}
	require.NoError(t, store.Save(cfg))

	back, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestFileConfigStore_InvalidYAML(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{ConfigFile: "source_dir: [unclosed\n"})

	_, err := NewFileConfigStore(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid avrogen.yml")
}

func TestFileConfigStore_TooLarge(t *testing.T) {
	root := t.TempDir()
	big := "# " + strings.Repeat("x", maxYAMLFileSize) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile), []byte(big), 0o644))

	_, err := NewFileConfigStore(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum size")
}

func TestYAMLStore_StrictMissing(t *testing.T) {
	store := NewYAMLStore[types.Config](t.TempDir(), "required.yml", false)
	_, err := store.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// ============================================================================
// Source directory override
// ============================================================================

func TestResolveSourceOverride(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantDir string
		wantOK  bool
	}{
		{
			name: "no override files",
		},
		{
			name:    "properties",
			files:   map[string]string{PropertiesOverrideFile: "# build\nsourceDirectory = avro/schemas\n"},
			wantDir: "avro/schemas",
			wantOK:  true,
		},
		{
			name:    "yaml",
			files:   map[string]string{YAMLOverrideFile: "sourceDirectory: yaml-schemas\nother: 1\n"},
			wantDir: "yaml-schemas",
			wantOK:  true,
		},
		{
			name: "properties wins over yaml",
			files: map[string]string{
				PropertiesOverrideFile: "sourceDirectory=from-props\n",
				YAMLOverrideFile:       "sourceDirectory: from-yaml\n",
			},
			wantDir: "from-props",
			wantOK:  true,
		},
		{
			name: "first existing file decides even without the key",
			files: map[string]string{
				PropertiesOverrideFile: "unrelated=1\n",
				YAMLOverrideFile:       "sourceDirectory: from-yaml\n",
			},
		},
		{
			name:  "blank value",
			files: map[string]string{YAMLOverrideFile: "sourceDirectory:\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			testutil.WriteTree(t, root, tt.files)

			dir, ok, err := ResolveSourceOverride(root)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, filepath.Join(root, tt.wantDir), dir)
			}
		})
	}
}

func TestResolveSourceOverride_AbsoluteValue(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")
	testutil.WriteTree(t, root, map[string]string{PropertiesOverrideFile: "sourceDirectory=" + filepath.ToSlash(abs) + "\n"})

	dir, ok, err := ResolveSourceOverride(root)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.ToSlash(abs), filepath.ToSlash(dir))
}

func TestResolveSourceOverride_InvalidYAML(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{YAMLOverrideFile: "sourceDirectory: [\n"})

	_, _, err := ResolveSourceOverride(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid application.yml")
}
