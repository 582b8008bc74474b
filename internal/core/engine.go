package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/EmundoT/avrogen/internal/gogen"
	"github.com/EmundoT/avrogen/internal/logging"
	"github.com/EmundoT/avrogen/internal/types"
)

// ErrConfigExists is returned by Init when avrogen.yml exists and overwriting was declined
var ErrConfigExists = errors.New("configuration file already exists")

// ConfigOverrides carries command-line values that replace file settings.
// Empty strings and a nil Workers leave the file value in place.
type ConfigOverrides struct {
	SourceDir string
	OutputDir string
	Workers   *int
}

// Manager provides the main API for avrogen operations
type Manager struct {
	RootDir     string
	configStore ConfigStore
	fs          FileSystem
	compiler    Compiler
	validator   SchemaValidator
	validation  *ValidationService
	ui          UICallback
	logger      *zap.Logger
}

// NewManager creates a Manager with default dependencies. configPath may be
// empty to use rootDir/avrogen.yml.
func NewManager(rootDir, configPath string, logger *zap.Logger) *Manager {
	if rootDir == "" {
		rootDir = "."
	}
	store := NewFileConfigStore(rootDir)
	if configPath != "" {
		store = NewFileConfigStoreAt(configPath)
	}
	fs := NewOSFileSystem()
	return NewManagerWith(rootDir, store, fs, gogen.NewCompiler(fs), logger)
}

// NewManagerWith creates a Manager with injected dependencies (useful for testing)
func NewManagerWith(rootDir string, store ConfigStore, fs FileSystem, compiler Compiler, logger *zap.Logger) *Manager {
	logger = logging.OrNop(logger)
	validator := NewStructuralValidator()
	return &Manager{
		RootDir:     rootDir,
		configStore: store,
		fs:          fs,
		compiler:    compiler,
		validator:   validator,
		validation:  NewValidationService(fs, validator, logger),
		ui:          &SilentUICallback{}, // Default to silent
		logger:      logger,
	}
}

// SetUICallback sets the UI callback for user interactions
func (m *Manager) SetUICallback(ui UICallback) {
	m.ui = ui
}

// ConfigPath returns the path to avrogen.yml
func (m *Manager) ConfigPath() string {
	return m.configStore.Path()
}

// LoadConfig builds the effective configuration: defaults, then avrogen.yml,
// then a sourceDirectory override file, then command-line overrides.
// Relative directories are resolved against RootDir.
func (m *Manager) LoadConfig(overrides ConfigOverrides) (types.Config, error) {
	cfg, err := m.configStore.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if dir, ok, err := ResolveSourceOverride(m.RootDir); err != nil {
		return cfg, fmt.Errorf("read source override: %w", err)
	} else if ok {
		m.logger.Debug("source directory overridden", zap.String("dir", dir))
		cfg.SourceDir = dir
	}

	if overrides.SourceDir != "" {
		cfg.SourceDir = overrides.SourceDir
	}
	if overrides.OutputDir != "" {
		cfg.OutputDir = overrides.OutputDir
	}
	if overrides.Workers != nil {
		cfg.Parallel.MaxWorkers = *overrides.Workers
	}

	cfg.SourceDir = m.resolve(cfg.SourceDir)
	cfg.OutputDir = m.resolve(cfg.OutputDir)
	cfg.ReportDir = m.resolve(cfg.ReportDir)

	if err := m.validation.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// resolve leaves blank values alone so ValidateConfig still sees them.
func (m *Manager) resolve(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return dir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(m.RootDir, dir)
}

// Init writes a default avrogen.yml and creates the default source
// directory. An existing file is only replaced after confirmation.
func (m *Manager) Init() error {
	if m.configStore.Exists() {
		if !m.ui.IsAutoApprove() && !m.ui.AskConfirmation("Overwrite configuration?",
			fmt.Sprintf("%s already exists. Replace it with the defaults?", m.configStore.Path())) {
			return ErrConfigExists
		}
	}

	cfg := DefaultConfig()
	if err := m.configStore.Save(cfg); err != nil {
		return err
	}
	if err := m.fs.MkdirAll(m.resolve(cfg.SourceDir), 0o755); err != nil {
		return fmt.Errorf("create source directory: %w", err)
	}
	return nil
}

// Generate runs one generation pass
func (m *Manager) Generate(ctx context.Context, cfg types.Config) (*GenerationReport, error) {
	return NewGenerator(m.fs, m.compiler, m.validator, m.ui, m.logger).Run(ctx, cfg)
}

// Validate runs a validate-only pass
func (m *Manager) Validate(ctx context.Context, cfg types.Config) (types.ValidationSummary, error) {
	return m.validation.ValidateTree(ctx, cfg)
}

// Watch generates once, then regenerates on every schema change until ctx
// is done. onRun receives the outcome of every pass.
func (m *Manager) Watch(ctx context.Context, cfg types.Config, onRun func(*GenerationReport, error)) error {
	run := func(ctx context.Context) error {
		report, err := m.Generate(ctx, cfg)
		if onRun != nil {
			onRun(report, err)
		}
		return err
	}
	// The first pass may fail; watching continues regardless.
	_ = run(ctx)

	if err := m.fs.MkdirAll(cfg.SourceDir, 0o755); err != nil {
		return fmt.Errorf("create source directory: %w", err)
	}
	return NewWatchService(cfg.SourceDir, DefaultWatchDebounce, m.ui, m.logger).Watch(ctx, run)
}

// ReportPath returns the JSON report location for cfg
func (m *Manager) ReportPath(cfg types.Config) string {
	return filepath.Join(cfg.ReportDir, JSONReportFile)
}

// LastReport reads the JSON report of the previous run
func (m *Manager) LastReport(cfg types.Config) (types.ReportSummary, error) {
	var summary types.ReportSummary
	data, err := m.fs.ReadFile(m.ReportPath(cfg))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return summary, fmt.Errorf("no report found at %s; run 'avrogen generate' first", m.ReportPath(cfg))
		}
		return summary, err
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("invalid report %s: %w", m.ReportPath(cfg), err)
	}
	return summary, nil
}
