package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/EmundoT/avrogen/internal/types"
)

//go:generate mockgen -source=config_store.go -destination=config_store_mock_test.go -package=core

// ConfigStore handles avrogen.yml I/O operations
type ConfigStore interface {
	Load() (types.Config, error)
	Save(config types.Config) error
	Path() string
	Exists() bool
}

// FileConfigStore implements ConfigStore using the filesystem
type FileConfigStore struct {
	store *YAMLStore[types.Config]
}

// NewFileConfigStore creates a store for rootDir/avrogen.yml
func NewFileConfigStore(rootDir string) *FileConfigStore {
	return NewFileConfigStoreAt(filepath.Join(rootDir, ConfigFile))
}

// NewFileConfigStoreAt creates a store for an explicit config path (--config)
func NewFileConfigStoreAt(path string) *FileConfigStore {
	return &FileConfigStore{store: NewYAMLStore[types.Config](filepath.Dir(path), filepath.Base(path), true)}
}

// Path returns the config file path
func (s *FileConfigStore) Path() string {
	return s.store.Path()
}

// Exists reports whether the config file is present
func (s *FileConfigStore) Exists() bool {
	return s.store.Exists()
}

// Load reads avrogen.yml over DefaultConfig. A missing file yields the defaults.
func (s *FileConfigStore) Load() (types.Config, error) {
	return s.store.LoadOver(DefaultConfig())
}

// Save writes avrogen.yml
func (s *FileConfigStore) Save(cfg types.Config) error {
	return s.store.Save(cfg)
}

// ResolveSourceOverride looks for a sourceDirectory key in
// application.properties, then application.yml, under rootDir. Relative
// values are resolved against rootDir. ok is false when neither file sets it.
func ResolveSourceOverride(rootDir string) (dir string, ok bool, err error) {
	candidates := []struct {
		name  string
		parse func([]byte) (string, error)
	}{
		{PropertiesOverrideFile, propertiesValue},
		{YAMLOverrideFile, yamlValue},
	}

	for _, c := range candidates {
		path := filepath.Join(rootDir, c.name)
		info, statErr := os.Stat(path)
		if errors.Is(statErr, os.ErrNotExist) {
			continue
		}
		if statErr != nil {
			return "", false, statErr
		}
		if info.Size() > maxYAMLFileSize {
			return "", false, fmt.Errorf("%s exceeds maximum size (%d bytes > %d byte limit)", c.name, info.Size(), maxYAMLFileSize)
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return "", false, readErr
		}
		value, parseErr := c.parse(data)
		if parseErr != nil {
			return "", false, fmt.Errorf("invalid %s: %w", c.name, parseErr)
		}
		// The first existing file decides, even without the key.
		if value == "" {
			return "", false, nil
		}
		if !filepath.IsAbs(value) {
			value = filepath.Join(rootDir, value)
		}
		return value, true, nil
	}
	return "", false, nil
}

// propertiesValue reads SourceOverrideKey from Java properties text
func propertiesValue(data []byte) (string, error) {
	props, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return "", err
	}
	v, _ := props.Get(SourceOverrideKey)
	return strings.TrimSpace(v), nil
}

// yamlValue reads a top-level SourceOverrideKey from YAML text
func yamlValue(data []byte) (string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	v, ok := doc[SourceOverrideKey]
	if !ok || v == nil {
		return "", nil
	}
	return strings.TrimSpace(fmt.Sprint(v)), nil
}
