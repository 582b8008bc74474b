package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:generate mockgen -source=filesystem.go -destination=filesystem_mock_test.go -package=core

// FileSystem abstracts file system operations for testing
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	MkdirAll(path string, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	RemoveAll(path string) error
	WalkDir(root string, fn fs.WalkDirFunc) error
	HashFile(path string) (string, error)
}

// OSFileSystem implements FileSystem using standard os package
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// ReadFile reads a whole file
func (fsys *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data, creating parent directories as needed
func (fsys *OSFileSystem) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MkdirAll creates a directory path
func (fsys *OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Stat returns file info
func (fsys *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// RemoveAll removes a directory tree
func (fsys *OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// WalkDir walks root in lexical order
func (fsys *OSFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// HashFile returns the hex SHA-256 of a file's content
func (fsys *OSFileSystem) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ValidateDestPath rejects output paths that would escape the output directory.
// Namespaces become directories, so a hostile namespace must not reach outside.
func ValidateDestPath(destPath string) error {
	if destPath == "" {
		return fmt.Errorf("invalid destination path: empty")
	}

	cleaned := filepath.Clean(filepath.FromSlash(destPath))

	if strings.HasPrefix(destPath, "/") || strings.HasPrefix(destPath, "\\") {
		return fmt.Errorf("invalid destination path: %s (absolute paths are not allowed)", destPath)
	}

	// Windows drive letters are rejected on every platform
	if len(destPath) >= 2 && destPath[1] == ':' &&
		(destPath[0] >= 'A' && destPath[0] <= 'Z' || destPath[0] >= 'a' && destPath[0] <= 'z') {
		return fmt.Errorf("invalid destination path: %s (absolute paths are not allowed)", destPath)
	}

	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("invalid destination path: %s (absolute paths are not allowed)", destPath)
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) ||
		strings.Contains(cleaned, string(filepath.Separator)+".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid destination path: %s (path traversal with .. is not allowed)", destPath)
	}

	return nil
}
