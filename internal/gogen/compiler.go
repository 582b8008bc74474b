package gogen

import (
	"fmt"
	"path/filepath"

	"github.com/EmundoT/avrogen/internal/schema"
	"github.com/EmundoT/avrogen/internal/types"
)

// FileExtension is the extension of every emitted file.
const FileExtension = ".go"

// FileWriter persists generated files, creating parent directories.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// Compiler writes one Go file per top-level schema.
type Compiler struct {
	out FileWriter
}

// NewCompiler creates a Compiler that writes through out.
func NewCompiler(out FileWriter) *Compiler {
	return &Compiler{out: out}
}

// FileExtension returns ".go".
func (c *Compiler) FileExtension() string { return FileExtension }

// Compile renders node and writes it to outputDir/<namespace dirs>/<Name>.go.
func (c *Compiler) Compile(node schema.Node, outputDir string, opts types.CompilerOptions) ([]string, error) {
	rel, err := schema.OutputPath(node, FileExtension)
	if err != nil {
		return nil, err
	}
	src, err := Generate(node, opts)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(outputDir, filepath.FromSlash(rel))
	if err := c.out.WriteFile(target, src); err != nil {
		return nil, fmt.Errorf("write %s: %w", rel, err)
	}
	return []string{target}, nil
}
