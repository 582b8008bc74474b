package core

import (
	"github.com/EmundoT/avrogen/internal/schema"
	"github.com/EmundoT/avrogen/internal/types"
)

//go:generate mockgen -source=compiler.go -destination=compiler_mock_test.go -package=core

// Compiler turns one validated top-level schema into source files under
// outputDir. It is a black box to the orchestrator: on success it returns
// the paths it wrote, the first of which is the schema's own type file at
// schema.OutputPath(node, FileExtension()).
type Compiler interface {
	Compile(node schema.Node, outputDir string, opts types.CompilerOptions) ([]string, error)
	FileExtension() string
}
