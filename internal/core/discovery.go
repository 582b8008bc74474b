package core

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/EmundoT/avrogen/internal/schema"
	"github.com/EmundoT/avrogen/internal/types"
)

// errStopWalk aborts a walk when the consumer stops iterating.
var errStopWalk = errors.New("stop walk")

// Discovery is the lazy result of scanning a source tree.
type Discovery struct {
	Root string
	// Missing is set when Root does not exist. Files is then empty; callers
	// decide whether that is fatal.
	Missing bool
	// Files yields schema files depth-first in lexical path order. A walk
	// error below Root is yielded with the offending path and does not end
	// the sequence.
	Files iter.Seq2[types.SourceFile, error]
}

// Discover scans root for .avsc and .avpr files. Nothing is read until Files
// is ranged over.
func Discover(fsys FileSystem, root string) Discovery {
	d := Discovery{Root: root}

	info, err := fsys.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		d.Missing = true
		d.Files = func(func(types.SourceFile, error) bool) {}
		return d
	case err != nil:
		d.Files = single(rootFile(root), err)
		return d
	case !info.IsDir():
		d.Files = single(rootFile(root), fmt.Errorf("source path %s is not a directory", root))
		return d
	}

	d.Files = func(yield func(types.SourceFile, error) bool) {
		index := 0
		walkErr := fsys.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if !yield(sourceFile(root, path, "", index), err) {
					return errStopWalk
				}
				index++
				// Unreadable directories are skipped; the walk goes on.
				return nil
			}
			if entry.IsDir() || !entry.Type().IsRegular() {
				return nil
			}
			kind, ok := schema.KindForPath(path)
			if !ok {
				return nil
			}
			if !yield(sourceFile(root, path, kind, index), nil) {
				return errStopWalk
			}
			index++
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, errStopWalk) {
			yield(rootFile(root), walkErr)
		}
	}
	return d
}

// Collect drains the sequence into files and per-path errors. Both carry
// their position in the walk (SourceFile.Index, FileFailure.Order).
func (d Discovery) Collect() ([]types.SourceFile, []types.FileFailure) {
	var (
		files    []types.SourceFile
		failures []types.FileFailure
	)
	for f, err := range d.Files {
		if err != nil {
			failures = append(failures, types.FileFailure{
				FileName: f.RelPath,
				Kind:     types.FailureDiscovery,
				Reason:   err.Error(),
				Order:    f.Index,
			})
			continue
		}
		files = append(files, f)
	}
	return files, failures
}

func sourceFile(root, path string, kind types.SourceKind, index int) types.SourceFile {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return types.SourceFile{
		Path:    path,
		RelPath: filepath.ToSlash(rel),
		Name:    filepath.Base(path),
		Kind:    kind,
		Index:   index,
	}
}

func rootFile(root string) types.SourceFile {
	return types.SourceFile{Path: root, RelPath: filepath.ToSlash(root), Name: filepath.Base(root)}
}

func single(f types.SourceFile, err error) iter.Seq2[types.SourceFile, error] {
	return func(yield func(types.SourceFile, error) bool) {
		yield(f, err)
	}
}
