package core

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/EmundoT/avrogen/internal/types"
)

// FileResult is the outcome of processing one discovered file.
type FileResult struct {
	Source    types.SourceFile
	Artifacts []types.GeneratedArtifact
	Failures  []types.FileFailure
}

// Failed reports whether any failure was recorded for the file.
func (r FileResult) Failed() bool { return len(r.Failures) > 0 }

func (r *FileResult) fail(kind types.FailureKind, schemaName, reason string) {
	r.Failures = append(r.Failures, types.FileFailure{
		FileName: r.Source.RelPath,
		Schema:   schemaName,
		Kind:     kind,
		Reason:   reason,
		Order:    r.Source.Index,
	})
}

// ProcessFileFunc processes a single file. It reports problems in the
// result instead of returning an error so one file never stops the others.
type ProcessFileFunc func(ctx context.Context, src types.SourceFile) FileResult

// ParallelExecutor fans per-file work out over a bounded worker pool
type ParallelExecutor struct {
	maxWorkers int
}

// NewParallelExecutor creates a new parallel executor
func NewParallelExecutor(opts types.ParallelOptions) *ParallelExecutor {
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	// Limit to a reasonable maximum to avoid overwhelming the system
	if workers > maxWorkersCap {
		workers = maxWorkersCap
	}

	return &ParallelExecutor{
		maxWorkers: workers,
	}
}

// Workers returns the effective worker count
func (p *ParallelExecutor) Workers() int {
	return p.maxWorkers
}

// Execute runs fn for every file and returns the results indexed like files,
// so callers see discovery order regardless of completion order. Files not
// yet started when ctx is cancelled get a failure carrying the context error.
func (p *ParallelExecutor) Execute(ctx context.Context, files []types.SourceFile, fn ProcessFileFunc) []FileResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]FileResult, len(files))

	var g errgroup.Group
	g.SetLimit(min(p.maxWorkers, len(files)))

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Source: file}
				results[i].fail(types.FailureCompile, "", fmt.Sprintf("not processed: %v", err))
				return nil
			}
			results[i] = fn(ctx, file)
			return nil
		})
	}

	// Workers never return errors; failures travel in the results.
	_ = g.Wait()
	return results
}
