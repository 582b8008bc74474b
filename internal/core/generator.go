package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EmundoT/avrogen/internal/logging"
	"github.com/EmundoT/avrogen/internal/schema"
	"github.com/EmundoT/avrogen/internal/types"
)

// Generator runs the discover, parse, validate, compile and report pipeline.
type Generator struct {
	fs        FileSystem
	compiler  Compiler
	validator SchemaValidator
	ui        UICallback
	logger    *zap.Logger

	newRunID func() string
	now      func() time.Time
}

// NewGenerator creates a Generator. A nil ui or logger is replaced by a silent one.
func NewGenerator(fs FileSystem, compiler Compiler, validator SchemaValidator, ui UICallback, logger *zap.Logger) *Generator {
	if ui == nil {
		ui = &SilentUICallback{}
	}
	return &Generator{
		fs:        fs,
		compiler:  compiler,
		validator: validator,
		ui:        ui,
		logger:    logging.OrNop(logger),
		newRunID:  func() string { return uuid.New().String() },
		now:       time.Now,
	}
}

// Run processes every schema file under cfg.SourceDir. Every file is
// attempted; per-file problems are collected into the report. After the
// report is rendered and written, Run returns a *GenerationError listing
// every failure if there was any. The report is returned in both cases.
func (g *Generator) Run(ctx context.Context, cfg types.Config) (*GenerationReport, error) {
	runID := g.newRunID()
	log := g.logger.With(zap.String("run_id", runID))
	report := NewGenerationReport(runID, g.now)

	writer, err := NewReportWriter(g.fs, cfg.Report.Formats, log)
	if err != nil {
		return report, err
	}

	if cfg.CleanOutput {
		if problems := directoryLayoutProblems(cfg); len(problems) > 0 {
			return report, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
		}
		if err := g.fs.RemoveAll(cfg.OutputDir); err != nil {
			return report, fmt.Errorf("clean output directory %s: %w", cfg.OutputDir, err)
		}
	}
	if err := g.fs.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output directory %s: %w", cfg.OutputDir, err)
	}

	discovery := Discover(g.fs, cfg.SourceDir)
	if discovery.Missing {
		log.Warn(ErrSourceMissing.Error(), zap.String("dir", cfg.SourceDir))
		g.writeReports(writer, cfg.ReportDir, report)
		return report, nil
	}

	files, discoveryFailures := discovery.Collect()
	for _, f := range discoveryFailures {
		log.Error("discovery failed", zap.String("file", f.FileName), zap.String("reason", f.Reason))
		report.RecordFailure(f)
	}
	log.Debug("discovered schema files", zap.Int("count", len(files)), zap.String("dir", cfg.SourceDir))

	tracker := g.ui.StartProgress(len(files), "Generating Avro sources")
	var progressMu sync.Mutex

	opts := cfg.CompilerOptions()
	executor := NewParallelExecutor(cfg.Parallel)
	results := executor.Execute(ctx, files, func(_ context.Context, src types.SourceFile) FileResult {
		res := g.processFile(src, cfg, opts, log)
		progressMu.Lock()
		tracker.Increment(src.RelPath)
		progressMu.Unlock()
		return res
	})

	// Single writer: results are already in discovery order.
	for _, res := range results {
		for _, a := range res.Artifacts {
			report.Record(a)
		}
		for _, f := range res.Failures {
			report.RecordFailure(f)
		}
	}

	summary := report.Render()
	g.writeReports(writer, cfg.ReportDir, report)

	if len(summary.Failures) > 0 {
		genErr := &GenerationError{Stage: StageGenerate, Failures: summary.Failures}
		tracker.Fail(fmt.Errorf("%d failure(s)", len(summary.Failures)))
		log.Error("generation failed",
			zap.Int("failures", len(summary.Failures)),
			zap.Int("artifacts", summary.ArtifactCount))
		return report, genErr
	}

	tracker.Complete()
	log.Info("generation finished",
		zap.Int("artifacts", summary.ArtifactCount),
		zap.Duration("elapsed", summary.Elapsed),
		zap.String("fingerprint", summary.Fingerprint))
	return report, nil
}

// processFile runs parse, validate and compile for one file. It never
// returns early on a schema problem; every schema of a protocol is tried.
func (g *Generator) processFile(src types.SourceFile, cfg types.Config, opts types.CompilerOptions, log *zap.Logger) FileResult {
	res := FileResult{Source: src}
	log = log.With(zap.String("file", src.RelPath))

	file, failure := loadSchemaFile(g.fs, src)
	if failure != nil {
		log.Error("cannot load schema file", zap.String("reason", failure.Reason))
		res.Failures = append(res.Failures, *failure)
		return res
	}

	// Named types declared by a schema that was not generated. A later
	// schema referring to one of them would name a type that does not exist.
	unavailable := make(map[string]bool)
	skip := func(node schema.Node) {
		for _, name := range schema.Declarations(node) {
			unavailable[name] = true
		}
	}

	ext := g.compiler.FileExtension()
	for _, node := range file.Schemas {
		fullName := schema.FullName(node)

		if cfg.ValidateBeforeGenerate {
			outcome := g.validator.Validate(node, ValidationContext{FileName: src.RelPath})
			if !outcome.Valid() {
				for _, msg := range outcome.Errors {
					res.fail(types.FailureValidation, fullName, msg)
				}
				log.Error("schema is invalid", zap.String("schema", fullName), zap.Strings("errors", outcome.Errors))
				skip(node)
				continue
			}
		}

		if dep := firstUnavailable(node, unavailable); dep != "" {
			res.fail(types.FailureCompile, fullName, fmt.Sprintf(ErrDependencyMsg, fullName, dep))
			log.Error("schema depends on an invalid type", zap.String("schema", fullName), zap.String("dependency", dep))
			skip(node)
			continue
		}

		rel, err := schema.OutputPath(node, ext)
		if err == nil {
			err = ValidateDestPath(rel)
		}
		if err != nil {
			res.fail(types.FailureCompile, fullName, fmt.Sprintf(ErrCompileMsg, fullName, err))
			skip(node)
			continue
		}

		if _, err := g.compiler.Compile(node, cfg.OutputDir, opts); err != nil {
			res.fail(types.FailureCompile, fullName, fmt.Sprintf(ErrCompileMsg, fullName, err))
			log.Error("compile failed", zap.String("schema", fullName), zap.Error(err))
			skip(node)
			continue
		}

		checksum, err := g.fs.HashFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel)))
		if err != nil {
			// The artifact is still recorded; only the BOM hash is missing.
			log.Debug("cannot hash generated file", zap.String("output", rel), zap.Error(err))
			checksum = ""
		}

		name, _, _ := schema.NameOf(node)
		res.Artifacts = append(res.Artifacts, types.GeneratedArtifact{
			LogicalName:   name,
			FullName:      fullName,
			SourceFile:    src.RelPath,
			OutputRelPath: rel,
			Kind:          src.Kind,
			Checksum:      checksum,
			Order:         src.Index,
		})
		log.Debug("generated", zap.String("schema", fullName), zap.String("output", rel))
	}
	return res
}

func firstUnavailable(node schema.Node, unavailable map[string]bool) string {
	for _, ref := range schema.References(node) {
		if unavailable[ref] {
			return ref
		}
	}
	return ""
}

// writeReports renders the sealed report through every sink. Sink failures
// become warnings; the run outcome is unchanged.
func (g *Generator) writeReports(writer *ReportWriter, dir string, report *GenerationReport) {
	written, errs := writer.Write(dir, report.Render())
	for _, err := range errs {
		g.ui.ShowWarning("Report Not Written", err.Error())
	}
	for _, path := range written {
		g.logger.Info("report generated", zap.String("run_id", report.RunID()), zap.String("path", path))
	}
	report.setReportFiles(written)
}

// loadSchemaFile reads and parses one discovered file. Problems come back
// as a failure record, never as an error.
func loadSchemaFile(fsys FileSystem, src types.SourceFile) (*schema.File, *types.FileFailure) {
	data, err := fsys.ReadFile(src.Path)
	if err != nil {
		return nil, &types.FileFailure{
			FileName: src.RelPath,
			Kind:     types.FailureParse,
			Reason:   fmt.Sprintf(ErrReadFileMsg, err),
			Order:    src.Index,
		}
	}

	file, err := schema.ParseFile(src.Path, data)
	if err != nil {
		// The file name is already the failure's prefix.
		var pe *schema.ParseError
		if errors.As(err, &pe) {
			bare := *pe
			bare.Path = ""
			err = &bare
		}
		return nil, &types.FileFailure{
			FileName: src.RelPath,
			Kind:     types.FailureParse,
			Reason:   fmt.Sprintf(ErrParseMsg, err),
			Order:    src.Index,
		}
	}
	return file, nil
}
