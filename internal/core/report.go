package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/EmundoT/avrogen/internal/types"
)

// GenerationReport accumulates the artifacts and failures of one run.
// It is safe for concurrent Record calls. Render seals it; any later
// mutation panics with ErrReportSealed.
type GenerationReport struct {
	mu        sync.Mutex
	runID     string
	now       func() time.Time
	start     time.Time
	artifacts []types.GeneratedArtifact
	failures  []types.FileFailure
	sealed    bool
	summary   *types.ReportSummary

	// reportFiles are the sink outputs written for the sealed summary.
	reportFiles []string
}

// NewGenerationReport starts a report clock. now defaults to time.Now.
func NewGenerationReport(runID string, now func() time.Time) *GenerationReport {
	if now == nil {
		now = time.Now
	}
	return &GenerationReport{
		runID: runID,
		now:   now,
		start: now(),
	}
}

// RunID returns the identifier of the run this report belongs to
func (r *GenerationReport) RunID() string {
	return r.runID
}

// Record appends a generated artifact
func (r *GenerationReport) Record(a types.GeneratedArtifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic(ErrReportSealed)
	}
	r.artifacts = append(r.artifacts, a)
}

// RecordFailure appends a failure
func (r *GenerationReport) RecordFailure(f types.FileFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic(ErrReportSealed)
	}
	r.failures = append(r.failures, f)
}

// Count returns the number of recorded artifacts
func (r *GenerationReport) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.artifacts)
}

// Elapsed returns the time since the report was created
func (r *GenerationReport) Elapsed() time.Duration {
	return r.now().Sub(r.start)
}

// Artifacts returns a copy of the artifacts in discovery order
func (r *GenerationReport) Artifacts() []types.GeneratedArtifact {
	r.mu.Lock()
	out := append([]types.GeneratedArtifact(nil), r.artifacts...)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Failures returns a copy of the failures in discovery order
func (r *GenerationReport) Failures() []types.FileFailure {
	r.mu.Lock()
	out := append([]types.FileFailure(nil), r.failures...)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Fingerprint hashes the sorted set of output paths. Two runs over an
// unchanged source tree produce the same fingerprint.
func (r *GenerationReport) Fingerprint() string {
	paths := make([]string, 0, r.Count())
	for _, a := range r.Artifacts() {
		paths = append(paths, a.OutputRelPath)
	}
	sort.Strings(paths)
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(paths, "\n")))
}

// Seal makes the report read-only
func (r *GenerationReport) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// ReportFiles returns the paths of the report files written for this run
func (r *GenerationReport) ReportFiles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reportFiles...)
}

// setReportFiles records where the sinks wrote the rendered summary. It is
// allowed after sealing; the paths describe the report, not the run.
func (r *GenerationReport) setReportFiles(paths []string) {
	r.mu.Lock()
	r.reportFiles = append([]string(nil), paths...)
	r.mu.Unlock()
}

// Render seals the report and returns its summary. Later calls return the
// same summary, plus the report files once they are written.
func (r *GenerationReport) Render() types.ReportSummary {
	r.Seal()
	r.mu.Lock()
	cached := r.summary
	r.mu.Unlock()
	if cached != nil {
		summary := *cached
		summary.ReportFiles = r.ReportFiles()
		return summary
	}

	failures := r.Failures()
	status := types.StatusSuccess
	if len(failures) > 0 {
		status = types.StatusFailed
	}
	artifacts := r.Artifacts()

	summary := types.ReportSummary{
		RunID:         r.runID,
		GeneratedAt:   r.now(),
		Status:        status,
		ArtifactCount: len(artifacts),
		Elapsed:       r.Elapsed(),
		Fingerprint:   r.Fingerprint(),
		Artifacts:     artifacts,
		Failures:      failures,
	}
	r.mu.Lock()
	r.summary = &summary
	r.mu.Unlock()
	summary.ReportFiles = r.ReportFiles()
	return summary
}
