package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmundoT/avrogen/internal/types"
)

func artifact(order int, out string) types.GeneratedArtifact {
	return types.GeneratedArtifact{LogicalName: out, OutputRelPath: out, Order: order}
}

func TestGenerationReport_RecordAndCount(t *testing.T) {
	r := NewGenerationReport("run", nil)
	assert.Equal(t, 0, r.Count())

	r.Record(artifact(1, "b.go"))
	r.Record(artifact(0, "a.go"))
	assert.Equal(t, 2, r.Count())

	got := r.Artifacts()
	assert.Equal(t, "a.go", got[0].OutputRelPath, "artifacts come back in discovery order")
	assert.Equal(t, "b.go", got[1].OutputRelPath)
}

func TestGenerationReport_ConcurrentRecord(t *testing.T) {
	r := NewGenerationReport("run", nil)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(artifact(i, fmt.Sprintf("f%03d.go", i)))
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.Count())
	for i, a := range r.Artifacts() {
		assert.Equal(t, i, a.Order)
	}
}

func TestGenerationReport_Render(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewGenerationReport("run-1", fixedClock(start, time.Second))
	r.Record(artifact(0, "com/example/User.go"))

	s := r.Render()
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, types.StatusSuccess, s.Status)
	assert.Equal(t, 1, s.ArtifactCount)
	assert.Equal(t, start.Add(time.Second), s.GeneratedAt)
	assert.Equal(t, 2*time.Second, s.Elapsed)
	assert.Len(t, s.Fingerprint, 16)
	assert.Empty(t, s.Failures)

	again := r.Render()
	assert.Equal(t, s, again, "a rendered summary never changes")
}

func TestGenerationReport_RenderFailed(t *testing.T) {
	r := NewGenerationReport("run", nil)
	r.RecordFailure(types.FileFailure{FileName: "b.avsc", Reason: "second", Order: 2})
	r.RecordFailure(types.FileFailure{FileName: "a.avsc", Reason: "first", Order: 1})

	s := r.Render()
	assert.Equal(t, types.StatusFailed, s.Status)
	require.Len(t, s.Failures, 2)
	assert.Equal(t, "a.avsc", s.Failures[0].FileName)
}

func TestGenerationReport_SealedPanics(t *testing.T) {
	r := NewGenerationReport("run", nil)
	r.Render()

	assert.PanicsWithValue(t, ErrReportSealed, func() { r.Record(artifact(0, "x.go")) })
	assert.PanicsWithValue(t, ErrReportSealed, func() { r.RecordFailure(types.FileFailure{}) })
}

func TestGenerationReport_ReportFilesAfterSeal(t *testing.T) {
	r := NewGenerationReport("run", nil)
	r.Record(artifact(0, "com/example/User.go"))
	before := r.Render()
	assert.Empty(t, before.ReportFiles)

	paths := []string{"reports/avro-generation-report.json"}
	r.setReportFiles(paths)
	paths[0] = "mutated"

	after := r.Render()
	assert.Equal(t, []string{"reports/avro-generation-report.json"}, after.ReportFiles)
	assert.Equal(t, before.Fingerprint, after.Fingerprint)
	assert.Equal(t, after.ReportFiles, r.ReportFiles())
}

func TestGenerationReport_FingerprintIgnoresOrder(t *testing.T) {
	a := NewGenerationReport("a", nil)
	a.Record(artifact(0, "x/One.go"))
	a.Record(artifact(1, "y/Two.go"))

	b := NewGenerationReport("b", nil)
	b.Record(artifact(1, "x/One.go"))
	b.Record(artifact(0, "y/Two.go"))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := NewGenerationReport("c", nil)
	c.Record(artifact(0, "x/One.go"))
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestGenerationReport_CopiesAreIndependent(t *testing.T) {
	r := NewGenerationReport("run", nil)
	r.Record(artifact(0, "a.go"))

	got := r.Artifacts()
	got[0].OutputRelPath = "mutated.go"
	assert.Equal(t, "a.go", r.Artifacts()[0].OutputRelPath)
}
