package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/EmundoT/avrogen/internal/types"
)

// RenderSummary formats a report as a bordered artifact table followed by
// any failures. Used for interactive output.
func RenderSummary(s types.ReportSummary) string {
	var b strings.Builder
	b.WriteString(StyleTitle(fmt.Sprintf("Generation %s", s.Status)))
	b.WriteString("\n")

	if len(s.Artifacts) > 0 {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(styleDim).
			Headers("SCHEMA", "SOURCE", "OUTPUT", "KIND").
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == 0 {
					return lipgloss.NewStyle().Bold(true).Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
		for _, a := range s.Artifacts {
			t.Row(a.FullName, a.SourceFile, a.OutputRelPath, string(a.Kind))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	for _, f := range s.Failures {
		b.WriteString(styleErr.Render("✗ " + f.String()))
		b.WriteString("\n")
	}
	b.WriteString(styleDim.Render(footer(s)))
	return b.String()
}

// RenderPlainSummary formats a report without styling, one line per entry.
func RenderPlainSummary(s types.ReportSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generation %s\n", s.Status)
	for _, a := range s.Artifacts {
		fmt.Fprintf(&b, "  %s -> %s\n", a.SourceFile, a.OutputRelPath)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(&b, "  FAILED %s\n", f.String())
	}
	b.WriteString(footer(s))
	return b.String()
}

// RenderValidation formats the result of a validate-only pass.
func RenderValidation(v types.ValidationSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d schema file(s) checked, %d error(s)", v.ValidatedFiles, len(v.Failures))
	for _, f := range v.Failures {
		b.WriteString("\n  - ")
		b.WriteString(f.String())
	}
	return b.String()
}

// RenderReportFiles lists where the report sinks wrote, one line per file.
func RenderReportFiles(paths []string) string {
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = "Report generated: " + p
	}
	return strings.Join(lines, "\n")
}

func footer(s types.ReportSummary) string {
	return fmt.Sprintf("%d artifact(s), %d failure(s) in %s (run %s, fingerprint %s)",
		s.ArtifactCount, len(s.Failures), s.Elapsed.Round(time.Millisecond), s.RunID, s.Fingerprint)
}
