package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"
	spdx23 "github.com/spdx/tools-golang/spdx/v2/v2_3"
	"go.uber.org/zap"

	"github.com/EmundoT/avrogen/internal/types"
	"github.com/EmundoT/avrogen/internal/version"
)

// ReportSink renders a report summary into one file format
type ReportSink interface {
	Name() types.ReportFormat
	FileName() string
	Render(summary types.ReportSummary) ([]byte, error)
}

// SinkFor returns the sink for a configured format
func SinkFor(format types.ReportFormat) (ReportSink, error) {
	switch format {
	case types.ReportHTML:
		return HTMLSink{}, nil
	case types.ReportJSON:
		return JSONSink{}, nil
	case types.ReportCycloneDX:
		return CycloneDXSink{}, nil
	case types.ReportSPDX:
		return SPDXSink{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", ErrInvalidConfig, format)
	}
}

// ===== HTML =====

// HTMLSink writes a standalone HTML page
type HTMLSink struct{}

func (HTMLSink) Name() types.ReportFormat { return types.ReportHTML }
func (HTMLSink) FileName() string         { return HTMLReportFile }

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"stamp":     func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"generator": version.GeneratorID,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Avro generation report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.SUCCESS { color: #2e7d32; }
.FAILED { color: #c62828; }
</style>
</head>
<body>
<h1>Avro generation report</h1>
<p>Generated by {{generator}} at {{stamp .GeneratedAt}} (run {{.RunID}})</p>
<p>Status: <strong class="{{.Status}}">{{.Status}}</strong></p>
<p>Artifacts: {{.ArtifactCount}}, elapsed: {{.Elapsed}}, fingerprint: <code>{{.Fingerprint}}</code></p>
<table>
<tr><th>Name</th><th>Kind</th><th>Source file</th><th>Output file</th></tr>
{{- range .Artifacts}}
<tr><td>{{.FullName}}</td><td>{{.Kind}}</td><td>{{.SourceFile}}</td><td>{{.OutputRelPath}}</td></tr>
{{- end}}
</table>
{{- if .Failures}}
<h2>Failures</h2>
<ul>
{{- range .Failures}}
<li>{{.FileName}}: {{.Reason}}</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

func (HTMLSink) Render(summary types.ReportSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, summary); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== JSON =====

// JSONSink writes the summary as indented JSON
type JSONSink struct{}

func (JSONSink) Name() types.ReportFormat { return types.ReportJSON }
func (JSONSink) FileName() string         { return JSONReportFile }

func (JSONSink) Render(summary types.ReportSummary) ([]byte, error) {
	if summary.Artifacts == nil {
		summary.Artifacts = []types.GeneratedArtifact{}
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json report: %w", err)
	}
	return append(data, '\n'), nil
}

// ===== CycloneDX =====

// CycloneDXSink lists every generated file as a CycloneDX file component
type CycloneDXSink struct{}

func (CycloneDXSink) Name() types.ReportFormat { return types.ReportCycloneDX }
func (CycloneDXSink) FileName() string         { return CycloneDXReportFile }

func (CycloneDXSink) Render(summary types.ReportSummary) ([]byte, error) {
	bom := cdx.NewBOM()
	if summary.RunID != "" {
		bom.SerialNumber = "urn:uuid:" + summary.RunID
	}
	bom.Version = 1

	bom.Metadata = &cdx.Metadata{
		Timestamp: summary.GeneratedAt.UTC().Format(time.RFC3339),
		Tools: &cdx.ToolsChoice{
			Tools: &[]cdx.Tool{
				{
					Vendor:  "avrogen",
					Name:    "avrogen",
					Version: version.GetVersion(),
				},
			},
		},
		Component: &cdx.Component{
			Type:    cdx.ComponentTypeApplication,
			Name:    "avro-generated-sources",
			Version: summary.Fingerprint,
		},
		Properties: &[]cdx.Property{
			{Name: "avrogen:status", Value: string(summary.Status)},
			{Name: "avrogen:fingerprint", Value: summary.Fingerprint},
			{Name: "avrogen:failures", Value: fmt.Sprint(len(summary.Failures))},
		},
	}

	components := make([]cdx.Component, 0, len(summary.Artifacts))
	for _, a := range summary.Artifacts {
		component := cdx.Component{
			BOMRef: "file:" + a.OutputRelPath,
			Type:   cdx.ComponentTypeFile,
			Name:   a.OutputRelPath,
			Properties: &[]cdx.Property{
				{Name: "avrogen:schema", Value: a.FullName},
				{Name: "avrogen:source_file", Value: a.SourceFile},
				{Name: "avrogen:source_kind", Value: string(a.Kind)},
			},
		}
		if a.Checksum != "" {
			component.Hashes = &[]cdx.Hash{
				{Algorithm: cdx.HashAlgoSHA256, Value: a.Checksum},
			}
		}
		components = append(components, component)
	}
	bom.Components = &components

	var buf strings.Builder
	encoder := cdx.NewBOMEncoder(&buf, cdx.BOMFileFormatJSON)
	encoder.SetPretty(true)
	if err := encoder.Encode(bom); err != nil {
		return nil, fmt.Errorf("encode CycloneDX: %w", err)
	}
	return []byte(buf.String()), nil
}

// ===== SPDX =====

// SPDXSink describes the generated files as an SPDX 2.3 document
type SPDXSink struct{}

func (SPDXSink) Name() types.ReportFormat { return types.ReportSPDX }
func (SPDXSink) FileName() string         { return SPDXReportFile }

func (SPDXSink) Render(summary types.ReportSummary) ([]byte, error) {
	doc := &spdx23.Document{
		SPDXVersion:       spdx.Version,
		DataLicense:       spdx.DataLicense,
		SPDXIdentifier:    common.ElementID("DOCUMENT"),
		DocumentName:      "avro-generated-sources",
		DocumentNamespace: fmt.Sprintf("https://avrogen.dev/spdx/%s", summary.RunID),
		CreationInfo: &spdx23.CreationInfo{
			Created: summary.GeneratedAt.UTC().Format(time.RFC3339),
			Creators: []common.Creator{
				{CreatorType: "Tool", Creator: "avrogen-" + version.GetVersion()},
			},
		},
	}

	files := make([]*spdx23.File, 0, len(summary.Artifacts))
	relationships := make([]*spdx23.Relationship, 0, len(summary.Artifacts))
	for _, a := range summary.Artifacts {
		id := "File-" + sanitizeSPDXID(a.OutputRelPath)
		file := &spdx23.File{
			FileName:           "./" + a.OutputRelPath,
			FileSPDXIdentifier: common.ElementID(id),
			FileTypes:          []string{"SOURCE"},
			LicenseConcluded:   "NOASSERTION",
			FileCopyrightText:  "NOASSERTION",
			FileComment:        fmt.Sprintf("schema=%s, source=%s", a.FullName, a.SourceFile),
		}
		if a.Checksum != "" {
			file.Checksums = []common.Checksum{{Algorithm: common.SHA256, Value: a.Checksum}}
		}
		files = append(files, file)

		// RefB must match the file's SPDXID exactly
		relationships = append(relationships, &spdx23.Relationship{
			RefA:         common.MakeDocElementID("", "DOCUMENT"),
			RefB:         common.MakeDocElementID("", id),
			Relationship: "DESCRIBES",
		})
	}
	doc.Files = files
	doc.Relationships = relationships

	return spdxToJSON(doc)
}

// sanitizeSPDXID converts a string to a valid SPDX identifier
// SPDX IDs must match [a-zA-Z0-9.-]+
func sanitizeSPDXID(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' {
			result.WriteRune(r)
		} else {
			result.WriteRune('-')
		}
	}
	return result.String()
}

// spdxJSON is the JSON representation of an SPDX document
// Using explicit struct to ensure proper JSON field names per SPDX 2.3
type spdxJSON struct {
	SPDXVersion       string                 `json:"spdxVersion"`
	DataLicense       string                 `json:"dataLicense"`
	SPDXID            string                 `json:"SPDXID"`
	Name              string                 `json:"name"`
	DocumentNamespace string                 `json:"documentNamespace"`
	CreationInfo      spdxCreationInfoJSON   `json:"creationInfo"`
	Files             []spdxFileJSON         `json:"files"`
	Relationships     []spdxRelationshipJSON `json:"relationships"`
}

type spdxCreationInfoJSON struct {
	Created  string   `json:"created"`
	Creators []string `json:"creators"`
}

type spdxFileJSON struct {
	SPDXID           string             `json:"SPDXID"`
	FileName         string             `json:"fileName"`
	FileTypes        []string           `json:"fileTypes,omitempty"`
	Checksums        []spdxChecksumJSON `json:"checksums,omitempty"`
	LicenseConcluded string             `json:"licenseConcluded"`
	CopyrightText    string             `json:"copyrightText"`
	Comment          string             `json:"comment,omitempty"`
}

type spdxChecksumJSON struct {
	Algorithm     string `json:"algorithm"`
	ChecksumValue string `json:"checksumValue"`
}

type spdxRelationshipJSON struct {
	SPDXElementID      string `json:"spdxElementId"`
	RelationshipType   string `json:"relationshipType"`
	RelatedSPDXElement string `json:"relatedSpdxElement"`
}

// spdxToJSON converts an SPDX document to JSON bytes using explicit structs
func spdxToJSON(doc *spdx23.Document) ([]byte, error) {
	creators := make([]string, 0, len(doc.CreationInfo.Creators))
	for _, c := range doc.CreationInfo.Creators {
		creators = append(creators, fmt.Sprintf("%s: %s", c.CreatorType, c.Creator))
	}

	files := make([]spdxFileJSON, 0, len(doc.Files))
	for _, f := range doc.Files {
		jf := spdxFileJSON{
			SPDXID:           fmt.Sprintf("SPDXRef-%s", f.FileSPDXIdentifier),
			FileName:         f.FileName,
			FileTypes:        f.FileTypes,
			LicenseConcluded: f.LicenseConcluded,
			CopyrightText:    f.FileCopyrightText,
			Comment:          f.FileComment,
		}
		for _, cs := range f.Checksums {
			jf.Checksums = append(jf.Checksums, spdxChecksumJSON{
				Algorithm:     string(cs.Algorithm),
				ChecksumValue: cs.Value,
			})
		}
		files = append(files, jf)
	}

	relationships := make([]spdxRelationshipJSON, 0, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		relationships = append(relationships, spdxRelationshipJSON{
			SPDXElementID:      fmt.Sprintf("SPDXRef-%s", rel.RefA.ElementRefID),
			RelationshipType:   rel.Relationship,
			RelatedSPDXElement: fmt.Sprintf("SPDXRef-%s", rel.RefB.ElementRefID),
		})
	}

	jsonDoc := spdxJSON{
		SPDXVersion:       doc.SPDXVersion,
		DataLicense:       doc.DataLicense,
		SPDXID:            fmt.Sprintf("SPDXRef-%s", doc.SPDXIdentifier),
		Name:              doc.DocumentName,
		DocumentNamespace: doc.DocumentNamespace,
		CreationInfo: spdxCreationInfoJSON{
			Created:  doc.CreationInfo.Created,
			Creators: creators,
		},
		Files:         files,
		Relationships: relationships,
	}

	return json.MarshalIndent(jsonDoc, "", "  ")
}

// ===== Writer =====

// ReportWriter writes a summary through every configured sink
type ReportWriter struct {
	fs     FileSystem
	sinks  []ReportSink
	logger *zap.Logger
}

// NewReportWriter resolves the configured formats into sinks.
// Unknown formats are rejected here so config errors surface before a run.
func NewReportWriter(fs FileSystem, formats []types.ReportFormat, logger *zap.Logger) (*ReportWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &ReportWriter{fs: fs, logger: logger}
	seen := make(map[types.ReportFormat]bool, len(formats))
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		sink, err := SinkFor(f)
		if err != nil {
			return nil, err
		}
		w.sinks = append(w.sinks, sink)
	}
	return w, nil
}

// Write renders every sink into dir. A failing sink is logged and skipped;
// report problems never fail the run. It returns the paths written and the
// sink errors, in sink order.
func (w *ReportWriter) Write(dir string, summary types.ReportSummary) ([]string, []error) {
	var (
		written []string
		errs    []error
	)
	for _, sink := range w.sinks {
		target := filepath.Join(dir, sink.FileName())
		data, err := sink.Render(summary)
		if err == nil {
			err = w.fs.WriteFile(target, data)
		}
		if err != nil {
			w.logger.Warn("report sink failed",
				zap.String("run_id", summary.RunID),
				zap.String("sink", string(sink.Name())),
				zap.String("file", path.Base(filepath.ToSlash(target))),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s report: %w", sink.Name(), err))
			continue
		}
		written = append(written, target)
	}
	return written, errs
}
