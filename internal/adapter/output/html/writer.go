// Package html renders a self-contained HTML gate report with no
// external assets or scripts.
package html

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
)

const pageTemplate = `<!doctype html>
<html><head><meta charset="utf-8"><title>Quality Gate Report</title>
<style>
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 24px; }
.badge { display:inline-block; padding:2px 8px; border-radius:12px; font-size:12px; }
.badge.pass { background:#e6ffed; color:#05631f; border:1px solid #b6f7c6; }
.badge.fail { background:#ffecec; color:#8a1111; border:1px solid #ffc1c1; }
table { width:100%; border-collapse: collapse; margin-top: 12px; }
th, td { text-align:left; padding:8px; border-bottom:1px solid #eee; }
code { background:#f6f8fa; padding:2px 4px; border-radius:4px; }
.finding-error { color:#8a1111; }
.finding-warning { color:#8a6a11; }
.finding-note { color:#555; }
</style></head>
<body>
<h1>Quality Gate Report</h1>
<p>{{if .Summary.Passed}}<span class="badge pass">ALL GATES PASSED</span>{{else}}<span class="badge fail">GATES FAILED</span>{{end}}</p>

<h2>Gates</h2>
<table>
  <thead><tr><th>Gate</th><th>Status</th><th>Details</th></tr></thead>
  <tbody>
{{- range .Summary.Gates}}
    <tr><td>{{.Name}}</td><td>{{if .Passed}}<span class="badge pass">PASS</span>{{else}}<span class="badge fail">FAIL</span>{{end}}</td><td>{{.Details}}</td></tr>
{{- end}}
  </tbody>
</table>

<h2>Findings</h2>
<table>
  <thead><tr><th>Location</th><th>Level</th><th>Rule</th><th>Message</th></tr></thead>
  <tbody>
{{- if .Findings}}
{{- range .Findings}}
    <tr><td><code>{{.Location}}</code></td><td class="finding-{{.Level}}">{{.LevelUpper}}</td><td><code>{{.RuleID}}</code></td><td>{{.Message}}</td></tr>
{{- end}}
{{- else}}
    <tr><td colspan="4">No findings</td></tr>
{{- end}}
  </tbody>
</table>
</body></html>
`

type pageData struct {
	Summary  domain.Summary
	Findings []findingRow
}

type findingRow struct {
	Location   string
	Level      string
	LevelUpper string
	RuleID     string
	Message    string
}

// Writer renders HTML gate reports.
type Writer struct {
	tmpl *template.Template
}

// NewWriter creates a new HTML report writer.
func NewWriter() *Writer {
	return &Writer{tmpl: template.Must(template.New("report").Parse(pageTemplate))}
}

// Write renders the report to path. Empty inputs produce a valid
// all-passed document; I/O errors propagate.
func (w *Writer) Write(path string, gates []domain.GateResult, findings []domain.Finding) error {
	data := pageData{
		Summary:  domain.Summarize(gates),
		Findings: make([]findingRow, 0, len(findings)),
	}
	for _, f := range findings {
		location := f.Path()
		if line := f.Line(); line > 0 {
			location = fmt.Sprintf("%s:%d", f.Path(), line)
		}
		level := string(f.Level)
		data.Findings = append(data.Findings, findingRow{
			Location:   location,
			Level:      level,
			LevelUpper: strings.ToUpper(level),
			RuleID:     f.RuleID,
			Message:    f.Message,
		})
	}

	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.html")
	if err != nil {
		return fmt.Errorf("create temp html file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write html report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close html report: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace html report: %w", err)
	}
	return nil
}
