// Package json renders the machine-readable gate report.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bkyoung/quality-gate/internal/domain"
)

// reportVersion is the JSON report schema version consumed by CI
// tooling.
const reportVersion = "1.0"

type report struct {
	Version  string         `json:"version"`
	Summary  domain.Summary `json:"summary"`
	Findings []jsonFinding  `json:"findings"`
}

type jsonFinding struct {
	RuleID  string `json:"rule_id"`
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Writer writes JSON gate reports.
type Writer struct{}

// NewWriter creates a new JSON report writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write persists the report for the given gates and findings. Empty
// inputs produce a valid all-passed document. The write is atomic and
// I/O errors propagate.
func (w *Writer) Write(path string, gates []domain.GateResult, findings []domain.Finding) error {
	payload := report{
		Version:  reportVersion,
		Summary:  domain.Summarize(gates),
		Findings: make([]jsonFinding, 0, len(findings)),
	}
	for _, f := range findings {
		payload.Findings = append(payload.Findings, jsonFinding{
			RuleID:  f.RuleID,
			Path:    f.Path(),
			Line:    f.Line(),
			Level:   string(f.Level),
			Message: f.Message,
		})
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report file: %w", err)
	}
	tmpPath := tmp.Name()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode json report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close json report: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace json report: %w", err)
	}
	return nil
}
