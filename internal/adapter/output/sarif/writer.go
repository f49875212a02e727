// Package sarif persists SARIF documents to disk.
package sarif

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sarifmodel "github.com/bkyoung/quality-gate/internal/sarif"
)

// Writer writes SARIF documents as report artifacts.
type Writer struct{}

// NewWriter creates a new SARIF writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write persists the document to path. The write is atomic (encode to a
// temp file in the target directory, then rename) so a reader never
// observes a partial report. I/O errors propagate to the caller.
func (w *Writer) Write(path string, doc sarifmodel.Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sarif-*")
	if err != nil {
		return fmt.Errorf("create temp sarif file: %w", err)
	}
	tmpPath := tmp.Name()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode sarif document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close sarif file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace sarif file: %w", err)
	}
	return nil
}
