package github

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultAnnotationsPath is where the annotation payload lands unless
// configured otherwise.
const DefaultAnnotationsPath = "pr-annotations.json"

// WriteAnnotations persists the annotation payload as a JSON array for
// the posting layer to pick up. The write is atomic: the file either
// holds the previous complete payload or the new one.
func WriteAnnotations(path string, annotations []PRAnnotation) error {
	if annotations == nil {
		annotations = []PRAnnotation{}
	}

	data, err := json.MarshalIndent(annotations, "", "  ")
	if err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".annotations-*.json")
	if err != nil {
		return fmt.Errorf("create temp annotations file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write annotations: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close annotations file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace annotations file: %w", err)
	}
	return nil
}
