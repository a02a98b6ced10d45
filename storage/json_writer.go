package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"car-arbitrage/models"
)

var _ StructuredWriter = (*JSONWriter)(nil)

// JSONWriter writes the structured deal document to a JSON file for the
// dashboard and any other downstream consumer.
type JSONWriter struct {
	mu   sync.Mutex
	path string
}

// NewJSONWriter prepares the output location.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{path: path}, nil
}

// WriteStructured replaces the file with the given document.
func (j *JSONWriter) WriteStructured(doc *models.StructuredDocument) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal document: %w", err)
	}

	if err := os.WriteFile(j.path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", j.path, err)
	}
	return nil
}

// Close is a no-op; the writer holds no open handle between writes.
func (j *JSONWriter) Close() error { return nil }
