package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"car-arbitrage/models"
)

var _ TabularWriter = (*CSVWriter)(nil)

// CSVWriter writes the tabular deal document to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewCSVWriter prepares the output location, creating intermediate
// directories automatically. The file itself is created on first write so an
// empty run leaves no stray artifact.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// WriteTabular writes (or rewrites) the document: header first, then one
// row per deal in the document's order.
func (c *CSVWriter) WriteTabular(doc *models.TabularDocument) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	if c.file != nil {
		_ = c.file.Close()
	}
	c.file = f

	w := csv.NewWriter(f)
	if err := w.Write(doc.Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range doc.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// Close closes the underlying file if one was created.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
