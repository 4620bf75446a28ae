package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"listing-etl/models"
)

// CSVWriter writes the final listing table to a CSV file: a header row with
// the table's columns, then one line per listing, without an index column.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a writer for path. The file is created (or truncated)
// on Write, with intermediate directories created automatically.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Path returns the destination file.
func (c *CSVWriter) Path() string { return c.path }

// Write serializes the table. Every failure is a *models.WriteError.
func (c *CSVWriter) Write(table *models.Table) error {
	if err := c.write(table); err != nil {
		return &models.WriteError{Sink: "csv " + c.path, Err: err}
	}
	return nil
}

func (c *CSVWriter) write(table *models.Table) (err error) {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close file: %w", cerr)
		}
	}()

	buf := bufio.NewWriter(f)
	w := csv.NewWriter(buf)

	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, l := range table.Rows {
		if err := w.Write(table.Record(l)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush file: %w", err)
	}
	return nil
}
