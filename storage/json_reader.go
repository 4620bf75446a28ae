package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"listing-etl/models"
)

// JSONReader loads a listing table from a double-encoded JSON file: the file
// holds a JSON string whose content is the JSON array of listing records.
type JSONReader struct{}

// NewJSONReader returns a JSONReader.
func NewJSONReader() *JSONReader {
	return &JSONReader{}
}

// Read loads the table stored at path. Every failure is a *models.LoadError.
func (r *JSONReader) Read(path string) (*models.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.LoadError{Path: path, Err: err}
	}

	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, &models.LoadError{Path: path, Err: fmt.Errorf("decode outer json string: %w", err)}
	}

	table, err := DecodeRecords([]byte(inner))
	if err != nil {
		return nil, &models.LoadError{Path: path, Err: fmt.Errorf("decode inner records: %w", err)}
	}
	return table, nil
}

// DecodeRecords parses a JSON array of objects into a table. Columns are the
// union of all record keys in first-seen order; a key absent from a record
// is a missing cell.
func DecodeRecords(data []byte) (*models.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	table := models.NewTable(nil)
	seen := make(map[string]struct{})

	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("record %d: %w", table.Len(), err)
		}
		row := make(models.Listing)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", table.Len(), err)
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("record %d: unexpected token %v", table.Len(), tok)
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", table.Len(), key, err)
			}
			cell, err := cellFromJSON(raw)
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", table.Len(), key, err)
			}
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				table.Columns = append(table.Columns, key)
			}
			row[key] = cell
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, fmt.Errorf("record %d: %w", table.Len(), err)
		}
		table.Rows = append(table.Rows, row)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after records array")
	}
	return table, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func cellFromJSON(raw json.RawMessage) (models.Cell, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return models.MissingCell(), nil
	}
	switch raw[0] {
	case 'n':
		return models.MissingCell(), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.Cell{}, err
		}
		return models.StringCell(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return models.Cell{}, err
		}
		return models.BoolCell(b), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return models.Cell{}, err
		}
		return models.RawCell(buf.String()), nil
	default:
		return models.NumberCell(string(raw)), nil
	}
}
