package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"listing-etl/models"
)

// SQLiteWriter persists the final listing table to a local SQLite file.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens (or creates) the database at path and migrates it.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one connection keeps the file locked by a single writer
	db.SetMaxOpenConns(1)

	sw := &SQLiteWriter{db: db}
	if err := sw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return sw, nil
}

func (sw *SQLiteWriter) migrate() error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			price         REAL NOT NULL,
			living_area   REAL,
			scraping_date TEXT,
			property_type TEXT NOT NULL,
			attributes    TEXT NOT NULL DEFAULT '{}',
			created_at    TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type)`,
	} {
		if _, err := sw.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write replaces the stored listings with the rows of table.
func (sw *SQLiteWriter) Write(table *models.Table) error {
	if err := sw.write(table); err != nil {
		return &models.WriteError{Sink: "sqlite", Err: err}
	}
	return nil
}

func (sw *SQLiteWriter) write(table *models.Table) error {
	if _, err := sw.db.Exec(`DELETE FROM listings`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return insertTable(sw.db, table, func(int) string { return "?" })
}

// FetchAll retrieves all stored listings in insertion order.
func (sw *SQLiteWriter) FetchAll() ([]StoredListing, error) {
	rows, err := sw.db.Query(`
		SELECT id, price, living_area, scraping_date, property_type, attributes
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}
	return scanListings(rows)
}

func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}
