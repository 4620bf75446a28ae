package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"listing-etl/models"
)

// PostgresWriter persists the final listing table to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id            SERIAL PRIMARY KEY,
			price         NUMERIC(14,2) NOT NULL,
			living_area   NUMERIC(10,2),
			scraping_date DATE,
			property_type VARCHAR(50)   NOT NULL,
			attributes    JSONB         NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price         ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);
	`)
	return err
}

// Clear deletes all existing listings from the table.
func (pw *PostgresWriter) Clear() error {
	if _, err := pw.db.Exec("DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the stored listings with the rows of table.
func (pw *PostgresWriter) Write(table *models.Table) error {
	if err := pw.Clear(); err != nil {
		return &models.WriteError{Sink: "postgres", Err: err}
	}
	if err := insertTable(pw.db, table, func(n int) string { return fmt.Sprintf("$%d", n) }); err != nil {
		return &models.WriteError{Sink: "postgres", Err: err}
	}
	return nil
}

// FetchAll retrieves all stored listings in insertion order.
func (pw *PostgresWriter) FetchAll() ([]StoredListing, error) {
	rows, err := pw.db.Query(`
		SELECT id, price, living_area, to_char(scraping_date, 'YYYY-MM-DD'), property_type, attributes
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	return scanListings(rows)
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
