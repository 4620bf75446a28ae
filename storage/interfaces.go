package storage

import "listing-etl/models"

// TableReader is the interface any input source must satisfy.
type TableReader interface {
	Read(path string) (*models.Table, error)
}

// TableWriter is the interface any storage backend must satisfy.
type TableWriter interface {
	Write(table *models.Table) error
}

// DBWriter is a TableWriter holding a database connection.
type DBWriter interface {
	TableWriter
	FetchAll() ([]StoredListing, error)
	Close() error
}
