package storage

import (
	"errors"

	"listing-etl/models"
)

// ErrNotOpened is returned by FetchAll when nothing was ever written.
var ErrNotOpened = errors.New("database sink was never opened")

// LazyDBWriter defers opening a database until the first Write, so a run
// that fails before writing never touches the database.
type LazyDBWriter struct {
	name string
	open func() (DBWriter, error)
	db   DBWriter
}

// NewLazyDBWriter wraps open; name labels the sink in errors.
func NewLazyDBWriter(name string, open func() (DBWriter, error)) *LazyDBWriter {
	return &LazyDBWriter{name: name, open: open}
}

// Write opens the database on first use, then writes the table. A failure to
// open is a *models.WriteError.
func (l *LazyDBWriter) Write(table *models.Table) error {
	if l.db == nil {
		db, err := l.open()
		if err != nil {
			return &models.WriteError{Sink: l.name, Err: err}
		}
		l.db = db
	}
	return l.db.Write(table)
}

func (l *LazyDBWriter) FetchAll() ([]StoredListing, error) {
	if l.db == nil {
		return nil, ErrNotOpened
	}
	return l.db.FetchAll()
}

// Close is a no-op when the database was never opened.
func (l *LazyDBWriter) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
