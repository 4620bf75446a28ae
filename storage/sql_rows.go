package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"listing-etl/models"
)

// StoredListing is a listing as persisted in a database sink. Columns that
// have no dedicated field are kept in Attributes as their CSV text.
type StoredListing struct {
	ID           int64
	Price        float64
	LivingArea   sql.NullFloat64
	ScrapingDate sql.NullTime
	PropertyType string
	Attributes   map[string]string
}

const insertColumns = 5

var dedicatedColumns = map[string]struct{}{
	models.ColPrice:        {},
	models.ColLivingArea:   {},
	models.ColScrapingDate: {},
	models.ColPropertyType: {},
}

// rowArgs returns the insert arguments for one listing in the order
// price, living_area, scraping_date, property_type, attributes.
func rowArgs(table *models.Table, l models.Listing) ([]any, error) {
	price, err := cellFloat(l.Get(models.ColPrice))
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	var area any
	if c := l.Get(models.ColLivingArea); !c.IsMissing() {
		f, err := cellFloat(c)
		if err != nil {
			return nil, fmt.Errorf("living_area: %w", err)
		}
		area = f
	}

	var date any
	if c := l.Get(models.ColScrapingDate); c.Kind == models.Date {
		date = c.Date.Format(models.DateLayout)
	}

	attrs := make(map[string]string)
	for _, col := range table.Columns {
		if _, ok := dedicatedColumns[col]; ok {
			continue
		}
		attrs[col] = l.Get(col).Text()
	}
	// map keys are marshalled sorted, so the document is stable across runs
	attrJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}

	return []any{price, area, date, l.Get(models.ColPropertyType).Text(), string(attrJSON)}, nil
}

func cellFloat(c models.Cell) (float64, error) {
	switch c.Kind {
	case models.Float:
		return c.Num, nil
	case models.Missing:
		return 0, fmt.Errorf("missing value")
	default:
		return strconv.ParseFloat(c.Text(), 64)
	}
}

// insertTable writes the rows in batches using the given placeholder style.
func insertTable(db *sql.DB, table *models.Table, placeholder func(n int) string) error {
	const batchSize = 50
	for i := 0; i < len(table.Rows); i += batchSize {
		end := i + batchSize
		if end > len(table.Rows) {
			end = len(table.Rows)
		}
		if err := insertBatch(db, table, table.Rows[i:end], placeholder); err != nil {
			return err
		}
	}
	return nil
}

func insertBatch(db *sql.DB, table *models.Table, batch []models.Listing, placeholder func(n int) string) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*insertColumns)

	for idx, l := range batch {
		args, err := rowArgs(table, l)
		if err != nil {
			return err
		}
		base := idx * insertColumns
		ph := make([]string, insertColumns)
		for j := range ph {
			ph[j] = placeholder(base + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (price, living_area, scraping_date, property_type, attributes)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := db.Exec(query, valueArgs...)
	return err
}

// scanListings reads rows selected as
// id, price, living_area, scraping_date, property_type, attributes.
func scanListings(rows *sql.Rows) ([]StoredListing, error) {
	defer rows.Close()

	var listings []StoredListing
	for rows.Next() {
		var (
			l     StoredListing
			date  sql.NullString
			attrs []byte
		)
		if err := rows.Scan(&l.ID, &l.Price, &l.LivingArea, &date, &l.PropertyType, &attrs); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if date.Valid {
			t, err := time.Parse(models.DateLayout, date.String[:min(len(date.String), len(models.DateLayout))])
			if err != nil {
				return nil, fmt.Errorf("scan row %d: scraping_date: %w", l.ID, err)
			}
			l.ScrapingDate = sql.NullTime{Time: t, Valid: true}
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &l.Attributes); err != nil {
				return nil, fmt.Errorf("scan row %d: attributes: %w", l.ID, err)
			}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
