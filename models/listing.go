package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Well-known listing columns.
const (
	ColRawPrice     = "raw_price"
	ColPrice        = "price"
	ColLivingArea   = "living_area"
	ColScrapingDate = "scraping_date"
	ColPropertyType = "property_type"
	ColMunicipality = "municipality"
)

// DateLayout is how day-granularity dates are rendered.
const DateLayout = "2006-01-02"

// Kind tells which value a Cell holds.
type Kind int

const (
	Missing Kind = iota
	String
	Number // JSON number, kept as its source literal
	Float  // value produced by parsing
	Bool
	Date
	Raw // nested JSON object or array, kept as compact JSON
)

// Cell is one field of a Listing. A zero Cell is missing.
type Cell struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Date time.Time
}

func MissingCell() Cell               { return Cell{} }
func StringCell(s string) Cell        { return Cell{Kind: String, Str: s} }
func NumberCell(literal string) Cell  { return Cell{Kind: Number, Str: literal} }
func FloatCell(f float64) Cell        { return Cell{Kind: Float, Num: f} }
func BoolCell(b bool) Cell            { return Cell{Kind: Bool, Bool: b} }
func RawCell(compactJSON string) Cell { return Cell{Kind: Raw, Str: compactJSON} }

// DateCell truncates t to its calendar day in UTC.
func DateCell(t time.Time) Cell {
	y, m, d := t.Date()
	return Cell{Kind: Date, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return c.Kind == Missing }

// Text renders the cell the way it is written to CSV. Missing cells render
// as the empty string.
func (c Cell) Text() string {
	switch c.Kind {
	case String, Number, Raw:
		return c.Str
	case Float:
		return FormatFloat(c.Num)
	case Bool:
		if c.Bool {
			return "True"
		}
		return "False"
	case Date:
		return c.Date.Format(DateLayout)
	default:
		return ""
	}
}

// FormatFloat writes the shortest representation of f that always carries a
// decimal part, so 500 becomes "500.0". Exponents below -4 or from 16 up use
// scientific notation ("1e+16", "1.5e-05").
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	if exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:]); err == nil && (exp < -4 || exp >= 16) {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// IsIntegerLiteral reports whether a JSON number literal is spelled without
// a fraction or exponent.
func IsIntegerLiteral(literal string) bool {
	return literal != "" && !strings.ContainsAny(literal, ".eE")
}

// Listing is one real-estate record keyed by column name.
type Listing map[string]Cell

// Get returns the cell for col, missing if the column is not set.
func (l Listing) Get(col string) Cell {
	return l[col]
}

// Table is an ordered set of columns and the listings that carry them.
type Table struct {
	Columns []string
	Rows    []Listing
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether col is part of the table schema.
func (t *Table) HasColumn(col string) bool {
	return t.ColumnIndex(col) >= 0
}

// ColumnIndex returns the position of col, or -1.
func (t *Table) ColumnIndex(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Complete reports whether l has a value for every column of the table.
func (t *Table) Complete(l Listing) bool {
	for _, col := range t.Columns {
		if l.Get(col).IsMissing() {
			return false
		}
	}
	return true
}

// Record returns the listing's cells in column order, rendered as text.
func (t *Table) Record(l Listing) []string {
	rec := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		rec[i] = l.Get(col).Text()
	}
	return rec
}
