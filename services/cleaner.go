package services

import (
	"regexp"
	"strconv"
	"time"

	"listing-etl/models"
	"listing-etl/utils"
)

// decimalRegexp captures a signed decimal number with a mandatory fractional part.
var decimalRegexp = regexp.MustCompile(`-?\d+\.\d+`)

// ParseDecimal extracts the first decimal number embedded in raw.
// Examples:
//
//	"price: 45000.50 EUR" → 45000.50, true
//	"-12.5m2"             → -12.5, true
//	"120000"              → 0, false (no fractional part)
//	"N/A"                 → 0, false
func ParseDecimal(raw string) (float64, bool) {
	match := decimalRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Cleaner coerces the numeric and date columns of a listing table. Values
// that cannot be parsed become missing; no row is dropped here.
type Cleaner struct {
	logger     *utils.Logger
	dateLayout string
}

// NewCleaner creates a Cleaner parsing scraping dates with dateLayout
// (time package layout, e.g. "2006-01-02").
func NewCleaner(logger *utils.Logger, dateLayout string) *Cleaner {
	if dateLayout == "" {
		dateLayout = models.DateLayout
	}
	return &Cleaner{logger: logger, dateLayout: dateLayout}
}

// Clean rewrites raw_price, living_area and scraping_date in every row.
// Columns absent from the table are left alone.
func (c *Cleaner) Clean(table *models.Table) *models.Table {
	c.cleanColumn(table, models.ColRawPrice, c.decimalParser(floatColumn(table, models.ColRawPrice)))
	c.cleanColumn(table, models.ColLivingArea, c.decimalParser(floatColumn(table, models.ColLivingArea)))
	c.cleanColumn(table, models.ColScrapingDate, c.parseDateCell)
	return table
}

func (c *Cleaner) cleanColumn(table *models.Table, col string, parse func(models.Cell) models.Cell) {
	if !table.HasColumn(col) {
		c.logger.Warn("[cleaner] Column %q not present, nothing to clean", col)
		return
	}
	invalid := 0
	for _, row := range table.Rows {
		cell := parse(row.Get(col))
		if cell.IsMissing() {
			invalid++
		}
		row[col] = cell
	}
	if invalid > 0 {
		c.logger.Debug("[cleaner] %s: %d of %d values missing or unparsable", col, invalid, table.Len())
	}
}

// decimalParser extracts decimals from the text form of each cell. JSON
// numbers are first rendered from their value: as a float when the column
// holds floats, as plain digits otherwise.
func (c *Cleaner) decimalParser(asFloat bool) func(models.Cell) models.Cell {
	return func(cell models.Cell) models.Cell {
		if cell.IsMissing() {
			return cell
		}
		text := cell.Text()
		if cell.Kind == models.Number {
			var ok bool
			if text, ok = numberText(cell.Str, asFloat); !ok {
				return models.MissingCell()
			}
		}
		f, ok := ParseDecimal(text)
		if !ok {
			return models.MissingCell()
		}
		return models.FloatCell(f)
	}
}

func numberText(literal string, asFloat bool) (string, bool) {
	if !asFloat && models.IsIntegerLiteral(literal) {
		return literal, true
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return "", false
	}
	return models.FormatFloat(f), true
}

// floatColumn reports whether a column decodes as floating point: every
// value is a JSON number or missing, and at least one is fractional or
// missing. A missing value forces integers to float as well.
func floatColumn(table *models.Table, col string) bool {
	promote := false
	for _, row := range table.Rows {
		switch cell := row.Get(col); cell.Kind {
		case models.Missing:
			promote = true
		case models.Number:
			if !models.IsIntegerLiteral(cell.Str) {
				promote = true
			}
		default:
			return false
		}
	}
	return promote
}

func (c *Cleaner) parseDateCell(cell models.Cell) models.Cell {
	switch cell.Kind {
	case models.Date:
		return cell
	case models.String:
		t, err := time.Parse(c.dateLayout, cell.Str)
		if err != nil {
			return models.MissingCell()
		}
		return models.DateCell(t)
	default:
		return models.MissingCell()
	}
}

// DropIncomplete removes every row that has a missing value in any column.
func DropIncomplete(table *models.Table) *models.Table {
	kept := table.Rows[:0]
	for _, row := range table.Rows {
		if table.Complete(row) {
			kept = append(kept, row)
		}
	}
	table.Rows = kept
	return table
}
