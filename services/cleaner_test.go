package services

import (
	"io"
	"testing"
	"time"

	"listing-etl/models"
	"listing-etl/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, "debug") }

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"120000.00", 120000.00, true},
		{"price: 45000.50 EUR", 45000.50, true},
		{"-12.5 m2", -12.5, true},
		{"80.5", 80.5, true},
		{"1.5 and 2.5", 1.5, true},
		{"N/A", 0, false},
		{"10", 0, false},
		{"", 0, false},
		{"12.", 0, false},
		{".5", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDecimal(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseDecimal(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCleanerDecimalCells(t *testing.T) {
	c := NewCleaner(newTestLogger(), "")

	tests := []struct {
		name    string
		in      models.Cell
		asFloat bool
		want    models.Cell
	}{
		{"string with unit", models.StringCell("80.5 m²"), false, models.FloatCell(80.5)},
		{"decimal number literal", models.NumberCell("120000.00"), false, models.FloatCell(120000)},
		{"float literal", models.NumberCell("120000.0"), false, models.FloatCell(120000)},
		{"exponent literal", models.NumberCell("1.5e5"), false, models.FloatCell(150000)},
		{"integer literal", models.NumberCell("10"), false, models.MissingCell()},
		{"integer literal in float column", models.NumberCell("120000"), true, models.FloatCell(120000)},
		{"huge float renders in exponent form", models.NumberCell("1e16"), true, models.MissingCell()},
		{"bool", models.BoolCell(true), false, models.MissingCell()},
		{"missing", models.MissingCell(), true, models.MissingCell()},
	}

	for _, tt := range tests {
		got := c.decimalParser(tt.asFloat)(tt.in)
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestFloatColumn(t *testing.T) {
	col := models.ColRawPrice
	table := func(cells ...models.Cell) *models.Table {
		tb := models.NewTable([]string{col})
		for _, c := range cells {
			tb.Rows = append(tb.Rows, models.Listing{col: c})
		}
		return tb
	}

	tests := []struct {
		name  string
		table *models.Table
		want  bool
	}{
		{"integers only", table(models.NumberCell("1"), models.NumberCell("2")), false},
		{"integers and a float", table(models.NumberCell("1"), models.NumberCell("2.5")), true},
		{"integers and a null", table(models.NumberCell("1"), models.MissingCell()), true},
		{"mixed with strings", table(models.NumberCell("1.5"), models.StringCell("2.5")), false},
	}

	for _, tt := range tests {
		if got := floatColumn(tt.table, col); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCleanerPromotesIntegersInFloatColumn(t *testing.T) {
	c := NewCleaner(newTestLogger(), "")
	table := &models.Table{
		Columns: []string{models.ColRawPrice},
		Rows: []models.Listing{
			{models.ColRawPrice: models.NumberCell("120000")},
			{models.ColRawPrice: models.NumberCell("1.5e5")},
		},
	}

	got := c.Clean(table)
	if got.Rows[0].Get(models.ColRawPrice) != models.FloatCell(120000) {
		t.Errorf("integer in float column: got %+v", got.Rows[0].Get(models.ColRawPrice))
	}
	if got.Rows[1].Get(models.ColRawPrice) != models.FloatCell(150000) {
		t.Errorf("exponent literal: got %+v", got.Rows[1].Get(models.ColRawPrice))
	}
}

func TestCleanerParseDate(t *testing.T) {
	c := NewCleaner(newTestLogger(), "2006-01-02")

	tests := []struct {
		raw  models.Cell
		want string
	}{
		{models.StringCell("2023-05-10"), "2023-05-10"},
		{models.StringCell("2023-12-31"), "2023-12-31"},
		{models.StringCell("bad-date"), ""},
		{models.StringCell("2023-13-01"), ""},
		{models.StringCell("10/05/2023"), ""},
		{models.NumberCell("20230510"), ""},
		{models.MissingCell(), ""},
	}

	for _, tt := range tests {
		got := c.parseDateCell(tt.raw)
		if got.Text() != tt.want {
			t.Errorf("parseDateCell(%+v) = %q; want %q", tt.raw, got.Text(), tt.want)
		}
		if tt.want == "" && !got.IsMissing() {
			t.Errorf("parseDateCell(%+v) should be missing", tt.raw)
		}
	}
}

func TestCleanerDateIsDayGranularity(t *testing.T) {
	c := NewCleaner(newTestLogger(), time.RFC3339)
	got := c.parseDateCell(models.StringCell("2023-05-10T17:45:00+02:00"))
	if got.Kind != models.Date {
		t.Fatalf("expected a date, got %+v", got)
	}
	if !got.Date.Equal(time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date not truncated to day: %v", got.Date)
	}
}

func TestCleanerKeepsRows(t *testing.T) {
	c := NewCleaner(newTestLogger(), "")
	table := &models.Table{
		Columns: []string{models.ColRawPrice, models.ColLivingArea, models.ColScrapingDate},
		Rows: []models.Listing{
			{models.ColRawPrice: models.StringCell("N/A"), models.ColLivingArea: models.StringCell("x"), models.ColScrapingDate: models.StringCell("nope")},
			{models.ColRawPrice: models.StringCell("100.00"), models.ColLivingArea: models.StringCell("50.0"), models.ColScrapingDate: models.StringCell("2023-01-01")},
		},
	}

	cleaned := c.Clean(table)
	if cleaned.Len() != 2 {
		t.Fatalf("cleaner must not drop rows, got %d", cleaned.Len())
	}
	for _, col := range cleaned.Columns {
		if !cleaned.Rows[0].Get(col).IsMissing() {
			t.Errorf("row 0 %s should be missing", col)
		}
		if cleaned.Rows[1].Get(col).IsMissing() {
			t.Errorf("row 1 %s should be set", col)
		}
	}
}

func TestDropIncompleteAnyColumn(t *testing.T) {
	table := &models.Table{
		Columns: []string{"a", "b"},
		Rows: []models.Listing{
			{"a": models.StringCell("x"), "b": models.StringCell("y")},
			{"a": models.StringCell("x"), "b": models.MissingCell()},
			{"a": models.StringCell("x")},
		},
	}

	got := DropIncomplete(table)
	if got.Len() != 1 {
		t.Errorf("expected 1 complete row, got %d", got.Len())
	}
}
