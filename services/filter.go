package services

import (
	"listing-etl/models"
)

// Criteria is the business rule a listing has to satisfy to be kept.
type Criteria struct {
	AllowedTypes []string
	MinPrice     float64
	MaxPrice     float64
}

// DefaultCriteria keeps apartments and houses priced 500 to 15000 inclusive.
func DefaultCriteria() Criteria {
	return Criteria{
		AllowedTypes: []string{"apartment", "house"},
		MinPrice:     500.0,
		MaxPrice:     15000.0,
	}
}

// Match reports whether the listing's property_type is allowed and its
// raw_price lies within [MinPrice, MaxPrice].
func (c Criteria) Match(l models.Listing) bool {
	price := l.Get(models.ColRawPrice)
	if price.Kind != models.Float {
		return false
	}
	if price.Num < c.MinPrice || price.Num > c.MaxPrice {
		return false
	}
	pt := l.Get(models.ColPropertyType)
	if pt.IsMissing() {
		return false
	}
	for _, allowed := range c.AllowedTypes {
		if pt.Text() == allowed {
			return true
		}
	}
	return false
}

// Filter keeps the rows matching criteria.
func Filter(table *models.Table, criteria Criteria) *models.Table {
	kept := table.Rows[:0]
	for _, row := range table.Rows {
		if criteria.Match(row) {
			kept = append(kept, row)
		}
	}
	table.Rows = kept
	return table
}
