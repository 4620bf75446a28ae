package services

import (
	"strings"

	"listing-etl/models"
)

// Normalizer converts prices from minor to major currency units and
// lowercases property types.
type Normalizer struct {
	priceDivisor float64
}

// NewNormalizer returns a Normalizer dividing raw prices by priceDivisor
// (100 for cents). A zero divisor falls back to 100.
func NewNormalizer(priceDivisor float64) *Normalizer {
	if priceDivisor == 0 {
		priceDivisor = 100.0
	}
	return &Normalizer{priceDivisor: priceDivisor}
}

// Normalize rescales raw_price and lowercases property_type in every row.
// Missing cells stay missing.
func (n *Normalizer) Normalize(table *models.Table) *models.Table {
	for _, row := range table.Rows {
		if price := row.Get(models.ColRawPrice); price.Kind == models.Float {
			row[models.ColRawPrice] = models.FloatCell(price.Num / n.priceDivisor)
		}
		if pt := row.Get(models.ColPropertyType); !pt.IsMissing() {
			row[models.ColPropertyType] = models.StringCell(strings.ToLower(pt.Text()))
		}
	}
	return table
}
