package services

import (
	"listing-etl/models"
)

// Shape renames raw_price to price, keeping its position, and drops
// municipality. A *models.SchemaError is returned if either column is absent.
func Shape(table *models.Table) (*models.Table, error) {
	priceIdx := table.ColumnIndex(models.ColRawPrice)
	if priceIdx < 0 {
		return nil, &models.SchemaError{Column: models.ColRawPrice}
	}
	if !table.HasColumn(models.ColMunicipality) {
		return nil, &models.SchemaError{Column: models.ColMunicipality}
	}

	columns := make([]string, 0, len(table.Columns))
	for i, col := range table.Columns {
		switch {
		case i == priceIdx:
			columns = append(columns, models.ColPrice)
		case col == models.ColMunicipality, col == models.ColPrice:
			// a pre-existing price column is replaced by the renamed one
		default:
			columns = append(columns, col)
		}
	}

	for _, row := range table.Rows {
		row[models.ColPrice] = row.Get(models.ColRawPrice)
		delete(row, models.ColRawPrice)
		delete(row, models.ColMunicipality)
	}
	table.Columns = columns
	return table, nil
}
