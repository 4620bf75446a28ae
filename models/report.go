package models

// InsightReport holds the summary computed over the final listing table.
type InsightReport struct {
	TotalListings  int
	ListingsByType map[string]int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	AvgPricePerSqm float64
	MostExpensive  Listing
}
