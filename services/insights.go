package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"listing-etl/models"
	"listing-etl/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarizes a shaped table (price column already renamed).
func (s *InsightService) Generate(table *models.Table) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByType: make(map[string]int),
	}
	if table == nil || table.Len() == 0 {
		return report
	}

	report.TotalListings = table.Len()

	var (
		total, sqmTotal float64
		priced, sqmRows int
	)
	for _, l := range table.Rows {
		if pt := l.Get(models.ColPropertyType); !pt.IsMissing() {
			report.ListingsByType[pt.Text()]++
		}

		price := l.Get(models.ColPrice)
		if price.Kind != models.Float {
			continue
		}
		if priced == 0 || price.Num < report.MinPrice {
			report.MinPrice = price.Num
		}
		if priced == 0 || price.Num > report.MaxPrice {
			report.MaxPrice = price.Num
			report.MostExpensive = l
		}
		total += price.Num
		priced++

		if area := l.Get(models.ColLivingArea); area.Kind == models.Float && area.Num > 0 {
			sqmTotal += price.Num / area.Num
			sqmRows++
		}
	}

	if priced > 0 {
		report.AveragePrice = round2(total / float64(priced))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}
	if sqmRows > 0 {
		report.AvgPricePerSqm = round2(sqmTotal / float64(sqmRows))
	}

	s.logger.Debug("[insights] %d listings summarized, %d with a usable living area", priced, sqmRows)
	return report
}

// Print writes the report as a boxed console summary.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  LISTING ETL SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings kept : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalListings > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m%.2f\033[0m\n", r.MaxPrice)
		if r.AvgPricePerSqm > 0 {
			fmt.Fprintf(w, "  Average / m²  : \033[1;32m%.2f\033[0m\n", r.AvgPricePerSqm)
		}
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  Type  : %s\n", truncate(r.MostExpensive.Get(models.ColPropertyType).Text(), 40))
		fmt.Fprintf(w, "  Area  : %s m²\n", r.MostExpensive.Get(models.ColLivingArea).Text())
		fmt.Fprintf(w, "  Price : \033[1;31m%s\033[0m\n", r.MostExpensive.Get(models.ColPrice).Text())
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Listings by Property Type\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByType) == 0 {
		fmt.Fprintf(w, "  No property type data\n")
	} else {
		type typeCount struct {
			name  string
			count int
		}
		var types []typeCount
		for name, cnt := range r.ListingsByType {
			types = append(types, typeCount{name, cnt})
		}
		sort.Slice(types, func(i, j int) bool {
			if types[i].count != types[j].count {
				return types[i].count > types[j].count
			}
			return types[i].name < types[j].name
		})
		for _, tc := range types {
			label := runewidth.FillRight(truncate(tc.name, 28), 30)
			fmt.Fprintf(w, "  %s %s (%d)\n", label, strings.Repeat("█", min(tc.count, 20)), tc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	if f < 0 {
		return -round2(-f)
	}
	return float64(int64(f*100+0.5)) / 100
}

// truncate shortens s to max display columns, marking the cut with "...".
func truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "...")
}
