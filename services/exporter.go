package services

import (
	"fmt"
	"math"
	"strconv"

	"car-arbitrage/models"
)

// tabularHeader is the fixed column order of the tabular export.
var tabularHeader = []string{
	"Model", "Title", "Buy Price", "Sell Price", "Net Profit",
	"Location", "Distance (miles)", "Year", "Mileage", "URL", "Profit Margin",
}

// Exporter shapes an aggregate report into the two external document forms.
// It renders values, never markup; presentation belongs to the consumers.
type Exporter struct{}

// NewExporter creates an Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export produces the tabular and structured documents for a report.
func (e *Exporter) Export(report *models.AggregateReport) (*models.TabularDocument, *models.StructuredDocument) {
	tab := &models.TabularDocument{
		Header: tabularHeader,
		Rows:   make([][]string, 0, len(report.Deals)),
	}
	doc := &models.StructuredDocument{
		Deals:       make([]models.DealRecord, 0, len(report.Deals)),
		Summary:     report.Summary,
		GeneratedAt: report.GeneratedAt,
	}

	for _, deal := range report.Deals {
		l := deal.Listing

		year, mileage := "", ""
		if l.Year > 0 {
			year = strconv.Itoa(l.Year)
		}
		if l.Mileage > 0 {
			mileage = strconv.Itoa(l.Mileage)
		}

		tab.Rows = append(tab.Rows, []string{
			deal.ModelKey,
			l.Title,
			"£" + FormatCurrency(l.Price),
			"£" + FormatCurrency(deal.SalePrice),
			"£" + FormatCurrency(deal.NetProfit),
			l.Location,
			fmt.Sprintf("%.1f", deal.DistanceMiles),
			year,
			mileage,
			l.URL,
			fmt.Sprintf("%.1f%%", deal.MarginPct),
		})

		doc.Deals = append(doc.Deals, models.DealRecord{
			Model:         deal.ModelKey,
			Title:         l.Title,
			BuyPrice:      l.Price,
			SalePrice:     deal.SalePrice,
			NetProfit:     deal.NetProfit,
			MarginPct:     round1(deal.MarginPct),
			Location:      l.Location,
			DistanceMiles: round1(deal.DistanceMiles),
			Year:          l.Year,
			Mileage:       l.Mileage,
			Source:        l.Source,
			URL:           l.URL,
		})
	}

	return tab, doc
}

// FormatCurrency renders an amount as whole currency units with thousands
// separators: 10500 → "10,500".
func FormatCurrency(amount float64) string {
	n := int64(math.Round(amount))

	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	return sign + string(out)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
