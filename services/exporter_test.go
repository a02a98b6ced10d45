package services

import (
	"testing"
	"time"

	"car-arbitrage/models"
)

func exportReport() *models.AggregateReport {
	listing := &models.RawListing{
		ModelKey: "bmw_e46_330",
		Source:   "autotrader",
		Title:    "BMW E46 330Ci Sport",
		Price:    8500,
		Location: "Manchester",
		URL:      "https://www.autotrader.co.uk/car-details/1",
		Year:     2004,
		Mileage:  89000,
	}
	deal := &models.Deal{
		Listing:       listing,
		ModelKey:      "bmw_e46_330",
		DistanceMiles: 31.24,
		SalePrice:     10500,
		NetProfit:     1550,
		MarginPct:     18.235,
	}
	return &models.AggregateReport{
		Deals:       []*models.Deal{deal},
		Summary:     models.Summary{Count: 1, TotalProfit: 1550, AverageProfit: 1550, BestMargin: 18.235},
		GeneratedAt: time.Date(2026, 2, 12, 9, 30, 0, 0, time.UTC),
	}
}

func TestExportTabularColumns(t *testing.T) {
	tab, _ := NewExporter().Export(exportReport())

	wantHeader := []string{
		"Model", "Title", "Buy Price", "Sell Price", "Net Profit",
		"Location", "Distance (miles)", "Year", "Mileage", "URL", "Profit Margin",
	}
	if len(tab.Header) != len(wantHeader) {
		t.Fatalf("header = %v; want %v", tab.Header, wantHeader)
	}
	for i := range wantHeader {
		if tab.Header[i] != wantHeader[i] {
			t.Fatalf("header[%d] = %q; want %q", i, tab.Header[i], wantHeader[i])
		}
	}

	if len(tab.Rows) != 1 {
		t.Fatalf("rows = %d; want 1", len(tab.Rows))
	}
	row := tab.Rows[0]
	want := []string{
		"bmw_e46_330",
		"BMW E46 330Ci Sport",
		"£8,500",
		"£10,500",
		"£1,550",
		"Manchester",
		"31.2",
		"2004",
		"89000",
		"https://www.autotrader.co.uk/car-details/1",
		"18.2%",
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %q; want %q", i, row[i], want[i])
		}
	}
}

func TestExportStructuredDocument(t *testing.T) {
	report := exportReport()
	_, doc := NewExporter().Export(report)

	if len(doc.Deals) != 1 {
		t.Fatalf("deals = %d; want 1", len(doc.Deals))
	}
	rec := doc.Deals[0]
	if rec.Model != "bmw_e46_330" || rec.Source != "autotrader" {
		t.Errorf("record identity = %s/%s", rec.Model, rec.Source)
	}
	if rec.BuyPrice != 8500 || rec.SalePrice != 10500 || rec.NetProfit != 1550 {
		t.Errorf("economics = %.0f/%.0f/%.0f", rec.BuyPrice, rec.SalePrice, rec.NetProfit)
	}
	if rec.MarginPct != 18.2 {
		t.Errorf("margin = %.2f; want rounded 18.2", rec.MarginPct)
	}
	if rec.DistanceMiles != 31.2 {
		t.Errorf("distance = %.2f; want rounded 31.2", rec.DistanceMiles)
	}

	if doc.Summary != report.Summary {
		t.Errorf("summary = %+v; want %+v", doc.Summary, report.Summary)
	}
	if !doc.GeneratedAt.Equal(report.GeneratedAt) {
		t.Errorf("timestamp = %v; want %v", doc.GeneratedAt, report.GeneratedAt)
	}
}

func TestExportUnsetYearAndMileage(t *testing.T) {
	report := exportReport()
	report.Deals[0].Listing.Year = 0
	report.Deals[0].Listing.Mileage = 0

	tab, _ := NewExporter().Export(report)
	row := tab.Rows[0]
	if row[7] != "" || row[8] != "" {
		t.Errorf("year/mileage cells = %q/%q; want empty when unreported", row[7], row[8])
	}
}

func TestExportEmptyReport(t *testing.T) {
	report := &models.AggregateReport{GeneratedAt: time.Now()}
	tab, doc := NewExporter().Export(report)
	if len(tab.Rows) != 0 || len(doc.Deals) != 0 {
		t.Error("empty report must export empty documents")
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0"},
		{950, "950"},
		{1550, "1,550"},
		{10500, "10,500"},
		{1234567, "1,234,567"},
		{-2500, "-2,500"},
		{999.6, "1,000"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.amount); got != tt.want {
			t.Errorf("FormatCurrency(%.1f) = %q; want %q", tt.amount, got, tt.want)
		}
	}
}
