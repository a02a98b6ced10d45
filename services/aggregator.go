package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"car-arbitrage/models"
	"car-arbitrage/utils"
)

// Aggregator merges the deals from every model and source into one ranked,
// deduplicated report. It is the single stage that needs the full deal set
// at once, so concurrent evaluation always funnels through it.
type Aggregator struct {
	logger *utils.Logger
}

// NewAggregator creates an Aggregator with the given logger.
func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate deduplicates by listing URL (keeping the higher net profit when
// overlapping model rules matched the same listing), ranks by net profit,
// and computes the summary statistics. Empty input yields an empty report.
func (a *Aggregator) Aggregate(deals []*models.Deal) *models.AggregateReport {
	report := &models.AggregateReport{GeneratedAt: time.Now()}

	byURL := make(map[string]*models.Deal, len(deals))
	for _, deal := range deals {
		url := deal.Listing.URL
		existing, dup := byURL[url]
		if !dup {
			byURL[url] = deal
			continue
		}

		report.Duplicates++
		if deal.NetProfit > existing.NetProfit {
			a.logger.Debug("[aggregator] Duplicate %s: keeping %s over %s (£%.0f > £%.0f)",
				url, deal.ModelKey, existing.ModelKey, deal.NetProfit, existing.NetProfit)
			byURL[url] = deal
		} else {
			a.logger.Debug("[aggregator] Duplicate %s: discarding %s (£%.0f ≤ £%.0f)",
				url, deal.ModelKey, deal.NetProfit, existing.NetProfit)
		}
	}

	retained := make([]*models.Deal, 0, len(byURL))
	for _, deal := range byURL {
		retained = append(retained, deal)
	}

	// Net profit descending, margin breaking ties, URL for full determinism.
	sort.SliceStable(retained, func(i, j int) bool {
		if retained[i].NetProfit != retained[j].NetProfit {
			return retained[i].NetProfit > retained[j].NetProfit
		}
		if retained[i].MarginPct != retained[j].MarginPct {
			return retained[i].MarginPct > retained[j].MarginPct
		}
		return retained[i].Listing.URL < retained[j].Listing.URL
	})

	report.Deals = retained
	report.Summary = summarise(retained)

	a.logger.Info("[aggregator] %d deals retained (%d duplicates discarded), total profit £%.0f",
		report.Summary.Count, report.Duplicates, report.Summary.TotalProfit)
	return report
}

func summarise(deals []*models.Deal) models.Summary {
	s := models.Summary{Count: len(deals)}
	if len(deals) == 0 {
		return s
	}

	for _, deal := range deals {
		s.TotalProfit += deal.NetProfit
		if deal.MarginPct > s.BestMargin {
			s.BestMargin = deal.MarginPct
		}
	}
	s.AverageProfit = s.TotalProfit / float64(len(deals))
	return s
}

// Print renders the run summary and the top opportunities to the terminal.
func (a *Aggregator) Print(report *models.AggregateReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  CAR ARBITRAGE SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	if report.Summary.Count == 0 {
		fmt.Printf("  No profitable deals found matching criteria.\n")
		fmt.Printf("  Try a wider radius, higher price ceilings or lower profit thresholds.\n\n")
		return
	}

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Deals found            : \033[1m%d\033[0m\n", report.Summary.Count)
	fmt.Printf("  Total potential profit : \033[1;32m£%s\033[0m\n", FormatCurrency(report.Summary.TotalProfit))
	fmt.Printf("  Average profit per car : \033[1;32m£%s\033[0m\n", FormatCurrency(report.Summary.AverageProfit))
	fmt.Printf("  Best profit margin     : \033[1;32m%.1f%%\033[0m\n", report.Summary.BestMargin)
	fmt.Println()

	top := report.Deals
	if len(top) > 5 {
		top = top[:5]
	}

	fmt.Printf("\033[1;33m  Top %d Opportunities\033[0m\n", len(top))
	fmt.Printf("  %s\n", thin)
	for i, deal := range top {
		fmt.Printf("  \033[1m%d.\033[0m %s\n", i+1, truncate(deal.Listing.Title, 48))
		fmt.Printf("     Buy £%s → Sell £%s | net \033[1;32m£%s\033[0m (%.1f%% margin)\n",
			FormatCurrency(deal.Listing.Price), FormatCurrency(deal.SalePrice),
			FormatCurrency(deal.NetProfit), deal.MarginPct)
		fmt.Printf("     %s (%.1f miles) — %s\n", deal.Listing.Location, deal.DistanceMiles, deal.Listing.URL)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
