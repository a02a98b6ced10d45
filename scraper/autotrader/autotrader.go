package autotrader

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"car-arbitrage/config"
	"car-arbitrage/geo"
	"car-arbitrage/models"
	"car-arbitrage/scraper"
	"car-arbitrage/utils"
)

const (
	baseURL  = "https://www.autotrader.co.uk"
	sourceID = "autotrader"
)

// Scraper searches AutoTrader UK car listings.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// New creates a ready-to-use AutoTrader scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), scraper.AllocatorOptions(cfg)...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      logger,
		},
		allocCtx: silentCtx,
		cancelAlloc: func() {
			cancelSilent()
			cancelAlloc()
		},
	}
}

// ID implements scraper.Source.
func (s *Scraper) ID() string { return sourceID }

// Close shuts the shared browser down.
func (s *Scraper) Close() {
	s.cancelAlloc()
}

// Search implements scraper.Source. It loads one search results page for the
// term and extracts the listing cards.
func (s *Scraper) Search(modelKey string, rule models.ModelRule, term string) ([]models.SourceRecord, error) {
	s.logger.Info("[autotrader] Searching: %s (ceiling £%.0f)", term, rule.MaxPrice)

	searchURL := s.buildSearchURL(rule, term)

	var records []models.SourceRecord
	err := s.retry.Do("autotrader-"+modelKey, func() error {
		cards, err := s.scrapeSearchPage(searchURL)
		if err != nil {
			return err
		}

		records = records[:0]
		for _, c := range cards {
			if c.URL == "" {
				continue
			}
			// Keyed by model so overlapping rules can both claim a listing.
			if !s.visitedURL.Add(modelKey + "|" + c.URL) {
				s.logger.Debug("[autotrader] Skipping duplicate: %s", c.URL)
				continue
			}

			rec := models.SourceRecord{
				ModelKey:  modelKey,
				Title:     c.Title,
				RawPrice:  c.Price,
				Location:  c.Location,
				URL:       c.URL,
				Year:      c.Specs,
				Mileage:   c.Specs,
				ScrapedAt: time.Now(),
			}
			if coords, ok := geo.Geocode(c.Location); ok {
				rec.Coords = &coords
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("autotrader search %q: %w", term, err)
	}

	s.logger.Info("[autotrader] %s: found %d listings", term, len(records))
	return records, nil
}

// buildSearchURL maps a search term onto AutoTrader's make/model query
// parameters, falling back to a keyword search.
func (s *Scraper) buildSearchURL(rule models.ModelRule, term string) string {
	params := url.Values{}
	params.Set("postcode", "L1")
	params.Set("radius", fmt.Sprintf("%.0f", s.cfg.MaxDistanceMiles))
	params.Set("price-to", fmt.Sprintf("%.0f", rule.MaxPrice))
	params.Set("sort", "relevance")

	switch {
	case strings.Contains(term, "BMW"), strings.Contains(term, "E46"), strings.Contains(term, "E36"):
		params.Set("make", "BMW")
		params.Set("model", "3 Series")
	case strings.Contains(term, "Lexus"), strings.Contains(term, "IS200"):
		params.Set("make", "Lexus")
		params.Set("model", "IS")
	case strings.Contains(term, "Nissan"), strings.Contains(term, "Silvia"), strings.Contains(term, "Skyline"):
		params.Set("make", "Nissan")
	case strings.Contains(term, "Honda"), strings.Contains(term, "Civic"):
		params.Set("make", "Honda")
		params.Set("model", "Civic")
	case strings.Contains(term, "Mazda"), strings.Contains(term, "RX"), strings.Contains(term, "MX"):
		params.Set("make", "Mazda")
	case strings.Contains(term, "Toyota"), strings.Contains(term, "Supra"):
		params.Set("make", "Toyota")
	default:
		params.Set("keywords", term)
	}

	return baseURL + "/car-search?" + params.Encode()
}

type card struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Location string `json:"location"`
	Specs    string `json:"specs"`
	URL      string `json:"url"`
}

// scrapeSearchPage loads the results page and extracts listing cards in-page.
func (s *Scraper) scrapeSearchPage(pageURL string) ([]card, error) {
	ctx, cancel := chromedp.NewContext(s.allocCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
	defer cancelTimeout()

	var cards []card

	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(5*time.Second),

		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(2*time.Second),

		chromedp.Evaluate(`
			(function() {
				var results = [];
				var limit = `+fmt.Sprintf("%d", s.cfg.ResultsPerTerm)+`;

				var articles = document.querySelectorAll('article[data-testid*="trader-seller-listing"]');
				if (articles.length === 0) {
					articles = document.querySelectorAll('li[class*="search-page__result"]');
				}

				for (var i = 0; i < articles.length && results.length < limit; i++) {
					var a = articles[i];

					var titleEl = a.querySelector('h3') || a.querySelector('h2');
					var title = titleEl ? titleEl.innerText.trim() : '';

					var priceEl = a.querySelector('div[class*="product-card-pricing__price"]') ||
					              a.querySelector('span[class*="price"]');
					var price = priceEl ? priceEl.innerText.trim() : '';

					var locEl = a.querySelector('span[class*="location"]');
					var location = locEl ? locEl.innerText.trim() : '';

					var linkEl = a.querySelector('a[href*="/car-details/"]');
					var href = linkEl ? linkEl.href : '';

					results.push({
						title:    title,
						price:    price,
						location: location,
						specs:    a.innerText,
						url:      href
					});
				}

				return results;
			})()
		`, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp search page: %w", err)
	}

	s.logger.Debug("[autotrader] Page returned %d cards", len(cards))
	return cards, nil
}
