package pistonheads

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
	baseURL  = "https://www.pistonheads.com"
	sourceID = "pistonheads"
)

// Scraper searches PistonHeads classifieds.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// New creates a ready-to-use PistonHeads scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), scraper.AllocatorOptions(cfg)...)
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

// Search implements scraper.Source against the classifieds search.
func (s *Scraper) Search(modelKey string, rule models.ModelRule, term string) ([]models.SourceRecord, error) {
	s.logger.Info("[pistonheads] Searching: %s (ceiling £%.0f)", term, rule.MaxPrice)

	searchURL := buildSearchURL(rule, term)

	var records []models.SourceRecord
	err := s.retry.Do("pistonheads-"+modelKey, func() error {
		cards, err := s.scrapeSearchPage(searchURL)
		if err != nil {
			return err
		}

		records = records[:0]
		for _, c := range cards {
			href := c.URL
			if href == "" {
				continue
			}
			if !strings.HasPrefix(href, "http") {
				href = baseURL + href
			}
			// Keyed by model so overlapping rules can both claim a listing.
			if !s.visitedURL.Add(modelKey + "|" + href) {
				s.logger.Debug("[pistonheads] Skipping duplicate: %s", href)
				continue
			}

			// Seller locations read "Preston, Lancashire"; the leading
			// part is the town.
			location := strings.TrimSpace(strings.SplitN(c.Location, ",", 2)[0])

			rec := models.SourceRecord{
				ModelKey:  modelKey,
				Title:     c.Title,
				RawPrice:  c.Price,
				Location:  location,
				URL:       href,
				Year:      c.Specs,
				Mileage:   c.Specs,
				ScrapedAt: time.Now(),
			}
			if coords, ok := geo.Geocode(location); ok {
				rec.Coords = &coords
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pistonheads search %q: %w", term, err)
	}

	s.logger.Info("[pistonheads] %s: found %d listings", term, len(records))
	return records, nil
}

// buildSearchURL maps a search term onto the classifieds keyword search,
// narrowing by make where the term names one.
func buildSearchURL(rule models.ModelRule, term string) string {
	params := url.Values{}
	params.Set("keywords", term)
	params.Set("price_to", fmt.Sprintf("%.0f", rule.MaxPrice))

	switch {
	case strings.Contains(term, "BMW"), strings.Contains(term, "E46"), strings.Contains(term, "E36"):
		params.Set("make", "BMW")
	case strings.Contains(term, "Lexus"), strings.Contains(term, "IS200"):
		params.Set("make", "Lexus")
	case strings.Contains(term, "Nissan"), strings.Contains(term, "Silvia"), strings.Contains(term, "Skyline"):
		params.Set("make", "Nissan")
	case strings.Contains(term, "Honda"), strings.Contains(term, "Civic"):
		params.Set("make", "Honda")
	case strings.Contains(term, "Mazda"), strings.Contains(term, "RX"), strings.Contains(term, "MX"):
		params.Set("make", "Mazda")
	case strings.Contains(term, "Toyota"), strings.Contains(term, "Supra"):
		params.Set("make", "Toyota")
	}

	return baseURL + "/classifieds/used-cars?" + params.Encode()
}

type card struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Location string `json:"location"`
	Specs    string `json:"specs"`
	URL      string `json:"url"`
}

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

				var items = document.querySelectorAll('article[class*="listing-card"]');
				if (items.length === 0) {
					items = document.querySelectorAll('div[class*="ad-listing"]');
				}

				for (var i = 0; i < items.length && results.length < limit; i++) {
					var item = items[i];

					var titleEl = item.querySelector('h3[class*="listing-headline"]') ||
					              item.querySelector('a[class*="listing-title"]') ||
					              item.querySelector('h2') || item.querySelector('h3');
					var title = titleEl ? titleEl.innerText.trim() : '';

					var priceEl = item.querySelector('div[class*="price"]') ||
					              item.querySelector('span[class*="listing-price"]');
					var price = priceEl ? priceEl.innerText.trim() : '';

					var locEl = item.querySelector('span[class*="location"]') ||
					            item.querySelector('div[class*="seller-location"]');
					var location = locEl ? locEl.innerText.trim() : '';

					var specsEl = item.querySelector('ul[class*="specs"]');
					var specs = specsEl ? specsEl.innerText : item.innerText;

					var linkEl = item.querySelector('a[href*="/classifieds/"]');
					var href = linkEl ? linkEl.getAttribute('href') : '';

					results.push({
						title:    title,
						price:    price,
						location: location,
						specs:    specs,
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

	s.logger.Debug("[pistonheads] Page returned %d cards", len(cards))
	return cards, nil
}
