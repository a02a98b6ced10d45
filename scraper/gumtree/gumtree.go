package gumtree

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
	baseURL  = "https://www.gumtree.com"
	sourceID = "gumtree"
)

// Scraper searches Gumtree UK car listings.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// New creates a ready-to-use Gumtree scraper.
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

// Search implements scraper.Source using Gumtree's keyword search.
func (s *Scraper) Search(modelKey string, rule models.ModelRule, term string) ([]models.SourceRecord, error) {
	s.logger.Info("[gumtree] Searching: %s (ceiling £%.0f)", term, rule.MaxPrice)

	params := url.Values{}
	params.Set("search_category", "cars")
	params.Set("q", term)
	params.Set("search_location", "Liverpool")
	params.Set("distance", fmt.Sprintf("%.0f", s.cfg.MaxDistanceMiles))
	params.Set("max_price", fmt.Sprintf("%.0f", rule.MaxPrice))
	searchURL := baseURL + "/search?" + params.Encode()

	var records []models.SourceRecord
	err := s.retry.Do("gumtree-"+modelKey, func() error {
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
				s.logger.Debug("[gumtree] Skipping duplicate: %s", href)
				continue
			}

			// Gumtree locations often read "Bolton, Greater Manchester";
			// the leading part is the town.
			location := strings.TrimSpace(strings.SplitN(c.Location, ",", 2)[0])

			rec := models.SourceRecord{
				ModelKey:  modelKey,
				Title:     c.Title,
				RawPrice:  c.Price,
				Location:  location,
				URL:       href,
				Year:      c.Description,
				Mileage:   c.Description,
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
		return nil, fmt.Errorf("gumtree search %q: %w", term, err)
	}

	s.logger.Info("[gumtree] %s: found %d listings", term, len(records))
	return records, nil
}

type card struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
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

				var items = document.querySelectorAll('li[class*="natural"]');
				if (items.length === 0) {
					items = document.querySelectorAll('article[class*="listing"]');
				}

				for (var i = 0; i < items.length && results.length < limit; i++) {
					var item = items[i];

					var titleEl = item.querySelector('a[class*="listing-title"]') ||
					              item.querySelector('h2') || item.querySelector('h3');
					var title = titleEl ? titleEl.innerText.trim() : '';

					var priceEl = item.querySelector('span[class*="listing-price"]') ||
					              item.querySelector('strong[class*="amount"]');
					var price = priceEl ? priceEl.innerText.trim() : '';

					var locEl = item.querySelector('span[class*="truncate-line"]') ||
					            item.querySelector('div[class*="listing-location"]');
					var location = locEl ? locEl.innerText.trim() : '';

					var descEl = item.querySelector('div[class*="description"]');
					var description = descEl ? descEl.innerText : item.innerText;

					var linkEl = item.querySelector('a[href]');
					var href = linkEl ? linkEl.getAttribute('href') : '';

					results.push({
						title:       title,
						price:       price,
						location:    location,
						description: description,
						url:         href
					});
				}

				return results;
			})()
		`, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp search page: %w", err)
	}

	s.logger.Debug("[gumtree] Page returned %d cards", len(cards))
	return cards, nil
}
