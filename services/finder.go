package services

import (
	"sync"

	"car-arbitrage/catalog"
	"car-arbitrage/config"
	"car-arbitrage/models"
	"car-arbitrage/scraper"
	"car-arbitrage/utils"
)

// Finder drives one full run: fan searches out across sources, then feed
// every record through normalize → evaluate → aggregate. Searching is the
// only concurrent stage; evaluation results merge in the aggregator.
type Finder struct {
	logger  *utils.Logger
	cfg     *config.Config
	cat     catalog.Catalog
	sources []scraper.Source

	normalizer *Normalizer
	evaluator  *Evaluator
	aggregator *Aggregator
}

// NewFinder wires the pipeline. An invalid or empty catalog is fatal here,
// before any listing is touched.
func NewFinder(cfg *config.Config, logger *utils.Logger, cat catalog.Catalog, sources []scraper.Source) (*Finder, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	return &Finder{
		logger:     logger,
		cfg:        cfg,
		cat:        cat,
		sources:    sources,
		normalizer: NewNormalizer(logger),
		evaluator:  NewEvaluator(logger, cfg.Origin, cfg.MaxDistanceMiles, cfg.TransferCost, cfg.MinProfitFloor),
		aggregator: NewAggregator(logger),
	}, nil
}

type sourcedRecords struct {
	sourceID string
	records  []models.SourceRecord
}

// Run executes one snapshot search and returns the aggregate report. A
// failing source or malformed listing never aborts the run.
func (f *Finder) Run() (*models.AggregateReport, error) {
	batches := f.search()

	seen := utils.NewURLSet()
	rejections := make(map[models.RejectReason]int)
	var deals []*models.Deal
	var evaluated int

	for _, batch := range batches {
		for _, listing := range f.normalizer.NormalizeAll(batch.records, batch.sourceID) {
			// Keyed by model and URL: repeat finds of one listing for the
			// same model collapse here, while the same listing matched by
			// two overlapping rules survives for the aggregator to settle.
			if !seen.Add(listing.ModelKey + "|" + listing.URL) {
				continue
			}

			rule, ok := f.cat.Rule(listing.ModelKey)
			if !ok {
				f.logger.Warn("[finder] Listing %q references unknown model %q — skipping",
					listing.Title, listing.ModelKey)
				continue
			}

			evaluated++
			deal, rejection := f.evaluator.Evaluate(listing, rule)
			if rejection != nil {
				rejections[rejection.Reason]++
				f.logger.Debug("[finder] Rejected %q: %s (%s)",
					listing.Title, rejection.Reason, rejection.Detail)
				continue
			}
			deals = append(deals, deal)
		}
	}

	f.logger.Info("[finder] Evaluated %d listings: %d qualified, %d rejected",
		evaluated, len(deals), evaluated-len(deals))
	for reason, count := range rejections {
		f.logger.Info("[finder]   %s: %d", reason, count)
	}

	return f.aggregator.Aggregate(deals), nil
}

// search fans every (model, term, source) combination out on a rate-limited
// worker pool and merges the raw record batches.
func (f *Finder) search() []sourcedRecords {
	pool := utils.NewWorkerPool(f.cfg.MaxConcurrency, f.cfg.RateLimitMs)

	var mu sync.Mutex
	var batches []sourcedRecords

	for _, key := range f.cat.Keys() {
		rule := f.cat[key]
		f.logger.Info("[finder] Searching for %s — ceiling £%.0f, markup £%.0f",
			key, rule.MaxPrice, rule.Markup)

		for _, term := range rule.SearchTerms {
			for _, src := range f.sources {
				rule, term, src := rule, term, src
				pool.Submit(func() {
					records, err := src.Search(rule.Key, rule, term)
					if err != nil {
						f.logger.Error("[finder] %s search failed for %q: %v", src.ID(), term, err)
						return
					}
					if len(records) == 0 {
						return
					}

					mu.Lock()
					batches = append(batches, sourcedRecords{sourceID: src.ID(), records: records})
					mu.Unlock()
				})
			}
		}
	}

	pool.Wait()
	return batches
}

// Print renders the run summary to the terminal.
func (f *Finder) Print(report *models.AggregateReport) {
	f.aggregator.Print(report)
}
