package services

import (
	"fmt"

	"car-arbitrage/geo"
	"car-arbitrage/models"
	"car-arbitrage/utils"
)

// Evaluator applies the distance and economics rules to listings. All inputs
// are explicit; two calls with the same arguments always agree.
type Evaluator struct {
	logger           *utils.Logger
	origin           models.Coordinate
	maxDistanceMiles float64
	transferCost     float64
	minProfitFloor   float64
}

// NewEvaluator creates an Evaluator for one run's parameters.
func NewEvaluator(logger *utils.Logger, origin models.Coordinate, maxDistanceMiles, transferCost, minProfitFloor float64) *Evaluator {
	return &Evaluator{
		logger:           logger,
		origin:           origin,
		maxDistanceMiles: maxDistanceMiles,
		transferCost:     transferCost,
		minProfitFloor:   minProfitFloor,
	}
}

// Evaluate qualifies a listing against a model rule. It returns a fully
// populated Deal, or a Rejection naming the first rule that failed.
// Rejection is the common case and never an error.
//
// Net profit is the rule's flat markup minus the fixed transfer cost and
// does not vary with the purchase price. The markup is a model-level market
// estimate, so two listings matching the same rule earn the same net profit
// and differ only in margin.
func (e *Evaluator) Evaluate(listing *models.RawListing, rule models.ModelRule) (*models.Deal, *models.Rejection) {
	distance := geo.DistanceMiles(e.origin, listing.Coords)
	if distance > e.maxDistanceMiles {
		return nil, &models.Rejection{
			Reason: models.RejectOutOfRange,
			Detail: fmt.Sprintf("%.1f miles away, limit %.0f", distance, e.maxDistanceMiles),
		}
	}

	if listing.Price > rule.MaxPrice {
		return nil, &models.Rejection{
			Reason: models.RejectPriceTooHigh,
			Detail: fmt.Sprintf("asking £%.0f, ceiling £%.0f", listing.Price, rule.MaxPrice),
		}
	}

	netProfit := rule.Markup - e.transferCost
	if netProfit <= rule.MinProfit || netProfit <= e.minProfitFloor {
		return nil, &models.Rejection{
			Reason: models.RejectInsufficientProfit,
			Detail: fmt.Sprintf("net £%.0f, need > £%.0f (rule) and > £%.0f (floor)",
				netProfit, rule.MinProfit, e.minProfitFloor),
		}
	}

	if listing.Price <= 0 {
		// Margin is undefined at zero price.
		return nil, &models.Rejection{
			Reason: models.RejectInvalidPrice,
			Detail: fmt.Sprintf("asking £%.0f", listing.Price),
		}
	}

	deal := &models.Deal{
		Listing:       listing,
		ModelKey:      rule.Key,
		DistanceMiles: distance,
		SalePrice:     listing.Price + rule.Markup,
		NetProfit:     netProfit,
		MarginPct:     netProfit / listing.Price * 100,
	}

	e.logger.Debug("[evaluator] Qualified %q: net £%.0f (%.1f%% margin, %.1f miles)",
		listing.Title, deal.NetProfit, deal.MarginPct, deal.DistanceMiles)
	return deal, nil
}
