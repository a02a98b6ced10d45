package services

import (
	"math"
	"testing"

	"car-arbitrage/models"
)

var (
	testOrigin = models.Coordinate{Lat: 53.4084, Lon: -2.9916} // Liverpool
	manchester = models.Coordinate{Lat: 53.4808, Lon: -2.2426} // ~31 miles out
	london     = models.Coordinate{Lat: 51.5074, Lon: -0.1278} // ~178 miles out
)

func testRule() models.ModelRule {
	return models.ModelRule{
		Key:         "bmw_e46_330",
		SearchTerms: []string{"BMW 330i"},
		MaxPrice:    10000,
		Markup:      2000,
		MinProfit:   500,
	}
}

func testListing(price float64, coords models.Coordinate) *models.RawListing {
	return &models.RawListing{
		ModelKey: "bmw_e46_330",
		Source:   "autotrader",
		Title:    "BMW E46 330Ci Sport",
		Price:    price,
		Location: "Manchester",
		Coords:   coords,
		URL:      "https://www.autotrader.co.uk/car-details/1",
	}
}

// newTestEvaluator uses the worked reference parameters: 100-mile radius,
// £450 transfer cost, £500 global floor.
func newTestEvaluator() *Evaluator {
	return NewEvaluator(newTestLogger(), testOrigin, 100, 450, 500)
}

func TestEvaluateQualifyingDeal(t *testing.T) {
	deal, rejection := newTestEvaluator().Evaluate(testListing(8500, manchester), testRule())
	if rejection != nil {
		t.Fatalf("expected deal, got rejection %s (%s)", rejection.Reason, rejection.Detail)
	}

	if deal.NetProfit != 1550 {
		t.Errorf("net profit = %.2f; want 1550", deal.NetProfit)
	}
	if deal.SalePrice != 10500 {
		t.Errorf("sale price = %.2f; want 10500", deal.SalePrice)
	}
	if math.Abs(deal.MarginPct-18.2) > 0.05 {
		t.Errorf("margin = %.2f%%; want ≈18.2%%", deal.MarginPct)
	}
	if deal.DistanceMiles <= 0 || deal.DistanceMiles > 100 {
		t.Errorf("distance = %.1f; want within radius", deal.DistanceMiles)
	}
	if deal.ModelKey != "bmw_e46_330" {
		t.Errorf("model key = %q", deal.ModelKey)
	}
	if deal.Listing == nil {
		t.Error("deal must reference its listing")
	}
}

func TestEvaluateRejectsPriceTooHigh(t *testing.T) {
	// Favorable distance and economics; price alone disqualifies.
	deal, rejection := newTestEvaluator().Evaluate(testListing(12000, manchester), testRule())
	if deal != nil {
		t.Fatal("expected rejection")
	}
	if rejection.Reason != models.RejectPriceTooHigh {
		t.Errorf("reason = %s; want %s", rejection.Reason, models.RejectPriceTooHigh)
	}
}

func TestEvaluateRejectsOutOfRange(t *testing.T) {
	// Profitable listing, but outside the radius.
	deal, rejection := newTestEvaluator().Evaluate(testListing(8500, london), testRule())
	if deal != nil {
		t.Fatal("expected rejection")
	}
	if rejection.Reason != models.RejectOutOfRange {
		t.Errorf("reason = %s; want %s", rejection.Reason, models.RejectOutOfRange)
	}
}

func TestEvaluateRejectsInsufficientProfit(t *testing.T) {
	tests := []struct {
		name string
		rule models.ModelRule
	}{
		{"below rule threshold", models.ModelRule{Key: "m", MaxPrice: 10000, Markup: 2000, MinProfit: 1600}},
		{"below global floor", models.ModelRule{Key: "m", MaxPrice: 10000, Markup: 900, MinProfit: 100}},
		{"markup below transfer cost", models.ModelRule{Key: "m", MaxPrice: 10000, Markup: 300, MinProfit: 0}},
	}
	for _, tt := range tests {
		deal, rejection := newTestEvaluator().Evaluate(testListing(8500, manchester), tt.rule)
		if deal != nil {
			t.Errorf("%s: expected rejection", tt.name)
			continue
		}
		if rejection.Reason != models.RejectInsufficientProfit {
			t.Errorf("%s: reason = %s; want %s", tt.name, rejection.Reason, models.RejectInsufficientProfit)
		}
	}
}

func TestEvaluateProfitThresholdIsStrict(t *testing.T) {
	// Net profit exactly equal to the floor does not qualify.
	rule := testRule()
	rule.MinProfit = 100
	rule.Markup = 950 // net = 500, equal to the floor

	deal, rejection := newTestEvaluator().Evaluate(testListing(8500, manchester), rule)
	if deal != nil {
		t.Fatal("net profit equal to the floor must not qualify")
	}
	if rejection.Reason != models.RejectInsufficientProfit {
		t.Errorf("reason = %s; want %s", rejection.Reason, models.RejectInsufficientProfit)
	}
}

func TestEvaluateRejectsZeroPrice(t *testing.T) {
	deal, rejection := newTestEvaluator().Evaluate(testListing(0, manchester), testRule())
	if deal != nil {
		t.Fatal("expected rejection")
	}
	if rejection.Reason != models.RejectInvalidPrice {
		t.Errorf("reason = %s; want %s", rejection.Reason, models.RejectInvalidPrice)
	}
}

func TestNetProfitInvariantToPurchasePrice(t *testing.T) {
	// The markup is a flat model-level estimate: two listings matching the
	// same rule earn identical net profit and differ only in margin.
	e := newTestEvaluator()

	cheap, rej1 := e.Evaluate(testListing(5000, manchester), testRule())
	dear, rej2 := e.Evaluate(testListing(9500, manchester), testRule())
	if rej1 != nil || rej2 != nil {
		t.Fatalf("expected both to qualify: %v, %v", rej1, rej2)
	}

	if cheap.NetProfit != dear.NetProfit {
		t.Errorf("net profit varies with price: %.2f vs %.2f", cheap.NetProfit, dear.NetProfit)
	}
	if cheap.MarginPct <= dear.MarginPct {
		t.Errorf("cheaper listing should carry the higher margin: %.2f%% vs %.2f%%",
			cheap.MarginPct, dear.MarginPct)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	e := newTestEvaluator()
	listing := testListing(8500, manchester)

	first, _ := e.Evaluate(listing, testRule())
	second, _ := e.Evaluate(listing, testRule())
	if first.NetProfit != second.NetProfit || first.DistanceMiles != second.DistanceMiles ||
		first.MarginPct != second.MarginPct {
		t.Error("evaluation must depend only on its inputs")
	}
}
