package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"car-arbitrage/catalog"
	"car-arbitrage/models"
	"car-arbitrage/utils"
)

func newTestServer(run Runner) *Server {
	return New(utils.NewLogger(), catalog.Default(), run)
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func stubDocument() *models.StructuredDocument {
	return &models.StructuredDocument{
		Deals: []models.DealRecord{{
			Model:     "nissan_skyline_r33",
			Title:     "Nissan Skyline R33 GTS-T",
			BuyPrice:  24000,
			NetProfit: 2850,
		}},
		Summary:     models.Summary{Count: 1, TotalProfit: 2850, AverageProfit: 2850, BestMargin: 11.9},
		GeneratedAt: time.Now(),
	}
}

// waitIdle polls status until no run is in flight.
func waitIdle(t *testing.T, s *Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if !running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("run did not finish in time")
}

func TestHealth(t *testing.T) {
	s := newTestServer(nil)
	rec := doRequest(s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
}

func TestDealsBeforeFirstRun(t *testing.T) {
	s := newTestServer(nil)
	rec := doRequest(s, http.MethodGet, "/api/deals")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404 before any run completes", rec.Code)
	}
}

func TestScrapeThenDeals(t *testing.T) {
	s := newTestServer(func(demo bool) (*models.StructuredDocument, error) {
		if !demo {
			t.Error("demo flag not forwarded to the runner")
		}
		return stubDocument(), nil
	})

	rec := doRequest(s, http.MethodPost, "/api/scrape?demo=1")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("scrape status = %d; want 202", rec.Code)
	}
	waitIdle(t, s)

	rec = doRequest(s, http.MethodGet, "/api/deals")
	if rec.Code != http.StatusOK {
		t.Fatalf("deals status = %d; want 200 after a run", rec.Code)
	}
	var doc models.StructuredDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode deals: %v", err)
	}
	if len(doc.Deals) != 1 || doc.Deals[0].Model != "nissan_skyline_r33" {
		t.Errorf("deals = %+v; want the stub document back", doc.Deals)
	}

	rec = doRequest(s, http.MethodGet, "/api/status")
	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Running {
		t.Error("status still reports a run in progress")
	}
	if status.Summary == nil || status.Summary.Count != 1 {
		t.Errorf("status summary = %+v; want count 1", status.Summary)
	}
}

func TestConcurrentScrapeConflicts(t *testing.T) {
	release := make(chan struct{})
	s := newTestServer(func(bool) (*models.StructuredDocument, error) {
		<-release
		return stubDocument(), nil
	})

	if rec := doRequest(s, http.MethodPost, "/api/scrape"); rec.Code != http.StatusAccepted {
		t.Fatalf("first scrape status = %d; want 202", rec.Code)
	}
	if rec := doRequest(s, http.MethodPost, "/api/scrape"); rec.Code != http.StatusConflict {
		t.Fatalf("second scrape status = %d; want 409 while a run is in flight", rec.Code)
	}

	close(release)
	waitIdle(t, s)

	if rec := doRequest(s, http.MethodPost, "/api/scrape"); rec.Code != http.StatusAccepted {
		t.Fatalf("scrape after completion status = %d; want 202", rec.Code)
	}
	waitIdle(t, s)
}

func TestPanickingRunDoesNotWedgeScrape(t *testing.T) {
	s := newTestServer(func(bool) (*models.StructuredDocument, error) {
		panic("runner blew up")
	})

	if rec := doRequest(s, http.MethodPost, "/api/scrape"); rec.Code != http.StatusAccepted {
		t.Fatalf("scrape status = %d; want 202", rec.Code)
	}
	waitIdle(t, s)

	rec := doRequest(s, http.MethodGet, "/api/status")
	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Running {
		t.Error("status still reports a run in progress after a panic")
	}
	if status.Error == "" {
		t.Error("the panic must surface in the status error")
	}

	// The next trigger must be accepted, not 409.
	if rec := doRequest(s, http.MethodPost, "/api/scrape"); rec.Code != http.StatusAccepted {
		t.Fatalf("scrape after panic status = %d; want 202", rec.Code)
	}
	waitIdle(t, s)
}

func TestModels(t *testing.T) {
	s := newTestServer(nil)
	rec := doRequest(s, http.MethodGet, "/api/models")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var rules []models.ModelRule
	if err := json.Unmarshal(rec.Body.Bytes(), &rules); err != nil {
		t.Fatalf("decode models: %v", err)
	}
	if len(rules) != len(catalog.Default()) {
		t.Fatalf("models = %d; want full catalog", len(rules))
	}
	for i := 1; i < len(rules); i++ {
		if rules[i-1].Key > rules[i].Key {
			t.Fatal("models are not sorted by key")
		}
	}
}
