// Package server exposes the dashboard API: trigger a run, poll its status,
// and read the latest deals. JSON only; rendering belongs to the frontend.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"car-arbitrage/catalog"
	"car-arbitrage/models"
	"car-arbitrage/utils"
)

// Runner executes one full arbitrage run and returns the structured result.
type Runner func(demo bool) (*models.StructuredDocument, error)

// Server serves the dashboard API over HTTP.
type Server struct {
	logger *utils.Logger
	run    Runner
	cat    catalog.Catalog
	router *mux.Router

	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr string
	latest  *models.StructuredDocument
}

// New creates a Server that triggers runs through the given Runner.
func New(logger *utils.Logger, cat catalog.Catalog, run Runner) *Server {
	s := &Server{
		logger: logger,
		run:    run,
		cat:    cat,
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/scrape", s.handleScrape).Methods(http.MethodPost)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/deals", s.handleDeals).Methods(http.MethodGet)
	s.router.HandleFunc("/api/models", s.handleModels).Methods(http.MethodGet)

	return s
}

// Preload seeds the latest document, typically from a stored snapshot, so
// /api/deals answers before the first run of this process. A completed run
// always wins over a preload.
func (s *Server) Preload(doc *models.StructuredDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = doc
	}
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("[server] Dashboard API listening on %s", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScrape starts a run in the background. A second trigger while one is
// in flight gets 409.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	demo := r.URL.Query().Get("demo") == "1" || r.URL.Query().Get("demo") == "true"

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a run is already in progress"})
		return
	}
	s.running = true
	s.lastErr = ""
	s.mu.Unlock()

	go s.runInBackground(demo)

	writeJSON(w, http.StatusAccepted, map[string]any{"started": true, "demo": demo})
}

func (s *Server) runInBackground(demo bool) {
	s.logger.Info("[server] Run triggered (demo=%v)", demo)

	// The flag must clear even when the runner panics, or every later
	// trigger answers 409 forever.
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.running = false
			s.lastRun = time.Now()
			s.lastErr = fmt.Sprintf("run panicked: %v", r)
			s.mu.Unlock()
			s.logger.Error("[server] Run panicked: %v", r)
		}
	}()

	doc, err := s.run(demo)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastRun = time.Now()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("[server] Run failed: %v", err)
		return
	}
	s.latest = doc
	s.logger.Info("[server] Run finished: %d deals", doc.Summary.Count)
}

type statusResponse struct {
	Running bool            `json:"running"`
	LastRun *time.Time      `json:"last_run,omitempty"`
	Error   string          `json:"error,omitempty"`
	Summary *models.Summary `json:"last_result,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := statusResponse{Running: s.running, Error: s.lastErr}
	if !s.lastRun.IsZero() {
		t := s.lastRun
		resp.LastRun = &t
	}
	if s.latest != nil {
		sum := s.latest.Summary
		resp.Summary = &sum
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := s.latest
	s.mu.Unlock()

	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	rules := make([]models.ModelRule, 0, len(s.cat))
	for _, key := range s.cat.Keys() {
		rules = append(rules, s.cat[key])
	}
	writeJSON(w, http.StatusOK, rules)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
