package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/kwv/lcselect/selection"
)

// reportState holds the latest selection result for the HTTP handlers
type reportState struct {
	report   *selection.Report
	renderer *selection.CandidateRenderer
	mu       sync.RWMutex
}

// Set replaces the current report
func (s *reportState) Set(report selection.Report, renderer *selection.CandidateRenderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &report
	s.renderer = renderer
}

// Get returns the current report, if any
func (s *reportState) Get() (*selection.Report, *selection.CandidateRenderer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.renderer
}

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(state *reportState) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		report, _ := state.Get()
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			HasReport bool      `json:"hasReport"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			HasReport: report != nil,
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		report, _ := state.Get()
		if report == nil {
			http.Error(w, "No selection report available", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, report)
	})

	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		report, _ := state.Get()
		if report == nil {
			http.Error(w, "No selection report available", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, report.Summary())
	})

	mux.HandleFunc("/candidates.svg", func(w http.ResponseWriter, r *http.Request) {
		_, renderer := state.Get()
		if renderer == nil {
			http.Error(w, "No selection report available", http.StatusServiceUnavailable)
			return
		}
		var buf bytes.Buffer
		if err := renderer.RenderToSVG(&buf); err != nil {
			log.Printf("Error rendering candidates SVG: %v", err)
			http.Error(w, "Failed to render candidates", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(buf.Bytes())
	})

	mux.HandleFunc("/candidates.png", func(w http.ResponseWriter, r *http.Request) {
		_, renderer := state.Get()
		if renderer == nil {
			http.Error(w, "No selection report available", http.StatusServiceUnavailable)
			return
		}
		var buf bytes.Buffer
		if err := renderer.RenderToPNG(&buf); err != nil {
			log.Printf("Error rendering candidates PNG: %v", err)
			http.Error(w, "Failed to render candidates", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(buf.Bytes())
	})

	mux.HandleFunc("/candidates.geojson", func(w http.ResponseWriter, r *http.Request) {
		_, renderer := state.Get()
		if renderer == nil {
			http.Error(w, "No selection report available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToGeoJSON(w); err != nil {
			log.Printf("Error writing candidates GeoJSON: %v", err)
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
