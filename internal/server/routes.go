package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/portfoliology/internal/common"
)

// registerRoutes wires every endpoint onto mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Valuation views, each one a full refresh
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/analysis/", s.routeAnalysis)

	// Holdings maintenance
	mux.HandleFunc("/api/accounts", s.handleAccountList)
	mux.HandleFunc("/api/accounts/", s.routeAccounts)
	mux.HandleFunc("/api/holdings", s.handleHoldingList)
	mux.HandleFunc("/api/holdings/", s.routeHoldings)
}

// routeAnalysis dispatches /api/analysis/{chart}.png
func (s *Server) routeAnalysis(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/api/analysis/") {
	case "concentration.png":
		s.handleConcentrationChart(w, r)
	case "cumulative.png":
		s.handleCumulativeChart(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// routeAccounts dispatches /api/accounts/{id}
func (s *Server) routeAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/api/accounts/"))
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleAccount(w, r, id)
}

// routeHoldings dispatches /api/holdings/{id}
func (s *Server) routeHoldings(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/api/holdings/"))
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleHolding(w, r, id)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
