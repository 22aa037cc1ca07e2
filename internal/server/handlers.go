package server

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/portfoliology/internal/models"
	"github.com/bobmcallan/portfoliology/internal/services/portfolio"
	"github.com/bobmcallan/portfoliology/internal/services/report"
	"github.com/bobmcallan/portfoliology/internal/storage/sqlite"
)

// writeRefreshError maps a failed refresh onto a response. A terminal quote
// failure is the provider's fault and reported as 502.
func (s *Server) writeRefreshError(w http.ResponseWriter, err error) {
	if errors.Is(err, portfolio.ErrRefreshFailed) {
		writeErrorCode(w, http.StatusBadGateway, err.Error(), "refresh_failed")
		return
	}
	s.logger.Error().Err(err).Msg("Valuation request failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

// handlePositions serves the summary table. ?format=markdown returns the
// Markdown rendering instead of JSON.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.PortfolioService.GetSummary(r.Context())
	if err != nil {
		s.writeRefreshError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(report.FormatSummary(summary)))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleAnalysis serves per-position concentration, largest first.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	analysis, err := s.app.PortfolioService.GetAnalysis(r.Context())
	if err != nil {
		s.writeRefreshError(w, err)
		return
	}
	analysis.Rows = report.ByConcentration(analysis.Rows)

	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleConcentrationChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, portfolio.RenderConcentrationChart)
}

func (s *Server) handleCumulativeChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, portfolio.RenderCumulativeConcentrationChart)
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, render func([]models.Row) ([]byte, error)) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	analysis, err := s.app.PortfolioService.GetAnalysis(r.Context())
	if err != nil {
		s.writeRefreshError(w, err)
		return
	}
	if len(analysis.Rows) == 0 {
		writeError(w, http.StatusNotFound, "No positions to chart")
		return
	}

	png, err := render(analysis.Rows)
	if err != nil {
		s.logger.Error().Err(err).Msg("Chart rendering failed")
		writeError(w, http.StatusInternalServerError, "Chart rendering failed")
		return
	}
	writePNG(w, png)
}

// --- Accounts ---

func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.AccountStorage()

	if r.Method == http.MethodGet {
		accounts, err := store.ListAccounts(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if accounts == nil {
			accounts = []models.Account{}
		}
		writeJSON(w, http.StatusOK, accounts)
		return
	}

	var account models.Account
	if !decodeBody(w, r, &account) {
		return
	}
	account.ID = 0
	if t, err := models.ParseAccountType(string(account.Type)); err == nil {
		account.Type = t
	}
	if err := store.SaveAccount(ctx, &account); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request, id uint) {
	if !allowMethods(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.AccountStorage()

	if r.Method == http.MethodDelete {
		if err := store.DeleteAccount(ctx, id); err != nil {
			writeStorageError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	account, err := store.GetAccount(ctx, id)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// --- Holdings ---

func (s *Server) handleHoldingList(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.PositionStorage()

	if r.Method == http.MethodGet {
		positions, err := store.ListPositions(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if positions == nil {
			positions = []models.Position{}
		}
		writeJSON(w, http.StatusOK, positions)
		return
	}

	var position models.Position
	if !decodeBody(w, r, &position) {
		return
	}
	position.ID = 0
	if err := store.SavePosition(ctx, &position); err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, position)
}

func (s *Server) handleHolding(w http.ResponseWriter, r *http.Request, id uint) {
	if !allowMethods(w, r, http.MethodDelete) {
		return
	}
	if err := s.app.Storage.PositionStorage().DeletePosition(r.Context(), id); err != nil {
		writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
