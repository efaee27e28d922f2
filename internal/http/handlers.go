package http

import (
	"net/http"

	applog "salesboard/internal/log"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpList, err, nil)
		return
	}

	txs, err := s.queries.List(r.Context(), p)
	if err != nil {
		writeError(w, r, applog.OpList, err, applog.NewFields().WithListing(p.Month, p.Page, p.PerPage, p.Search))
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogListing(r.Context(), p.Month, p.Page, p.PerPage, p.Search, len(txs))
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpStatistics, err, nil)
		return
	}
	stats, err := s.queries.Statistics(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpStatistics, err, applog.NewFields().WithMonth(month))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpBarChart, err, nil)
		return
	}
	bars, err := s.queries.BarChart(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpBarChart, err, applog.NewFields().WithMonth(month))
		return
	}
	writeJSON(w, http.StatusOK, bars)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpPieChart, err, nil)
		return
	}
	pie, err := s.queries.PieChart(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpPieChart, err, applog.NewFields().WithMonth(month))
		return
	}
	writeJSON(w, http.StatusOK, pie)
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpCombined, err, nil)
		return
	}
	combined, err := s.queries.Combined(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpCombined, err, applog.NewFields().WithMonth(month))
		return
	}
	writeJSON(w, http.StatusOK, combined)
}
