package http

import (
	"log/slog"
	"net/http"
	"time"

	"splitinvoice/internal/services"
)

// parseStatsPeriod reads optional from/to query parameters as YYYY-MM-DD
// dates. The to date is extended to the end of that day so the bound is
// inclusive.
func parseStatsPeriod(r *http.Request) (services.Period, error) {
	var period services.Period
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return period, err
		}
		period.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return period, err
		}
		period.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return period, nil
}

// handleStats serves the history aggregate. The unfiltered view is cached
// for a few minutes and invalidated on any bill write; period-filtered
// queries always hit the store.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	period, err := parseStatsPeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range: use YYYY-MM-DD")
		return
	}
	unfiltered := period.From.IsZero() && period.To.IsZero()

	if unfiltered {
		if stats, found := s.statsCache.Get(statsCacheKey); found {
			slog.DebugContext(r.Context(), "Stats cache hit")
			writeJSON(w, http.StatusOK, stats)
			return
		}
	}

	stats, err := s.stats.Compute(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Stats computation failed", "error", err)
		writeDomainError(w, err)
		return
	}

	if unfiltered {
		s.statsCache.Set(statsCacheKey, stats)
	}
	writeJSON(w, http.StatusOK, stats)
}
