package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/analytics"
	"go.uber.org/zap"
)

type AnalyticsResponse struct {
	Success bool             `json:"success"`
	Report  analytics.Report `json:"report"`
}

type AnalyticsHandler struct {
	entries Entries
	loc     *time.Location
	log     *zap.Logger
	now     func() time.Time
}

func NewAnalyticsHandler(entries Entries, loc *time.Location, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{entries: entries, loc: loc, log: log, now: time.Now}
}

// Month reports on the entries of one month (query month=yyyy-MM, default
// the current month in tz).
func (h *AnalyticsHandler) Month(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	loc, ok := location(w, r, h.loc)
	if !ok {
		return
	}
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.now().In(loc).Format("2006-01")
	}

	entries, err := h.entries.ListMonth(r.Context(), uid, month, loc)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	report := analytics.Analyze(entries, analytics.Options{Month: month, Location: loc})
	writeJSON(w, http.StatusOK, AnalyticsResponse{Success: true, Report: report})
}
