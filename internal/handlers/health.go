package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/monitor"
)

type HealthResponse struct {
	Success bool           `json:"success"`
	Health  monitor.Health `json:"health"`
}

// Health reports process health from the diagnostic monitor.
func Health(mon monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Success: true, Health: mon.HealthStatus()})
	}
}
