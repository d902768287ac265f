package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/pdfexport"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
	"go.uber.org/zap"
)

// Response is the envelope shared by every JSON endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and answered with a generic message.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid or expired session")
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, "An account with this email already exists")
	case errors.Is(err, pdfexport.ErrGenerate):
		log.Error("pdf generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate PDF")
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	return dec.Decode(v)
}

const maxJSONBody = 1 << 20

// userID returns the authenticated user as a string id, answering 401
// when the route was mounted without RequireAuth.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return id.String(), true
}

// location resolves the tz query parameter, falling back to def.
func location(w http.ResponseWriter, r *http.Request, def *time.Location) (*time.Location, bool) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return def, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timezone")
		return nil, false
	}
	return loc, true
}
