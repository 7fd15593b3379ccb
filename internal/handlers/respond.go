package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/formula-evergreen/grandstand/internal/app"
	"github.com/formula-evergreen/grandstand/internal/metrics"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized is a server failure and keeps its detail out of the response.
func writeError(w http.ResponseWriter, err error) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSONError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, app.ErrAuthRequired):
		writeJSONError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, app.ErrNotAuthorized):
		writeJSONError(w, http.StatusForbidden, "Access denied. You are not authorized to perform this action.")
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Not found")
	default:
		logger.Error.Printf("Request failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// caller resolves the session cookie into an identity, or nil for anonymous
// requests. Session-store hiccups degrade to anonymous rather than failing
// the request.
func caller(s *app.Service, r *http.Request) *app.Identity {
	cookie, err := r.Cookie(s.Config.Auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	identity, err := s.Sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		logger.Error.Printf("Session lookup failed: %v", err)
		return nil
	}
	return identity
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler with the request-duration metric, labeled by
// the registered route pattern rather than the raw URL.
func Instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.APIRequestDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	}
}
