package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/metrics"
	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument records request duration labelled by the matched route pattern.
func Instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.APIRequestDuration.WithLabelValues(
			r.Pattern,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, terrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, terrors.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, terrors.ErrInvalidPosition), errors.Is(err, terrors.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	logger.Debug.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Debug.Printf("Invalid request body for %s: %v", r.URL.Path, err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// lecturer resolves the calling lecturer from the configured header. When auth
// is enabled the bearer token must match the one issued for that lecturer.
func lecturer(service *app.Service, w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.Header.Get(service.Config.API.LecturerHeader)
	if email == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "lecturer not specified"})
		return "", false
	}

	if service.Auth != nil && service.Auth.Enabled() {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get(service.Auth.TokenHeader()), "Bearer"))
		if err := service.Auth.ValidateToken(r.Context(), email, token); err != nil {
			logger.Error.Printf("Auth failed for %s: %v", email, err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return "", false
		}
	}

	return email, true
}
