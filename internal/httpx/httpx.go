// Package httpx provides the HTTP middleware, JSON helpers, and error
// classification shared by the weigh and billing routers, grounded on
// cmd/xchainserver/server's routes/middleware split and cmd/explorer's
// writeJSON helper in the teacher repository.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"weighstation/internal/errs"
)

// RequestLogger logs method, path, and duration for every request.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Info("handled request")
		})
	}
}

// JSONHeaders sets Content-Type: application/json on every response.
func JSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError classifies err into the appropriate status code and body shape
// and writes it. Unrecognized errors are treated as StorageError / 500.
func WriteError(log *logrus.Logger, w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *errs.Validation:
		WriteJSON(w, http.StatusBadRequest, map[string]string{"status": "Failure", "message": e.Msg})
	case *errs.Conflict:
		WriteJSON(w, http.StatusConflict, map[string]string{"status": "Failure", "message": e.Msg})
	case *errs.NotFound:
		WriteJSON(w, http.StatusNotFound, map[string]string{"status": "Failure", "message": e.Msg})
	case *errs.Storage:
		log.WithError(err).Error("storage failure")
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "Failure", "message": "internal error"})
	default:
		log.WithError(err).Error("unclassified failure")
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "Failure", "message": "internal error"})
	}
}
