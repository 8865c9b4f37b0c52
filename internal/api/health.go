package api

import (
	"log/slog"
	"net/http"
)

// IndexStatus is the slice of the vector index the readiness probe needs.
type IndexStatus interface {
	Ready() bool
	Count() int
}

func health(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// readiness reports whether the service can answer questions: the vector
// index must be loaded and non-empty.
func readiness(idx IndexStatus, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if idx == nil || !idx.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
			}, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ready",
			"documents": idx.Count(),
		}, logger)
	}
}
