package http

import (
	"net/http"
	"time"
)

// Root handles GET /.
func Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "CreatorHub API - Where Creators Thrive!"})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
