package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/chatbot-api/internal/api/response"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "", map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database connectivity
func ReadyCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Fail(w, http.StatusServiceUnavailable, "database not ready")
			return
		}

		response.Success(w, http.StatusOK, "", map[string]string{
			"status": "ready",
		})
	}
}
