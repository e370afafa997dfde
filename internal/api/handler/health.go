package handler

import (
	"net/http"

	"github.com/rrawat/converse/internal/api/response"
	"github.com/rrawat/converse/internal/backend"
	"github.com/rrawat/converse/internal/repository/redis"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including answering service
// connectivity
func ReadyCheck(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := client.Health(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "answering service not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// FlushCache clears all cached answers from Redis
func FlushCache(cache *redis.AnswerCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			response.OK(w, map[string]any{
				"message":      "cache not configured",
				"keys_deleted": 0,
			})
			return
		}

		deleted, err := cache.FlushAll(r.Context())
		if err != nil {
			response.InternalError(w, "failed to flush cache: "+err.Error())
			return
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
