package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service liveness and datastore reachability.
type HealthHandler struct {
	pingDB      func(ctx context.Context) error
	version     string
	environment string
}

// NewHealthHandler creates a new HealthHandler. pingDB should be a cheap
// datastore round-trip.
func NewHealthHandler(pingDB func(ctx context.Context) error, version, environment string) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, version: version, environment: environment}
}

// Check responds 200 when the datastore is reachable, 503 otherwise. The
// body shape is the same either way.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	if err := h.pingDB(ctx); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"service":     "project-unify-api",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"version":     h.version,
		"environment": h.environment,
	})
}
