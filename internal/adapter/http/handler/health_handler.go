package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elitepay/internal/core/ports"
)

// HealthHandler reports dependency health for load balancer probes.
type HealthHandler struct {
	checkers []ports.HealthChecker
	log      zerolog.Logger
}

func NewHealthHandler(log zerolog.Logger, checkers ...ports.HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, log: log}
}

// Check pings every dependency and returns 503 when any is down.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.checkers))
	for _, checker := range h.checkers {
		if err := checker.Ping(ctx); err != nil {
			h.log.Error().Err(err).Str("dependency", checker.Name()).Msg("health check failed")
			deps[checker.Name()] = "down"
			status = "degraded"
			continue
		}
		deps[checker.Name()] = "up"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"dependencies": deps,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
