package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/phambaophuc/dali/internal/services/health"
)

type HealthChecker interface {
	Check(ctx context.Context) map[string]string
}

// StatsProvider exposes worker pool counters.
type StatsProvider interface {
	Stats() map[string]interface{}
}

type HealthHandler struct {
	checker HealthChecker
	stats   StatsProvider
}

func NewHealthHandler(checker HealthChecker, stats StatsProvider) *HealthHandler {
	return &HealthHandler{checker: checker, stats: stats}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	services := h.checker.Check(c.Request.Context())
	overall := health.Overall(services)

	statusCode := http.StatusOK
	if overall == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	report := models.HealthCheck{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
	}
	if h.stats != nil {
		report.Workers = h.stats.Stats()
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == health.StatusHealthy,
		Data:    report,
	})
}
