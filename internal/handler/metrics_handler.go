package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/nitap-dev/mentor-portal-api/internal/service"
)

const probeTimeout = 2 * time.Second

// MetricsHandler serves the operational endpoints: liveness, readiness and
// the Prometheus scrape target.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      *sqlx.DB
	rdb     *redis.Client
}

func NewMetricsHandler(metrics *service.MetricsService, db *sqlx.DB, rdb *redis.Client) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db, rdb: rdb}
}

// Health is the liveness probe. It only proves the process is serving.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings postgres and redis and reports per-dependency state. Any
// failing dependency turns the whole probe into a 503.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			deps["postgres"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			deps["postgres"] = "up"
		}
	}
	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			deps["redis"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			deps["redis"] = "up"
		}
	}

	c.JSON(status, gin.H{"status": readiness(status), "dependencies": deps})
}

// Prometheus exposes the scrape endpoint backed by the service registry.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func readiness(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "degraded"
}
