package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/service"
)

// unroutedLabel stands in for paths that matched no route. Recording the raw
// URL there would let clients mint unbounded label values.
const unroutedLabel = "unrouted"

// Metrics observes every request through the metrics service. The route
// template is used as the path label so /students/:id stays a single series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unroutedLabel
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
