package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/finance_tracker/internal/platform/observability"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request duration by matched route.
func MetricsMiddleware(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
