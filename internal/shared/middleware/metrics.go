package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"books-commons/internal/infrastructure/metrics"
)

// Metrics ghi counter + latency theo route template (c.FullPath), không theo URL thật
// để tránh label cardinality nổ theo id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
