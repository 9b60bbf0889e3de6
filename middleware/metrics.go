package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/metrics"
)

// RequestMetrics counts requests by method, matched route and status.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
