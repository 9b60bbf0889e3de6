package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/logger"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			log.Warn("Request completed with errors", c.Errors.Last(), fields)
			return
		}
		log.Debug("Request completed", nil, fields)
	}
}
