package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

type CorsHandler struct {
	allowedOrigins []string
}

// NewCorsHandler allows the given origins. No origins, or "*", allows any.
func NewCorsHandler(allowedOrigins []string) *CorsHandler {
	return &CorsHandler{
		allowedOrigins: allowedOrigins,
	}
}

func (h *CorsHandler) CorsMiddleware(c *gin.Context) {
	origin := h.allowOrigin(c.GetHeader("Origin"))
	if origin != "" {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Add("Vary", "Origin")
		}
	}
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}

func (h *CorsHandler) allowOrigin(origin string) string {
	if len(h.allowedOrigins) == 0 || slices.Contains(h.allowedOrigins, "*") {
		return "*"
	}
	if slices.Contains(h.allowedOrigins, origin) {
		return origin
	}
	return ""
}
