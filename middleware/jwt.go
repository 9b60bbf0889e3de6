package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/types"
	"github.com/tieubaoca/docqa-be/utils"
)

const ClaimsContextKey = "claims"

// AuthMiddleware requires a valid HS256 bearer token. An empty secret disables the check.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Detail: types.DetailUnauthorized})
			return
		}

		claims, err := utils.ParseToken(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Detail: types.DetailUnauthorized})
			return
		}
		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}
