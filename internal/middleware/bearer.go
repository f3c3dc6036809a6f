package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MetricsAuthMiddleware protects the metrics endpoint with a Bearer token.
// An empty token leaves the endpoint open.
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	return bearerAuth("Metrics", token, true)
}

// TasksAuthMiddleware protects the task endpoints with a Bearer token.
// An empty token rejects every request.
func TasksAuthMiddleware(token string) gin.HandlerFunc {
	return bearerAuth("Tasks", token, false)
}

func bearerAuth(realm, token string, openWhenEmpty bool) gin.HandlerFunc {
	challenge := `Bearer realm="` + realm + `"`

	return func(c *gin.Context) {
		if token == "" {
			if openWhenEmpty {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "unavailable",
				"message": realm + " token not configured",
			})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Header("WWW-Authenticate", challenge)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Bearer token required",
			})
			return
		}

		providedToken := strings.TrimPrefix(authHeader, "Bearer ")

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(providedToken), []byte(token)) != 1 {
			c.Header("WWW-Authenticate", challenge)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid token",
			})
			return
		}

		c.Next()
	}
}
