package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-trellis/trellis/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenKey    = "csrf_token"
	csrfFormField   = "csrf_token"
	csrfHeaderField = "X-CSRF-Token"
)

// CSRFMiddleware provides CSRF protection for the form posts of the pages.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, _ := session.Get(csrfTokenKey).(string)
		if token == "" {
			generated, err := util.RandomState(32)
			if err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			token = generated
			session.Set(csrfTokenKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		// Make token available to templates
		c.Set(csrfTokenKey, token)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
			submitted := c.PostForm(csrfFormField)
			if submitted == "" {
				submitted = c.GetHeader(csrfHeaderField)
			}

			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				c.String(
					http.StatusForbidden,
					"CSRF token validation failed. Please refresh the page and try again.",
				)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// GetCSRFToken retrieves the CSRF token from the context
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfTokenKey); exists {
		if tokenStr, ok := token.(string); ok {
			return tokenStr
		}
	}
	return ""
}
