package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
	"github.com/oksasatya/go-ddd-storefront/pkg/response"
)

const (
	CSRFHeader    = "X-CSRF-Token"
	CSRFFormField = "_csrf"
)

// CSRF guards state-changing requests. The expected token is the session's
// token, or the csrf_token cookie for visitors that are not logged in.
// Must run after LoadSession.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		var expected string
		if sess := CurrentSession(c); sess != nil {
			expected = sess.CSRFToken
		} else {
			expected, _ = c.Cookie(helpers.CSRFCookie)
		}
		got := c.GetHeader(CSRFHeader)
		if got == "" {
			got = c.PostForm(CSRFFormField)
		}

		if expected == "" || got == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
			response.Error[any](c, http.StatusForbidden, "invalid csrf token", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
