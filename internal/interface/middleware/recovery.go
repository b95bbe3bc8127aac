package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/pkg/response"
)

// Recovery turns a panic into the generic 500 envelope.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"request_id": c.GetString("request_id"),
						"path":       c.Request.URL.Path,
						"panic":      rec,
					}).Error("panic recovered")
				}
				if !c.Writer.Written() {
					response.Error[any](c, http.StatusInternalServerError, "something went wrong, please try again later", nil)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
