package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
	"github.com/oksasatya/go-ddd-storefront/pkg/response"
)

// Context keys set by LoadSession.
const (
	CtxUserIDKey  = "userID"
	CtxUserKey    = "user"
	CtxSessionKey = "session"
)

// SessionResolver turns the session cookie into the current user.
type SessionResolver interface {
	ResolveCurrentUser(ctx context.Context, handle string) (*entity.User, *entity.Session, error)
}

// LoadSession resolves the session cookie on every request. Requests without
// a valid session continue as anonymous.
func LoadSession(resolver SessionResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle, err := c.Cookie(helpers.SessionCookie)
		if err != nil || handle == "" {
			c.Next()
			return
		}
		user, sess, err := resolver.ResolveCurrentUser(c.Request.Context(), handle)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("resolve session failed")
			}
			response.Error[any](c, apperror.Status(err), apperror.PublicMessage(err), nil)
			c.Abort()
			return
		}
		if user != nil && sess != nil {
			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUserKey, user)
			c.Set(CtxSessionKey, sess)
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Error[any](c, http.StatusUnauthorized, "login required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

func CurrentSession(c *gin.Context) *entity.Session {
	if v, ok := c.Get(CtxSessionKey); ok {
		if s, ok := v.(*entity.Session); ok {
			return s
		}
	}
	return nil
}
