package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-storefront/internal/interface/http"
	"github.com/oksasatya/go-ddd-storefront/internal/interface/middleware"
)

// AuthModule serves signup, login, logout and password reset.
// Public: every route here; logout acts on whatever session the cookie names.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	resetLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/signup", m.Handler.CSRFToken)
	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.GET("/login", m.Handler.CSRFToken)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/logout", m.Handler.Logout)

	rg.GET("/reset", m.Handler.CSRFToken)
	rg.POST("/reset", resetLimiter, m.Handler.RequestReset)
	rg.GET("/reset/:token", resetConfirmLimiter, m.Handler.ResetForm)
	rg.POST("/new-password", resetConfirmLimiter, m.Handler.NewPassword)
}
