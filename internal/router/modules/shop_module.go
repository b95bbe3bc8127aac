package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-storefront/internal/interface/http"
	"github.com/oksasatya/go-ddd-storefront/internal/interface/middleware"
)

// ShopModule serves the cart, checkout, order history and invoices.
// Every route requires a logged-in user.
type ShopModule struct {
	Handler *handlers.ShopHandler
	Redis   *redis.Client
}

func NewShopModule(h *handlers.ShopHandler, rdb *redis.Client) *ShopModule {
	return &ShopModule{Handler: h, Redis: rdb}
}

func (m *ShopModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth())
	auth.Use(
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/cart", m.Handler.GetCart)
		auth.POST("/cart", m.Handler.AddToCart)
		auth.POST("/cart-delete-item", m.Handler.DeleteCartItem)

		auth.GET("/checkout", m.Handler.BeginCheckout)
		auth.GET("/checkout/success", m.Handler.CheckoutSuccess)
		auth.GET("/checkout/cancel", m.Handler.CheckoutCancel)

		auth.GET("/orders", m.Handler.ListOrders)
		auth.GET("/orders/:orderId/invoice", m.Handler.Invoice)
	}
}
