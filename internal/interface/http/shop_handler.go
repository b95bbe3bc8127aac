package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/application"
	"github.com/oksasatya/go-ddd-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-storefront/pkg/response"
)

type ShopHandler struct {
	Cart     *application.CartService
	Checkout *application.CheckoutService
	Invoices *application.InvoiceService
	Logger   *logrus.Logger
	URLs     application.CheckoutURLs
}

func NewShopHandler(cart *application.CartService, checkout *application.CheckoutService, invoices *application.InvoiceService, logger *logrus.Logger, urls application.CheckoutURLs) *ShopHandler {
	return &ShopHandler{Cart: cart, Checkout: checkout, Invoices: invoices, Logger: logger, URLs: urls}
}

type cartItemRequest struct {
	ProductID string `json:"productId" form:"productId" binding:"required"`
}

func (h *ShopHandler) respondCart(c *gin.Context, message string) {
	user := middleware.CurrentUser(c)
	rc, err := h.Cart.ResolveCart(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, toCartView(rc), message, nil)
}

// AddToCart POST /cart
func (h *ShopHandler) AddToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err, nil)
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.Cart.AddToCart(c.Request.Context(), user.ID, req.ProductID); err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	h.respondCart(c, "product added")
}

// DeleteCartItem POST /cart-delete-item
func (h *ShopHandler) DeleteCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err, nil)
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.Cart.RemoveFromCart(c.Request.Context(), user.ID, req.ProductID); err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	h.respondCart(c, "product removed")
}

// GetCart GET /cart
func (h *ShopHandler) GetCart(c *gin.Context) {
	h.respondCart(c, "ok")
}

// BeginCheckout GET /checkout
func (h *ShopHandler) BeginCheckout(c *gin.Context) {
	cs, err := h.Checkout.BeginCheckout(c.Request.Context(), middleware.CurrentUser(c), h.URLs)
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, checkoutView{
		SessionID: cs.SessionID,
		URL:       cs.URL,
		Products:  toCartLines(cs.Lines),
		Total:     cs.Total.StringFixed(2),
	}, "checkout session created", nil)
}

// CheckoutSuccess GET /checkout/success?session_id=...
func (h *ShopHandler) CheckoutSuccess(c *gin.Context) {
	order, err := h.Checkout.FinalizeOrder(c.Request.Context(), middleware.CurrentUser(c), c.Query("session_id"))
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, toOrderView(order), "order placed", nil)
}

// CheckoutCancel GET /checkout/cancel leaves the cart as it was.
func (h *ShopHandler) CheckoutCancel(c *gin.Context) {
	h.respondCart(c, "checkout cancelled")
}

// ListOrders GET /orders
func (h *ShopHandler) ListOrders(c *gin.Context) {
	orders, err := h.Checkout.ListOrders(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	out := make([]orderView, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderView(&orders[i]))
	}
	response.Success(c, http.StatusOK, out, "ok", gin.H{"count": len(out)})
}

// Invoice GET /orders/:orderId/invoice
func (h *ShopHandler) Invoice(c *gin.Context) {
	inv, err := h.Invoices.GenerateInvoice(c.Request.Context(), middleware.CurrentUser(c), c.Param("orderId"))
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Document(c, inv.Name, inv.ContentType, inv.Data, true)
}
