package router

import (
	"github.com/oksasatya/go-ddd-storefront/internal/application"
	"github.com/oksasatya/go-ddd-storefront/internal/container"
	pginfra "github.com/oksasatya/go-ddd-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-storefront/internal/infrastructure/pdf"
	"github.com/oksasatya/go-ddd-storefront/internal/infrastructure/redisstore"
	handlers "github.com/oksasatya/go-ddd-storefront/internal/interface/http"
	"github.com/oksasatya/go-ddd-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-storefront/internal/router/modules"
)

// Services is everything InitModules builds from the container.
type Services struct {
	Auth     *application.AuthService
	Reset    *application.ResetService
	Cart     *application.CartService
	Checkout *application.CheckoutService
	Invoices *application.InvoiceService
}

func buildServices(c *container.Container) Services {
	cfg := c.Config
	users := pginfra.NewUserRepository(c.PGPool)
	products := pginfra.NewProductRepository(c.PGPool)
	carts := pginfra.NewCartRepository(c.PGPool)
	orders := pginfra.NewOrderRepository(c.PGPool)

	sessions := redisstore.NewSessionStore(c.Redis)

	auth := application.NewAuthService(users, sessions, c.JWT, c.Notifier, c.Logger, cfg.BcryptCost, cfg.SessionTTL)
	auth.AppName = cfg.AppName
	auth.LoginURL = cfg.PublicBaseURL + "/login"

	reset := application.NewResetService(users, c.Notifier, c.Logger, cfg.ResetTokenTTL, cfg.ResetPasswordURL, cfg.BcryptCost)
	reset.AppName = cfg.AppName
	reset.Sessions = sessions

	cart := application.NewCartService(carts, products, c.Logger)
	checkout := application.NewCheckoutService(cart, orders, c.Payments, c.Indexer, c.Logger)
	invoices := application.NewInvoiceService(orders, pdf.NewInvoiceRenderer(), c.Invoices, c.Logger)

	return Services{Auth: auth, Reset: reset, Cart: cart, Checkout: checkout, Invoices: invoices}
}

// InitModules builds every service from c and registers the feature modules.
// Session loading and CSRF checks run on every route the registry mounts.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) Services {
	svc := buildServices(c)
	cfg := c.Config

	r.Use(middleware.LoadSession(svc.Auth, c.Logger), middleware.CSRF())

	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Reset, c.Logger, cfg.CookieDomain, cfg.CookieSecure)
	shopHandler := handlers.NewShopHandler(svc.Cart, svc.Checkout, svc.Invoices, c.Logger, application.CheckoutURLs{
		SuccessURL: cfg.CheckoutSuccessURL(),
		CancelURL:  cfg.CheckoutCancelURL(),
	})

	r.Add(modules.NewAuthModule(authHandler, c.Redis))
	r.Add(modules.NewShopModule(shopHandler, c.Redis))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
	return svc
}
