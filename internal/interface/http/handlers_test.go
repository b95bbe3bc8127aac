package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-storefront/internal/application"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
	"github.com/oksasatya/go-ddd-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
	"github.com/oksasatya/go-ddd-storefront/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// Minimal single-goroutine fakes; the application package tests cover the
// services themselves.

type users struct{ byID map[string]*entity.User }

func (r *users) Create(_ context.Context, u *entity.User) error {
	for _, x := range r.byID {
		if x.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}
func (r *users) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}
func (r *users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}
func (r *users) SetResetToken(context.Context, string, string, time.Time) error { return nil }
func (r *users) GetByResetToken(context.Context, string, time.Time) (*entity.User, error) {
	return nil, nil
}
func (r *users) ConsumeResetToken(context.Context, string, string, string, time.Time) (bool, error) {
	return false, nil
}

type sessions map[string]entity.Session

func (s sessions) Save(_ context.Context, sess *entity.Session) error { s[sess.ID] = *sess; return nil }
func (s sessions) Get(_ context.Context, id string) (*entity.Session, error) {
	if sess, ok := s[id]; ok {
		return &sess, nil
	}
	return nil, nil
}
func (s sessions) Delete(_ context.Context, id string) error { delete(s, id); return nil }
func (s sessions) DeleteByUser(_ context.Context, userID string) error {
	for id, sess := range s {
		if sess.UserID == userID {
			delete(s, id)
		}
	}
	return nil
}

type products map[string]entity.Product

func (p products) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if x, ok := p[id]; ok {
		return &x, nil
	}
	return nil, nil
}
func (p products) GetByIDs(_ context.Context, ids []string) (map[string]entity.Product, error) {
	out := map[string]entity.Product{}
	for _, id := range ids {
		if x, ok := p[id]; ok {
			out[id] = x
		}
	}
	return out, nil
}

type carts map[string][]entity.CartEntry

func (c carts) Get(_ context.Context, userID string) (*entity.Cart, error) {
	return &entity.Cart{UserID: userID, Entries: append([]entity.CartEntry{}, c[userID]...)}, nil
}
func (c carts) Increment(_ context.Context, userID, productID string) error {
	for i, e := range c[userID] {
		if e.ProductID == productID {
			c[userID][i].Quantity++
			return nil
		}
	}
	c[userID] = append(c[userID], entity.CartEntry{ProductID: productID, Quantity: 1})
	return nil
}
func (c carts) Remove(_ context.Context, userID, productID string) error {
	var keep []entity.CartEntry
	for _, e := range c[userID] {
		if e.ProductID != productID {
			keep = append(keep, e)
		}
	}
	c[userID] = keep
	return nil
}
func (c carts) Clear(_ context.Context, userID string) error { delete(c, userID); return nil }

type orders map[string]*entity.Order

func (o orders) Create(_ context.Context, x *entity.Order) (*entity.Order, bool, error) {
	for _, e := range o {
		if e.PaymentRef == x.PaymentRef {
			return e, false, nil
		}
	}
	o[x.ID] = x
	return x, true, nil
}
func (o orders) GetByID(_ context.Context, id string) (*entity.Order, error) { return o[id], nil }
func (o orders) GetByPaymentRef(_ context.Context, ref string) (*entity.Order, error) {
	for _, e := range o {
		if e.PaymentRef == ref {
			return e, nil
		}
	}
	return nil, nil
}
func (o orders) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	var out []entity.Order
	for _, e := range o {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type gateway struct{ reqs map[string]entity.CheckoutRequest }

func (g *gateway) CreateCheckoutSession(_ context.Context, req entity.CheckoutRequest) (*entity.PaymentSession, error) {
	id := fmt.Sprintf("cs_%d", len(g.reqs)+1)
	g.reqs[id] = req
	return &entity.PaymentSession{ID: id, URL: "https://pay.test/" + id}, nil
}
func (g *gateway) ConfirmPayment(_ context.Context, id string) (*entity.PaymentConfirmation, error) {
	req, ok := g.reqs[id]
	if !ok {
		return nil, errors.New("unknown session")
	}
	paid := decimal.Zero
	for _, l := range req.Lines {
		paid = paid.Add(l.Amount())
	}
	return &entity.PaymentConfirmation{SessionID: id, Paid: true, ClientReference: req.ClientReference, AmountTotal: paid}, nil
}

type renderer struct{}

func (renderer) Render(w io.Writer, doc entity.InvoiceDocument) error {
	_, err := fmt.Fprintf(w, "%%PDF total %s", doc.Total.StringFixed(2))
	return err
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestServerWithSessions(t, sessions{})
}

func newTestServerWithSessions(t *testing.T, store sessions) *gin.Engine {
	t.Helper()
	logger := helpers.NewNopLogger()
	auth := application.NewAuthService(&users{byID: map[string]*entity.User{}}, store,
		helpers.NewJWTManager("test-secret", time.Hour), nil, logger, 4, time.Hour)
	reset := application.NewResetService(&users{byID: map[string]*entity.User{}}, nil, logger, time.Hour, "http://shop.test/reset", 4)
	cart := application.NewCartService(carts{}, products{
		"p": {ID: "p", Title: "P", Price: decimal.RequireFromString("5.00")},
		"q": {ID: "q", Title: "Q", Price: decimal.RequireFromString("3.00")},
	}, logger)
	ord := orders{}
	checkout := application.NewCheckoutService(cart, ord, &gateway{reqs: map[string]entity.CheckoutRequest{}}, nil, logger)
	invoices := application.NewInvoiceService(ord, renderer{}, nil, logger)

	ah := NewAuthHandler(auth, reset, logger, "", false)
	sh := NewShopHandler(cart, checkout, invoices, logger, application.CheckoutURLs{SuccessURL: "s", CancelURL: "c"})

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.LoadSession(auth, logger), middleware.CSRF())
	r.GET("/signup", ah.CSRFToken)
	r.POST("/signup", ah.Signup)
	r.GET("/login", ah.CSRFToken)
	r.POST("/login", ah.Login)
	r.POST("/logout", ah.Logout)
	r.GET("/reset/:token", ah.ResetForm)
	p := r.Group("/", middleware.RequireAuth())
	p.POST("/cart", sh.AddToCart)
	p.POST("/cart-delete-item", sh.DeleteCartItem)
	p.GET("/cart", sh.GetCart)
	p.GET("/checkout", sh.BeginCheckout)
	p.GET("/checkout/success", sh.CheckoutSuccess)
	p.GET("/orders", sh.ListOrders)
	p.GET("/orders/:orderId/invoice", sh.Invoice)
	return r
}

// client keeps cookies and the current csrf token between requests.
type client struct {
	t       *testing.T
	srv     *gin.Engine
	cookies map[string]*http.Cookie
	csrf    string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (c *client) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrf != "" {
		req.Header.Set(middleware.CSRFHeader, c.csrf)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.srv.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (c *client) fetchCSRF(path string) {
	c.t.Helper()
	w, env := c.do(http.MethodGet, path, "")
	require.Equal(c.t, http.StatusOK, w.Code)
	var data struct {
		Token string `json:"csrf_token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &data))
	c.csrf = data.Token
}

func TestStorefrontFlow(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t), cookies: map[string]*http.Cookie{}}

	// POST without a token is rejected before the handler runs
	w, _ := c.do(http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1","confirmPassword":"secret1"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c.fetchCSRF("/signup")
	w, env := c.do(http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1","confirmPassword":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)

	w, env = c.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"wrong1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", env.Message)

	w, env = c.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var login struct {
		CSRF string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.Contains(t, c.cookies, helpers.SessionCookie)

	// the anonymous token no longer counts once a session exists
	w, _ = c.do(http.MethodPost, "/cart", `{"productId":"p"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	c.csrf = login.CSRF

	for _, body := range []string{`{"productId":"p"}`, `{"productId":"q"}`, `{"productId":"q"}`} {
		w, env = c.do(http.MethodPost, "/cart", body)
		require.Equal(t, http.StatusOK, w.Code, env.Message)
	}
	w, _ = c.do(http.MethodPost, "/cart", `{"productId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = c.do(http.MethodGet, "/checkout", "")
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var cs checkoutView
	require.NoError(t, json.Unmarshal(env.Data, &cs))
	assert.Equal(t, "11.00", cs.Total)

	w, env = c.do(http.MethodGet, "/checkout/success?session_id="+cs.SessionID, "")
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var order orderView
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "11.00", order.Total)

	w, env = c.do(http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cart cartView
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Empty(t, cart.Products)
	assert.Equal(t, "0.00", cart.Total)

	w, _ = c.do(http.MethodGet, "/orders/"+order.ID+"/invoice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="invoice-`+order.ID+`.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF total 11.00", w.Body.String())

	w, _ = c.do(http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignup_BindingErrorsEchoInput(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t), cookies: map[string]*http.Cookie{}}
	c.fetchCSRF("/signup")

	w, env := c.do(http.MethodPost, "/signup", `{"email":"a@x.com","password":"abc","confirmPassword":"abc"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "password must be at least 5 characters long", env.Message)

	var detail struct {
		Details  map[string]string `json:"details"`
		OldInput map[string]string `json:"old_input"`
	}
	require.NoError(t, json.Unmarshal(env.Error, &detail))
	assert.Equal(t, "a@x.com", detail.OldInput["email"])
	assert.NotContains(t, string(env.Error), "abc")

	w, env = c.do(http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1","confirmPassword":"secret2"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "passwords have to match", env.Message)
}

func TestResetForm_InvalidToken(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t), cookies: map[string]*http.Cookie{}}

	w, env := c.do(http.MethodGet, "/reset/deadbeef", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.ErrTokenInvalid.Error(), env.Message)
}

func signupAndLogin(c *client) {
	c.t.Helper()
	c.fetchCSRF("/signup")
	w, env := c.do(http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1","confirmPassword":"secret1"}`)
	require.Equal(c.t, http.StatusCreated, w.Code, env.Message)
	w, env = c.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(c.t, http.StatusOK, w.Code, env.Message)
	var login struct {
		CSRF string `json:"csrf_token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &login))
	c.csrf = login.CSRF
}

func TestLogin_ReplacesOpenSession(t *testing.T) {
	store := sessions{}
	c := &client{t: t, srv: newTestServerWithSessions(t, store), cookies: map[string]*http.Cookie{}}
	signupAndLogin(c)
	require.Len(t, store, 1)
	var first string
	for id := range store {
		first = id
	}

	w, env := c.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Len(t, store, 1)
	assert.NotContains(t, store, first)
}

func TestCheckoutSuccess_CartChangedAfterPayment(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t), cookies: map[string]*http.Cookie{}}
	signupAndLogin(c)

	w, env := c.do(http.MethodPost, "/cart", `{"productId":"p"}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	w, env = c.do(http.MethodGet, "/checkout", "")
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var cs checkoutView
	require.NoError(t, json.Unmarshal(env.Data, &cs))
	assert.Equal(t, "5.00", cs.Total)

	w, env = c.do(http.MethodPost, "/cart", `{"productId":"q"}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, env = c.do(http.MethodGet, "/checkout/success?session_id="+cs.SessionID, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.ErrCartChanged.Error(), env.Message)

	w, env = c.do(http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []orderView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)
}
