package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
)

// memUsers mirrors the SQL semantics of the Postgres adapter.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*entity.User{}} }

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) SetResetToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	u.ResetToken = token
	u.ResetTokenExpiration = &expiresAt
	return nil
}

func (r *memUsers) GetByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != "" && u.ResetToken == token && u.ResetTokenExpiration != nil && u.ResetTokenExpiration.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) ConsumeResetToken(_ context.Context, userID, token, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.ResetToken == "" || u.ResetToken != token || u.ResetTokenExpiration == nil || !u.ResetTokenExpiration.After(now) {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.ResetToken = ""
	u.ResetTokenExpiration = nil
	return true, nil
}

func (r *memUsers) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
	err      error
}

func newMemSessions() *memSessions { return &memSessions{sessions: map[string]entity.Session{}} }

func (s *memSessions) Save(_ context.Context, sess *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *memSessions) Get(_ context.Context, id string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return &sess, nil
	}
	return nil, nil
}

func (s *memSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memSessions) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

type memProducts struct {
	mu       sync.Mutex
	products map[string]entity.Product
}

func newMemProducts(ps ...entity.Product) *memProducts {
	r := &memProducts{products: map[string]entity.Product{}}
	for _, p := range ps {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *memProducts) GetByIDs(_ context.Context, ids []string) (map[string]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]entity.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *memProducts) setPrice(id, price string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.products[id]
	p.Price = decimal.RequireFromString(price)
	r.products[id] = p
}

func (r *memProducts) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
}

// memCarts keeps insertion order like added_at in SQL.
type memCarts struct {
	mu    sync.Mutex
	carts map[string][]entity.CartEntry
}

func newMemCarts() *memCarts { return &memCarts{carts: map[string][]entity.CartEntry{}} }

func (r *memCarts) Get(_ context.Context, userID string) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := append([]entity.CartEntry{}, r.carts[userID]...)
	return &entity.Cart{UserID: userID, Entries: entries}, nil
}

func (r *memCarts) Increment(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.carts[userID]
	for i := range entries {
		if entries[i].ProductID == productID {
			entries[i].Quantity++
			return nil
		}
	}
	r.carts[userID] = append(entries, entity.CartEntry{ProductID: productID, Quantity: 1})
	return nil
}

func (r *memCarts) Remove(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.carts[userID]
	out := entries[:0]
	for _, e := range entries {
		if e.ProductID != productID {
			out = append(out, e)
		}
	}
	r.carts[userID] = out
	return nil
}

func (r *memCarts) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
}

func newMemOrders() *memOrders { return &memOrders{orders: map[string]*entity.Order{}} }

func (r *memOrders) Create(_ context.Context, o *entity.Order) (*entity.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.PaymentRef == o.PaymentRef {
			cp := *existing
			return &cp, false, nil
		}
	}
	cp := *o
	cp.Lines = append([]entity.OrderLine{}, o.Lines...)
	r.orders[o.ID] = &cp
	return o, true, nil
}

func (r *memOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *memOrders) GetByPaymentRef(_ context.Context, ref string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PaymentRef == ref {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrders) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memOrders) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// fakeGateway records checkout sessions and answers confirmations from them.
type fakeGateway struct {
	mu       sync.Mutex
	sessions map[string]entity.CheckoutRequest
	paid     map[string]bool
	confirms int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]entity.CheckoutRequest{}, paid: map[string]bool{}}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req entity.CheckoutRequest) (*entity.PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("cs_test_%d", len(g.sessions)+1)
	g.sessions[id] = req
	return &entity.PaymentSession{ID: id, URL: "https://pay.example/" + id}, nil
}

func (g *fakeGateway) ConfirmPayment(_ context.Context, sessionID string) (*entity.PaymentConfirmation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirms++
	req, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	return &entity.PaymentConfirmation{
		SessionID:       sessionID,
		Paid:            g.paid[sessionID],
		ClientReference: req.ClientReference,
		AmountTotal:     chargedAmount(req.Lines),
	}, nil
}

// chargedAmount is what the provider bills for the lines it was given.
func chargedAmount(lines []entity.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total.Round(2)
}

func (g *fakeGateway) pay(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paid[sessionID] = true
}

type sentEmail struct {
	To, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) emails() []sentEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEmail{}, n.sent...)
}

type textRenderer struct {
	calls int
}

func (r *textRenderer) Render(w io.Writer, doc entity.InvoiceDocument) error {
	r.calls++
	_, err := fmt.Fprintf(w, "Invoice %s total %s", doc.OrderID, doc.Total.StringFixed(2))
	return err
}

type memStore struct {
	saved map[string][]byte
	err   error
}

func (s *memStore) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[name] = data
	return "mem://" + name, nil
}

type recordingIndexer struct {
	indexed []string
}

func (i *recordingIndexer) IndexOrder(_ context.Context, o *entity.Order) error {
	i.indexed = append(i.indexed, o.ID)
	return nil
}

// fixedClock returns a clock whose time can be moved forward.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

const testCost = 4 // bcrypt.MinCost

func product(id, title, price string) entity.Product {
	return entity.Product{ID: id, Title: title, Price: decimal.RequireFromString(price)}
}

func seedUser(t interface{ Fatalf(string, ...any) }, users *memUsers, email, password string) *entity.User {
	hash, err := helpers.HashPassword(password, testCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &entity.User{Email: email, PasswordHash: hash}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
