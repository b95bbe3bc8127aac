package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/guard"
	repo "github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
)

type CheckoutService struct {
	Cart     *CartService
	Orders   repo.OrderRepository
	Payments PaymentGateway
	Indexer  OrderIndexer // optional
	Logger   *logrus.Logger
	Clock    Clock
}

func NewCheckoutService(cart *CartService, orders repo.OrderRepository, payments PaymentGateway, indexer OrderIndexer, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{Cart: cart, Orders: orders, Payments: payments, Indexer: indexer, Logger: logger}
}

type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the summary shown before redirecting to the provider.
type CheckoutSession struct {
	SessionID string
	URL       string
	Lines     []entity.CartLine
	Total     decimal.Decimal
}

// BeginCheckout opens a payment session for the current cart at current
// catalog prices. Nothing is persisted.
func (s *CheckoutService) BeginCheckout(ctx context.Context, user *entity.User, urls CheckoutURLs) (*CheckoutSession, error) {
	if user == nil {
		return nil, apperror.ErrAuthorization
	}
	cart, err := s.Cart.ResolveCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperror.ErrEmptyCart
	}

	ps, err := s.Payments.CreateCheckoutSession(ctx, entity.CheckoutRequest{
		ClientReference: user.ID,
		CustomerEmail:   user.Email,
		Lines:           cart.Lines,
		SuccessURL:      urls.SuccessURL,
		CancelURL:       urls.CancelURL,
	})
	if err != nil {
		return nil, apperror.Upstream("create checkout session", err)
	}
	return &CheckoutSession{SessionID: ps.ID, URL: ps.URL, Lines: cart.Lines, Total: cart.Total}, nil
}

// FinalizeOrder turns a paid checkout session into an order. It is safe to
// call repeatedly for the same session: later calls return the first order.
// The order is built from the cart, so the cart must still add up to the
// amount the provider charged.
func (s *CheckoutService) FinalizeOrder(ctx context.Context, user *entity.User, paymentSessionID string) (*entity.Order, error) {
	if user == nil {
		return nil, apperror.ErrAuthorization
	}
	if paymentSessionID == "" {
		return nil, apperror.Invalid("session_id", "is required")
	}

	existing, err := s.existingOrder(ctx, user, paymentSessionID)
	if err != nil || existing != nil {
		return existing, err
	}

	conf, err := s.Payments.ConfirmPayment(ctx, paymentSessionID)
	if err != nil {
		return nil, apperror.Upstream("confirm payment", err)
	}
	if !conf.Paid {
		return nil, apperror.ErrPaymentRequired
	}
	if conf.ClientReference != user.ID {
		return nil, fmt.Errorf("payment %s belongs to another user: %w", paymentSessionID, apperror.ErrAuthorization)
	}

	cart, err := s.Cart.ResolveCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() || !conf.AmountTotal.Equal(cart.Total.Round(2)) {
		// a concurrent finalize of the same payment may have won and cleared the cart
		existing, err := s.existingOrder(ctx, user, paymentSessionID)
		if err != nil || existing != nil {
			return existing, err
		}
		if cart.IsEmpty() {
			return nil, apperror.ErrEmptyCart
		}
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"user_id": user.ID, "payment_ref": paymentSessionID,
				"paid": conf.AmountTotal.StringFixed(2), "cart_total": cart.Total.StringFixed(2),
			}).Warn("cart changed after payment")
		}
		return nil, fmt.Errorf("paid %s, cart totals %s: %w",
			conf.AmountTotal.StringFixed(2), cart.Total.StringFixed(2), apperror.ErrCartChanged)
	}

	order := &entity.Order{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Email:      user.Email,
		PaymentRef: paymentSessionID,
		Lines:      entity.SnapshotLines(cart.Lines),
		CreatedAt:  s.Clock.now(),
	}
	stored, created, err := s.Orders.Create(ctx, order)
	if err != nil {
		return nil, apperror.Upstream("create order", err)
	}
	if err := guard.AssertOwner(stored, user.ID); err != nil {
		return nil, err
	}
	s.clearCart(ctx, user.ID)

	if created {
		ordersFinalized.Add(1)
		s.index(ctx, stored)
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"order_id": stored.ID, "user_id": user.ID, "total": stored.Total().StringFixed(2)}).
				Info("order finalized")
		}
	}
	return stored, nil
}

// existingOrder returns the order already placed for the payment, after
// checking it belongs to user and clearing the cart again.
func (s *CheckoutService) existingOrder(ctx context.Context, user *entity.User, paymentSessionID string) (*entity.Order, error) {
	existing, err := s.Orders.GetByPaymentRef(ctx, paymentSessionID)
	if err != nil {
		return nil, apperror.Upstream("get order by payment", err)
	}
	if existing == nil {
		return nil, nil
	}
	if err := guard.AssertOwner(existing, user.ID); err != nil {
		return nil, err
	}
	s.clearCart(ctx, user.ID)
	return existing, nil
}

func (s *CheckoutService) ListOrders(ctx context.Context, user *entity.User) ([]entity.Order, error) {
	if user == nil {
		return nil, apperror.ErrAuthorization
	}
	orders, err := s.Orders.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperror.Upstream("list orders", err)
	}
	for i := range orders {
		if err := guard.AssertOwner(&orders[i], user.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// clearCart runs after the order exists; a failure leaves items behind but
// the next finalize call for the same session clears them again.
func (s *CheckoutService) clearCart(ctx context.Context, userID string) {
	if err := s.Cart.ClearCart(ctx, userID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("clear cart after checkout failed")
	}
}

func (s *CheckoutService) index(ctx context.Context, o *entity.Order) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexOrder(ctx, o); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Warn("index order failed")
	}
}
