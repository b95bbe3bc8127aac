package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// checkoutSessions is the part of the Stripe client the gateway uses.
type checkoutSessions interface {
	New(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	Get(id string, params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
}

// Gateway opens Stripe hosted checkout sessions and reads back their status.
type Gateway struct {
	sessions checkoutSessions
	currency string
}

func NewGateway(secretKey, currency string) *Gateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return newGateway(sc.CheckoutSessions, currency)
}

func newGateway(sessions checkoutSessions, currency string) *Gateway {
	if currency == "" {
		currency = string(stripeapi.CurrencyUSD)
	}
	return &Gateway{sessions: sessions, currency: strings.ToLower(currency)}
}

// toMinorUnits converts a decimal amount to cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req entity.CheckoutRequest) (*entity.PaymentSession, error) {
	if len(req.Lines) == 0 {
		return nil, errors.New("checkout session needs at least one line")
	}
	items := make([]*stripeapi.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, l := range req.Lines {
		product := &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripeapi.String(l.Product.Title),
		}
		if l.Product.Description != "" {
			product.Description = stripeapi.String(l.Product.Description)
		}
		items = append(items, &stripeapi.CheckoutSessionLineItemParams{
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripeapi.String(g.currency),
				UnitAmount:  stripeapi.Int64(toMinorUnits(l.Product.Price)),
				ProductData: product,
			},
			Quantity: stripeapi.Int64(int64(l.Quantity)),
		})
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(req.SuccessURL),
		CancelURL:         stripeapi.String(req.CancelURL),
		ClientReferenceID: stripeapi.String(req.ClientReference),
		LineItems:         items,
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(req.CustomerEmail)
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return &entity.PaymentSession{ID: s.ID, URL: s.URL}, nil
}

func (g *Gateway) ConfirmPayment(ctx context.Context, sessionID string) (*entity.PaymentConfirmation, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.sessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session: %w", err)
	}
	return &entity.PaymentConfirmation{
		SessionID:       s.ID,
		Paid:            s.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid,
		ClientReference: s.ClientReferenceID,
		AmountTotal:     fromMinorUnits(s.AmountTotal),
	}, nil
}
