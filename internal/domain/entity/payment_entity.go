package entity

import "github.com/shopspring/decimal"

// CheckoutRequest is what the payment provider needs to open a hosted
// checkout page. ClientReference carries the buyer's user id.
type CheckoutRequest struct {
	ClientReference string
	CustomerEmail   string
	Lines           []CartLine
	SuccessURL      string
	CancelURL       string
}

// PaymentSession is the provider-side checkout session.
type PaymentSession struct {
	ID  string
	URL string
}

// PaymentConfirmation is the provider's verdict on a checkout session.
type PaymentConfirmation struct {
	SessionID       string
	Paid            bool
	ClientReference string
	AmountTotal     decimal.Decimal
}
