package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is a frozen copy of the product as it was at purchase time.
type OrderLine struct {
	ProductID   string
	Title       string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func (l OrderLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is immutable once created. PaymentRef is the payment provider's
// checkout session id and is unique across orders.
type Order struct {
	ID         string
	UserID     string
	Email      string
	PaymentRef string
	Lines      []OrderLine
	CreatedAt  time.Time
}

func (o *Order) OwnerID() string {
	if o == nil {
		return ""
	}
	return o.UserID
}

// Total sums the snapshot lines. Catalog prices are never consulted.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// SnapshotLines freezes resolved cart lines into order lines.
func SnapshotLines(lines []CartLine) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			ProductID:   l.Product.ID,
			Title:       l.Product.Title,
			Description: l.Product.Description,
			Price:       l.Product.Price,
			Quantity:    l.Quantity,
		})
	}
	return out
}
