package entity

import "github.com/shopspring/decimal"

// CartEntry references a catalog product. Quantity is always >= 1.
type CartEntry struct {
	ProductID string
	Quantity  int
}

// Cart is embedded in its user: one per user, at most one entry per product.
type Cart struct {
	UserID  string
	Entries []CartEntry
}

func (c *Cart) OwnerID() string {
	if c == nil {
		return ""
	}
	return c.UserID
}

func (c *Cart) IsEmpty() bool { return len(c.Entries) == 0 }

// Quantity returns the quantity stored for productID, 0 when absent.
func (c *Cart) Quantity(productID string) int {
	for _, e := range c.Entries {
		if e.ProductID == productID {
			return e.Quantity
		}
	}
	return 0
}

// CartLine is a cart entry joined with live catalog data.
type CartLine struct {
	Product  Product
	Quantity int
}

func (l CartLine) Amount() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
