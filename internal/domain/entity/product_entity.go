package entity

import "github.com/shopspring/decimal"

// Product is owned by the catalog; the storefront core only reads it.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	UserID      string // admin that created the product
}
