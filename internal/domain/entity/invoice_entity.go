package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceDocument is the printable view of an order.
type InvoiceDocument struct {
	OrderID  string
	Email    string
	IssuedAt time.Time
	Lines    []OrderLine
	Total    decimal.Decimal
}

// NewInvoiceDocument builds the document from the order snapshot only.
func NewInvoiceDocument(o *Order) InvoiceDocument {
	return InvoiceDocument{
		OrderID:  o.ID,
		Email:    o.Email,
		IssuedAt: o.CreatedAt,
		Lines:    o.Lines,
		Total:    o.Total(),
	}
}

// Invoice is a rendered document ready to be served.
type Invoice struct {
	Name        string
	ContentType string
	Data        []byte
}

// InvoiceName is the file name used both for download and for the stored copy.
func InvoiceName(orderID string) string {
	return "invoice-" + orderID + ".pdf"
}
