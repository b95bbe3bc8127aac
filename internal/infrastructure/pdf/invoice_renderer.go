package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// InvoiceRenderer lays out invoices as single-column A4 PDFs.
type InvoiceRenderer struct {
	// Compress is off in tests so the text can be searched in the output.
	Compress bool
}

func NewInvoiceRenderer() *InvoiceRenderer {
	return &InvoiceRenderer{Compress: true}
}

func (r *InvoiceRenderer) Render(w io.Writer, doc entity.InvoiceDocument) error {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetCompression(r.Compress)
	p.SetTitle("Invoice "+doc.OrderID, true)
	p.AddPage()

	p.SetFont("Helvetica", "BU", 26)
	p.CellFormat(0, 14, "Invoice:", "", 1, "L", false, 0, "")
	p.Ln(2)

	p.SetFont("Helvetica", "", 10)
	p.CellFormat(0, 6, "Order: "+doc.OrderID, "", 1, "L", false, 0, "")
	if doc.Email != "" {
		p.CellFormat(0, 6, "Customer: "+doc.Email, "", 1, "L", false, 0, "")
	}
	if !doc.IssuedAt.IsZero() {
		p.CellFormat(0, 6, "Date: "+doc.IssuedAt.UTC().Format("02 January 2006"), "", 1, "L", false, 0, "")
	}
	p.CellFormat(0, 6, "-----------------------", "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 14)
	for _, l := range doc.Lines {
		row := fmt.Sprintf("%s - %d X $%s", l.Title, l.Quantity, l.Price.StringFixed(2))
		p.CellFormat(0, 8, row, "", 1, "L", false, 0, "")
	}
	p.CellFormat(0, 8, "---", "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "B", 20)
	p.CellFormat(0, 10, "Total Price: $"+doc.Total.StringFixed(2), "", 1, "L", false, 0, "")

	return p.Output(w)
}
