package handlers

import (
	"time"

	"github.com/oksasatya/go-ddd-storefront/internal/application"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

type cartLineView struct {
	ProductID   string `json:"product_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Amount      string `json:"amount"`
}

type cartView struct {
	Products []cartLineView `json:"products"`
	Total    string         `json:"total"`
	Warnings []string       `json:"warnings,omitempty"`
}

func toCartLines(lines []entity.CartLine) []cartLineView {
	out := make([]cartLineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineView{
			ProductID:   l.Product.ID,
			Title:       l.Product.Title,
			Description: l.Product.Description,
			ImageURL:    l.Product.ImageURL,
			Price:       l.Product.Price.StringFixed(2),
			Quantity:    l.Quantity,
			Amount:      l.Amount().StringFixed(2),
		})
	}
	return out
}

func toCartView(rc *application.ResolvedCart) cartView {
	v := cartView{Products: toCartLines(rc.Lines), Total: rc.Total.StringFixed(2)}
	for _, id := range rc.Missing {
		v.Warnings = append(v.Warnings, "product "+id+" is no longer available and was left out")
	}
	return v
}

type checkoutView struct {
	SessionID string         `json:"session_id"`
	URL       string         `json:"url"`
	Products  []cartLineView `json:"products"`
	Total     string         `json:"total"`
}

type orderLineView struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
}

type orderView struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Products  []orderLineView `json:"products"`
	Total     string          `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

func toOrderView(o *entity.Order) orderView {
	lines := make([]orderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineView{
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     l.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Amount:    l.Amount().StringFixed(2),
		})
	}
	return orderView{ID: o.ID, Email: o.Email, Products: lines, Total: o.Total().StringFixed(2), CreatedAt: o.CreatedAt}
}
