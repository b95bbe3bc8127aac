package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/guard"
	repo "github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
)

type CartService struct {
	Carts    repo.CartRepository
	Products repo.ProductRepository
	Logger   *logrus.Logger
}

func NewCartService(carts repo.CartRepository, products repo.ProductRepository, logger *logrus.Logger) *CartService {
	return &CartService{Carts: carts, Products: products, Logger: logger}
}

// ResolvedCart joins cart entries with the live catalog. Missing lists
// products that were deleted after being added; they carry no amount.
type ResolvedCart struct {
	Lines   []entity.CartLine
	Missing []string
	Total   decimal.Decimal
}

func (c *ResolvedCart) IsEmpty() bool { return len(c.Lines) == 0 }

func (s *CartService) AddToCart(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return apperror.ErrAuthorization
	}
	if productID == "" {
		return apperror.Invalid("productId", "is required")
	}
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return apperror.Upstream("get product", err)
	}
	if p == nil {
		return apperror.NotFound("product")
	}
	if err := s.Carts.Increment(ctx, userID, p.ID); err != nil {
		return apperror.Upstream("add cart item", err)
	}
	return nil
}

// RemoveFromCart is a no-op when the product is not in the cart.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return apperror.ErrAuthorization
	}
	if productID == "" {
		return apperror.Invalid("productId", "is required")
	}
	if err := s.Carts.Remove(ctx, userID, productID); err != nil {
		return apperror.Upstream("remove cart item", err)
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.ErrAuthorization
	}
	if err := s.Carts.Clear(ctx, userID); err != nil {
		return apperror.Upstream("clear cart", err)
	}
	return nil
}

func (s *CartService) ResolveCart(ctx context.Context, userID string) (*ResolvedCart, error) {
	if userID == "" {
		return nil, apperror.ErrAuthorization
	}
	cart, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream("get cart", err)
	}
	if err := guard.AssertOwner(cart, userID); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(cart.Entries))
	for _, e := range cart.Entries {
		ids = append(ids, e.ProductID)
	}
	products := map[string]entity.Product{}
	if len(ids) > 0 {
		if products, err = s.Products.GetByIDs(ctx, ids); err != nil {
			return nil, apperror.Upstream("get cart products", err)
		}
	}

	res := &ResolvedCart{Lines: []entity.CartLine{}, Missing: []string{}, Total: decimal.Zero}
	for _, e := range cart.Entries {
		p, ok := products[e.ProductID]
		if !ok {
			res.Missing = append(res.Missing, e.ProductID)
			continue
		}
		line := entity.CartLine{Product: p, Quantity: e.Quantity}
		res.Lines = append(res.Lines, line)
		res.Total = res.Total.Add(line.Amount())
	}
	if len(res.Missing) > 0 && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "product_ids": res.Missing}).
			Warn("cart references deleted products")
	}
	return res, nil
}
