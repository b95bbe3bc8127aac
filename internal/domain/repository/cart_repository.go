package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// CartRepository mutates carts with single atomic statements so concurrent
// edits from the same account never lose an update.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*entity.Cart, error)
	Increment(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}
